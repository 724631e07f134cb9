package tables

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gamefit/internal/core/domain"
)

func testSchema() domain.TableSchema {
	return domain.TableSchema{
		Features: domain.FeatureSchema{
			IDColumn:   "APPID",
			NameColumn: "game_name",
			Dimensions: []domain.DimensionColumn{
				{Code: "D01", Label: "Art", Column: "art"},
				{Code: "D02", Label: "Direction", Column: "direction"},
			},
		},
		Tags: domain.TagSchema{
			IDColumn:         "APPID",
			GenreColumn:      "TARGET_GENRE",
			AttributeColumns: []string{"engine"},
		},
		Quotes: domain.QuoteSchema{
			IDColumn:   "APPID",
			NameColumn: "game_name",
			Columns: []domain.QuoteColumn{
				{Column: "d01_quote", DimensionCode: "D01"},
				{Column: "d02_quote", DimensionCode: "D02"},
			},
		},
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newSource(t *testing.T, features, tags, quotes string) *CSVSource {
	t.Helper()
	dir := t.TempDir()
	cfg := CSVConfig{
		FeaturesPath: writeFile(t, dir, "features.csv", features),
		QuotesPath:   writeFile(t, dir, "quotes.csv", quotes),
		Schema:       testSchema(),
	}
	if tags != "" {
		cfg.TagsPath = writeFile(t, dir, "tags.csv", tags)
	}
	src, err := NewCSVSource(cfg)
	require.NoError(t, err)
	return src
}

const (
	featuresCSV = "\ufeffAPPID,game_name,art,direction\n" +
		"10,Alpha,1,0\n" +
		"20,Beta,0,1\n" +
		"30,Gamma,0.7,0.7\n"
	tagsCSV = "APPID,TARGET_GENRE,engine\n" +
		"30,Puzzle,Godot\n" +
		"10,RPG,Unity\n" +
		"10,Duplicate,Ignored\n"
	quotesCSV = "APPID,game_name,d01_quote,d02_quote\n" +
		"10,Alpha,\"  lovely   art \",\n" +
		"20,,,\"tight pacing\"\n"
)

func TestCSVSource_LoadCatalog(t *testing.T) {
	src := newSource(t, featuresCSV, "", quotesCSV)

	catalog, err := src.LoadCatalog(context.Background())
	require.NoError(t, err)

	require.Len(t, catalog.Features.Games, 3)
	assert.Equal(t, []domain.Dimension{{Code: "D01", Label: "Art"}, {Code: "D02", Label: "Direction"}},
		catalog.Features.Dimensions)
	assert.Equal(t, "10", catalog.Features.Games[0].ID)
	assert.Equal(t, "Alpha", catalog.Features.Games[0].Name)
	assert.Equal(t, domain.FeatureVector{0.7, 0.7}, catalog.Features.Games[2].Features)

	require.Len(t, catalog.Quotes.Rows, 2)
	first := catalog.Quotes.Rows[0]
	assert.Equal(t, "10", first.GameID)
	require.Len(t, first.Quotes, 2)
	assert.Equal(t, domain.Quote{DimensionCode: "D01", Text: "lovely   art"}, first.Quotes[0])
	assert.Equal(t, "", first.Quotes[1].Text)
	assert.Equal(t, "", catalog.Quotes.Rows[1].GameName)
}

func TestCSVSource_TagJoin(t *testing.T) {
	src := newSource(t, featuresCSV, tagsCSV, quotesCSV)

	catalog, err := src.LoadCatalog(context.Background())
	require.NoError(t, err)

	games := catalog.Features.Games
	require.Len(t, games, 2, "inner join drops games without tags")
	assert.Equal(t, "10", games[0].ID, "feature order is kept")
	assert.Equal(t, "RPG", games[0].Genre, "first tag row wins")
	assert.Equal(t, map[string]string{"engine": "Unity"}, games[0].Attributes)
	assert.Equal(t, "30", games[1].ID)
	assert.Equal(t, "Puzzle", games[1].Genre)
}

func TestCSVSource_MissingColumn(t *testing.T) {
	src := newSource(t, "APPID,game_name,art\n10,Alpha,1\n", "", quotesCSV)

	_, err := src.LoadCatalog(context.Background())
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "direction")
}

func TestCSVSource_MissingQuoteColumn(t *testing.T) {
	src := newSource(t, featuresCSV, "", "APPID,game_name,d01_quote\n10,Alpha,x\n")

	_, err := src.LoadCatalog(context.Background())
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestCSVSource_BadNumber(t *testing.T) {
	src := newSource(t, "APPID,game_name,art,direction\n10,Alpha,1,0\n20,Beta,high,1\n", "", quotesCSV)

	_, err := src.LoadCatalog(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "row 3")
}

func TestCSVSource_NonFiniteNumber(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-Inf", "1e400"} {
		t.Run(raw, func(t *testing.T) {
			src := newSource(t, "APPID,game_name,art,direction\n10,Alpha,"+raw+",0\n20,Beta,1,1\n", "", quotesCSV)

			_, err := src.LoadCatalog(context.Background())
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestCSVSource_EmptyFile(t *testing.T) {
	src := newSource(t, "", "", quotesCSV)

	_, err := src.LoadCatalog(context.Background())
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestCSVSource_MissingFile(t *testing.T) {
	src, err := NewCSVSource(CSVConfig{
		FeaturesPath: filepath.Join(t.TempDir(), "absent.csv"),
		QuotesPath:   "quotes.csv",
		Schema:       testSchema(),
	})
	require.NoError(t, err)

	_, err = src.LoadCatalog(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVSource_CancelledContext(t *testing.T) {
	src := newSource(t, featuresCSV, tagsCSV, quotesCSV)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.LoadCatalog(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewCSVSource_Validation(t *testing.T) {
	_, err := NewCSVSource(CSVConfig{Schema: testSchema()})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	bad := testSchema()
	bad.Quotes.Columns = append(bad.Quotes.Columns, domain.QuoteColumn{Column: "d09_quote", DimensionCode: "D09"})
	_, err = NewCSVSource(CSVConfig{FeaturesPath: "f.csv", QuotesPath: "q.csv", Schema: bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	src, err := NewCSVSource(CSVConfig{FeaturesPath: "f.csv", QuotesPath: "q.csv", Schema: testSchema()})
	require.NoError(t, err)
	assert.Equal(t, "csv", src.Name())
}
