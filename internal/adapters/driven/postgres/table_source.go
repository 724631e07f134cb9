package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TableSource = (*TableSource)(nil)

// TableSource reads the game catalog from the games, game_features and
// game_quotes tables. Row order follows the position columns.
type TableSource struct {
	db     *DB
	schema domain.TableSchema
}

// NewTableSource creates a catalog reader. Only the dimension codes and
// quote columns of the schema are used; column names do not apply here.
func NewTableSource(db *DB, schema domain.TableSchema) *TableSource {
	return &TableSource{db: db, schema: schema}
}

// Name identifies the source in logs.
func (s *TableSource) Name() string {
	return "postgres"
}

type gameRow struct {
	ID         string
	Name       string
	Genre      string
	Attributes []byte
}

type featureRow struct {
	GameID string
	Code   string
	Value  float64
}

type quoteRow struct {
	GameID string
	Code   string
	Text   string
}

// LoadCatalog reads all three tables and assembles the catalog.
func (s *TableSource) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	games, err := s.loadGames(ctx)
	if err != nil {
		return nil, err
	}
	features, err := s.loadFeatures(ctx)
	if err != nil {
		return nil, err
	}
	quotes, err := s.loadQuotes(ctx)
	if err != nil {
		return nil, err
	}
	return assembleCatalog(s.schema, games, features, quotes)
}

func (s *TableSource) loadGames(ctx context.Context) ([]gameRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, genre, attributes
		FROM games
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var out []gameRow
	for rows.Next() {
		var g gameRow
		if err := rows.Scan(&g.ID, &g.Name, &g.Genre, &g.Attributes); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *TableSource) loadFeatures(ctx context.Context) ([]featureRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, dimension_code, value
		FROM game_features
	`)
	if err != nil {
		return nil, fmt.Errorf("query game_features: %w", err)
	}
	defer rows.Close()

	var out []featureRow
	for rows.Next() {
		var f featureRow
		if err := rows.Scan(&f.GameID, &f.Code, &f.Value); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *TableSource) loadQuotes(ctx context.Context) ([]quoteRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT q.game_id, q.dimension_code, q.text
		FROM game_quotes q
		JOIN games g ON g.id = q.game_id
		ORDER BY g.position, g.id, q.position
	`)
	if err != nil {
		return nil, fmt.Errorf("query game_quotes: %w", err)
	}
	defer rows.Close()

	var out []quoteRow
	for rows.Next() {
		var q quoteRow
		if err := rows.Scan(&q.GameID, &q.Code, &q.Text); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// assembleCatalog turns scanned rows into domain tables.
// Every game must carry a value for every configured dimension, and every
// quote must reference a dimension the quote schema knows.
func assembleCatalog(schema domain.TableSchema, games []gameRow, features []featureRow, quotes []quoteRow) (*domain.Catalog, error) {
	dims := schema.Features.DimensionList()
	dimIndex := make(map[string]int, len(dims))
	for i, d := range dims {
		dimIndex[d.Code] = i
	}

	table := &domain.FeatureTable{Dimensions: dims, Games: make([]domain.Game, 0, len(games))}
	gameIndex := make(map[string]int, len(games))
	filled := make([][]bool, len(games))
	for i, g := range games {
		game := domain.Game{
			ID:       g.ID,
			Name:     g.Name,
			Genre:    g.Genre,
			Features: make(domain.FeatureVector, len(dims)),
		}
		if len(g.Attributes) > 0 {
			if err := json.Unmarshal(g.Attributes, &game.Attributes); err != nil {
				return nil, fmt.Errorf("%w: game %s attributes: %v", domain.ErrInvalidInput, g.ID, err)
			}
			if len(game.Attributes) == 0 {
				game.Attributes = nil
			}
		}
		gameIndex[g.ID] = i
		filled[i] = make([]bool, len(dims))
		table.Games = append(table.Games, game)
	}

	for _, f := range features {
		gi, ok := gameIndex[f.GameID]
		if !ok {
			continue
		}
		di, ok := dimIndex[f.Code]
		if !ok {
			continue
		}
		if !domain.IsFinite(f.Value) {
			return nil, fmt.Errorf("%w: game %s value for %s is not finite",
				domain.ErrInvalidInput, f.GameID, f.Code)
		}
		table.Games[gi].Features[di] = f.Value
		filled[gi][di] = true
	}
	for gi, row := range filled {
		for di, ok := range row {
			if !ok {
				return nil, fmt.Errorf("%w: game %s has no value for %s",
					domain.ErrSchemaMismatch, table.Games[gi].ID, dims[di].Code)
			}
		}
	}

	quoteDims := make(map[string]bool, len(schema.Quotes.Columns))
	for _, q := range schema.Quotes.Columns {
		quoteDims[q.DimensionCode] = true
	}

	quoteTable := &domain.QuoteTable{}
	current := -1
	for _, q := range quotes {
		if !quoteDims[q.Code] {
			return nil, fmt.Errorf("%w: quote for game %s uses unknown dimension %q",
				domain.ErrSchemaMismatch, q.GameID, q.Code)
		}
		if current < 0 || quoteTable.Rows[current].GameID != q.GameID {
			name := ""
			if gi, ok := gameIndex[q.GameID]; ok {
				name = table.Games[gi].Name
			}
			quoteTable.Rows = append(quoteTable.Rows, domain.QuoteRow{GameID: q.GameID, GameName: name})
			current = len(quoteTable.Rows) - 1
		}
		quoteTable.Rows[current].Quotes = append(quoteTable.Rows[current].Quotes,
			domain.Quote{DimensionCode: q.Code, Text: q.Text})
	}

	return &domain.Catalog{Features: table, Quotes: quoteTable}, nil
}

// ImportCatalog replaces the stored catalog with the given one in a single
// transaction. Quote rows for games missing from the feature table are
// skipped; the number skipped is returned.
func (db *DB) ImportCatalog(ctx context.Context, catalog *domain.Catalog) (int, error) {
	if catalog == nil || catalog.Features == nil {
		return 0, fmt.Errorf("%w: catalog has no feature table", domain.ErrInvalidInput)
	}

	known := make(map[string]bool, len(catalog.Features.Games))
	for _, g := range catalog.Features.Games {
		known[g.ID] = true
	}

	skipped := 0
	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM games`); err != nil {
			return fmt.Errorf("clear games: %w", err)
		}

		for pos, g := range catalog.Features.Games {
			attrs, err := json.Marshal(g.Attributes)
			if err != nil {
				return fmt.Errorf("encode attributes for %s: %w", g.ID, err)
			}
			if g.Attributes == nil {
				attrs = []byte("{}")
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO games (id, name, genre, attributes, position)
				VALUES ($1, $2, $3, $4, $5)
			`, g.ID, g.Name, g.Genre, attrs, pos); err != nil {
				return fmt.Errorf("insert game %s: %w", g.ID, err)
			}

			for i, v := range g.Features {
				if i >= len(catalog.Features.Dimensions) {
					break
				}
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO game_features (game_id, dimension_code, value)
					VALUES ($1, $2, $3)
				`, g.ID, catalog.Features.Dimensions[i].Code, v); err != nil {
					return fmt.Errorf("insert features for %s: %w", g.ID, err)
				}
			}
		}

		if catalog.Quotes == nil {
			return nil
		}
		for _, row := range catalog.Quotes.Rows {
			if !known[row.GameID] {
				skipped++
				continue
			}
			for pos, q := range row.Quotes {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO game_quotes (game_id, dimension_code, text, position)
					VALUES ($1, $2, $3, $4)
				`, row.GameID, q.DimensionCode, q.Text, pos); err != nil {
					return fmt.Errorf("insert quote for %s: %w", row.GameID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return skipped, nil
}
