package tables

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TableSource = (*CSVSource)(nil)

// CSVConfig locates the input files.
type CSVConfig struct {
	FeaturesPath string
	TagsPath     string // optional; inner-joined onto features by ID
	QuotesPath   string
	Schema       domain.TableSchema
	Logger       *slog.Logger
}

// CSVSource loads the catalog from CSV files with a header row.
type CSVSource struct {
	cfg    CSVConfig
	logger *slog.Logger
}

// NewCSVSource validates the schema and returns a source.
func NewCSVSource(cfg CSVConfig) (*CSVSource, error) {
	if cfg.FeaturesPath == "" || cfg.QuotesPath == "" {
		return nil, fmt.Errorf("%w: features and quotes paths are required", domain.ErrInvalidInput)
	}
	if err := cfg.Schema.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVSource{cfg: cfg, logger: logger}, nil
}

// Name identifies the source in logs.
func (s *CSVSource) Name() string {
	return "csv"
}

// LoadCatalog reads features, the optional tags and quotes.
func (s *CSVSource) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	features, err := s.loadFeatures()
	if err != nil {
		return nil, err
	}

	if s.cfg.TagsPath != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before := len(features.Games)
		if err := s.joinTags(features); err != nil {
			return nil, err
		}
		if dropped := before - len(features.Games); dropped > 0 {
			s.logger.Info("games without tags dropped", "count", dropped)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	quotes, err := s.loadQuotes()
	if err != nil {
		return nil, err
	}

	s.logger.Info("catalog loaded",
		"source", s.Name(),
		"games", len(features.Games),
		"quote_rows", len(quotes.Rows))

	return &domain.Catalog{Features: features, Quotes: quotes}, nil
}

func (s *CSVSource) loadFeatures() (*domain.FeatureTable, error) {
	schema := s.cfg.Schema.Features
	header, rows, err := readCSV(s.cfg.FeaturesPath)
	if err != nil {
		return nil, err
	}
	index, err := domain.ColumnIndex("features", header, schema.RequiredColumns())
	if err != nil {
		return nil, err
	}

	table := &domain.FeatureTable{
		Dimensions: schema.DimensionList(),
		Games:      make([]domain.Game, 0, len(rows)),
	}
	for i, row := range rows {
		line := i + 2
		id := cell(row, index[schema.IDColumn])
		if id == "" {
			return nil, fmt.Errorf("%w: features row %d has no %s", domain.ErrInvalidInput, line, schema.IDColumn)
		}

		game := domain.Game{ID: id, Features: make(domain.FeatureVector, len(schema.Dimensions))}
		if schema.NameColumn != "" {
			game.Name = cell(row, index[schema.NameColumn])
		}
		for d, dim := range schema.Dimensions {
			raw := cell(row, index[dim.Column])
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || !domain.IsFinite(v) {
				return nil, fmt.Errorf("%w: features row %d column %s: %q is not a finite number",
					domain.ErrInvalidInput, line, dim.Column, raw)
			}
			game.Features[d] = v
		}
		table.Games = append(table.Games, game)
	}
	return table, nil
}

// joinTags keeps only games present in the tag table, in feature order,
// and copies genre and attributes from the first matching tag row.
func (s *CSVSource) joinTags(table *domain.FeatureTable) error {
	schema := s.cfg.Schema.Tags
	header, rows, err := readCSV(s.cfg.TagsPath)
	if err != nil {
		return err
	}
	index, err := domain.ColumnIndex("tags", header, schema.RequiredColumns())
	if err != nil {
		return err
	}

	tags := make(map[string][]string, len(rows))
	for _, row := range rows {
		id := cell(row, index[schema.IDColumn])
		if _, seen := tags[id]; id == "" || seen {
			continue
		}
		tags[id] = row
	}

	joined := table.Games[:0]
	for _, game := range table.Games {
		row, ok := tags[game.ID]
		if !ok {
			continue
		}
		if schema.GenreColumn != "" {
			game.Genre = cell(row, index[schema.GenreColumn])
		}
		for _, col := range schema.AttributeColumns {
			v := cell(row, index[col])
			if v == "" {
				continue
			}
			if game.Attributes == nil {
				game.Attributes = make(map[string]string, len(schema.AttributeColumns))
			}
			game.Attributes[col] = v
		}
		joined = append(joined, game)
	}
	table.Games = joined
	return nil
}

func (s *CSVSource) loadQuotes() (*domain.QuoteTable, error) {
	schema := s.cfg.Schema.Quotes
	header, rows, err := readCSV(s.cfg.QuotesPath)
	if err != nil {
		return nil, err
	}
	index, err := domain.ColumnIndex("quotes", header, schema.RequiredColumns())
	if err != nil {
		return nil, err
	}

	table := &domain.QuoteTable{Rows: make([]domain.QuoteRow, 0, len(rows))}
	for i, row := range rows {
		id := cell(row, index[schema.IDColumn])
		if id == "" {
			return nil, fmt.Errorf("%w: quotes row %d has no %s", domain.ErrInvalidInput, i+2, schema.IDColumn)
		}
		qr := domain.QuoteRow{GameID: id, Quotes: make([]domain.Quote, 0, len(schema.Columns))}
		if schema.NameColumn != "" {
			qr.GameName = cell(row, index[schema.NameColumn])
		}
		for _, col := range schema.Columns {
			qr.Quotes = append(qr.Quotes, domain.Quote{
				DimensionCode: col.DimensionCode,
				Text:          cell(row, index[col.Column]),
			})
		}
		table.Rows = append(table.Rows, qr)
	}
	return table, nil
}

// readCSV returns the header and data rows of a CSV file.
func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: %s is empty", domain.ErrSchemaMismatch, path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidInput, path, err)
	}
	return header, rows, nil
}

// cell returns the trimmed value at i, or "" for short rows.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
