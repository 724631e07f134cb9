package domain

import (
	"fmt"
	"strings"
)

// DimensionColumn maps one dimension onto a numeric feature column.
type DimensionColumn struct {
	Code   string `yaml:"code"`
	Label  string `yaml:"label"`
	Column string `yaml:"column"`
}

// FeatureSchema describes the per-game feature table.
type FeatureSchema struct {
	IDColumn   string            `yaml:"id_column"`
	NameColumn string            `yaml:"name_column"`
	Dimensions []DimensionColumn `yaml:"dimensions"`
}

// TagSchema describes the optional tag table joined onto features by ID.
type TagSchema struct {
	IDColumn         string   `yaml:"id_column"`
	GenreColumn      string   `yaml:"genre_column"`
	AttributeColumns []string `yaml:"attribute_columns"`
}

// QuoteColumn maps a free-text column onto a dimension code.
type QuoteColumn struct {
	Column        string `yaml:"column"`
	DimensionCode string `yaml:"dimension"`
}

// QuoteSchema describes the per-game quote table.
type QuoteSchema struct {
	IDColumn   string        `yaml:"id_column"`
	NameColumn string        `yaml:"name_column"`
	Columns    []QuoteColumn `yaml:"columns"`
}

// TableSchema is the explicit column mapping for every input table.
// Tables that do not carry the configured columns are rejected.
type TableSchema struct {
	Features FeatureSchema `yaml:"features"`
	Tags     TagSchema     `yaml:"tags"`
	Quotes   QuoteSchema   `yaml:"quotes"`
}

// DefaultTableSchema matches the column layout of the shipped data files.
func DefaultTableSchema() TableSchema {
	featureColumns := []string{
		"아트", "연출", "서사", "조작감", "시스템복잡도",
		"컨텐츠설계량", "엔진", "네트워크", "운영", "BM",
	}

	dims := DefaultDimensions()
	dimCols := make([]DimensionColumn, len(dims))
	quoteCols := make([]QuoteColumn, len(dims))
	for i, d := range dims {
		dimCols[i] = DimensionColumn{Code: d.Code, Label: d.Label, Column: featureColumns[i]}
		quoteCols[i] = QuoteColumn{Column: strings.ToLower(d.Code) + "_quote", DimensionCode: d.Code}
	}

	return TableSchema{
		Features: FeatureSchema{
			IDColumn:   "APPID",
			NameColumn: "game_name",
			Dimensions: dimCols,
		},
		Tags: TagSchema{
			IDColumn:         "APPID",
			GenreColumn:      "TARGET_GENRE",
			AttributeColumns: []string{"engine", "network", "update", "business_model"},
		},
		Quotes: QuoteSchema{
			IDColumn:   "APPID",
			NameColumn: "game_name",
			Columns:    quoteCols,
		},
	}
}

// DimensionList returns the feature dimensions in column order.
func (s FeatureSchema) DimensionList() []Dimension {
	dims := make([]Dimension, len(s.Dimensions))
	for i, d := range s.Dimensions {
		dims[i] = Dimension{Code: d.Code, Label: d.Label}
	}
	return dims
}

// Validate checks the schema itself for consistency.
func (s TableSchema) Validate() error {
	if s.Features.IDColumn == "" || s.Quotes.IDColumn == "" {
		return fmt.Errorf("%w: id columns are required", ErrInvalidInput)
	}
	if len(s.Features.Dimensions) == 0 {
		return fmt.Errorf("%w: at least one feature dimension is required", ErrInvalidInput)
	}

	codes := make(map[string]bool, len(s.Features.Dimensions))
	for _, d := range s.Features.Dimensions {
		if d.Code == "" || d.Column == "" {
			return fmt.Errorf("%w: dimension code and column are required", ErrInvalidInput)
		}
		if codes[d.Code] {
			return fmt.Errorf("%w: duplicate dimension %s", ErrInvalidInput, d.Code)
		}
		codes[d.Code] = true
	}

	for _, q := range s.Quotes.Columns {
		if q.Column == "" {
			return fmt.Errorf("%w: quote column name is required", ErrInvalidInput)
		}
		if !codes[q.DimensionCode] {
			return fmt.Errorf("%w: quote column %s references unknown dimension %q",
				ErrInvalidInput, q.Column, q.DimensionCode)
		}
	}
	return nil
}

// RequiredColumns lists the feature table columns that must be present.
func (s FeatureSchema) RequiredColumns() []string {
	cols := []string{s.IDColumn}
	if s.NameColumn != "" {
		cols = append(cols, s.NameColumn)
	}
	for _, d := range s.Dimensions {
		cols = append(cols, d.Column)
	}
	return cols
}

// RequiredColumns lists the tag table columns that must be present.
func (s TagSchema) RequiredColumns() []string {
	cols := []string{s.IDColumn}
	if s.GenreColumn != "" {
		cols = append(cols, s.GenreColumn)
	}
	return append(cols, s.AttributeColumns...)
}

// RequiredColumns lists the quote table columns that must be present.
func (s QuoteSchema) RequiredColumns() []string {
	cols := []string{s.IDColumn}
	if s.NameColumn != "" {
		cols = append(cols, s.NameColumn)
	}
	for _, q := range s.Columns {
		cols = append(cols, q.Column)
	}
	return cols
}

// ColumnIndex resolves required columns against a header row.
// Missing columns produce ErrSchemaMismatch naming every absent column.
func ColumnIndex(table string, header []string, required []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s table missing columns %s",
			ErrSchemaMismatch, table, strings.Join(missing, ", "))
	}
	return index, nil
}
