package domain

import "fmt"

// Dimension is a named axis of qualitative evaluation (art, narrative, ...).
type Dimension struct {
	Code  string `json:"code" yaml:"code"`   // e.g. "D01"
	Label string `json:"label" yaml:"label"` // e.g. "Art"
}

// DefaultDimensions returns the ten evaluation dimensions in feature order.
func DefaultDimensions() []Dimension {
	return []Dimension{
		{Code: "D01", Label: "Art"},
		{Code: "D02", Label: "Direction"},
		{Code: "D03", Label: "Narrative"},
		{Code: "D04", Label: "Controls"},
		{Code: "D05", Label: "System complexity"},
		{Code: "D06", Label: "Content volume"},
		{Code: "D07", Label: "Engine"},
		{Code: "D08", Label: "Network"},
		{Code: "D09", Label: "Operations"},
		{Code: "D10", Label: "Business model"},
	}
}

// FeatureVector is a game's position in the shared feature space.
type FeatureVector []float64

// PreferenceVector is the user's weighting of each dimension, each in [0,1].
type PreferenceVector []float64

// Game is a ranked and described entity.
type Game struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Genre      string            `json:"genre,omitempty"`
	Features   FeatureVector     `json:"features"`
	Attributes map[string]string `json:"attributes,omitempty"` // engine, network, update, business_model
}

// FeatureTable is the read-only per-game feature table. Games keep table order.
type FeatureTable struct {
	Dimensions []Dimension `json:"dimensions"`
	Games      []Game      `json:"games"`
}

// Game returns the game with the given ID.
func (t *FeatureTable) Game(id string) (*Game, error) {
	for i := range t.Games {
		if t.Games[i].ID == id {
			return &t.Games[i], nil
		}
	}
	return nil, fmt.Errorf("%w: game %s", ErrNotFound, id)
}

// Dimension returns the dimension with the given code.
func (t *FeatureTable) Dimension(code string) (Dimension, int, error) {
	for i, d := range t.Dimensions {
		if d.Code == code {
			return d, i, nil
		}
	}
	return Dimension{}, -1, fmt.Errorf("%w: dimension %s", ErrNotFound, code)
}

// Quote is one free-text snippet tagged with a dimension code.
type Quote struct {
	DimensionCode string
	Text          string
}

// QuoteRow holds the quotes of one game, in configured column order.
type QuoteRow struct {
	GameID   string
	GameName string
	Quotes   []Quote
}

// QuoteTable is the per-game text-quote table. Rows keep table order.
type QuoteTable struct {
	Rows []QuoteRow
}

// Catalog bundles the tables loaded at startup.
type Catalog struct {
	Features *FeatureTable
	Quotes   *QuoteTable
}
