package domain

import (
	"fmt"
	"strings"
)

const (
	// DefaultTopK is the number of games returned when a request names none.
	DefaultTopK = 5
	// MaxTopK caps the number of games per request.
	MaxTopK = 50
	// TopGenreCount is the number of genres summarised per recommendation.
	TopGenreCount = 2
)

// EvidenceState reports whether evidence could be attached to a recommendation.
type EvidenceState string

const (
	EvidenceReady       EvidenceState = "ready"
	EvidencePending     EvidenceState = "pending"
	EvidenceUnavailable EvidenceState = "unavailable"
)

// ScoredGame is one ranking entry.
type ScoredGame struct {
	GameID string  `json:"game_id"`
	Score  float64 `json:"score"`
}

// Evidence is the quote that best supports a recommendation.
type Evidence struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// RankedGame is a recommended game with its display fields.
type RankedGame struct {
	GameID     string            `json:"game_id"`
	Name       string            `json:"name"`
	Genre      string            `json:"genre,omitempty"`
	Score      float64           `json:"score"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Evidence   *Evidence         `json:"evidence,omitempty"`
}

// GenreCount is the number of top games in a genre.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// RecommendRequest asks for games matching a preference.
// Either Preferences (already in [0,1]) or Sliders must be set.
type RecommendRequest struct {
	Preferences PreferenceVector `json:"preferences,omitempty"`
	Sliders     []int            `json:"sliders,omitempty"`
	TopK        int              `json:"top_k,omitempty"`
}

// EffectiveTopK returns the requested TopK bounded to [1, MaxTopK].
func (r RecommendRequest) EffectiveTopK() int {
	switch {
	case r.TopK <= 0:
		return DefaultTopK
	case r.TopK > MaxTopK:
		return MaxTopK
	default:
		return r.TopK
	}
}

// Recommendation is the result of a recommendation request.
type Recommendation struct {
	Games          []RankedGame  `json:"games"`
	TopGenres      []GenreCount  `json:"top_genres"`
	QueryDimension Dimension     `json:"query_dimension"`
	Query          string        `json:"query"`
	EvidenceState  EvidenceState `json:"evidence_state"`
}

// DefaultQueryTemplate builds the evidence query from a dimension label.
const DefaultQueryTemplate = "Positive reviews or standout features of this game's %s"

// ValidateQueryTemplate requires exactly one %s verb. Literal percent
// signs must be written as %%. An empty template means the default.
func ValidateQueryTemplate(template string) error {
	if template == "" {
		return nil
	}
	rest := strings.ReplaceAll(template, "%%", "")
	if strings.Count(rest, "%") != 1 || strings.Count(rest, "%s") != 1 {
		return fmt.Errorf("%w: query template %q must contain exactly one %%s", ErrInvalidInput, template)
	}
	return nil
}

// BuildQuery renders the evidence query for a dimension.
func BuildQuery(template string, dim Dimension) string {
	if template == "" {
		template = DefaultQueryTemplate
	}
	label := dim.Label
	if label == "" {
		label = dim.Code
	}
	return fmt.Sprintf(template, label)
}
