package driving

import (
	"context"

	"github.com/custodia-labs/gamefit/internal/core/domain"
)

// RecommendService ranks games against a preference and retrieves evidence
type RecommendService interface {
	// Dimensions returns the feature dimensions in table order
	Dimensions() []domain.Dimension

	// Rank scores every game by cosine similarity, best first.
	// Ties keep table order.
	Rank(pref domain.PreferenceVector, features *domain.FeatureTable) ([]domain.ScoredGame, error)

	// FindBestEvidence returns the document of a game closest to the query.
	// Returns nil, nil when the game has no usable documents.
	FindBestEvidence(ctx context.Context, gameID, query string, corpus *domain.Corpus) (*domain.Evidence, error)

	// Recommend ranks the loaded games and attaches evidence when available
	Recommend(ctx context.Context, req domain.RecommendRequest) (*domain.Recommendation, error)

	// FindEvidence returns the best evidence of a game for one dimension
	FindEvidence(ctx context.Context, gameID, dimensionCode string) (*domain.Evidence, error)
}
