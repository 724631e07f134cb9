package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/core/ports/driven"
	"github.com/custodia-labs/gamefit/internal/core/ports/driving"
	"github.com/custodia-labs/gamefit/internal/metrics"
	"github.com/custodia-labs/gamefit/internal/runtime"
)

// Ensure RecommendService implements the interface
var _ driving.RecommendService = (*RecommendService)(nil)

const defaultQueryTimeout = 15 * time.Second

// RecommendService ranks games by feature similarity and retrieves the
// quote that best supports each recommendation.
type RecommendService struct {
	features      *domain.FeatureTable
	jobs          driving.EmbeddingJobService
	services      *runtime.Services
	queryTemplate string
	queryTimeout  time.Duration
	sliderMin     int
	sliderMax     int
	logger        *slog.Logger
}

// RecommendServiceConfig holds dependencies for RecommendService.
type RecommendServiceConfig struct {
	Features      *domain.FeatureTable
	Jobs          driving.EmbeddingJobService
	Services      *runtime.Services
	QueryTemplate string
	QueryTimeout  time.Duration
	SliderMin     int
	SliderMax     int
	Logger        *slog.Logger
}

// NewRecommendService creates a new RecommendService.
func NewRecommendService(cfg RecommendServiceConfig) *RecommendService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Features == nil {
		cfg.Features = &domain.FeatureTable{}
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = defaultQueryTimeout
	}
	if cfg.SliderMax <= cfg.SliderMin {
		cfg.SliderMin, cfg.SliderMax = 1, 5
	}

	return &RecommendService{
		features:      cfg.Features,
		jobs:          cfg.Jobs,
		services:      cfg.Services,
		queryTemplate: cfg.QueryTemplate,
		queryTimeout:  cfg.QueryTimeout,
		sliderMin:     cfg.SliderMin,
		sliderMax:     cfg.SliderMax,
		logger:        logger,
	}
}

// Dimensions returns the feature dimensions in table order.
func (s *RecommendService) Dimensions() []domain.Dimension {
	return s.features.Dimensions
}

// Rank scores every game by cosine similarity to the preference.
// Results are sorted best first; equal scores keep table order.
func (s *RecommendService) Rank(pref domain.PreferenceVector, features *domain.FeatureTable) ([]domain.ScoredGame, error) {
	if features == nil {
		return nil, fmt.Errorf("%w: feature table is required", domain.ErrInvalidInput)
	}

	scored := make([]domain.ScoredGame, 0, len(features.Games))
	for _, g := range features.Games {
		if len(g.Features) != len(pref) {
			return nil, fmt.Errorf("%w: game %s has %d features, preference has %d",
				domain.ErrInvalidInput, g.ID, len(g.Features), len(pref))
		}
		scored = append(scored, domain.ScoredGame{
			GameID: g.ID,
			Score:  domain.CosineSimilarity(pref, g.Features),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, nil
}

// FindBestEvidence embeds the query and returns the game's document closest
// to it. A game without documents yields nil without a provider call.
func (s *RecommendService) FindBestEvidence(ctx context.Context, gameID, query string, corpus *domain.Corpus) (*domain.Evidence, error) {
	if corpus == nil || corpus.Embeddings == nil || len(corpus.IndicesFor(gameID)) == 0 {
		return nil, nil
	}

	qvec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return bestEvidence(gameID, qvec, corpus), nil
}

func (s *RecommendService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	svc := s.embeddingService()
	if svc == nil {
		return nil, fmt.Errorf("%w: no embedding service", domain.ErrServiceUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	qvec, err := svc.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return qvec, nil
}

// bestEvidence scores the game's documents against qvec. Indices without a
// matching embedding are skipped. The first document wins on ties.
func bestEvidence(gameID string, qvec []float32, corpus *domain.Corpus) *domain.Evidence {
	var best *domain.Evidence
	for _, i := range corpus.IndicesFor(gameID) {
		if i < 0 || i >= len(corpus.Embeddings) {
			continue
		}
		score := domain.CosineSimilarity32(qvec, corpus.Embeddings[i])
		if best == nil || score > best.Score {
			best = &domain.Evidence{Document: corpus.Documents[i], Score: score}
		}
	}
	return best
}

// Recommend ranks the loaded games and attaches evidence when the embedding
// job has completed.
func (s *RecommendService) Recommend(ctx context.Context, req domain.RecommendRequest) (*domain.Recommendation, error) {
	pref, err := s.preference(req)
	if err != nil {
		return nil, err
	}

	scored, err := s.Rank(pref, s.features)
	if err != nil {
		return nil, err
	}
	if k := req.EffectiveTopK(); len(scored) > k {
		scored = scored[:k]
	}

	games := make([]domain.RankedGame, 0, len(scored))
	for _, sg := range scored {
		g, err := s.features.Game(sg.GameID)
		if err != nil {
			return nil, err
		}
		games = append(games, domain.RankedGame{
			GameID:     g.ID,
			Name:       g.Name,
			Genre:      g.Genre,
			Score:      sg.Score,
			Attributes: g.Attributes,
		})
	}

	dim := s.features.Dimensions[domain.ArgMax(pref)]
	rec := &domain.Recommendation{
		Games:          games,
		TopGenres:      topGenres(games, domain.TopGenreCount),
		QueryDimension: dim,
		Query:          domain.BuildQuery(s.queryTemplate, dim),
	}

	rec.EvidenceState = s.attachEvidence(ctx, rec)
	metrics.RecommendRequests.WithLabelValues(string(rec.EvidenceState)).Inc()
	return rec, nil
}

func (s *RecommendService) preference(req domain.RecommendRequest) (domain.PreferenceVector, error) {
	dims := len(s.features.Dimensions)
	if dims == 0 {
		return nil, fmt.Errorf("%w: no feature dimensions loaded", domain.ErrServiceUnavailable)
	}

	pref := req.Preferences
	if len(pref) == 0 {
		if len(req.Sliders) == 0 {
			return nil, fmt.Errorf("%w: preferences or sliders are required", domain.ErrInvalidInput)
		}
		var err error
		pref, err = domain.PreferenceFromSliders(req.Sliders, s.sliderMin, s.sliderMax)
		if err != nil {
			return nil, err
		}
	}

	if err := pref.Validate(dims); err != nil {
		return nil, err
	}
	return pref, nil
}

// attachEvidence embeds the query once and attaches the best document of
// every game. Lookup failures leave games without evidence.
func (s *RecommendService) attachEvidence(ctx context.Context, rec *domain.Recommendation) domain.EvidenceState {
	if s.jobs == nil {
		return domain.EvidenceUnavailable
	}

	snap := s.jobs.Snapshot()
	switch snap.Status {
	case domain.JobStatusIdle, domain.JobStatusRunning:
		return domain.EvidencePending
	case domain.JobStatusFailed:
		return domain.EvidenceUnavailable
	}

	corpus := snap.Corpus()
	if corpus == nil || s.embeddingService() == nil {
		return domain.EvidenceUnavailable
	}

	start := time.Now()
	qvec, err := s.embedQuery(ctx, rec.Query)
	if err != nil {
		s.logger.Warn("evidence query embedding failed", "query", rec.Query, "error", err)
		metrics.RecordEvidenceLookup("error", time.Since(start))
		return domain.EvidenceUnavailable
	}

	for i := range rec.Games {
		ev := bestEvidence(rec.Games[i].GameID, qvec, corpus)
		if ev == nil {
			metrics.RecordEvidenceLookup("none", time.Since(start))
			continue
		}
		rec.Games[i].Evidence = ev
		metrics.RecordEvidenceLookup("found", time.Since(start))
	}
	return domain.EvidenceReady
}

// FindEvidence returns the best evidence of a game for one dimension.
func (s *RecommendService) FindEvidence(ctx context.Context, gameID, dimensionCode string) (*domain.Evidence, error) {
	if _, err := s.features.Game(gameID); err != nil {
		return nil, err
	}
	dim, _, err := s.features.Dimension(dimensionCode)
	if err != nil {
		return nil, err
	}

	var corpus *domain.Corpus
	if s.jobs != nil {
		corpus = s.jobs.Result()
	}
	if corpus == nil {
		return nil, fmt.Errorf("%w: embeddings are not ready", domain.ErrServiceUnavailable)
	}

	start := time.Now()
	ev, err := s.FindBestEvidence(ctx, gameID, domain.BuildQuery(s.queryTemplate, dim), corpus)
	switch {
	case err != nil:
		metrics.RecordEvidenceLookup("error", time.Since(start))
		return nil, err
	case ev == nil:
		metrics.RecordEvidenceLookup("none", time.Since(start))
		return nil, fmt.Errorf("%w: no evidence for game %s", domain.ErrNotFound, gameID)
	}
	metrics.RecordEvidenceLookup("found", time.Since(start))
	return ev, nil
}

func (s *RecommendService) embeddingService() driven.EmbeddingService {
	if s.services == nil {
		return nil
	}
	return s.services.EmbeddingService()
}

// topGenres counts genres among games, most frequent first. Ties keep the
// order of first appearance. Games without a genre are not counted.
func topGenres(games []domain.RankedGame, n int) []domain.GenreCount {
	var counts []domain.GenreCount
	index := make(map[string]int)
	for _, g := range games {
		if g.Genre == "" {
			continue
		}
		if i, ok := index[g.Genre]; ok {
			counts[i].Count++
			continue
		}
		index[g.Genre] = len(counts)
		counts = append(counts, domain.GenreCount{Genre: g.Genre, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	if counts == nil {
		counts = []domain.GenreCount{}
	}
	return counts
}
