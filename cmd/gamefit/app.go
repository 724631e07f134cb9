package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/custodia-labs/gamefit/internal/adapters/driven/ai"
	"github.com/custodia-labs/gamefit/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/gamefit/internal/adapters/driven/redis"
	"github.com/custodia-labs/gamefit/internal/adapters/driven/tables"
	"github.com/custodia-labs/gamefit/internal/adapters/driving/http"
	"github.com/custodia-labs/gamefit/internal/config"
	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/core/ports/driven"
	"github.com/custodia-labs/gamefit/internal/core/services"
	"github.com/custodia-labs/gamefit/internal/runtime"
)

// app holds the wired core shared by serve and embed.
type app struct {
	catalog     *domain.Catalog
	jobs        *services.EmbeddingJobManager
	recommender *services.RecommendService
	runtime     *runtime.Services
	lock        driven.DistributedLock
	checks      map[string]http.Pinger
	closers     []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{checks: make(map[string]http.Pinger)}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// ===== Initialize PostgreSQL (only when a component needs it) =====
	var db *postgres.DB
	if cfg.Tables.Source == "postgres" || cfg.Lock.Backend == "postgres" {
		db, err = connectPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.checks["postgres"] = db
	}

	// ===== Table source =====
	var source driven.TableSource
	switch cfg.Tables.Source {
	case "postgres":
		source = postgres.NewTableSource(db, cfg.Tables.Schema)
	default:
		source, err = tables.NewCSVSource(tables.CSVConfig{
			FeaturesPath: cfg.Tables.FeaturesPath,
			TagsPath:     cfg.Tables.TagsPath,
			QuotesPath:   cfg.Tables.QuotesPath,
			Schema:       cfg.Tables.Schema,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
	}

	a.catalog, err = source.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", source.Name(), err)
	}
	log.Printf("Catalog loaded from %s: %d games, %d dimensions, %d quote rows",
		source.Name(), len(a.catalog.Features.Games), len(a.catalog.Features.Dimensions), len(a.catalog.Quotes.Rows))

	// ===== Distributed lock (optional) =====
	switch cfg.Lock.Backend {
	case "redis":
		log.Println("Connecting to Redis...")
		client, cerr := redisadapter.NewClient(cfg.Redis.URL)
		if cerr != nil {
			return nil, fmt.Errorf("redis: %w", cerr)
		}
		a.closers = append(a.closers, client.Close)
		lock := redisadapter.NewLock(client)
		if err = lock.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.lock = lock
		a.checks["redis"] = lock
		log.Printf("Using Redis distributed lock (owner %s)", lock.OwnerID())
	case "postgres":
		a.lock = postgres.NewAdvisoryLock(db)
		log.Println("Using PostgreSQL advisory lock")
	}

	// ===== Core services =====
	a.runtime = runtime.NewServices(domain.NewRuntimeConfig(cfg.Tables.Source, cfg.Lock.Backend))
	a.closers = append(a.closers, a.runtime.Close)

	factory := ai.NewFactory(ai.ResilienceConfig{
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		Burst:             cfg.Embedding.Burst,
		FailureThreshold:  cfg.Embedding.BreakerFailures,
		OpenTimeout:       cfg.Embedding.BreakerOpenTimeout,
		HalfOpenRequests:  1,
	}, logger)

	a.jobs = services.NewEmbeddingJobManager(services.EmbeddingJobConfig{
		Factory:          factory,
		Settings:         cfg.EmbeddingSettings(),
		Lock:             a.lock,
		LockTTL:          cfg.Lock.TTL,
		Services:         a.runtime,
		BatchSize:        cfg.Embedding.BatchSize,
		MaxBatchAttempts: cfg.Embedding.MaxBatchAttempts,
		RetryBackoff:     cfg.Embedding.RetryBackoff,
		Logger:           logger,
	})
	a.closers = append(a.closers, a.jobs.Close)

	a.recommender = services.NewRecommendService(services.RecommendServiceConfig{
		Features:      a.catalog.Features,
		Jobs:          a.jobs,
		Services:      a.runtime,
		QueryTemplate: cfg.Recommend.QueryTemplate,
		QueryTimeout:  cfg.Recommend.QueryTimeout,
		SliderMin:     cfg.Recommend.SliderMin,
		SliderMax:     cfg.Recommend.SliderMax,
		Logger:        logger,
	})

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Warning: close failed: %v", err)
		}
	}
	a.closers = nil
}
