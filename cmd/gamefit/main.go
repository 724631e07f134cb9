package main

// @title           gamefit API
// @version         1.0
// @description     Game recommendation API. Ranks games by feature similarity and retrieves supporting review quotes through text embeddings.

// @contact.name   gamefit maintainers
// @contact.url    https://github.com/custodia-labs/gamefit/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/gamefit/internal/adapters/driven/auth"
	"github.com/custodia-labs/gamefit/internal/adapters/driven/postgres"
	"github.com/custodia-labs/gamefit/internal/adapters/driven/tables"
	"github.com/custodia-labs/gamefit/internal/adapters/driving/http"
	"github.com/custodia-labs/gamefit/internal/config"
	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/core/services"
	"github.com/custodia-labs/gamefit/internal/worker"
)

var version = "dev"

const usage = `usage: gamefit [command] [flags]

commands:
  serve    run the HTTP API and warmup worker (default)
  token    mint an API bearer token
  embed    run the embedding job in the foreground
  import   copy the CSV catalog into PostgreSQL
`

func main() {
	// A missing .env is fine; real deployments use the environment
	_ = godotenv.Load()

	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case "serve":
		err = runServe(ctx, args)
	case "token":
		err = runToken(ctx, args)
	case "embed":
		err = runEmbed(ctx, args)
	case "import":
		err = runImport(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		log.Fatalf("Unknown command: %s", command)
	}

	if err != nil {
		log.Printf("gamefit %s: %v", command, err)
		stop()
		os.Exit(1)
	}
}

// newFlagSet returns a flag set carrying the shared -config flag.
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet("gamefit "+name, flag.ExitOnError)
	path := fs.String("config", getEnv("GAMEFIT_CONFIG", "gamefit.yaml"), "path to YAML config (missing file means defaults)")
	return fs, path
}

func runServe(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("serve")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log.Printf("gamefit %s starting (tables=%s, lock=%s, provider=%s)",
		version, cfg.Tables.Source, cfg.Lock.Backend, cfg.Embedding.Provider)

	a, err := newApp(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer a.Close()

	server := http.NewServer(http.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		Version:     version,
		AuthEnabled: cfg.Auth.Enabled,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, http.Dependencies{
		Auth:        services.NewAuthService(auth.NewAdapter(cfg.Auth.JWTSecret)),
		Jobs:        a.jobs,
		Recommender: a.recommender,
		Quotes:      a.catalog.Quotes,
		Checks:      a.checks,
	})

	if !cfg.Auth.Enabled {
		log.Println("Warning: authentication is disabled; every caller is an admin")
	}

	apiKey := ""
	if cfg.Worker.AutoStart {
		apiKey = cfg.Embedding.APIKey
	}
	w := worker.NewWorker(worker.WorkerConfig{
		Jobs:          a.jobs,
		Quotes:        a.catalog.Quotes,
		APIKey:        apiKey,
		Lock:          a.lock,
		Logger:        slog.Default(),
		RetryInterval: cfg.Worker.RetryInterval,
		MaxRestarts:   cfg.Worker.MaxRestarts,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})
	g.Go(func() error {
		if err := w.Start(gctx); err != nil {
			return fmt.Errorf("start worker: %w", err)
		}
		<-gctx.Done()
		w.Stop()
		return nil
	})

	err = g.Wait()
	log.Println("Shutdown complete")
	return err
}

func runToken(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("token")
	role := fs.String("role", string(domain.RoleViewer), "token role: admin or viewer")
	subject := fs.String("subject", "cli", "token subject")
	ttl := fs.Duration("ttl", 0, "token lifetime (defaults to auth.token_ttl)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *ttl == 0 {
		*ttl = cfg.Auth.TokenTTL
	}

	authService := services.NewAuthService(auth.NewAdapter(cfg.Auth.JWTSecret))
	issued, err := authService.IssueToken(ctx, *subject, domain.Role(*role), *ttl)
	if err != nil {
		return err
	}

	fmt.Println(issued.Token)
	fmt.Fprintf(os.Stderr, "role=%s expires=%s\n", issued.Role, issued.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"))
	return nil
}

// runEmbed runs one embedding job and reports progress on stderr.
// The process exits non-zero when the job fails.
func runEmbed(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("embed")
	apiKey := fs.String("api-key", "", "provider API key (defaults to embedding.api_key)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	key := *apiKey
	if key == "" {
		key = cfg.Embedding.APIKey
	}
	if key == "" {
		return fmt.Errorf("%w: no API key (use -api-key or EMBEDDING_API_KEY)", domain.ErrInvalidInput)
	}

	a, err := newApp(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer a.Close()

	updates, cancel := a.jobs.Subscribe()
	defer cancel()

	if !a.jobs.Start(a.catalog.Quotes, key) {
		return errors.New("embedding job did not start")
	}

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return errors.New("job manager closed")
			}
			fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", snap.Progress*100, snap.Message)
			switch snap.Status {
			case domain.JobStatusCompleted:
				fmt.Fprintf(os.Stderr, "embedded %d documents with %s\n", snap.DocumentCount, snap.Model)
				return nil
			case domain.JobStatusFailed:
				return fmt.Errorf("embedding job failed: %s", snap.Error)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// runImport loads the CSV tables and replaces the PostgreSQL catalog with them.
func runImport(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("import")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("%w: database url is required (DATABASE_URL)", domain.ErrInvalidInput)
	}

	source, err := tables.NewCSVSource(tables.CSVConfig{
		FeaturesPath: cfg.Tables.FeaturesPath,
		TagsPath:     cfg.Tables.TagsPath,
		QuotesPath:   cfg.Tables.QuotesPath,
		Schema:       cfg.Tables.Schema,
		Logger:       slog.Default(),
	})
	if err != nil {
		return err
	}
	catalog, err := source.LoadCatalog(ctx)
	if err != nil {
		return err
	}

	db, err := connectPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	skipped, err := db.ImportCatalog(ctx, catalog)
	if err != nil {
		return err
	}

	log.Printf("Imported %d games and %d quote rows (%d rows skipped)",
		len(catalog.Features.Games), len(catalog.Quotes.Rows)-skipped, skipped)
	return nil
}

func connectPostgres(ctx context.Context, cfg config.DatabaseConfig) (*postgres.DB, error) {
	log.Println("Connecting to PostgreSQL...")
	dbConfig := postgres.DefaultConfig(cfg.URL)
	if cfg.MaxOpenConns > 0 {
		dbConfig.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.MaxIdleConns > 0 {
		dbConfig.MaxIdleConns = cfg.MaxIdleConns
	}

	db, err := postgres.Connect(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Initialize schema (idempotent)
	if err := db.InitSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	log.Println("PostgreSQL connected and schema initialized")
	return db, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
