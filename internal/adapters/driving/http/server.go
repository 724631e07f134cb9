package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/custodia-labs/gamefit/internal/adapters/driving/http/docs"
	"github.com/custodia-labs/gamefit/internal/core/domain"
	"github.com/custodia-labs/gamefit/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	version    string

	// Services
	authService driving.AuthService
	jobs        driving.EmbeddingJobService
	recommender driving.RecommendService
	quotes      *domain.QuoteTable

	// Infrastructure health checks, keyed by name (postgres, redis)
	checks map[string]Pinger

	authEnabled bool
	corsOrigins []string
	upgrader    websocket.Upgrader
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	Version     string
	AuthEnabled bool
	CORSOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:        "0.0.0.0",
		Port:        8080,
		Version:     "dev",
		AuthEnabled: true,
	}
}

// Dependencies are the services the server exposes.
type Dependencies struct {
	Auth        driving.AuthService
	Jobs        driving.EmbeddingJobService
	Recommender driving.RecommendService
	Quotes      *domain.QuoteTable
	Checks      map[string]Pinger // optional
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies) *Server {
	s := &Server{
		router:      http.NewServeMux(),
		version:     cfg.Version,
		authService: deps.Auth,
		jobs:        deps.Jobs,
		recommender: deps.Recommender,
		quotes:      deps.Quotes,
		checks:      deps.Checks,
		authEnabled: cfg.AuthEnabled,
		corsOrigins: cfg.CORSOrigins,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      s.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}

	s.setupRoutes()

	s.handler = NewRecoveryMiddleware().Handler(
		NewLoggingMiddleware().Handler(
			NewMetricsMiddleware().Handler(
				NewCORSMiddleware(cfg.CORSOrigins).Handler(s.router))))

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:     s.handler,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService, s.authEnabled)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.Handle("GET /metrics", promhttp.Handler())
	s.router.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Catalog
	s.router.Handle("GET /api/v1/dimensions",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListDimensions)))

	// Embedding job (admin-only for mutations)
	s.router.Handle("GET /api/v1/embeddings/job",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetJob)))
	s.router.Handle("POST /api/v1/embeddings/job",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleStartJob))))
	s.router.Handle("POST /api/v1/embeddings/job/reset",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleResetJob))))
	s.router.Handle("GET /api/v1/embeddings/job/stream",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleJobStream)))

	// Recommendations
	s.router.Handle("POST /api/v1/recommendations",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleRecommend)))
	s.router.Handle("GET /api/v1/games/{id}/evidence",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetEvidence)))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
