package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/gamefit/internal/core/domain"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// AuthConfig configures bearer token authentication.
type AuthConfig struct {
	Enabled   bool          `yaml:"enabled"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// EmbeddingConfig configures the embedding provider and the job that uses it.
type EmbeddingConfig struct {
	Provider domain.AIProvider `yaml:"provider"`
	Model    string            `yaml:"model"`
	APIKey   string            `yaml:"api_key"`
	BaseURL  string            `yaml:"base_url"`

	BatchSize        int           `yaml:"batch_size"`
	MaxBatchAttempts int           `yaml:"max_batch_attempts"`
	RetryBackoff     time.Duration `yaml:"retry_backoff"`

	RequestsPerSecond  float64       `yaml:"requests_per_second"`
	Burst              int           `yaml:"burst"`
	BreakerFailures    uint32        `yaml:"breaker_failures"`
	BreakerOpenTimeout time.Duration `yaml:"breaker_open_timeout"`
}

// TablesConfig selects where the catalog is read from.
type TablesConfig struct {
	Source       string             `yaml:"source"` // csv or postgres
	FeaturesPath string             `yaml:"features_path"`
	TagsPath     string             `yaml:"tags_path"`
	QuotesPath   string             `yaml:"quotes_path"`
	Schema       domain.TableSchema `yaml:"schema"`
}

// DatabaseConfig configures PostgreSQL.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig configures Redis.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// LockConfig selects the cross-instance job lock.
type LockConfig struct {
	Backend string        `yaml:"backend"` // none, redis or postgres
	TTL     time.Duration `yaml:"ttl"`
}

// RecommendConfig tunes the recommender.
type RecommendConfig struct {
	QueryTemplate string        `yaml:"query_template"`
	QueryTimeout  time.Duration `yaml:"query_timeout"`
	SliderMin     int           `yaml:"slider_min"`
	SliderMax     int           `yaml:"slider_max"`
}

// WorkerConfig tunes the warmup worker.
type WorkerConfig struct {
	AutoStart     bool          `yaml:"auto_start"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	MaxRestarts   int           `yaml:"max_restarts"`
}

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Tables    TablesConfig    `yaml:"tables"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Lock      LockConfig      `yaml:"lock"`
	Recommend RecommendConfig `yaml:"recommend"`
	Worker    WorkerConfig    `yaml:"worker"`
}

// Default returns the configuration used when no file or env is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Auth: AuthConfig{
			Enabled:   true,
			JWTSecret: "development-secret-change-in-production",
			TokenTTL:  24 * time.Hour,
		},
		Embedding: EmbeddingConfig{
			Provider:           domain.AIProviderGemini,
			BatchSize:          50,
			MaxBatchAttempts:   3,
			RetryBackoff:       time.Second,
			RequestsPerSecond:  5,
			Burst:              1,
			BreakerFailures:    5,
			BreakerOpenTimeout: 30 * time.Second,
		},
		Tables: TablesConfig{
			Source:       "csv",
			FeaturesPath: "data/GAME_DIM_D1_D10.csv",
			TagsPath:     "data/TAG_STEAM_GAME.csv",
			QuotesPath:   "data/GAME_DIM_CLASSIFIED_END.csv",
			Schema:       domain.DefaultTableSchema(),
		},
		Database: DatabaseConfig{MaxOpenConns: 10, MaxIdleConns: 2},
		Lock:     LockConfig{Backend: "none", TTL: 5 * time.Minute},
		Recommend: RecommendConfig{
			QueryTemplate: domain.DefaultQueryTemplate,
			QueryTimeout:  15 * time.Second,
			SliderMin:     1,
			SliderMax:     5,
		},
		Worker: WorkerConfig{AutoStart: true, MaxRestarts: 3},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path or a missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}

	cfg.Auth.Enabled = getEnvBool("AUTH_ENABLED", cfg.Auth.Enabled)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTL = getEnvDuration("TOKEN_TTL", cfg.Auth.TokenTTL)

	cfg.Embedding.Provider = domain.AIProvider(getEnv("EMBEDDING_PROVIDER", string(cfg.Embedding.Provider)))
	cfg.Embedding.Model = getEnv("EMBEDDING_MODEL", cfg.Embedding.Model)
	cfg.Embedding.BaseURL = getEnv("EMBEDDING_BASE_URL", cfg.Embedding.BaseURL)
	cfg.Embedding.APIKey = getEnv("EMBEDDING_API_KEY", cfg.Embedding.APIKey)
	if cfg.Embedding.APIKey == "" {
		switch cfg.Embedding.Provider {
		case domain.AIProviderGemini:
			cfg.Embedding.APIKey = getEnv("GEMINI_API_KEY", "")
		case domain.AIProviderOpenAI:
			cfg.Embedding.APIKey = getEnv("OPENAI_API_KEY", "")
		}
	}
	cfg.Embedding.BatchSize = getEnvInt("EMBEDDING_BATCH_SIZE", cfg.Embedding.BatchSize)
	cfg.Embedding.MaxBatchAttempts = getEnvInt("EMBEDDING_MAX_BATCH_ATTEMPTS", cfg.Embedding.MaxBatchAttempts)
	cfg.Embedding.RetryBackoff = getEnvDuration("EMBEDDING_RETRY_BACKOFF", cfg.Embedding.RetryBackoff)

	cfg.Tables.Source = getEnv("TABLE_SOURCE", cfg.Tables.Source)
	cfg.Tables.FeaturesPath = getEnv("FEATURES_PATH", cfg.Tables.FeaturesPath)
	cfg.Tables.TagsPath = getEnv("TAGS_PATH", cfg.Tables.TagsPath)
	cfg.Tables.QuotesPath = getEnv("QUOTES_PATH", cfg.Tables.QuotesPath)

	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Redis.URL = getEnv("REDIS_URL", cfg.Redis.URL)
	cfg.Lock.Backend = getEnv("LOCK_BACKEND", cfg.Lock.Backend)

	cfg.Recommend.QueryTimeout = getEnvDuration("QUERY_TIMEOUT", cfg.Recommend.QueryTimeout)

	cfg.Worker.AutoStart = getEnvBool("WORKER_AUTO_START", cfg.Worker.AutoStart)
	cfg.Worker.RetryInterval = getEnvDuration("WORKER_RETRY_INTERVAL", cfg.Worker.RetryInterval)
	cfg.Worker.MaxRestarts = getEnvInt("WORKER_MAX_RESTARTS", cfg.Worker.MaxRestarts)
}

// applyDefaults fills fields a partial YAML file may have zeroed.
func applyDefaults(cfg *Config) {
	def := Default()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = def.Auth.TokenTTL
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = cfg.Embedding.Provider.DefaultModel()
	}
	if cfg.Embedding.BatchSize <= 0 {
		cfg.Embedding.BatchSize = def.Embedding.BatchSize
	}
	if cfg.Embedding.MaxBatchAttempts <= 0 {
		cfg.Embedding.MaxBatchAttempts = def.Embedding.MaxBatchAttempts
	}
	if cfg.Embedding.RetryBackoff <= 0 {
		cfg.Embedding.RetryBackoff = def.Embedding.RetryBackoff
	}
	if len(cfg.Tables.Schema.Features.Dimensions) == 0 {
		cfg.Tables.Schema = def.Tables.Schema
	}
	if cfg.Lock.Backend == "" {
		cfg.Lock.Backend = "none"
	}
	if cfg.Lock.TTL <= 0 {
		cfg.Lock.TTL = def.Lock.TTL
	}
	if cfg.Recommend.QueryTemplate == "" {
		cfg.Recommend.QueryTemplate = def.Recommend.QueryTemplate
	}
	if cfg.Recommend.QueryTimeout <= 0 {
		cfg.Recommend.QueryTimeout = def.Recommend.QueryTimeout
	}
	if cfg.Recommend.SliderMax <= cfg.Recommend.SliderMin {
		cfg.Recommend.SliderMin, cfg.Recommend.SliderMax = def.Recommend.SliderMin, def.Recommend.SliderMax
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = def.Database.MaxOpenConns
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = def.Database.MaxIdleConns
	}
}

// Validate rejects combinations the service cannot run with.
func (c *Config) Validate() error {
	if !c.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidProvider, c.Embedding.Provider)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: jwt_secret is required when auth is enabled", domain.ErrInvalidInput)
	}

	switch c.Tables.Source {
	case "csv":
		if c.Tables.FeaturesPath == "" || c.Tables.QuotesPath == "" {
			return fmt.Errorf("%w: csv source needs features_path and quotes_path", domain.ErrInvalidInput)
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("%w: postgres source needs database url", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown table source %q", domain.ErrInvalidInput, c.Tables.Source)
	}

	switch c.Lock.Backend {
	case "none":
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("%w: redis lock needs redis url", domain.ErrInvalidInput)
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("%w: postgres lock needs database url", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown lock backend %q", domain.ErrInvalidInput, c.Lock.Backend)
	}

	if err := domain.ValidateQueryTemplate(c.Recommend.QueryTemplate); err != nil {
		return err
	}

	return c.Tables.Schema.Validate()
}

// EmbeddingSettings returns the provider settings without a credential.
func (c *Config) EmbeddingSettings() domain.EmbeddingSettings {
	return domain.EmbeddingSettings{
		Provider: c.Embedding.Provider,
		Model:    c.Embedding.Model,
		BaseURL:  c.Embedding.BaseURL,
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
