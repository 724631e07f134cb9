package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gamefit/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gamefit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, domain.AIProviderGemini, cfg.Embedding.Provider)
	assert.Equal(t, "text-embedding-004", cfg.Embedding.Model)
	assert.Equal(t, 50, cfg.Embedding.BatchSize)
	assert.Equal(t, 3, cfg.Embedding.MaxBatchAttempts)
	assert.Equal(t, "csv", cfg.Tables.Source)
	assert.Equal(t, "none", cfg.Lock.Backend)
	assert.Equal(t, 15*time.Second, cfg.Recommend.QueryTimeout)
	assert.Len(t, cfg.Tables.Schema.Features.Dimensions, 10)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
embedding:
  provider: openai
  batch_size: 20
  retry_backoff: 250ms
tables:
  source: postgres
database:
  url: postgres://localhost/gamefit
lock:
  backend: postgres
  ttl: 2m
worker:
  retry_interval: 30s
  max_restarts: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset fields keep defaults")
	assert.Equal(t, domain.AIProviderOpenAI, cfg.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 20, cfg.Embedding.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Embedding.RetryBackoff)
	assert.Equal(t, "postgres", cfg.Tables.Source)
	assert.Equal(t, 2*time.Minute, cfg.Lock.TTL)
	assert.Equal(t, 30*time.Second, cfg.Worker.RetryInterval)
	assert.Equal(t, 5, cfg.Worker.MaxRestarts)
}

func TestLoad_CustomSchema(t *testing.T) {
	path := writeConfig(t, `
tables:
  schema:
    features:
      id_column: id
      name_column: name
      dimensions:
        - {code: ART, label: Art, column: art}
    quotes:
      id_column: id
      columns:
        - {column: art_quote, dimension: ART}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Tables.Schema.Features.Dimensions, 1)
	assert.Equal(t, "ART", cfg.Tables.Schema.Features.Dimensions[0].Code)
	assert.Equal(t, "art_quote", cfg.Tables.Schema.Quotes.Columns[0].Column)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("LOCK_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("QUERY_TIMEOUT", "3s")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "gm-key", cfg.Embedding.APIKey)
	assert.Equal(t, "redis", cfg.Lock.Backend)
	assert.Equal(t, 3*time.Second, cfg.Recommend.QueryTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestLoad_ExplicitKeyWins(t *testing.T) {
	t.Setenv("EMBEDDING_API_KEY", "explicit")
	t.Setenv("GEMINI_API_KEY", "fallback")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Embedding.APIKey)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "cohere" }, domain.ErrInvalidProvider},
		{"auth without secret", func(c *Config) { c.Auth.JWTSecret = "" }, domain.ErrInvalidInput},
		{"unknown source", func(c *Config) { c.Tables.Source = "excel" }, domain.ErrInvalidInput},
		{"postgres without url", func(c *Config) { c.Tables.Source = "postgres" }, domain.ErrInvalidInput},
		{"redis lock without url", func(c *Config) { c.Lock.Backend = "redis" }, domain.ErrInvalidInput},
		{"unknown lock", func(c *Config) { c.Lock.Backend = "etcd" }, domain.ErrInvalidInput},
		{"bad schema", func(c *Config) { c.Tables.Schema.Features.IDColumn = "" }, domain.ErrInvalidInput},
		{"template without verb", func(c *Config) { c.Recommend.QueryTemplate = "best games" }, domain.ErrInvalidInput},
		{"template with two verbs", func(c *Config) { c.Recommend.QueryTemplate = "%s and %s" }, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestEmbeddingSettings(t *testing.T) {
	cfg := Default()
	cfg.Embedding.APIKey = "secret"
	cfg.Embedding.Model = "m"

	settings := cfg.EmbeddingSettings()
	assert.Equal(t, domain.AIProviderGemini, settings.Provider)
	assert.Equal(t, "m", settings.Model)
	assert.Empty(t, settings.APIKey)
}

func TestAddr(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8123
	assert.Equal(t, "127.0.0.1:8123", cfg.Addr())
}
