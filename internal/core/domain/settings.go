package domain

// AIProvider identifies the embedding provider
type AIProvider string

const (
	AIProviderGemini AIProvider = "gemini"
	AIProviderOpenAI AIProvider = "openai"
)

// EmbeddingSettings configures the embedding service
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider" yaml:"provider"`
	Model    string     `json:"model" yaml:"model"`
	APIKey   string     `json:"-" yaml:"api_key"` // Never serialize to JSON
	BaseURL  string     `json:"base_url,omitempty" yaml:"base_url"`
}

// IsConfigured returns true if embedding settings are properly configured
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	return e.APIKey != ""
}

// WithAPIKey returns a copy of the settings carrying the given credential.
func (e EmbeddingSettings) WithAPIKey(key string) EmbeddingSettings {
	e.APIKey = key
	return e
}

// DefaultModel returns the embedding model used when none is configured
func (p AIProvider) DefaultModel() string {
	switch p {
	case AIProviderGemini:
		return "text-embedding-004"
	case AIProviderOpenAI:
		return "text-embedding-3-small"
	default:
		return ""
	}
}

// IsValid returns true if this is a known provider
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOpenAI:
		return true
	default:
		return false
	}
}
