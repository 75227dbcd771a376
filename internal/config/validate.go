package config

import (
	"fmt"
	"net/url"
	"strings"
)

const maxSearchLimit = 20

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.LLM.validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Embedding.validate(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := c.VectorStore.validate(); err != nil {
		return fmt.Errorf("vector_store: %w", err)
	}
	if c.VectorStore.Backend == BackendPGVector && strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required for the %s backend", BackendPGVector)
	}
	if err := c.Ingest.validate(); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must be >= 0 (got %d)", c.RateLimit.RequestsPerMinute)
	}
	return nil
}

func (l *LLMConfig) validate() error {
	switch l.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("provider must be %q or %q (got %q)", ProviderOpenAI, ProviderAnthropic, l.Provider)
	}
	if strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("api_key is required")
	}
	if strings.TrimSpace(l.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if l.Provider == ProviderOpenAI {
		if err := validateURL(l.BaseURL); err != nil {
			return fmt.Errorf("base_url: %w", err)
		}
	}
	if l.Provider == ProviderAnthropic && strings.TrimSpace(l.AnthropicBaseURL) != "" {
		if err := validateURL(l.AnthropicBaseURL); err != nil {
			return fmt.Errorf("anthropic_base_url: %w", err)
		}
	}
	if l.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be > 0 (got %d)", l.MaxTokens)
	}
	if l.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0 (got %d)", l.MaxRetries)
	}
	return nil
}

func (e *EmbeddingConfig) validate() error {
	switch e.Mode {
	case EmbeddingModeLLM:
		if e.MaxTokens <= 0 {
			return fmt.Errorf("max_tokens must be > 0 in %s mode (got %d)", EmbeddingModeLLM, e.MaxTokens)
		}
	case EmbeddingModeAPI:
		if err := validateURL(e.BaseURL); err != nil {
			return fmt.Errorf("base_url: %w", err)
		}
		if strings.TrimSpace(e.Model) == "" {
			return fmt.Errorf("model is required in %s mode", EmbeddingModeAPI)
		}
	default:
		return fmt.Errorf("mode must be %q or %q (got %q)", EmbeddingModeLLM, EmbeddingModeAPI, e.Mode)
	}
	if e.PrefixChars <= 0 {
		return fmt.Errorf("prefix_chars must be > 0 (got %d)", e.PrefixChars)
	}
	return nil
}

func (v *VectorStoreConfig) validate() error {
	switch v.Backend {
	case BackendQdrant:
		if err := validateURL(v.URL); err != nil {
			return fmt.Errorf("url: %w", err)
		}
	case BackendPGVector, BackendMemory:
	default:
		return fmt.Errorf("backend must be one of %s, %s, %s (got %q)", BackendQdrant, BackendPGVector, BackendMemory, v.Backend)
	}
	if strings.TrimSpace(v.Collection) == "" {
		return fmt.Errorf("collection is required")
	}
	if v.Dimension <= 0 {
		return fmt.Errorf("dimension must be > 0 (got %d)", v.Dimension)
	}
	if v.SearchLimit < 1 || v.SearchLimit > maxSearchLimit {
		return fmt.Errorf("search_limit must be between 1 and %d (got %d)", maxSearchLimit, v.SearchLimit)
	}
	return nil
}

func (i *IngestConfig) validate() error {
	if i.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be > 0 (got %d)", i.ChunkSize)
	}
	if i.ChunkOverlap < 0 || i.ChunkOverlap >= i.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size) (got %d)", i.ChunkOverlap)
	}
	if i.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be > 0 (got %d)", i.Concurrency)
	}
	return nil
}

func validateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https (got %q)", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("host is missing in %q", raw)
	}
	return nil
}
