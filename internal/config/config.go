package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	LLM         LLMConfig         `yaml:"llm"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Database    DatabaseConfig    `yaml:"database"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Output      OutputConfig      `yaml:"output"`
	Log         LogConfig         `yaml:"log"`
	CORS        CORSConfig        `yaml:"cors"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
}

// Supported LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Supported embedding modes.
const (
	EmbeddingModeLLM = "llm"
	EmbeddingModeAPI = "api"
)

// Supported vector store backends.
const (
	BackendQdrant   = "qdrant"
	BackendPGVector = "pgvector"
	BackendMemory   = "memory"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"120s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"SERVER_MAX_BODY_BYTES"   env-default:"1048576"`
}

// LLMConfig holds chat-completion provider settings.
// BaseURL is only used by the openai provider; any OpenAI-compatible
// endpoint works (Groq by default). AnthropicBaseURL overrides the
// Anthropic API endpoint and is usually empty. Model must name a model of
// the selected provider.
type LLMConfig struct {
	Provider         string        `yaml:"provider"           env:"LLM_PROVIDER"       env-default:"openai"`
	APIKey           string        `yaml:"api_key"            env:"LLM_API_KEY"        env-required:"true"`
	BaseURL          string        `yaml:"base_url"           env:"LLM_BASE_URL"       env-default:"https://api.groq.com/openai/v1"`
	AnthropicBaseURL string        `yaml:"anthropic_base_url" env:"ANTHROPIC_BASE_URL"`
	Model            string        `yaml:"model"              env:"LLM_MODEL"          env-default:"llama-3.3-70b-versatile"`
	MaxTokens        int           `yaml:"max_tokens"         env:"LLM_MAX_TOKENS"     env-default:"2048"`
	Timeout          time.Duration `yaml:"timeout"            env:"LLM_TIMEOUT"        env-default:"60s"`
	MaxRetries       int           `yaml:"max_retries"        env:"LLM_MAX_RETRIES"    env-default:"0"`
}

// EmbeddingConfig controls how search vectors are obtained.
// Mode "llm" asks the chat model for a numeric array, with MaxTokens as the
// completion budget (a 1536-element array needs several thousand tokens);
// mode "api" calls an OpenAI-compatible /embeddings endpoint.
type EmbeddingConfig struct {
	Mode        string `yaml:"mode"         env:"EMBEDDING_MODE"         env-default:"llm"`
	Model       string `yaml:"model"        env:"EMBEDDING_MODEL"        env-default:"text-embedding-3-small"`
	BaseURL     string `yaml:"base_url"     env:"EMBEDDING_BASE_URL"     env-default:"https://api.openai.com/v1"`
	APIKey      string `yaml:"api_key"      env:"EMBEDDING_API_KEY"`
	PrefixChars int    `yaml:"prefix_chars" env:"EMBEDDING_PREFIX_CHARS" env-default:"1000"`
	MaxTokens   int    `yaml:"max_tokens"   env:"EMBEDDING_MAX_TOKENS"   env-default:"16384"`
}

// VectorStoreConfig holds vector database settings.
type VectorStoreConfig struct {
	Backend     string        `yaml:"backend"      env:"VECTOR_STORE_BACKEND" env-default:"qdrant"`
	URL         string        `yaml:"url"          env:"QDRANT_URL"`
	APIKey      string        `yaml:"api_key"      env:"QDRANT_API_KEY"`
	Timeout     time.Duration `yaml:"timeout"      env:"VECTOR_STORE_TIMEOUT" env-default:"10s"`
	Collection  string        `yaml:"collection"   env:"VECTOR_COLLECTION"    env-default:"educational_content"`
	Dimension   int           `yaml:"dimension"    env:"VECTOR_DIMENSION"     env-default:"1536"`
	SearchLimit int           `yaml:"search_limit" env:"VECTOR_SEARCH_LIMIT"  env-default:"3"`
}

// DatabaseConfig holds PostgreSQL connection settings for the pgvector backend.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"true"`
}

// IngestConfig holds knowledge-base ingestion settings.
type IngestConfig struct {
	ChunkSize    int `yaml:"chunk_size"    env:"INGEST_CHUNK_SIZE"    env-default:"500"`
	ChunkOverlap int `yaml:"chunk_overlap" env:"INGEST_CHUNK_OVERLAP" env-default:"50"`
	Concurrency  int `yaml:"concurrency"   env:"INGEST_CONCURRENCY"   env-default:"4"`
}

// OutputConfig controls post-processing of generated HTML.
type OutputConfig struct {
	SanitizeHTML bool `yaml:"sanitize_html" env:"OUTPUT_SANITIZE_HTML" env-default:"true"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// RateLimitConfig holds per-IP request limits for the /api routes.
// Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM"     env-default:"30"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"    env:"RATE_LIMIT_CLEANUP" env-default:"5m"`
}

// EmbeddingAPIKey returns the key for the embeddings endpoint,
// falling back to the LLM key.
func (c Config) EmbeddingAPIKey() string {
	if k := strings.TrimSpace(c.Embedding.APIKey); k != "" {
		return k
	}
	return c.LLM.APIKey
}
