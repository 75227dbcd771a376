package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/myenglish-adapter/internal/adapter/postgres"
	"github.com/heartmarshall/myenglish-adapter/internal/adapter/postgres/chunk"
	"github.com/heartmarshall/myenglish-adapter/internal/adapter/provider/anthropic"
	"github.com/heartmarshall/myenglish-adapter/internal/adapter/provider/openaicompat"
	"github.com/heartmarshall/myenglish-adapter/internal/adapter/vectorstore/memory"
	"github.com/heartmarshall/myenglish-adapter/internal/adapter/vectorstore/qdrant"
	"github.com/heartmarshall/myenglish-adapter/internal/config"
	"github.com/heartmarshall/myenglish-adapter/internal/provider"
	"github.com/heartmarshall/myenglish-adapter/internal/sanitize"
	"github.com/heartmarshall/myenglish-adapter/internal/service/embedding"
	"github.com/heartmarshall/myenglish-adapter/internal/service/exercise"
	"github.com/heartmarshall/myenglish-adapter/internal/service/knowledge"
	"github.com/heartmarshall/myenglish-adapter/internal/service/retrieval"
	"github.com/heartmarshall/myenglish-adapter/internal/service/simplify"
)

const upstreamBackoff = 500 * time.Millisecond

type completer interface {
	Complete(ctx context.Context, prompt provider.Prompt) (string, error)
}

// vectorStore is the capability set every backend provides.
type vectorStore interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, spec provider.CollectionSpec) error
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]provider.SearchHit, error)
	Upsert(ctx context.Context, collection string, points []provider.Point) error
	Ping(ctx context.Context) error
}

type sanitizer interface {
	HTML(s string) string
}

// Services holds the wired application services.
type Services struct {
	Exercise  *exercise.Service
	Simplify  *simplify.Service
	Knowledge *knowledge.Service
	Store     vectorStore

	closers []func()
}

// Close releases backend resources.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// NewServices builds adapters and services from cfg.
func NewServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	svcs := &Services{}

	store, closeStore, err := newVectorStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		svcs.closers = append(svcs.closers, closeStore)
	}

	return wireServices(svcs, cfg, newLLM(cfg.LLM, logger), store, logger), nil
}

// wireServices builds the service graph on top of ready adapters.
func wireServices(svcs *Services, cfg *config.Config, llm completer, store vectorStore, logger *slog.Logger) *Services {
	emb := newEmbedding(cfg, llm, logger)
	ret := retrieval.NewService(logger, store, retrieval.Config{
		Collection:  cfg.VectorStore.Collection,
		Dimension:   cfg.VectorStore.Dimension,
		SearchLimit: cfg.VectorStore.SearchLimit,
	})
	html := newSanitizer(cfg.Output)

	svcs.Store = store
	svcs.Exercise = exercise.NewService(logger, llm, html)
	svcs.Simplify = simplify.NewService(logger, llm, emb, ret, html)
	svcs.Knowledge = knowledge.NewService(logger, emb, ret, store, knowledge.Config{
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
		Concurrency:  cfg.Ingest.Concurrency,
	})
	return svcs
}

func newLLM(cfg config.LLMConfig, logger *slog.Logger) completer {
	if cfg.Provider == config.ProviderAnthropic {
		return anthropic.NewProvider(anthropic.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.AnthropicBaseURL,
			Model:      cfg.Model,
			MaxTokens:  cfg.MaxTokens,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		}, logger)
	}
	return openaicompat.NewProvider(openaicompat.Config{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		MaxTokens:  cfg.MaxTokens,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		Backoff:    upstreamBackoff,
	}, logger)
}

func newEmbedding(cfg *config.Config, llm completer, logger *slog.Logger) *embedding.Service {
	ecfg := embedding.Config{
		Dimension:   cfg.VectorStore.Dimension,
		PrefixChars: cfg.Embedding.PrefixChars,
		MaxTokens:   cfg.Embedding.MaxTokens,
	}
	if cfg.Embedding.Mode == config.EmbeddingModeAPI {
		api := openaicompat.NewProvider(openaicompat.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			APIKey:     cfg.EmbeddingAPIKey(),
			Model:      cfg.Embedding.Model,
			Timeout:    cfg.LLM.Timeout,
			MaxRetries: cfg.LLM.MaxRetries,
			Backoff:    upstreamBackoff,
		}, logger)
		return embedding.NewAPIService(logger, api, ecfg)
	}
	return embedding.NewLLMService(logger, llm, ecfg)
}

func newSanitizer(cfg config.OutputConfig) sanitizer {
	if cfg.SanitizeHTML {
		return sanitize.New()
	}
	return sanitize.Passthrough{}
}

func newVectorStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (vectorStore, func(), error) {
	switch cfg.VectorStore.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory vector store; the knowledge base is lost on restart")
		return memory.NewStore(), nil, nil

	case config.BackendPGVector:
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, cfg.Database.DSN, logger); err != nil {
				return nil, nil, fmt.Errorf("migrate database: %w", err)
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return chunk.New(pool), pool.Close, nil

	default:
		return qdrant.NewStore(qdrant.Config{
			URL:        cfg.VectorStore.URL,
			APIKey:     cfg.VectorStore.APIKey,
			Timeout:    cfg.VectorStore.Timeout,
			MaxRetries: 2,
			Backoff:    upstreamBackoff,
		}, logger), nil, nil
	}
}
