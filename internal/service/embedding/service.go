// Package embedding turns text into search vectors.
//
// The default source asks the chat model itself for a numeric array.
// Whatever the source, a response that cannot be used (upstream error,
// unparseable output, non-finite values, wrong length) is replaced by a
// random vector in [-1, 1] and the result is marked Degraded.
package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/heartmarshall/myenglish-adapter/internal/domain"
	"github.com/heartmarshall/myenglish-adapter/internal/provider"
	"github.com/heartmarshall/myenglish-adapter/internal/sanitize"
)

type completer interface {
	Complete(ctx context.Context, prompt provider.Prompt) (string, error)
}

type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config controls vector shape and how much text is sent upstream.
// MaxTokens is the completion budget for LLM-produced vectors.
type Config struct {
	Dimension   int
	PrefixChars int
	MaxTokens   int
}

// Result is the outcome of one Embed call.
type Result struct {
	Vector   domain.Vector
	Degraded bool
	Reason   string
}

var errWrongShape = errors.New("unexpected embedding shape")

// Service produces embeddings with a random fallback.
type Service struct {
	fetch  func(ctx context.Context, text string) ([]float32, error)
	dim    int
	prefix int
	log    *slog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option customises a Service.
type Option func(*Service)

// WithRandSource fixes the fallback random source.
func WithRandSource(src rand.Source) Option {
	return func(s *Service) { s.rnd = rand.New(src) }
}

// NewLLMService creates a Service that prompts the chat model for vectors.
func NewLLMService(log *slog.Logger, llm completer, cfg Config, opts ...Option) *Service {
	s := newService(log, cfg, opts...)
	s.fetch = func(ctx context.Context, text string) ([]float32, error) {
		raw, err := llm.Complete(ctx, provider.Prompt{
			System:    buildSystemPrompt(s.dim),
			User:      text,
			JSON:      true,
			MaxTokens: cfg.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		return parseVector(raw)
	}
	return s
}

// NewAPIService creates a Service backed by a real embeddings endpoint.
func NewAPIService(log *slog.Logger, api embedder, cfg Config, opts ...Option) *Service {
	s := newService(log, cfg, opts...)
	s.fetch = api.Embed
	return s
}

func newService(log *slog.Logger, cfg Config, opts ...Option) *Service {
	s := &Service{
		dim:    cfg.Dimension,
		prefix: cfg.PrefixChars,
		log:    log.With("service", "embedding"),
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Embed returns a vector for text. It never fails: unusable upstream
// output yields a Degraded fallback.
func (s *Service) Embed(ctx context.Context, text string) Result {
	input := domain.RunePrefix(domain.NormalizeText(text), s.prefix)

	vec, err := s.fetch(ctx, input)
	if err == nil {
		err = s.check(vec)
	}
	if err != nil {
		s.log.WarnContext(ctx, "embedding fallback",
			slog.Int("dimension", s.dim),
			slog.String("reason", err.Error()),
		)
		return Result{Vector: s.Fallback(), Degraded: true, Reason: err.Error()}
	}
	return Result{Vector: vec}
}

// Fallback returns dim values drawn uniformly from [-1, 1].
func (s *Service) Fallback() domain.Vector {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := make(domain.Vector, s.dim)
	for i := range v {
		v[i] = float32(s.rnd.Float64()*2 - 1)
	}
	return v
}

func (s *Service) check(vec []float32) error {
	if len(vec) != s.dim {
		return fmt.Errorf("%w: got %d values, want %d", errWrongShape, len(vec), s.dim)
	}
	for i, x := range vec {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: value %d is not finite", errWrongShape, i)
		}
	}
	return nil
}

func buildSystemPrompt(dim int) string {
	return fmt.Sprintf(`You are an embedding generator.
Represent the semantic meaning of the user's text as a vector of exactly %d floating point numbers between -1 and 1.
Respond in JSON: {"embedding": [<%d numbers>]}`, dim, dim)
}

// parseVector accepts {"embedding":[...]} or a bare array, optionally
// wrapped in a markdown code fence or surrounding prose.
func parseVector(raw string) ([]float32, error) {
	raw = sanitize.StripFence(raw)

	var obj struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err == nil && obj.Embedding != nil {
		return toFloat32(obj.Embedding), nil
	}

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("%w: no numeric array in response", errWrongShape)
	}
	var arr []float64
	if err := json.Unmarshal([]byte(raw[start:end+1]), &arr); err != nil {
		return nil, fmt.Errorf("%w: %v", errWrongShape, err)
	}
	return toFloat32(arr), nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, f := range in {
		out[i] = float32(f)
	}
	return out
}
