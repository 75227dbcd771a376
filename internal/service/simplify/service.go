// Package simplify rewrites a text for a CEFR level, grounding the model
// with passages retrieved from the knowledge base.
//
// Collection provisioning, embedding and search are best effort: their
// failures are recorded as degradations and the request continues without
// context. Only the final generation can fail the request.
package simplify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/heartmarshall/myenglish-adapter/internal/domain"
	"github.com/heartmarshall/myenglish-adapter/internal/provider"
	"github.com/heartmarshall/myenglish-adapter/internal/service/embedding"
)

type completer interface {
	Complete(ctx context.Context, prompt provider.Prompt) (string, error)
}

type embedder interface {
	Embed(ctx context.Context, text string) embedding.Result
}

type retriever interface {
	EnsureCollection(ctx context.Context) error
	Search(ctx context.Context, vec domain.Vector, limit int) (domain.RetrievedContext, error)
}

type sanitizer interface {
	HTML(s string) string
}

const noContextHint = "No relevant context found"

// Outcome is the result of one simplification.
type Outcome struct {
	HTML         string
	ContextFound bool
	Hint         string
	Degradations []domain.Degradation
}

// Service provides retrieval-augmented simplification.
type Service struct {
	llm      completer
	embed    embedder
	retrieve retriever
	sanitize sanitizer
	log      *slog.Logger
}

// NewService creates a new simplify Service.
func NewService(log *slog.Logger, llm completer, embed embedder, retrieve retriever, sanitize sanitizer) *Service {
	return &Service{
		llm:      llm,
		embed:    embed,
		retrieve: retrieve,
		sanitize: sanitize,
		log:      log.With("service", "simplify"),
	}
}

// Simplify adapts sub.Text to sub.Level.
func (s *Service) Simplify(ctx context.Context, sub domain.Submission) (Outcome, error) {
	start := time.Now()
	var out Outcome

	degrade := func(stage domain.Stage, err string) {
		out.Degradations = append(out.Degradations, domain.Degradation{Stage: stage, Reason: err})
		s.log.WarnContext(ctx, "simplify degraded",
			slog.String("stage", stage.String()),
			slog.String("reason", err),
		)
	}

	if err := s.retrieve.EnsureCollection(ctx); err != nil {
		degrade(domain.StageCollection, err.Error())
	}

	emb := s.embed.Embed(ctx, sub.Text)
	if emb.Degraded {
		degrade(domain.StageEmbedding, emb.Reason)
	}

	// Search runs even with a fallback vector.
	rc, err := s.retrieve.Search(ctx, emb.Vector, 0)
	if err != nil {
		degrade(domain.StageSearch, err.Error())
		rc = domain.RetrievedContext{}
	}

	texts := rc.Texts()
	out.ContextFound = len(texts) > 0
	out.Hint = hint(len(texts))

	raw, err := s.llm.Complete(ctx, provider.Prompt{
		System: SystemPrompt(sub.Level, rc.Joined()),
		User:   sub.Text,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "simplification failed",
			slog.String("level", sub.Level.String()),
			slog.String("error", err.Error()),
		)
		return Outcome{}, domain.NewUpstreamError("llm", err)
	}

	out.HTML = s.sanitize.HTML(raw)
	if strings.TrimSpace(out.HTML) == "" {
		return Outcome{}, domain.NewUpstreamError("llm", fmt.Errorf("empty response"))
	}

	s.log.InfoContext(ctx, "content simplified",
		slog.String("level", sub.Level.String()),
		slog.Bool("context_found", out.ContextFound),
		slog.Int("passages", len(texts)),
		slog.Int("degradations", len(out.Degradations)),
		slog.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// SystemPrompt builds the adapter instruction, appending retrieved context
// when there is any.
func SystemPrompt(level domain.Level, supplement string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an educational content adapter for ESL students at %s CEFR level.
Simplify the text while preserving all key information.
Use vocabulary and sentence structures appropriate for the target level.
Format your response with HTML: Important terms should be wrapped in <strong> tags.
Difficult concepts should include simple explanations in parentheses.
Use <p> tags for paragraphs.`, level)

	if supplement != "" {
		b.WriteString("\n\nSupplementary material to consult:\n\n")
		b.WriteString(supplement)
	}
	return b.String()
}

func hint(n int) string {
	if n == 0 {
		return noContextHint
	}
	return fmt.Sprintf("Found %d relevant passage(s) in the knowledge base", n)
}
