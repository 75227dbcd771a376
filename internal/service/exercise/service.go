// Package exercise generates practice exercises for a submitted text.
package exercise

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/heartmarshall/myenglish-adapter/internal/domain"
	"github.com/heartmarshall/myenglish-adapter/internal/provider"
)

type completer interface {
	Complete(ctx context.Context, prompt provider.Prompt) (string, error)
}

type sanitizer interface {
	HTML(s string) string
}

// Result holds the generated exercises as HTML.
type Result struct {
	HTML string
}

// Service provides exercise generation.
type Service struct {
	llm      completer
	sanitize sanitizer
	log      *slog.Logger
}

// NewService creates a new exercise Service.
func NewService(log *slog.Logger, llm completer, sanitize sanitizer) *Service {
	return &Service{
		llm:      llm,
		sanitize: sanitize,
		log:      log.With("service", "exercise"),
	}
}

// Generate asks the model for vocabulary, comprehension and writing
// exercises. Any upstream failure is returned as ErrUpstream.
func (s *Service) Generate(ctx context.Context, sub domain.Submission) (Result, error) {
	start := time.Now()

	out, err := s.llm.Complete(ctx, provider.Prompt{
		System: SystemPrompt(sub.Level),
		User:   sub.Text,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "exercise generation failed",
			slog.String("level", sub.Level.String()),
			slog.String("error", err.Error()),
		)
		return Result{}, domain.NewUpstreamError("llm", err)
	}

	html := s.sanitize.HTML(out)
	if strings.TrimSpace(html) == "" {
		return Result{}, domain.NewUpstreamError("llm", fmt.Errorf("empty response"))
	}

	s.log.InfoContext(ctx, "exercises generated",
		slog.String("level", sub.Level.String()),
		slog.Int("input_chars", len(sub.Text)),
		slog.Int("output_chars", len(html)),
		slog.Duration("duration", time.Since(start)),
	)
	return Result{HTML: html}, nil
}

// SystemPrompt is the fixed instruction for a level.
func SystemPrompt(level domain.Level) string {
	return fmt.Sprintf(`Create 3 practice exercises for ESL students at %s CEFR level based on this content. Include:
1. Vocabulary practice
2. Comprehension questions
3. A writing prompt
Format your response in HTML with exercise types as <h3> headings.`, level)
}
