// Package anthropic adapts the Anthropic Messages API to the chat
// completion interface used by the services.
package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/heartmarshall/myenglish-adapter/internal/provider"
)

const jsonInstruction = "Respond with a single JSON value only, without markdown fences or commentary."

// Config holds connection settings. BaseURL is optional.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	Timeout    time.Duration
	MaxRetries int
}

// Provider implements chat completion on top of the Messages API.
type Provider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	log       *slog.Logger
}

// NewProvider creates a Provider.
func NewProvider(cfg Config, logger *slog.Logger) *Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &Provider{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		log:       logger.With("adapter", "anthropic"),
	}
}

// Complete sends one user message and returns the concatenated text blocks.
func (p *Provider) Complete(ctx context.Context, prompt provider.Prompt) (string, error) {
	system := prompt.System
	if prompt.JSON {
		system = strings.TrimSpace(system + "\n\n" + jsonInstruction)
	}

	maxTokens := p.maxTokens
	if prompt.MaxTokens > 0 {
		maxTokens = int64(prompt.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	start := time.Now()
	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: messages: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic: messages: empty response")
	}

	p.log.DebugContext(ctx, "messages completion",
		slog.String("model", p.model),
		slog.Int64("input_tokens", msg.Usage.InputTokens),
		slog.Int64("output_tokens", msg.Usage.OutputTokens),
		slog.Duration("duration", time.Since(start)),
	)
	return b.String(), nil
}
