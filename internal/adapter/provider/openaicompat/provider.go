// Package openaicompat talks to any OpenAI-compatible REST API
// (Groq, OpenAI, local gateways) for chat completions and embeddings.
package openaicompat

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/heartmarshall/myenglish-adapter/internal/adapter/httpclient"
	"github.com/heartmarshall/myenglish-adapter/internal/provider"
)

// Config holds connection settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxTokens  int
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// Provider implements chat completion and embeddings.
type Provider struct {
	baseURL   string
	model     string
	maxTokens int
	client    *httpclient.Client
	log       *slog.Logger
}

// NewProvider creates a Provider.
func NewProvider(cfg Config, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client: httpclient.New(httpclient.Options{
			Name:       "openaicompat",
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			Backoff:    cfg.Backoff,
			Headers:    map[string]string{"Authorization": bearer(cfg.APIKey)},
		}, logger),
		log: logger.With("adapter", "openaicompat"),
	}
}

func bearer(key string) string {
	if key == "" {
		return ""
	}
	return "Bearer " + key
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a chat completion and returns the first choice's text.
func (p *Provider) Complete(ctx context.Context, prompt provider.Prompt) (string, error) {
	req := chatRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
	}
	if prompt.MaxTokens > 0 {
		req.MaxTokens = prompt.MaxTokens
	}
	if prompt.System != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: prompt.System})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: prompt.User})
	if prompt.JSON {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	start := time.Now()
	var resp chatResponse
	if err := p.client.DoJSON(ctx, http.MethodPost, p.baseURL+"/chat/completions", req, &resp); err != nil {
		return "", fmt.Errorf("openaicompat: chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openaicompat: chat: empty choices")
	}

	text := resp.Choices[0].Message.Content
	p.log.DebugContext(ctx, "chat completion",
		slog.String("model", p.model),
		slog.Bool("json", prompt.JSON),
		slog.Int("chars", len(text)),
		slog.Duration("duration", time.Since(start)),
	)
	return text, nil
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector of text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embeddingResponse
	req := embeddingRequest{Model: p.model, Input: text}
	if err := p.client.DoJSON(ctx, http.MethodPost, p.baseURL+"/embeddings", req, &resp); err != nil {
		return nil, fmt.Errorf("openaicompat: embeddings: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("openaicompat: embeddings: empty data")
	}
	return resp.Data[0].Embedding, nil
}
