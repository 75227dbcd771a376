// Package httpclient is the JSON-over-HTTP transport shared by the
// LLM, embedding and Qdrant adapters.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/heartmarshall/myenglish-adapter/internal/provider"
)

const (
	maxResponseBytes = 8 << 20
	maxErrorBody     = 512
)

// Options configures a Client.
type Options struct {
	Name       string
	Timeout    time.Duration
	MaxRetries int
	// Backoff is the first Fibonacci step between attempts.
	Backoff time.Duration
	Headers map[string]string
}

// Client sends JSON requests and retries on 5xx, 429 and network errors.
type Client struct {
	http       *http.Client
	log        *slog.Logger
	name       string
	maxRetries uint64
	backoff    time.Duration
	headers    map[string]string
}

// New creates a Client.
func New(opts Options, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Client{
		http:       &http.Client{Timeout: opts.Timeout},
		log:        logger.With("adapter", opts.Name),
		name:       opts.Name,
		maxRetries: uint64(opts.MaxRetries),
		backoff:    opts.Backoff,
		headers:    opts.Headers,
	}
}

// DoJSON sends body (marshalled as JSON unless nil) and decodes a 2xx
// response into out (skipped when out is nil). Non-2xx responses are
// returned as *provider.StatusError.
func (c *Client) DoJSON(ctx context.Context, method, url string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", c.name, err)
		}
		payload = b
	}

	attempt := 0
	b := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(c.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		respBody, err := c.do(ctx, method, url, payload)
		if err == nil {
			if out == nil || len(respBody) == 0 {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("%s: decode response: %w", c.name, err)
			}
			return nil
		}

		if ctx.Err() != nil {
			return err
		}
		var se *provider.StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return err
		}

		c.log.WarnContext(ctx, c.name+" retry",
			slog.String("method", method),
			slog.Int("attempt", attempt),
			slog.String("reason", err.Error()),
		)
		return retry.RetryableError(err)
	})
	return err
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.name, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", c.name, err)
	}

	c.log.DebugContext(ctx, c.name+" response",
		slog.String("method", method),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(respBody)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(respBody)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &provider.StatusError{Status: resp.StatusCode, Body: msg}
	}
	return respBody, nil
}
