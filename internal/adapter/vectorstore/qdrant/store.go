// Package qdrant implements the vector store on the Qdrant REST API.
package qdrant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heartmarshall/myenglish-adapter/internal/adapter/httpclient"
	"github.com/heartmarshall/myenglish-adapter/internal/provider"
)

// Config holds connection settings.
type Config struct {
	URL        string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// Store is a Qdrant-backed vector store.
type Store struct {
	baseURL string
	client  *httpclient.Client
	log     *slog.Logger
}

// NewStore creates a Store.
func NewStore(cfg Config, logger *slog.Logger) *Store {
	return &Store{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		client: httpclient.New(httpclient.Options{
			Name:       "qdrant",
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			Backoff:    cfg.Backoff,
			Headers:    map[string]string{"api-key": cfg.APIKey},
		}, logger),
		log: logger.With("adapter", "qdrant"),
	}
}

func (s *Store) collectionURL(name string) string {
	return s.baseURL + "/collections/" + url.PathEscape(name)
}

// CollectionExists reports whether the collection exists.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	err := s.client.DoJSON(ctx, http.MethodGet, s.collectionURL(name), nil, nil)
	if err == nil {
		return true, nil
	}
	var se *provider.StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return false, nil
	}
	return false, fmt.Errorf("qdrant: get collection %s: %w", name, err)
}

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type createCollectionRequest struct {
	Vectors vectorParams `json:"vectors"`
}

// CreateCollection creates the collection. A concurrent create
// that already won (409) is not an error.
func (s *Store) CreateCollection(ctx context.Context, spec provider.CollectionSpec) error {
	req := createCollectionRequest{Vectors: vectorParams{Size: spec.Dimension, Distance: string(spec.Distance)}}
	err := s.client.DoJSON(ctx, http.MethodPut, s.collectionURL(spec.Name), req, nil)
	if err == nil {
		s.log.InfoContext(ctx, "collection created",
			slog.String("collection", spec.Name),
			slog.Int("dimension", spec.Dimension),
		)
		return nil
	}
	var se *provider.StatusError
	if errors.As(err, &se) && se.Status == http.StatusConflict {
		return nil
	}
	return fmt.Errorf("qdrant: create collection %s: %w", spec.Name, err)
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type scoredPoint struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

type searchResponse struct {
	Result []scoredPoint `json:"result"`
}

// Search returns up to limit nearest points with payloads.
func (s *Store) Search(ctx context.Context, collection string, vector []float32, limit int) ([]provider.SearchHit, error) {
	req := searchRequest{Vector: vector, Limit: limit, WithPayload: true}
	var resp searchResponse
	if err := s.client.DoJSON(ctx, http.MethodPost, s.collectionURL(collection)+"/points/search", req, &resp); err != nil {
		return nil, fmt.Errorf("qdrant: search %s: %w", collection, err)
	}

	hits := make([]provider.SearchHit, 0, len(resp.Result))
	for _, p := range resp.Result {
		hits = append(hits, provider.SearchHit{ID: formatID(p.ID), Score: p.Score, Payload: p.Payload})
	}
	return hits, nil
}

type pointStruct struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

type upsertRequest struct {
	Points []pointStruct `json:"points"`
}

// Upsert writes points and waits until they are indexed.
func (s *Store) Upsert(ctx context.Context, collection string, points []provider.Point) error {
	if len(points) == 0 {
		return nil
	}
	req := upsertRequest{Points: make([]pointStruct, 0, len(points))}
	for _, p := range points {
		req.Points = append(req.Points, pointStruct{ID: p.ID, Vector: p.Vector, Payload: p.Payload})
	}
	if err := s.client.DoJSON(ctx, http.MethodPut, s.collectionURL(collection)+"/points?wait=true", req, nil); err != nil {
		return fmt.Errorf("qdrant: upsert %s: %w", collection, err)
	}
	return nil
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.DoJSON(ctx, http.MethodGet, s.baseURL+"/healthz", nil, nil); err != nil {
		return fmt.Errorf("qdrant: ping: %w", err)
	}
	return nil
}

// formatID renders Qdrant ids, which are either unsigned integers or UUIDs.
// Integer ids are kept as their JSON literal so no precision is lost.
func formatID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return string(raw)
}
