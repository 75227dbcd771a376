package provider

import "fmt"

// Prompt is a single chat-completion request.
// JSON asks the provider for a JSON-only answer when it supports that mode.
// MaxTokens overrides the provider's completion budget when positive.
type Prompt struct {
	System    string
	User      string
	JSON      bool
	MaxTokens int
}

// Distance is the similarity metric of a vector collection.
type Distance string

const (
	DistanceCosine Distance = "Cosine"
	DistanceDot    Distance = "Dot"
)

// CollectionSpec describes a vector collection to create.
type CollectionSpec struct {
	Name      string
	Dimension int
	Distance  Distance
}

// Point is a vector with its payload, as stored in a collection.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// SearchHit is a single nearest-neighbour result.
type SearchHit struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// Text returns the "text" payload field, or "" if absent.
func (h SearchHit) Text() string {
	return payloadString(h.Payload, "text")
}

// Source returns the "source" payload field, or "" if absent.
func (h SearchHit) Source() string {
	return payloadString(h.Payload, "source")
}

func payloadString(p map[string]any, key string) string {
	if p == nil {
		return ""
	}
	s, _ := p[key].(string)
	return s
}

// StatusError is returned by HTTP adapters for non-2xx responses.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return e.Status >= 500 || e.Status == 429
}
