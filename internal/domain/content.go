package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxContentRunes bounds the size of a submitted text.
const MaxContentRunes = 20000

// Submission is one piece of pasted text and the level it should be adapted to.
// It exists only for the duration of a request.
type Submission struct {
	Text  string
	Level Level
}

// ParseSubmission trims text, parses level and collects all field errors.
// Inner spacing is kept as submitted.
func ParseSubmission(text, level string) (Submission, error) {
	var errs []FieldError

	text = strings.TrimSpace(text)
	switch n := utf8.RuneCountInString(text); {
	case n == 0:
		errs = append(errs, FieldError{Field: "content", Message: "required"})
	case n > MaxContentRunes:
		errs = append(errs, FieldError{Field: "content", Message: fmt.Sprintf("max %d characters", MaxContentRunes)})
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		errs = append(errs, FieldError{Field: "level", Message: "must be one of A1, A2, B1, B2, C1, C2"})
	}

	if len(errs) > 0 {
		return Submission{}, NewValidationErrors(errs)
	}
	return Submission{Text: text, Level: lvl}, nil
}

// Vector is an embedding used as a similarity search key.
type Vector []float32

// Passage is one text payload returned by nearest-neighbour search.
type Passage struct {
	ID     string
	Text   string
	Source string
	Score  float64
}

// RetrievedContext is the ordered list of passages found for a submission.
type RetrievedContext struct {
	Passages []Passage
}

// Found reports whether at least one non-empty passage was retrieved.
func (c RetrievedContext) Found() bool {
	return c.Joined() != ""
}

// Texts returns the trimmed non-empty passage texts in result order.
func (c RetrievedContext) Texts() []string {
	parts := make([]string, 0, len(c.Passages))
	for _, p := range c.Passages {
		if t := strings.TrimSpace(p.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return parts
}

// Joined concatenates passage texts separated by a blank line.
func (c RetrievedContext) Joined() string {
	return strings.Join(c.Texts(), "\n\n")
}

// Stage names the step of the simplification pipeline that degraded.
type Stage string

const (
	StageCollection Stage = "collection"
	StageEmbedding  Stage = "embedding"
	StageSearch     Stage = "search"
)

func (s Stage) String() string { return string(s) }

// Degradation records a non-essential step that failed while the request
// was still served.
type Degradation struct {
	Stage  Stage
	Reason string
}
