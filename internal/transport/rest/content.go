package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/heartmarshall/myenglish-adapter/internal/domain"
	"github.com/heartmarshall/myenglish-adapter/internal/service/exercise"
	"github.com/heartmarshall/myenglish-adapter/internal/service/knowledge"
	"github.com/heartmarshall/myenglish-adapter/internal/service/simplify"
)

type exerciseGenerator interface {
	Generate(ctx context.Context, sub domain.Submission) (exercise.Result, error)
}

type simplifier interface {
	Simplify(ctx context.Context, sub domain.Submission) (simplify.Outcome, error)
}

type searcher interface {
	Search(ctx context.Context, query string, limit int) (knowledge.SearchResult, error)
}

// ContentHandler serves the /api content routes.
type ContentHandler struct {
	exercises    exerciseGenerator
	simplify     simplifier
	search       searcher
	maxBodyBytes int64
	log          *slog.Logger
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(exercises exerciseGenerator, simplify simplifier, search searcher, maxBodyBytes int64, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		exercises:    exercises,
		simplify:     simplify,
		search:       search,
		maxBodyBytes: maxBodyBytes,
		log:          logger.With("handler", "content"),
	}
}

type contentRequest struct {
	Content string `json:"content"`
	Level   string `json:"level"`
}

type exercisesResponse struct {
	Success   bool   `json:"success"`
	Exercises string `json:"exercises"`
}

type simplifyResponse struct {
	Success           bool      `json:"success"`
	SimplifiedContent string    `json:"simplifiedContent"`
	Debug             debugInfo `json:"debug"`
}

type debugInfo struct {
	ContextFound bool     `json:"contextFound"`
	Hint         string   `json:"hint"`
	Degraded     []string `json:"degraded,omitempty"`
}

type searchResponse struct {
	Success  bool           `json:"success"`
	Results  []searchResult `json:"results"`
	Degraded bool           `json:"degraded,omitempty"`
}

type searchResult struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// GenerateExercises handles POST /api/generate-exercises.
func (h *ContentHandler) GenerateExercises(w http.ResponseWriter, r *http.Request) {
	sub, err := h.submission(w, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	res, err := h.exercises.Generate(r.Context(), sub)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, exercisesResponse{Success: true, Exercises: res.HTML})
}

// SimplifyContent handles POST /api/simplify-content.
func (h *ContentHandler) SimplifyContent(w http.ResponseWriter, r *http.Request) {
	sub, err := h.submission(w, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out, err := h.simplify.Simplify(r.Context(), sub)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var degraded []string
	for _, d := range out.Degradations {
		degraded = append(degraded, d.Stage.String())
	}
	writeJSON(w, http.StatusOK, simplifyResponse{
		Success:           true,
		SimplifiedContent: out.HTML,
		Debug: debugInfo{
			ContextFound: out.ContextFound,
			Hint:         out.Hint,
			Degraded:     degraded,
		},
	})
}

// Search handles GET /api/search?query=&limit=.
func (h *ContentHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			handleError(h.log, w, r, domain.NewValidationError("limit", "must be an integer"))
			return
		}
		limit = n
	}

	res, err := h.search.Search(r.Context(), q.Get("query"), limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	results := make([]searchResult, 0, len(res.Passages))
	for _, p := range res.Passages {
		results = append(results, searchResult{Text: p.Text, Source: p.Source, Score: p.Score})
	}
	writeJSON(w, http.StatusOK, searchResponse{Success: true, Results: results, Degraded: res.Degraded})
}

func (h *ContentHandler) submission(w http.ResponseWriter, r *http.Request) (domain.Submission, error) {
	var req contentRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		return domain.Submission{}, err
	}
	return domain.ParseSubmission(req.Content, req.Level)
}
