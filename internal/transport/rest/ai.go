package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/artifact"
)

// artifactService defines the minimal interface needed by AIHandler.
type artifactService interface {
	Generate(ctx context.Context, content string) (*domain.AIResults, error)
	DraftFromActionItem(ctx context.Context, actionItem string) (*domain.EmailDraft, error)
}

type statsProvider interface {
	Stats(ctx context.Context) (domain.EnrichmentStats, error)
}

// AIHandler serves ad-hoc artifact generation and enrichment statistics.
type AIHandler struct {
	base
	artifacts artifactService
	stats     statsProvider
}

// NewAIHandler creates an AIHandler.
func NewAIHandler(artifacts artifactService, stats statsProvider, logger *slog.Logger) *AIHandler {
	return &AIHandler{base: base{log: logger.With("handler", "ai")}, artifacts: artifacts, stats: stats}
}

type artifactsRequest struct {
	Content string `json:"content"`
}

type draftRequest struct {
	ActionItem string `json:"actionItem"`
}

// Artifacts handles POST /api/ai/artifacts.
func (h *AIHandler) Artifacts(w http.ResponseWriter, r *http.Request) {
	var req artifactsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := artifact.ValidateContent(req.Content); err != nil {
		h.handleError(w, r, err)
		return
	}

	results, err := h.artifacts.Generate(r.Context(), req.Content)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAIResultsResponse(results))
}

// Draft handles POST /api/ai/draft.
func (h *AIHandler) Draft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	draft, err := h.artifacts.DraftFromActionItem(r.Context(), req.ActionItem)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(draft))
}

// Stats handles GET /api/enrichment/stats.
func (h *AIHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsResponse(stats))
}
