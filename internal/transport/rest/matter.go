package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/matter"
)

// matterService defines the minimal interface needed by MatterHandler.
type matterService interface {
	Create(ctx context.Context, input matter.CreateInput) (*domain.Matter, error)
	List(ctx context.Context) ([]domain.Matter, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Matter, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// MatterHandler serves matter endpoints.
type MatterHandler struct {
	base
	svc matterService
}

// NewMatterHandler creates a MatterHandler.
func NewMatterHandler(svc matterService, logger *slog.Logger) *MatterHandler {
	return &MatterHandler{base: base{log: logger.With("handler", "matter")}, svc: svc}
}

type createMatterRequest struct {
	Title         string   `json:"title"`
	Type          string   `json:"type"`
	Status        string   `json:"status"`
	Priority      string   `json:"priority"`
	Tags          []string `json:"tags"`
	Counterparty  *string  `json:"counterparty"`
	InternalNotes *string  `json:"internalNotes"`
}

// List handles GET /api/matters.
func (h *MatterHandler) List(w http.ResponseWriter, r *http.Request) {
	matters, err := h.svc.List(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(matters, toMatterResponse))
}

// Create handles POST /api/matters.
func (h *MatterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMatterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	m, err := h.svc.Create(r.Context(), matter.CreateInput{
		Title:         req.Title,
		Type:          req.Type,
		Status:        domain.MatterStatus(req.Status),
		Priority:      domain.MatterPriority(req.Priority),
		Tags:          req.Tags,
		Counterparty:  req.Counterparty,
		InternalNotes: req.InternalNotes,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMatterResponse(m))
}

// Get handles GET /api/matters/{id}. Matters the caller cannot see are 404.
func (h *MatterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	m, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, toMatterResponse(m))
}

// Delete handles DELETE /api/matters/{id}.
func (h *MatterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.svc.Remove(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
