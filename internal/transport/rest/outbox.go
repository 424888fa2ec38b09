package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/outbox"
)

// outboxService defines the minimal interface needed by OutboxHandler.
type outboxService interface {
	Create(ctx context.Context, input outbox.CreateInput) (*domain.OutboxItem, error)
	List(ctx context.Context) ([]domain.OutboxItem, error)
	Send(ctx context.Context, id uuid.UUID) (*domain.OutboxItem, error)
}

// OutboxHandler serves outbox endpoints.
type OutboxHandler struct {
	base
	svc outboxService
}

// NewOutboxHandler creates an OutboxHandler.
func NewOutboxHandler(svc outboxService, logger *slog.Logger) *OutboxHandler {
	return &OutboxHandler{base: base{log: logger.With("handler", "outbox")}, svc: svc}
}

type createOutboxRequest struct {
	MatterID string `json:"matterId"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// List handles GET /api/outbox.
func (h *OutboxHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, toOutboxResponse))
}

// Create handles POST /api/outbox.
func (h *OutboxHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOutboxRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	matterID, err := uuid.Parse(req.MatterID)
	if err != nil {
		h.handleError(w, r, domain.NewValidationError("matterId", "must be a valid UUID"))
		return
	}

	it, err := h.svc.Create(r.Context(), outbox.CreateInput{
		MatterID: matterID,
		To:       req.To,
		Subject:  req.Subject,
		Body:     req.Body,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOutboxResponse(it))
}

// Send handles POST /api/outbox/{id}/send. A rejected delivery is reported
// in the returned item's status, not as an error response.
func (h *OutboxHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	it, err := h.svc.Send(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOutboxResponse(it))
}
