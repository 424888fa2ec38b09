package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/enrichment"
	"github.com/heartmarshall/matterdesk-backend/internal/service/event"
)

// eventService defines the minimal interface needed by EventHandler.
type eventService interface {
	Create(ctx context.Context, input event.CreateInput) (*domain.Event, error)
	ListByMatter(ctx context.Context, matterID uuid.UUID) ([]domain.Event, error)
	Update(ctx context.Context, input event.UpdateInput) (*domain.Event, error)
	Remove(ctx context.Context, id uuid.UUID) error
	MarkEmailSent(ctx context.Context, id uuid.UUID) (*domain.Event, error)
}

// enricher launches background enrichment runs.
type enricher interface {
	ProcessEventAI(ctx context.Context, input enrichment.ProcessInput) error
}

// EventHandler serves event endpoints.
type EventHandler struct {
	base
	svc      eventService
	enricher enricher
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(svc eventService, enricher enricher, logger *slog.Logger) *EventHandler {
	return &EventHandler{base: base{log: logger.With("handler", "event")}, svc: svc, enricher: enricher}
}

type createEventRequest struct {
	Type         string   `json:"type"`
	Content      string   `json:"content"`
	Participants []string `json:"participants"`
}

type updateEventRequest struct {
	Content string `json:"content"`
}

type enrichRequest struct {
	Content       string   `json:"content"`
	AttachmentIDs []string `json:"attachmentIds"`
}

// ListByMatter handles GET /api/matters/{id}/events.
func (h *EventHandler) ListByMatter(w http.ResponseWriter, r *http.Request) {
	matterID, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	events, err := h.svc.ListByMatter(r.Context(), matterID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(events, toEventResponse))
}

// Create handles POST /api/matters/{id}/events.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	matterID, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req createEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	e, err := h.svc.Create(r.Context(), event.CreateInput{
		MatterID:     matterID,
		Type:         domain.EventType(req.Type),
		Content:      req.Content,
		Participants: req.Participants,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(e))
}

// Update handles PATCH /api/events/{id}.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req updateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	e, err := h.svc.Update(r.Context(), event.UpdateInput{ID: id, Content: req.Content})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(e))
}

// Delete handles DELETE /api/events/{id}.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// MarkEmailSent handles POST /api/events/{id}/email-sent.
func (h *EventHandler) MarkEmailSent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	e, err := h.svc.MarkEmailSent(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(e))
}

// Enrich handles POST /api/events/{id}/enrich. The run happens in the
// background; progress arrives on the status stream.
func (h *EventHandler) Enrich(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req enrichRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	attachmentIDs, err := parseIDs("attachmentIds", req.AttachmentIDs)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	err = h.enricher.ProcessEventAI(r.Context(), enrichment.ProcessInput{
		EventID:       id,
		Content:       req.Content,
		AttachmentIDs: attachmentIDs,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
