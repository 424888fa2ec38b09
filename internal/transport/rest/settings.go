package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/user"
)

// settingsService defines the minimal interface needed by SettingsHandler.
type settingsService interface {
	GetSettings(ctx context.Context) (*domain.UserSettings, error)
	UpdateSettings(ctx context.Context, input user.UpdateSettingsInput) (*domain.UserSettings, error)
	GoogleAuthURL(ctx context.Context) (string, error)
	ConnectGoogle(ctx context.Context, input user.ConnectGoogleInput) error
	DisconnectGoogle(ctx context.Context) error
}

// SettingsHandler serves settings and mailbox connection endpoints.
type SettingsHandler struct {
	base
	svc settingsService
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(svc settingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{base: base{log: logger.With("handler", "settings")}, svc: svc}
}

type updateSettingsRequest struct {
	WorkEmail string `json:"workEmail"`
	AutoAI    bool   `json:"autoAI"`
	AutoOCR   bool   `json:"autoOCR"`
}

type googleCallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.GetSettings(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

// Update handles PUT /api/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	s, err := h.svc.UpdateSettings(r.Context(), user.UpdateSettingsInput{
		WorkEmail: req.WorkEmail,
		AutoAI:    req.AutoAI,
		AutoOCR:   req.AutoOCR,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

// GoogleAuthURL handles GET /api/settings/google/auth-url.
func (h *SettingsHandler) GoogleAuthURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.GoogleAuthURL(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// GoogleCallback handles POST /api/settings/google/callback.
func (h *SettingsHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	var req googleCallbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	err := h.svc.ConnectGoogle(r.Context(), user.ConnectGoogleInput{Code: req.Code, State: req.State})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.Get(w, r)
}

// DisconnectGoogle handles DELETE /api/settings/google.
func (h *SettingsHandler) DisconnectGoogle(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DisconnectGoogle(r.Context()); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
