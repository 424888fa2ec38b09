package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/matterdesk-backend/internal/adapter/provider/gmail"
	"github.com/heartmarshall/matterdesk-backend/internal/adapter/provider/google"
	"github.com/heartmarshall/matterdesk-backend/internal/adapter/provider/openai"
	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/artifact"
	"github.com/heartmarshall/matterdesk-backend/pkg/background"
)

// base carries the handler logger and the shared error mapping.
type base struct {
	log *slog.Logger
}

func (b base) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr    *domain.ValidationError
		apiErr  *openai.APIError
		sendErr *gmail.SendError
	)

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Fields: verr.Fields()})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrMailboxDisconnected):
		writeError(w, http.StatusConflict, domain.ErrMailboxDisconnected.Error())
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	case errors.As(err, &apiErr), errors.As(err, &sendErr),
		errors.Is(err, artifact.ErrMalformedOutput), errors.Is(err, google.ErrUnavailable):
		b.log.WarnContext(r.Context(), "upstream error", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "upstream service error")
	case errors.Is(err, background.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "shutting down")
	default:
		b.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
