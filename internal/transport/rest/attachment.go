package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/attachment"
)

// multipartMemory is the part of an upload kept in memory before spilling
// to a temp file.
const multipartMemory = 8 << 20

// attachmentService defines the minimal interface needed by AttachmentHandler.
type attachmentService interface {
	Upload(ctx context.Context, input attachment.UploadInput) (*domain.Attachment, error)
	ListByMatter(ctx context.Context, matterID uuid.UUID) ([]domain.Attachment, error)
	Open(ctx context.Context, id uuid.UUID) (*domain.Attachment, io.ReadCloser, error)
}

// AttachmentHandler serves upload and download endpoints.
type AttachmentHandler struct {
	base
	svc       attachmentService
	maxUpload int64
}

// NewAttachmentHandler creates an AttachmentHandler accepting uploads up to
// maxUpload bytes.
func NewAttachmentHandler(svc attachmentService, maxUpload int64, logger *slog.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		base:      base{log: logger.With("handler", "attachment")},
		svc:       svc,
		maxUpload: maxUpload,
	}
}

// ListByMatter handles GET /api/matters/{id}/attachments.
func (h *AttachmentHandler) ListByMatter(w http.ResponseWriter, r *http.Request) {
	matterID, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	items, err := h.svc.ListByMatter(r.Context(), matterID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, toAttachmentResponse))
}

// Upload handles multipart POST /api/matters/{id}/attachments with a "file"
// part and an optional "eventId" field.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	matterID, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	// Leave room for the multipart framing around the file.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		h.handleError(w, r, domain.NewValidationError("file", "invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		h.handleError(w, r, domain.NewValidationError("file", "required"))
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	var eventID *uuid.UUID
	if raw := r.FormValue("eventId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.handleError(w, r, domain.NewValidationError("eventId", "must be a valid UUID"))
			return
		}
		eventID = &id
	}

	fileType := header.Header.Get("Content-Type")
	if fileType == "" {
		fileType = "application/octet-stream"
	}

	a, err := h.svc.Upload(r.Context(), attachment.UploadInput{
		MatterID: matterID,
		EventID:  eventID,
		FileName: header.Filename,
		FileType: fileType,
		Body:     file,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttachmentResponse(a))
}

// Content handles GET /api/attachments/{id}/content.
func (h *AttachmentHandler) Content(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	a, body, err := h.svc.Open(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", a.FileType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.FileName}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if a.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(a.SizeBytes, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		h.log.WarnContext(r.Context(), "attachment download interrupted",
			slog.String("attachment_id", id.String()),
			slog.String("error", err.Error()))
	}
}
