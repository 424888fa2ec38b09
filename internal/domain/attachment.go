package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AttachmentKind groups MIME types by the extractor that handles them.
type AttachmentKind string

const (
	AttachmentKindAudio AttachmentKind = "audio"
	AttachmentKindImage AttachmentKind = "image"
	AttachmentKindPDF   AttachmentKind = "pdf"
	AttachmentKindOther AttachmentKind = "other"
)

// KindOf classifies a MIME type by prefix.
func KindOf(mimeType string) AttachmentKind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mt, "audio/"):
		return AttachmentKindAudio
	case strings.HasPrefix(mt, "image/"):
		return AttachmentKindImage
	case strings.HasPrefix(mt, "application/pdf"):
		return AttachmentKindPDF
	}
	return AttachmentKindOther
}

// Attachment is a stored binary linked to a matter and optionally an event.
type Attachment struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	MatterID   uuid.UUID
	EventID    *uuid.UUID
	StorageKey string
	FileName   string
	FileType   string
	SizeBytes  int64
	CreatedAt  time.Time
}

// Kind returns the extractor kind for the attachment's MIME type.
func (a Attachment) Kind() AttachmentKind { return KindOf(a.FileType) }
