// Package extract turns attachments into labeled text segments that are
// appended to an event's content before artifact generation.
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

// Placeholders returned when the AI backend has no credential.
const (
	AudioUnavailable = "[Trascrizione non disponibile: API Key mancante]"
	ImageUnavailable = "[OCR non disponibile: API Key mancante]"
)

// ocrInstruction asks the vision model for a verbatim transcription.
const ocrInstruction = "Trascrivi fedelmente tutto il testo presente in questa immagine. " +
	"Se ci sono tabelle o elenchi, mantieni la struttura. " +
	"Rispondi solo con il testo estratto in italiano."

// Segment labels. Each takes the attachment's file name.
const (
	audioLabel       = "\n\n[TRASCRIZIONE AUDIO (%s)]: %s"
	imageLabel       = "\n\n[TESTO ESTRATTO DA IMMAGINE (%s)]: %s"
	imageSkippedNote = "\n\n[IMMAGINE ALLEGATA (%s)]: OCR disattivato nelle impostazioni"
	pdfNote          = "\n\n[ALLEGATO PDF]: %s (Analisi testuale diretta in arrivo)"
)

type aiClient interface {
	Configured() bool
	Transcribe(ctx context.Context, audio []byte) (string, error)
	ReadImageText(ctx context.Context, image []byte, mimeType, instruction string) (string, error)
}

type blobReader interface {
	Read(ctx context.Context, key string) ([]byte, error)
}

// Options carries the per-user switches that affect extraction.
type Options struct {
	AutoOCR bool
}

// Service dispatches an attachment to the extractor for its MIME type.
type Service struct {
	ai    aiClient
	blobs blobReader
	log   *slog.Logger
}

// NewService creates a new extract service.
func NewService(log *slog.Logger, ai aiClient, blobs blobReader) *Service {
	return &Service{
		ai:    ai,
		blobs: blobs,
		log:   log.With("service", "extract"),
	}
}

// Segment returns the labeled text for a. Attachments of an unsupported
// kind produce an empty segment. Upstream failures are returned, not
// swallowed; a missing credential is not a failure.
func (s *Service) Segment(ctx context.Context, a domain.Attachment, opts Options) (string, error) {
	kind := a.Kind()
	log := s.log.With(
		slog.String("attachment_id", a.ID.String()),
		slog.String("kind", string(kind)),
	)

	switch kind {
	case domain.AttachmentKindAudio:
		text, err := s.transcribe(ctx, a)
		if err != nil {
			log.WarnContext(ctx, "audio extraction failed", slog.String("error", err.Error()))
			return "", err
		}
		log.InfoContext(ctx, "audio extracted", slog.Int("chars", len(text)))
		return fmt.Sprintf(audioLabel, a.FileName, text), nil

	case domain.AttachmentKindImage:
		if !opts.AutoOCR {
			log.InfoContext(ctx, "image ocr disabled by user")
			return fmt.Sprintf(imageSkippedNote, a.FileName), nil
		}
		text, err := s.readImage(ctx, a)
		if err != nil {
			log.WarnContext(ctx, "image extraction failed", slog.String("error", err.Error()))
			return "", err
		}
		log.InfoContext(ctx, "image extracted", slog.Int("chars", len(text)))
		return fmt.Sprintf(imageLabel, a.FileName, text), nil

	case domain.AttachmentKindPDF:
		// Text extraction for PDFs is deferred; only the presence is recorded.
		return fmt.Sprintf(pdfNote, a.FileName), nil
	}

	log.DebugContext(ctx, "attachment kind not extracted")
	return "", nil
}

func (s *Service) transcribe(ctx context.Context, a domain.Attachment) (string, error) {
	if !s.ai.Configured() {
		s.log.WarnContext(ctx, "ai key missing, skipping transcription")
		return AudioUnavailable, nil
	}
	data, err := s.blobs.Read(ctx, a.StorageKey)
	if err != nil {
		return "", fmt.Errorf("extract.transcribe: read blob: %w", err)
	}
	text, err := s.ai.Transcribe(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extract.transcribe: %w", err)
	}
	return text, nil
}

func (s *Service) readImage(ctx context.Context, a domain.Attachment) (string, error) {
	if !s.ai.Configured() {
		s.log.WarnContext(ctx, "ai key missing, skipping ocr")
		return ImageUnavailable, nil
	}
	data, err := s.blobs.Read(ctx, a.StorageKey)
	if err != nil {
		return "", fmt.Errorf("extract.readImage: read blob: %w", err)
	}
	text, err := s.ai.ReadImageText(ctx, data, a.FileType, ocrInstruction)
	if err != nil {
		return "", fmt.Errorf("extract.readImage: %w", err)
	}
	return text, nil
}
