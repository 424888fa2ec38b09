package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/extract"
	"github.com/heartmarshall/matterdesk-backend/internal/service/guard"
	"github.com/heartmarshall/matterdesk-backend/pkg/ctxutil"
)

// ProcessEventAI authorizes the caller against the event and schedules an
// enrichment run. Authorization and validation errors are returned before
// any state change; the outcome of the run itself is only observable through
// the event's status.
func (s *Service) ProcessEventAI(ctx context.Context, input ProcessInput) error {
	userID, err := guard.Caller(ctx)
	if err != nil {
		return err
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if _, _, err := s.guard.Event(ctx, input.EventID); err != nil {
		return err
	}

	attachmentIDs := append([]uuid.UUID(nil), input.AttachmentIDs...)
	input.AttachmentIDs = attachmentIDs

	name := "enrich:" + input.EventID.String()
	if err := s.runner.Go(ctx, name, func(ctx context.Context) error {
		return s.run(ctx, userID, input)
	}); err != nil {
		return fmt.Errorf("enrichment.ProcessEventAI: %w", err)
	}

	s.log.InfoContext(ctx, "enrichment scheduled",
		slog.String("event_id", input.EventID.String()),
		slog.Int("attachments", len(input.AttachmentIDs)))
	return nil
}

// run executes one pipeline pass. Every failure after the processing
// transition becomes a single failed transition carrying the reason.
func (s *Service) run(ctx context.Context, userID uuid.UUID, input ProcessInput) error {
	log := s.log.With(slog.String("event_id", input.EventID.String()))

	// Ownership is re-validated at run time; the event may have changed hands
	// or vanished since scheduling.
	ev, _, err := s.guard.Event(ctx, input.EventID)
	if err != nil {
		return fmt.Errorf("enrichment.run: %w", err)
	}

	if ev.AIStatus.IsTerminal() {
		reset, err := s.events.ResetTerminal(ctx, ev.ID)
		switch {
		case err == nil:
			ev = reset
			s.publish(userID, ev)
		case errors.Is(err, domain.ErrInvalidTransition):
			// A concurrent run got there first; StartRun settles who runs.
			log.DebugContext(ctx, "reset skipped, status changed since read")
		default:
			return fmt.Errorf("enrichment.run: reset: %w", err)
		}
	}

	runID := uuid.New()
	ev, err = s.events.StartRun(ctx, ev.ID, runID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			log.WarnContext(ctx, "enrichment already running, skipped")
		}
		return fmt.Errorf("enrichment.run: start: %w", err)
	}
	s.publish(userID, ev)
	log.InfoContext(ctx, "enrichment started", slog.String("run_id", runID.String()))

	results, err := s.pipeline(ctx, log, userID, ev, input)
	if err != nil {
		s.fail(ctx, log, userID, ev.ID, runID, err)
		return err
	}

	done, err := s.events.CompleteRun(ctx, ev.ID, runID, results)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			log.WarnContext(ctx, "enrichment result discarded, event changed during run")
			return nil
		}
		s.fail(ctx, log, userID, ev.ID, runID, err)
		return err
	}
	s.publish(userID, done)

	log.InfoContext(ctx, "enrichment done",
		slog.Bool("results", results != nil),
		slog.String("run_id", runID.String()))
	return nil
}

// pipeline loads the caller's preferences, merges content with attachment
// segments in submitted order and, when enabled, generates artifacts from
// the merged context.
func (s *Service) pipeline(
	ctx context.Context,
	log *slog.Logger,
	userID uuid.UUID,
	ev *domain.Event,
	input ProcessInput,
) (*domain.AIResults, error) {
	settings, err := s.loadSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	var merged strings.Builder
	merged.WriteString(input.Content)

	opts := extract.Options{AutoOCR: settings.AutoOCR}
	for _, id := range input.AttachmentIDs {
		a, err := s.guard.Attachment(ctx, id)
		if err != nil {
			if guard.Denied(err) {
				// Deleted or foreign attachments are skipped, not fatal.
				log.WarnContext(ctx, "attachment skipped", slog.String("attachment_id", id.String()))
				continue
			}
			return nil, fmt.Errorf("load attachment %s: %w", id, err)
		}
		if a.MatterID != ev.MatterID {
			log.WarnContext(ctx, "attachment from another matter skipped", slog.String("attachment_id", id.String()))
			continue
		}

		segment, err := s.extractor.Segment(ctx, *a, opts)
		if err != nil {
			return nil, fmt.Errorf("extract %s (%s): %w", a.FileName, a.Kind(), err)
		}
		merged.WriteString(segment)
	}

	if !settings.AutoAI {
		log.InfoContext(ctx, "auto ai disabled, completing without artifacts")
		return nil, nil
	}

	results, err := s.generator.Generate(ctx, merged.String())
	if err != nil {
		return nil, fmt.Errorf("generate artifacts: %w", err)
	}
	return results, nil
}

// fail records cause as the run's failure reason. It writes through a
// context detached from the run so an expired run deadline still persists
// the failure.
func (s *Service) fail(ctx context.Context, log *slog.Logger, userID, eventID, runID uuid.UUID, cause error) {
	reason := cause.Error()
	log.ErrorContext(ctx, "enrichment failed",
		slog.String("run_id", runID.String()),
		slog.String("reason", reason))

	writeCtx, cancel := context.WithTimeout(ctxutil.Detach(ctx), failWriteTimeout)
	defer cancel()

	failed, err := s.events.FailRun(writeCtx, eventID, runID, reason)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			log.WarnContext(ctx, "enrichment failure discarded, event changed during run")
			return
		}
		log.ErrorContext(ctx, "record enrichment failure", slog.String("error", err.Error()))
		return
	}
	s.publish(userID, failed)
}

func (s *Service) loadSettings(ctx context.Context, userID uuid.UUID) (domain.UserSettings, error) {
	st, err := s.settings.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultUserSettings(userID), nil
	}
	if err != nil {
		return domain.UserSettings{}, fmt.Errorf("load settings: %w", err)
	}
	return *st, nil
}
