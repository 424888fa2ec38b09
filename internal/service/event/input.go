package event

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

const (
	MaxContentLength  = 100_000
	maxParticipants   = 50
	maxParticipantLen = 200
)

var eventTypes = []any{
	domain.EventTypeNote, domain.EventTypeCall, domain.EventTypeMeeting, domain.EventTypeTask,
	domain.EventTypeEmail, domain.EventTypeDocSent, domain.EventTypeAudioNote,
}

// CreateInput holds the parameters for logging an event.
type CreateInput struct {
	MatterID     uuid.UUID
	Type         domain.EventType
	Content      string
	Participants []string
}

// Validate checks all fields and collects all errors.
func (i CreateInput) Validate() error {
	return domain.FromValidation(validation.Errors{
		"matterId": validation.Validate(i.MatterID, domain.RequiredID),
		"type":     validation.Validate(i.Type, validation.Required, validation.In(eventTypes...)),
		"content":  validation.Validate(i.Content, validation.RuneLength(0, MaxContentLength)),
		"participants": validation.Validate(i.Participants,
			validation.Length(0, maxParticipants),
			validation.Each(validation.Required, validation.RuneLength(1, maxParticipantLen))),
	}.Filter())
}

// UpdateInput holds the parameters for replacing an event's content.
type UpdateInput struct {
	ID      uuid.UUID
	Content string
}

// Validate checks all fields and collects all errors.
func (i UpdateInput) Validate() error {
	return domain.FromValidation(validation.Errors{
		"id":      validation.Validate(i.ID, domain.RequiredID),
		"content": validation.Validate(i.Content, validation.RuneLength(0, MaxContentLength)),
	}.Filter())
}

func normalizeParticipants(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
