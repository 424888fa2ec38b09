package matter

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

const (
	maxTitleLength = 200
	maxTypeLength  = 100
	maxTags        = 20
	maxTagLength   = 50
	maxNotesLength = 10_000
)

// CreateInput holds the parameters for creating a matter.
type CreateInput struct {
	Title         string
	Type          string
	Status        domain.MatterStatus
	Priority      domain.MatterPriority
	Tags          []string
	Counterparty  *string
	InternalNotes *string
}

// Validate checks all fields and collects all errors.
func (i CreateInput) Validate() error {
	return domain.FromValidation(validation.Errors{
		"title": validation.Validate(strings.TrimSpace(i.Title),
			validation.Required, validation.RuneLength(1, maxTitleLength)),
		"type": validation.Validate(strings.TrimSpace(i.Type),
			validation.Required, validation.RuneLength(1, maxTypeLength)),
		"status": validation.Validate(i.Status,
			validation.Required,
			validation.In(domain.MatterStatusActive, domain.MatterStatusOnHold, domain.MatterStatusClosed)),
		"priority": validation.Validate(i.Priority,
			validation.Required,
			validation.In(domain.MatterPriorityLow, domain.MatterPriorityMedium, domain.MatterPriorityHigh)),
		"tags": validation.Validate(i.Tags,
			validation.Length(0, maxTags),
			validation.Each(validation.Required, validation.RuneLength(1, maxTagLength))),
		"counterparty": validation.Validate(i.Counterparty,
			validation.NilOrNotEmpty, validation.RuneLength(0, maxTitleLength)),
		"internalNotes": validation.Validate(i.InternalNotes,
			validation.RuneLength(0, maxNotesLength)),
	}.Filter())
}

// normalizeTags trims tags and drops duplicates, keeping first occurrence order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// trimOrNil trims whitespace. Returns nil if result is empty.
func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
