package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the delivery state of an outbox item.
type OutboxStatus string

const (
	OutboxStatusQueued OutboxStatus = "queued"
	OutboxStatusSent   OutboxStatus = "sent"
	OutboxStatusFailed OutboxStatus = "failed"
)

func (s OutboxStatus) String() string { return string(s) }

func (s OutboxStatus) IsValid() bool {
	switch s {
	case OutboxStatusQueued, OutboxStatusSent, OutboxStatusFailed:
		return true
	}
	return false
}

// OutboxItem is a queued or delivered email.
type OutboxItem struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	MatterID          uuid.UUID
	To                string
	Subject           string
	Body              string
	Status            OutboxStatus
	Error             *string
	ProviderMessageID *string
	SentAt            *time.Time
	CreatedAt         time.Time
}
