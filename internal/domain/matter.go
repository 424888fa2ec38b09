package domain

import (
	"time"

	"github.com/google/uuid"
)

// MatterStatus is the lifecycle state of a matter.
type MatterStatus string

const (
	MatterStatusActive MatterStatus = "active"
	MatterStatusOnHold MatterStatus = "on-hold"
	MatterStatusClosed MatterStatus = "closed"
)

func (s MatterStatus) String() string { return string(s) }

func (s MatterStatus) IsValid() bool {
	switch s {
	case MatterStatusActive, MatterStatusOnHold, MatterStatusClosed:
		return true
	}
	return false
}

// MatterPriority ranks matters for the owner.
type MatterPriority string

const (
	MatterPriorityLow    MatterPriority = "low"
	MatterPriorityMedium MatterPriority = "medium"
	MatterPriorityHigh   MatterPriority = "high"
)

func (p MatterPriority) String() string { return string(p) }

func (p MatterPriority) IsValid() bool {
	switch p {
	case MatterPriorityLow, MatterPriorityMedium, MatterPriorityHigh:
		return true
	}
	return false
}

// Matter is a case or workstream owned by one user.
type Matter struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Title         string
	Type          string
	Status        MatterStatus
	Priority      MatterPriority
	Tags          []string
	Counterparty  *string
	InternalNotes *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
