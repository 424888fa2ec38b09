package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the kind of activity logged against a matter.
type EventType string

const (
	EventTypeNote      EventType = "note"
	EventTypeCall      EventType = "call"
	EventTypeMeeting   EventType = "meeting"
	EventTypeTask      EventType = "task"
	EventTypeEmail     EventType = "email"
	EventTypeDocSent   EventType = "doc_sent"
	EventTypeAudioNote EventType = "audio_note"
)

func (t EventType) String() string { return string(t) }

func (t EventType) IsValid() bool {
	switch t {
	case EventTypeNote, EventTypeCall, EventTypeMeeting, EventTypeTask,
		EventTypeEmail, EventTypeDocSent, EventTypeAudioNote:
		return true
	}
	return false
}

// Event is one logged activity within a matter.
type Event struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	MatterID     uuid.UUID
	Type         EventType
	Content      string
	Participants []string
	AIStatus     AIStatus
	AIResults    *AIResults
	AIError      *string
	EmailSent    bool
	Timestamp    time.Time
	UpdatedAt    time.Time
}
