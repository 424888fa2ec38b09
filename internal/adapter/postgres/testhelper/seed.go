package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// SeedMatter creates an active matter owned by userID.
func SeedMatter(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) domain.Matter {
	t.Helper()

	ts := now()
	m := domain.Matter{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     "Matter " + uniqueSuffix(),
		Type:      "contract",
		Status:    domain.MatterStatusActive,
		Priority:  domain.MatterPriorityMedium,
		Tags:      []string{"test"},
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO matters (id, user_id, title, type, status, priority, tags, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.UserID, m.Title, m.Type, string(m.Status), string(m.Priority), m.Tags, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedMatter: %v", err)
	}
	return m
}

// SeedEvent creates a pending note event under matter.
func SeedEvent(t *testing.T, pool *pgxpool.Pool, matter domain.Matter, content string) domain.Event {
	t.Helper()

	ts := now()
	e := domain.Event{
		ID:           uuid.New(),
		UserID:       matter.UserID,
		MatterID:     matter.ID,
		Type:         domain.EventTypeNote,
		Content:      content,
		Participants: []string{},
		AIStatus:     domain.AIStatusPending,
		Timestamp:    ts,
		UpdatedAt:    ts,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO events (id, user_id, matter_id, type, content, participants, ai_status, occurred_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.UserID, e.MatterID, string(e.Type), e.Content, e.Participants, string(e.AIStatus), e.Timestamp, e.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedEvent: %v", err)
	}
	return e
}

// SeedAttachment creates attachment metadata under matter, optionally linked to eventID.
func SeedAttachment(t *testing.T, pool *pgxpool.Pool, matter domain.Matter, eventID *uuid.UUID, fileType string) domain.Attachment {
	t.Helper()

	a := domain.Attachment{
		ID:         uuid.New(),
		UserID:     matter.UserID,
		MatterID:   matter.ID,
		EventID:    eventID,
		StorageKey: uuid.NewString(),
		FileName:   "file-" + uniqueSuffix(),
		FileType:   fileType,
		SizeBytes:  42,
		CreatedAt:  now(),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO attachments (id, user_id, matter_id, event_id, storage_key, file_name, file_type, size_bytes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.UserID, a.MatterID, a.EventID, a.StorageKey, a.FileName, a.FileType, a.SizeBytes, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedAttachment: %v", err)
	}
	return a
}

// SeedOutboxItem creates a queued outbox item under matter.
func SeedOutboxItem(t *testing.T, pool *pgxpool.Pool, matter domain.Matter) domain.OutboxItem {
	t.Helper()

	it := domain.OutboxItem{
		ID:        uuid.New(),
		UserID:    matter.UserID,
		MatterID:  matter.ID,
		To:        "client-" + uniqueSuffix() + "@example.com",
		Subject:   "Follow-up",
		Body:      "<p>Hello</p>",
		Status:    domain.OutboxStatusQueued,
		CreatedAt: now(),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO outbox_items (id, user_id, matter_id, to_address, subject, body, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		it.ID, it.UserID, it.MatterID, it.To, it.Subject, it.Body, string(it.Status), it.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedOutboxItem: %v", err)
	}
	return it
}
