package rest

import (
	"time"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

type matterResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	Tags          []string  `json:"tags"`
	Counterparty  *string   `json:"counterparty,omitempty"`
	InternalNotes *string   `json:"internalNotes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toMatterResponse(m *domain.Matter) matterResponse {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return matterResponse{
		ID:            m.ID.String(),
		Title:         m.Title,
		Type:          m.Type,
		Status:        m.Status.String(),
		Priority:      m.Priority.String(),
		Tags:          tags,
		Counterparty:  m.Counterparty,
		InternalNotes: m.InternalNotes,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type emailDraftResponse struct {
	Subject string  `json:"subject"`
	Body    string  `json:"body"`
	To      *string `json:"to,omitempty"`
}

func toDraftResponse(d *domain.EmailDraft) *emailDraftResponse {
	if d == nil {
		return nil
	}
	return &emailDraftResponse{Subject: d.Subject, Body: d.Body, To: d.To}
}

type aiResultsResponse struct {
	Summary     *string             `json:"summary,omitempty"`
	Minutes     *string             `json:"minutes,omitempty"`
	ActionItems []string            `json:"actionItems"`
	EmailDraft  *emailDraftResponse `json:"emailDraft,omitempty"`
}

func toAIResultsResponse(r *domain.AIResults) *aiResultsResponse {
	if r == nil {
		return nil
	}
	items := r.ActionItems
	if items == nil {
		items = []string{}
	}
	return &aiResultsResponse{
		Summary:     r.Summary,
		Minutes:     r.Minutes,
		ActionItems: items,
		EmailDraft:  toDraftResponse(r.EmailDraft),
	}
}

type eventResponse struct {
	ID           string             `json:"id"`
	MatterID     string             `json:"matterId"`
	Type         string             `json:"type"`
	Content      string             `json:"content"`
	Participants []string           `json:"participants"`
	AIStatus     string             `json:"aiStatus"`
	AIResults    *aiResultsResponse `json:"aiResults,omitempty"`
	AIError      *string            `json:"aiError,omitempty"`
	EmailSent    bool               `json:"emailSent"`
	Timestamp    time.Time          `json:"timestamp"`
}

func toEventResponse(e *domain.Event) eventResponse {
	participants := e.Participants
	if participants == nil {
		participants = []string{}
	}
	return eventResponse{
		ID:           e.ID.String(),
		MatterID:     e.MatterID.String(),
		Type:         e.Type.String(),
		Content:      e.Content,
		Participants: participants,
		AIStatus:     e.AIStatus.String(),
		AIResults:    toAIResultsResponse(e.AIResults),
		AIError:      e.AIError,
		EmailSent:    e.EmailSent,
		Timestamp:    e.Timestamp,
	}
}

type attachmentResponse struct {
	ID        string    `json:"id"`
	MatterID  string    `json:"matterId"`
	EventID   *string   `json:"eventId,omitempty"`
	FileName  string    `json:"fileName"`
	FileType  string    `json:"fileType"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAttachmentResponse(a *domain.Attachment) attachmentResponse {
	resp := attachmentResponse{
		ID:        a.ID.String(),
		MatterID:  a.MatterID.String(),
		FileName:  a.FileName,
		FileType:  a.FileType,
		SizeBytes: a.SizeBytes,
		CreatedAt: a.CreatedAt,
	}
	if a.EventID != nil {
		s := a.EventID.String()
		resp.EventID = &s
	}
	return resp
}

type outboxResponse struct {
	ID                string     `json:"id"`
	MatterID          string     `json:"matterId"`
	To                string     `json:"to"`
	Subject           string     `json:"subject"`
	Body              string     `json:"body"`
	Status            string     `json:"status"`
	Error             *string    `json:"error,omitempty"`
	ProviderMessageID *string    `json:"providerMessageId,omitempty"`
	SentAt            *time.Time `json:"sentAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func toOutboxResponse(it *domain.OutboxItem) outboxResponse {
	return outboxResponse{
		ID:                it.ID.String(),
		MatterID:          it.MatterID.String(),
		To:                it.To,
		Subject:           it.Subject,
		Body:              it.Body,
		Status:            it.Status.String(),
		Error:             it.Error,
		ProviderMessageID: it.ProviderMessageID,
		SentAt:            it.SentAt,
		CreatedAt:         it.CreatedAt,
	}
}

// settingsResponse never carries mailbox credentials.
type settingsResponse struct {
	WorkEmail      string `json:"workEmail"`
	AutoAI         bool   `json:"autoAI"`
	AutoOCR        bool   `json:"autoOCR"`
	GmailConnected bool   `json:"gmailConnected"`
}

func toSettingsResponse(s *domain.UserSettings) settingsResponse {
	return settingsResponse{
		WorkEmail:      s.WorkEmail,
		AutoAI:         s.AutoAI,
		AutoOCR:        s.AutoOCR,
		GmailConnected: s.Google.Connected(),
	}
}

type statsResponse struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Done       int `json:"done"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

func toStatsResponse(s domain.EnrichmentStats) statsResponse {
	return statsResponse{
		Pending:    s.Pending,
		Processing: s.Processing,
		Done:       s.Done,
		Failed:     s.Failed,
		Total:      s.Total,
	}
}

func mapSlice[T any, R any](in []T, fn func(*T) R) []R {
	out := make([]R, 0, len(in))
	for i := range in {
		out = append(out, fn(&in[i]))
	}
	return out
}
