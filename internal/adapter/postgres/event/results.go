package event

import (
	"encoding/json"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

// resultsJSON is the persisted shape of domain.AIResults in events.ai_results.
type resultsJSON struct {
	Summary     *string    `json:"summary,omitempty"`
	Minutes     *string    `json:"minutes,omitempty"`
	ActionItems []string   `json:"actionItems"`
	EmailDraft  *draftJSON `json:"emailDraft,omitempty"`
}

type draftJSON struct {
	Subject string  `json:"subject"`
	Body    string  `json:"body"`
	To      *string `json:"to,omitempty"`
}

func encodeResults(r *domain.AIResults) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	out := resultsJSON{
		Summary:     r.Summary,
		Minutes:     r.Minutes,
		ActionItems: r.ActionItems,
	}
	if out.ActionItems == nil {
		out.ActionItems = []string{}
	}
	if r.EmailDraft != nil {
		out.EmailDraft = &draftJSON{Subject: r.EmailDraft.Subject, Body: r.EmailDraft.Body, To: r.EmailDraft.To}
	}
	return json.Marshal(out)
}

func decodeResults(raw []byte) (*domain.AIResults, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var in resultsJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	r := &domain.AIResults{
		Summary:     in.Summary,
		Minutes:     in.Minutes,
		ActionItems: in.ActionItems,
	}
	if in.EmailDraft != nil {
		r.EmailDraft = &domain.EmailDraft{Subject: in.EmailDraft.Subject, Body: in.EmailDraft.Body, To: in.EmailDraft.To}
	}
	return r, nil
}
