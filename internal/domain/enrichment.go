package domain

import "strings"

// AIStatus is the enrichment state of an event.
type AIStatus string

const (
	AIStatusPending    AIStatus = "pending"
	AIStatusProcessing AIStatus = "processing"
	AIStatusDone       AIStatus = "done"
	AIStatusFailed     AIStatus = "failed"
)

func (s AIStatus) String() string { return string(s) }

func (s AIStatus) IsValid() bool {
	switch s {
	case AIStatusPending, AIStatusProcessing, AIStatusDone, AIStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further pipeline transition is expected.
func (s AIStatus) IsTerminal() bool {
	return s == AIStatusDone || s == AIStatusFailed
}

// CanTransitionTo reports whether moving from s to next is legal.
// Any status may go back to pending (content edit or re-run);
// processing is entered only from pending and left only to done or failed.
func (s AIStatus) CanTransitionTo(next AIStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	switch next {
	case AIStatusPending:
		return true
	case AIStatusProcessing:
		return s == AIStatusPending
	case AIStatusDone, AIStatusFailed:
		return s == AIStatusProcessing
	}
	return false
}

// SourcesFor returns every status from which next may be entered.
func SourcesFor(next AIStatus) []AIStatus {
	all := []AIStatus{AIStatusPending, AIStatusProcessing, AIStatusDone, AIStatusFailed}
	var out []AIStatus
	for _, s := range all {
		if s.CanTransitionTo(next) {
			out = append(out, s)
		}
	}
	return out
}

// MaxActionItems bounds the action item list kept in AIResults.
const MaxActionItems = 7

// EmailDraft is a follow-up email proposed by the artifact generator.
type EmailDraft struct {
	Subject string
	Body    string
	To      *string
}

// AIResults is the artifact set attached to an event once enrichment is done.
type AIResults struct {
	Summary     *string
	Minutes     *string
	ActionItems []string
	EmailDraft  *EmailDraft
}

// HasSummary reports whether a non-blank summary is present.
func (r AIResults) HasSummary() bool {
	return r.Summary != nil && strings.TrimSpace(*r.Summary) != ""
}

// EnforceDraftInvariant drops the email draft and the summary when the
// summary is absent or blank. An email draft never survives without a summary.
func (r *AIResults) EnforceDraftInvariant() {
	if !r.HasSummary() {
		r.Summary = nil
		r.EmailDraft = nil
	}
	if r.ActionItems == nil {
		r.ActionItems = []string{}
	}
}

// EnrichmentStats holds aggregate event counts by AI status.
type EnrichmentStats struct {
	Pending    int
	Processing int
	Done       int
	Failed     int
	Total      int
}
