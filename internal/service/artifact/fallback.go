package artifact

import (
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

const (
	fallbackSnippetRunes = 100
	fallbackMinRunes     = 20
	draftSubjectRunes    = 30
)

// Fallback derives deterministic artifacts from content without a model.
// Minutes and a single action item are always present; the summary and
// the email draft only for content longer than 20 characters.
func Fallback(content string) *domain.AIResults {
	snippet := prefix(content, fallbackSnippetRunes)
	minutes := "Discussione dettagliata su: " + content

	r := &domain.AIResults{
		Minutes:     &minutes,
		ActionItems: []string{"Seguire i punti discussi in: " + snippet},
	}

	if utf8.RuneCountInString(content) > fallbackMinRunes {
		summary := "Sommario di: " + snippet + "..."
		firstLine, _, _ := strings.Cut(snippet, "\n")
		r.Summary = &summary
		r.EmailDraft = &domain.EmailDraft{
			Subject: "Follow-up: " + firstLine,
			Body:    "Ciao,\n\nTi scrivo in merito alla nostra discussione su: " + content + ".\n\nCordiali saluti,",
		}
	}

	Sanitize(r)
	return r
}

// FallbackDraft derives a deterministic email draft for an action item.
func FallbackDraft(actionItem string) *domain.EmailDraft {
	return &domain.EmailDraft{
		Subject: "Follow-up: " + prefix(actionItem, draftSubjectRunes) + "...",
		Body:    "Ciao,\n\nTi scrivo in merito a: " + actionItem + ".\n\nCordiali saluti,",
	}
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
