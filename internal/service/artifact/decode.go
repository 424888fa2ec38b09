package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

// ErrMalformedOutput is returned when model output is not a JSON object,
// directly or wrapped in a JSON string.
var ErrMalformedOutput = errors.New("malformed model output")

// maxUnwrap bounds how many string layers are peeled off model output.
const maxUnwrap = 2

// unwrapObject returns the JSON object carried by raw, peeling off JSON
// string wrappers.
func unwrapObject(raw json.RawMessage) (map[string]json.RawMessage, error) {
	data := bytes.TrimSpace(raw)
	for i := 0; i <= maxUnwrap; i++ {
		if len(data) > 0 && data[0] == '"' {
			var inner string
			if err := json.Unmarshal(data, &inner); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
			}
			data = bytes.TrimSpace([]byte(inner))
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("%w: not a json object", ErrMalformedOutput)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("%w: too many string layers", ErrMalformedOutput)
}

// Decode parses model output into AIResults and sanitizes it.
func Decode(raw json.RawMessage) (*domain.AIResults, error) {
	obj, err := unwrapObject(raw)
	if err != nil {
		return nil, err
	}
	r := &domain.AIResults{
		Summary:     coerceString(unlessFalsy(obj["summary"])),
		Minutes:     coerceString(obj["minutes"]),
		ActionItems: coerceStrings(obj["actionItems"]),
		EmailDraft:  coerceDraft(obj["emailDraft"]),
	}
	Sanitize(r)
	return r, nil
}

// DecodeDraft parses model output holding a single email draft.
func DecodeDraft(raw json.RawMessage) (*domain.EmailDraft, error) {
	obj, err := unwrapObject(raw)
	if err != nil {
		return nil, err
	}
	d := draftFrom(obj)
	if d == nil {
		return nil, fmt.Errorf("%w: draft has no subject or body", ErrMalformedOutput)
	}
	return d, nil
}

// Sanitize enforces the schema invariants on r: at most
// domain.MaxActionItems action items, and no email draft without a
// non-blank summary.
func Sanitize(r *domain.AIResults) {
	if len(r.ActionItems) > domain.MaxActionItems {
		r.ActionItems = r.ActionItems[:domain.MaxActionItems]
	}
	r.EnforceDraftInvariant()
}

// coerceString returns nil for absent or null values, the string itself
// for JSON strings, and the compact JSON text of anything else.
func coerceString(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	text := compact(raw)
	return &text
}

// coerceStrings returns the elements of a JSON array as strings, wraps a
// scalar into a one-element slice and maps absent, null or "" to empty.
// Null elements inside an array become the text "null".
func coerceStrings(raw json.RawMessage) []string {
	if isNull(raw) {
		return []string{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		s := coerceString(raw)
		if s == nil || *s == "" {
			return []string{}
		}
		return []string{*s}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if isNull(item) {
			out = append(out, "null")
			continue
		}
		out = append(out, *coerceString(item))
	}
	return out
}

// unlessFalsy maps false, numeric zero and "" to nil so they read as absent.
func unlessFalsy(raw json.RawMessage) json.RawMessage {
	switch trimmed := bytes.TrimSpace(raw); {
	case bytes.Equal(trimmed, []byte("false")), bytes.Equal(trimmed, []byte(`""`)):
		return nil
	case len(trimmed) > 0 && (trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9')):
		var f float64
		if err := json.Unmarshal(trimmed, &f); err == nil && f == 0 {
			return nil
		}
	}
	return raw
}

func coerceDraft(raw json.RawMessage) *domain.EmailDraft {
	if isNull(raw) {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return draftFrom(obj)
}

func draftFrom(obj map[string]json.RawMessage) *domain.EmailDraft {
	subject := coerceString(obj["subject"])
	body := coerceString(obj["body"])
	if subject == nil && body == nil {
		return nil
	}
	d := &domain.EmailDraft{}
	if subject != nil {
		d.Subject = *subject
	}
	if body != nil {
		d.Body = *body
	}
	if to := coerceString(obj["to"]); to != nil && strings.TrimSpace(*to) != "" {
		d.To = to
	}
	if strings.TrimSpace(d.Subject) == "" && strings.TrimSpace(d.Body) == "" {
		return nil
	}
	return d
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
