package validation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-userforms/pkg/model"
)

// Submission is a decoded url-encoded form. Multi-valued names submitted as
// "id[]" are folded into "id".
type Submission struct {
	values url.Values
}

// ParseSubmission decodes a url-encoded payload.
func ParseSubmission(payload string) (Submission, error) {
	values, err := url.ParseQuery(payload)
	if err != nil {
		return Submission{}, fmt.Errorf("validation: parse payload: %w", err)
	}
	return NewSubmission(values), nil
}

// NewSubmission wraps already decoded values.
func NewSubmission(values url.Values) Submission {
	folded := make(url.Values, len(values))
	for name, list := range values {
		key := strings.TrimSuffix(name, "[]")
		folded[key] = append(folded[key], list...)
	}
	return Submission{values: folded}
}

// Value returns the last value submitted under id. The checkbox sentinel
// pattern relies on last-wins: the hidden "off" input precedes the visible
// checkbox.
func (s Submission) Value(id string) string {
	list := s.values[id]
	if len(list) == 0 {
		return ""
	}
	return list[len(list)-1]
}

// Trimmed returns Value with surrounding whitespace removed.
func (s Submission) Trimmed(id string) string {
	return strings.TrimSpace(s.Value(id))
}

// Values returns every non-empty value submitted under id, in order.
func (s Submission) Values(id string) []string {
	var out []string
	for _, value := range s.values[id] {
		if strings.TrimSpace(value) == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}

// Has reports whether id was present in the payload at all.
func (s Submission) Has(id string) bool {
	_, ok := s.values[id]
	return ok
}

// Checkbox returns the normalised checkbox state for id: "on" only when the
// last submitted value is "on".
func (s Submission) Checkbox(id string) string {
	if s.Value(id) == model.CheckboxOn {
		return model.CheckboxOn
	}
	return model.CheckboxOff
}

// Encode re-encodes the submission, mainly for clients and tests.
func (s Submission) Encode() string {
	return s.values.Encode()
}

// IsEmpty reports whether the field counts as empty for the required rule.
func (s Submission) IsEmpty(field model.Field) bool {
	switch {
	case field.Kind == model.KindCheckbox:
		return s.Checkbox(field.ID) != model.CheckboxOn
	case field.Kind == model.KindSelect && field.Multiple:
		return len(s.Values(field.ID)) == 0
	default:
		return s.Trimmed(field.ID) == ""
	}
}
