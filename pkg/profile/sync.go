// Package profile maps schema fields onto host account metadata. Only
// profile fields are stored this way; email and password belong to the
// account itself.
package profile

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-userforms/pkg/host"
	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/validation"
)

var (
	ErrUnknownField    = errors.New("profile: unknown field")
	ErrCredentialField = errors.New("profile: credential fields are not stored as metadata")
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// SanitizeText strips markup from a submitted value, restores entities the
// policy escaped, and trims surrounding whitespace. Newlines are kept only
// when multiline is set.
func SanitizeText(value string, multiline bool) string {
	cleaned := html.UnescapeString(textSanitizer().Sanitize(value))
	if !multiline {
		cleaned = strings.Join(strings.Fields(cleaned), " ")
	}
	return strings.TrimSpace(cleaned)
}

// Sync reads and writes profile fields through host metadata. It is safe for
// concurrent use.
type Sync struct {
	full   model.Schema
	schema model.Schema
	meta   host.Metadata
	caps   host.Capabilities
}

// New builds a Sync for the profile fields of schema.
func New(schema model.Schema, meta host.Metadata, caps host.Capabilities) *Sync {
	return &Sync{full: schema, schema: schema.ProfileFields(), meta: meta, caps: caps}
}

// Schema returns the profile fields managed by s.
func (s *Sync) Schema() model.Schema {
	return s.schema
}

func (s *Sync) field(id string) (model.Field, error) {
	if field, ok := s.schema.Field(id); ok {
		return field, nil
	}
	if field, ok := s.full.Field(id); ok && field.Kind.Credential() {
		return model.Field{}, fmt.Errorf("%w: %q", ErrCredentialField, id)
	}
	return model.Field{}, fmt.Errorf("%w: %q", ErrUnknownField, id)
}

// ReadField returns the stored value of a field: []string for multi-selects,
// string otherwise. Missing values read as the zero value; checkboxes read as
// "off".
func (s *Sync) ReadField(ctx context.Context, fieldID, accountID string) (any, error) {
	field, err := s.field(fieldID)
	if err != nil {
		return nil, err
	}
	raw, err := s.meta.ReadMetadata(ctx, accountID, field.ID)
	if err != nil {
		return nil, err
	}
	return Normalize(field, raw), nil
}

// WriteField stores value for a field after normalising it to the field's
// shape.
func (s *Sync) WriteField(ctx context.Context, fieldID, accountID string, value any) error {
	field, err := s.field(fieldID)
	if err != nil {
		return err
	}
	return s.meta.WriteMetadata(ctx, accountID, field.ID, Normalize(field, value))
}

// Values reads every profile field, keyed by field id, for edit-mode
// rendering.
func (s *Sync) Values(ctx context.Context, accountID string) (map[string]any, error) {
	out := make(map[string]any, s.schema.Len())
	for _, field := range s.schema.Fields() {
		value, err := s.ReadField(ctx, field.ID, accountID)
		if err != nil {
			return nil, fmt.Errorf("profile: read %s: %w", field.ID, err)
		}
		out[field.ID] = value
	}
	return out, nil
}

// Apply writes the submitted profile fields for accountID without any
// capability check; used right after account creation. Empty values are
// skipped except for checkboxes, which always store "on" or "off".
func (s *Sync) Apply(ctx context.Context, accountID string, sub validation.Submission) error {
	var errs []error
	for _, field := range s.schema.Fields() {
		value, ok := Submitted(field, sub)
		if !ok {
			continue
		}
		if err := s.meta.WriteMetadata(ctx, accountID, field.ID, value); err != nil {
			errs = append(errs, fmt.Errorf("profile: write %s: %w", field.ID, err))
		}
	}
	return errors.Join(errs...)
}

// SaveBatch writes the submitted profile fields when the current viewer may
// edit accountID. The capability is checked once; without it nothing is
// written and SaveBatch reports false with a nil error.
func (s *Sync) SaveBatch(ctx context.Context, accountID string, sub validation.Submission) (bool, error) {
	if s.caps == nil || !s.caps.CurrentViewerCanEdit(ctx, accountID) {
		return false, nil
	}
	if err := s.Apply(ctx, accountID, sub); err != nil {
		return true, err
	}
	return true, nil
}

// Submitted extracts the storable value of field from sub. It reports false
// when there is nothing to write.
func Submitted(field model.Field, sub validation.Submission) (any, bool) {
	switch {
	case field.Kind == model.KindCheckbox:
		return sub.Checkbox(field.ID), true
	case field.Kind == model.KindSelect && field.Multiple:
		values := sub.Values(field.ID)
		if len(values) == 0 {
			return nil, false
		}
		out := make([]string, 0, len(values))
		for _, value := range values {
			out = append(out, SanitizeText(value, false))
		}
		return out, true
	default:
		value := SanitizeText(sub.Value(field.ID), field.Kind == model.KindTextarea)
		if value == "" {
			return nil, false
		}
		return value, true
	}
}

// Normalize coerces a stored or submitted value into the shape of field.
func Normalize(field model.Field, value any) any {
	if field.Kind == model.KindSelect && field.Multiple {
		return toStrings(value)
	}
	scalar := toString(value)
	if field.Kind == model.KindCheckbox {
		if scalar == model.CheckboxOn {
			return model.CheckboxOn
		}
		return model.CheckboxOff
	}
	return scalar
}

func toStrings(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, toString(item))
		}
		return out
	case string:
		if v == "" {
			return []string{}
		}
		return []string{v}
	default:
		return []string{fmt.Sprint(v)}
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		if len(v) == 0 {
			return ""
		}
		return v[0]
	default:
		return fmt.Sprint(v)
	}
}
