package model

import "strings"

// Kind enumerates the supported field controls.
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindPassword Kind = "password"
	KindTextarea Kind = "textarea"
	KindSelect   Kind = "select"
	KindRadio    Kind = "radio"
	KindCheckbox Kind = "checkbox"
)

// Kinds lists every supported kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindText, KindEmail, KindPassword, KindTextarea, KindSelect, KindRadio, KindCheckbox}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindEmail, KindPassword, KindTextarea, KindSelect, KindRadio, KindCheckbox:
		return true
	default:
		return false
	}
}

// HasOptions reports whether fields of this kind carry an option list.
func (k Kind) HasOptions() bool {
	return k == KindSelect || k == KindRadio
}

// Credential reports whether the kind belongs to the account itself rather
// than to profile metadata.
func (k Kind) Credential() bool {
	return k == KindEmail || k == KindPassword
}

// Checkbox values as they travel on the wire and in metadata.
const (
	CheckboxOn  = "on"
	CheckboxOff = "off"
)

// Option is a single select/radio choice.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field describes one form control.
type Field struct {
	ID             string   `json:"id"`
	Kind           Kind     `json:"kind"`
	Label          string   `json:"label,omitempty"`
	Placeholder    string   `json:"placeholder,omitempty"`
	Help           string   `json:"help,omitempty"`
	Required       bool     `json:"required,omitempty"`
	ConfirmationOf string   `json:"confirmationOf,omitempty"`
	Multiple       bool     `json:"multiple,omitempty"`
	Options        []Option `json:"options,omitempty"`
	ErrorMessage   string   `json:"errorMessage,omitempty"`
}

// DisplayName returns the label, falling back to the placeholder and then the
// id.
func (f Field) DisplayName() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	if placeholder := strings.TrimSpace(f.Placeholder); placeholder != "" {
		return placeholder
	}
	return f.ID
}

// IsConfirmation reports whether the field confirms another password field.
func (f Field) IsConfirmation() bool {
	return strings.TrimSpace(f.ConfirmationOf) != ""
}

// HasOption reports whether value is one of the declared option values.
func (f Field) HasOption(value string) bool {
	for _, option := range f.Options {
		if option.Value == value {
			return true
		}
	}
	return false
}

func (f Field) clone() Field {
	out := f
	if f.Options != nil {
		out.Options = append([]Option(nil), f.Options...)
	}
	return out
}

// Pair couples a primary password field with its confirmation.
type Pair struct {
	Primary      Field
	Confirmation Field
}
