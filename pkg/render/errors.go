package render

import (
	"strings"

	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/validation"
)

// ErrorMapping splits an error collection into messages attached to field ids
// and form-level messages that match no field.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
	// Ordered keeps every message in collection order for the error list.
	Ordered []string
}

// MapErrors resolves each error key to the fields it highlights. Pair keys
// attach their message to both password fields.
func MapErrors(schema model.Schema, errs validation.Errors) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	for _, item := range errs.Items() {
		message := strings.TrimSpace(item.Message)
		if message == "" {
			continue
		}
		mapping.Ordered = append(mapping.Ordered, message)
		targets := validation.TargetsForKey(schema, item.Key)
		if len(targets) == 0 {
			mapping.Form = append(mapping.Form, message)
			continue
		}
		for _, id := range targets {
			mapping.Fields[id] = append(mapping.Fields[id], message)
		}
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	return mapping
}

// HasError reports whether the field id has at least one message.
func (m ErrorMapping) HasError(fieldID string) bool {
	return len(m.Fields[fieldID]) > 0
}
