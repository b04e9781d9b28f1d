package components

import (
	"bytes"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/goliatone/go-userforms/pkg/model"
)

// NewDefaultRegistry constructs a registry with a renderer for every
// model.Kind.
func NewDefaultRegistry() *Registry {
	registry := New()
	registry.MustRegister(string(model.KindText), Descriptor{Renderer: inputRenderer})
	registry.MustRegister(string(model.KindEmail), Descriptor{Renderer: inputRenderer})
	registry.MustRegister(string(model.KindPassword), Descriptor{Renderer: passwordRenderer})
	registry.MustRegister(string(model.KindTextarea), Descriptor{Renderer: textareaRenderer})
	registry.MustRegister(string(model.KindSelect), Descriptor{Renderer: selectRenderer})
	registry.MustRegister(string(model.KindRadio), Descriptor{Renderer: radioRenderer})
	registry.MustRegister(string(model.KindCheckbox), Descriptor{Renderer: checkboxRenderer})
	return registry
}

func inputRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	buf.WriteString(`<input type="`)
	buf.WriteString(string(field.Kind))
	buf.WriteByte('"')
	writeIdentity(buf, field.ID, field.ID)
	writeAttr(buf, "placeholder", field.Placeholder)
	if data.Editing {
		if value := ScalarValue(data.Value); value != "" {
			writeAttr(buf, "value", value)
		}
	}
	writeCommon(buf, field, data)
	buf.WriteString(">")
	return nil
}

func passwordRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	buf.WriteString(`<input type="password"`)
	writeIdentity(buf, field.ID, field.ID)
	writeAttr(buf, "placeholder", field.Placeholder)
	buf.WriteString(` autocomplete="off"`)
	writeCommon(buf, field, data)
	buf.WriteString(">")
	buf.WriteString(`<button type="button" class="toggle-password"`)
	writeAttr(buf, "data-toggle", field.ID)
	buf.WriteString(` aria-label="Show password"></button>`)
	return nil
}

func textareaRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	buf.WriteString("<textarea")
	writeIdentity(buf, field.ID, field.ID)
	writeAttr(buf, "placeholder", field.Placeholder)
	writeCommon(buf, field, data)
	buf.WriteString(">")
	if data.Editing {
		value := ScalarValue(data.Value)
		// HTML parsers drop one newline directly after the start tag.
		if strings.HasPrefix(value, "\n") || strings.HasPrefix(value, "\r") {
			buf.WriteString("\n")
		}
		buf.WriteString(html.EscapeString(value))
	}
	buf.WriteString("</textarea>")
	return nil
}

func selectRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	if len(field.Options) == 0 {
		return fmt.Errorf("components: select %q has no options", field.ID)
	}
	name := field.ID
	if field.Multiple {
		name += "[]"
	}

	var selected []string
	if data.Editing {
		if field.Multiple {
			selected = ListValue(data.Value)
		} else if value := ScalarValue(data.Value); value != "" {
			selected = []string{value}
		}
	}

	buf.WriteString("<select")
	writeIdentity(buf, field.ID, name)
	if field.Multiple {
		buf.WriteString(" multiple")
	}
	writeCommon(buf, field, data)
	buf.WriteString(">")
	for _, option := range field.Options {
		buf.WriteString(`<option value="`)
		buf.WriteString(html.EscapeString(option.Value))
		buf.WriteByte('"')
		if option.Value != "" && slices.Contains(selected, option.Value) {
			buf.WriteString(" selected")
		}
		buf.WriteString(">")
		buf.WriteString(html.EscapeString(optionLabel(option)))
		buf.WriteString("</option>")
	}
	buf.WriteString("</select>")
	return nil
}

// radioRenderer wraps the group in an element carrying the field id so
// errors keyed by the field can be highlighted.
func radioRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	if len(field.Options) == 0 {
		return fmt.Errorf("components: radio %q has no options", field.ID)
	}
	current := ""
	if data.Editing {
		current = ScalarValue(data.Value)
	}

	buf.WriteString(`<div class="radio-group"`)
	writeAttr(buf, "id", field.ID)
	buf.WriteString(` role="radiogroup">`)
	for _, option := range field.Options {
		optionID := field.ID + "_" + option.Value
		buf.WriteString(`<div class="radio-item"><input type="radio"`)
		writeIdentity(buf, optionID, field.ID)
		writeAttr(buf, "value", option.Value)
		if current != "" && current == option.Value {
			buf.WriteString(" checked")
		}
		if field.Required {
			buf.WriteString(" required")
		}
		buf.WriteString(`><label class="radio-label"`)
		writeAttr(buf, "for", optionID)
		buf.WriteString(">")
		buf.WriteString(html.EscapeString(optionLabel(option)))
		buf.WriteString("</label></div>")
	}
	buf.WriteString("</div>")
	return nil
}

// checkboxRenderer emits a hidden "off" sentinel followed by the checkbox.
// Both share a name; the checkbox value wins when it is ticked.
func checkboxRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	buf.WriteString(`<input type="hidden"`)
	writeAttr(buf, "name", field.ID)
	writeAttr(buf, "value", model.CheckboxOff)
	buf.WriteString(">")
	buf.WriteString(`<input type="checkbox"`)
	writeIdentity(buf, field.ID, field.ID)
	writeAttr(buf, "value", model.CheckboxOn)
	if data.Editing && ScalarValue(data.Value) == model.CheckboxOn {
		buf.WriteString(" checked")
	}
	writeCommon(buf, field, data)
	buf.WriteString(">")
	return nil
}

func optionLabel(option model.Option) string {
	if option.Label != "" {
		return option.Label
	}
	return option.Value
}

func writeIdentity(buf *bytes.Buffer, id, name string) {
	writeAttr(buf, "id", id)
	writeAttr(buf, "name", name)
}

func writeCommon(buf *bytes.Buffer, field model.Field, data ComponentData) {
	if field.Required {
		buf.WriteString(" required")
	}
	if data.Invalid {
		buf.WriteString(` aria-invalid="true"`)
	}
}

// writeAttr emits ` name="value"` with the value attribute-escaped. Empty
// values are skipped.
func writeAttr(buf *bytes.Buffer, name, value string) {
	if value == "" {
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(name)
	buf.WriteString(`="`)
	buf.WriteString(html.EscapeString(value))
	buf.WriteByte('"')
}

// ScalarValue coerces an existing value to a single string. Lists yield
// their first element.
func ScalarValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
		return ""
	case []any:
		if len(v) > 0 {
			return ScalarValue(v[0])
		}
		return ""
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// ListValue coerces an existing value to a list of non-empty strings.
func ListValue(value any) []string {
	var out []string
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		for _, item := range v {
			if item != "" {
				out = append(out, item)
			}
		}
	case []any:
		for _, item := range v {
			if s := ScalarValue(item); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := ScalarValue(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
