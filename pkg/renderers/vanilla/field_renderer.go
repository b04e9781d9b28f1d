package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/render"
	"github.com/goliatone/go-userforms/pkg/renderers/vanilla/components"
)

type fieldRenderer struct {
	registry *components.Registry
	options  render.RenderOptions
	errors   render.ErrorMapping
}

func newFieldRenderer(registry *components.Registry, schema model.Schema, options render.RenderOptions) *fieldRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &fieldRenderer{
		registry: registry,
		options:  options,
		errors:   render.MapErrors(schema, options.Errors),
	}
}

func (r *fieldRenderer) renderAll(fields []model.Field) (string, error) {
	var out strings.Builder
	for idx, field := range fields {
		markup, err := r.render(field)
		if err != nil {
			return "", err
		}
		if idx > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(markup)
	}
	return out.String(), nil
}

func (r *fieldRenderer) render(field model.Field) (string, error) {
	descriptor, ok := r.registry.ForKind(field.Kind)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", field.Kind, field.ID)
	}

	data := components.ComponentData{
		Editing: r.options.Editing(),
		Invalid: r.errors.HasError(field.ID),
	}
	if data.Editing && field.Kind != model.KindPassword {
		data.Value = r.options.Values[field.ID]
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", descriptor.Name, field.ID, err)
	}

	if data.Editing {
		return buildRowMarkup(field, data.Invalid, control.String()), nil
	}
	return buildFieldMarkup(field, data.Invalid, control.String()), nil
}

// buildFieldMarkup wraps a control for the front-end forms.
func buildFieldMarkup(field model.Field, invalid bool, control string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 192)

	errorClass := ""
	if invalid {
		errorClass = "has-error"
	}
	builder.WriteString(`<div class="`)
	builder.WriteString(html.EscapeString(classList("input-wrapper", string(field.Kind), errorClass)))
	builder.WriteString(`" data-field="`)
	builder.WriteString(html.EscapeString(field.ID))
	builder.WriteString(`">`)

	writeLabel(&builder, field)
	builder.WriteString(control)
	writeHelp(&builder, field, "help")

	builder.WriteString("</div>")
	return builder.String()
}

// buildRowMarkup renders a table row for the profile editor.
func buildRowMarkup(field model.Field, invalid bool, control string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 192)

	builder.WriteString(`<tr`)
	if invalid {
		builder.WriteString(` class="has-error"`)
	}
	builder.WriteString(` data-field="`)
	builder.WriteString(html.EscapeString(field.ID))
	builder.WriteString(`"><th>`)
	writeLabel(&builder, field)
	builder.WriteString("</th><td>")
	builder.WriteString(control)
	writeHelp(&builder, field, "description")
	builder.WriteString("</td></tr>")
	return builder.String()
}

func writeLabel(builder *strings.Builder, field model.Field) {
	label := strings.TrimSpace(field.Label)
	if label == "" {
		return
	}
	// A radio group has no single control to point at.
	if field.Kind == model.KindRadio {
		builder.WriteString(`<span class="group-label">`)
		builder.WriteString(html.EscapeString(label))
		builder.WriteString(`</span>`)
		return
	}
	builder.WriteString(`<label for="`)
	builder.WriteString(html.EscapeString(field.ID))
	builder.WriteString(`">`)
	builder.WriteString(html.EscapeString(label))
	builder.WriteString(`</label>`)
}

func writeHelp(builder *strings.Builder, field model.Field, class string) {
	help := sanitizeHelp(field.Help)
	if help == "" {
		return
	}
	builder.WriteString(`<p class="`)
	builder.WriteString(class)
	builder.WriteString(`">`)
	builder.WriteString(help)
	builder.WriteString(`</p>`)
}
