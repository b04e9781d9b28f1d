package template

import (
	"io"
)

// TemplateRenderer is the engine contract renderers depend on: execute a named
// template, returning the output and copying it to out.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
