package userforms

import (
	"io/fs"

	"github.com/goliatone/go-userforms/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in page templates so callers can copy
// them into a templates directory and override individual files.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}
