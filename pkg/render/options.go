package render

import "github.com/goliatone/go-userforms/pkg/validation"

// Mode selects between blank forms and forms pre-filled from stored values.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// RenderOptions describe per-request data renderers use to customise their
// output.
type RenderOptions struct {
	// Mode defaults to ModeCreate. In ModeEdit controls are pre-filled from
	// Values; password controls never are.
	Mode Mode
	// Values holds existing values keyed by field id: string for scalar
	// fields, []string for multi-selects.
	Values map[string]any
	// Errors surfaces server-side validation feedback inline.
	Errors validation.Errors
	// Hidden inputs emitted alongside the schema fields (reset key, login,
	// profile nonce).
	Hidden map[string]string
}

// Editing reports whether controls should be pre-filled.
func (o RenderOptions) Editing() bool {
	return o.Mode == ModeEdit
}
