// Package template defines the template engine seam used by the HTML
// renderers. Engines live in sub-packages; gotemplate provides a pongo2
// backed implementation.
package template
