// Package userforms is the top-level entry point of the module: the schema
// driven registration, login and password reset forms, their validation
// engine and the HTTP component that serves them.
package userforms

import (
	"context"
	"net/url"

	"github.com/goliatone/go-userforms/components/accounts"
	"github.com/goliatone/go-userforms/pkg/host"
	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/render"
	"github.com/goliatone/go-userforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-userforms/pkg/validation"
)

// Field is one declarative form field.
type Field = model.Field

// Schema is an ordered, validated set of fields.
type Schema = model.Schema

// RenderOptions carries the mode, stored values and errors of one render.
type RenderOptions = render.RenderOptions

// Errors is the ordered error collection of one submission.
type Errors = validation.Errors

// Platform is the set of host contracts the component delegates to.
type Platform = host.Platform

// Component aliases accounts.Component.
type Component = accounts.Component

// NewComponent wires the request handlers and embed points to platform.
func NewComponent(platform Platform, options ...accounts.OptionFn) (*Component, error) {
	return accounts.New(platform, options...)
}

// DefaultRegistrationSchema returns the built-in registration fields.
func DefaultRegistrationSchema() Schema {
	return model.DefaultRegistrationSchema()
}

// LoadSchema parses a YAML or JSON schema document.
func LoadSchema(data []byte, source string) (Schema, error) {
	return model.LoadSchema(data, source)
}

// Validate checks values against schema with the default engine.
func Validate(schema Schema, values url.Values) Errors {
	return validation.New().Validate(schema, validation.NewSubmission(values))
}

// RenderFields renders fields with the built-in HTML renderer, in create or
// edit mode as selected by options.
func RenderFields(fields []Field, options RenderOptions) (string, error) {
	renderer, err := vanilla.New()
	if err != nil {
		return "", err
	}
	return renderer.RenderFields(fields, options)
}

// RenderPage renders one complete form page with the built-in HTML renderer.
func RenderPage(ctx context.Context, page render.Page, options RenderOptions) ([]byte, error) {
	renderer, err := vanilla.New()
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, page, options)
}
