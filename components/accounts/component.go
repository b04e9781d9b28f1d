package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-userforms/pkg/host"
	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/profile"
	"github.com/goliatone/go-userforms/pkg/render"
	"github.com/goliatone/go-userforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-userforms/pkg/validation"
)

// PageRenderer renders form pages and the reset email body.
// *vanilla.Renderer satisfies it.
type PageRenderer interface {
	render.Renderer
	RenderResetEmail(ctx context.Context, email vanilla.ResetEmail) (string, error)
}

// Component wires the request pipeline, the embed points and the routing
// helpers to one host platform.
type Component struct {
	opts     Options
	platform host.Platform
	messages validation.Messages
	profiles *profile.Sync
}

// New constructs a component with default options plus any overrides.
func New(platform host.Platform, fns ...OptionFn) (*Component, error) {
	if platform == nil {
		return nil, errors.New("accounts: missing host platform")
	}
	opts := NewOptions(fns...)
	if err := checkSchemas(opts.Schemas); err != nil {
		return nil, err
	}
	if opts.Renderer == nil {
		renderer, err := vanilla.New()
		if err != nil {
			return nil, fmt.Errorf("accounts: default renderer: %w", err)
		}
		opts.Renderer = renderer
	}
	return &Component{
		opts:     opts,
		platform: platform,
		messages: opts.Engine.Messages(),
		profiles: profile.New(opts.Schemas.Registration, platform, platform),
	}, nil
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return c.opts
}

// Profiles exposes the profile metadata sync bound to the registration
// schema.
func (c *Component) Profiles() *profile.Sync {
	return c.profiles
}

func checkSchemas(schemas Schemas) error {
	need := []struct {
		name   string
		schema model.Schema
		kinds  []model.Kind
	}{
		{"registration", schemas.Registration, []model.Kind{model.KindEmail, model.KindPassword}},
		{"login", schemas.Login, []model.Kind{model.KindEmail, model.KindPassword}},
		{"forgot password", schemas.Forgot, []model.Kind{model.KindEmail}},
		{"reset password", schemas.Reset, []model.Kind{model.KindPassword}},
	}
	for _, item := range need {
		for _, kind := range item.kinds {
			if _, ok := item.schema.FirstOfKind(kind); !ok {
				return fmt.Errorf("accounts: %s schema needs a %s field", item.name, kind)
			}
		}
		if err := validation.CheckKeys(item.schema); err != nil {
			return fmt.Errorf("accounts: %s schema: %w", item.name, err)
		}
	}
	return nil
}
