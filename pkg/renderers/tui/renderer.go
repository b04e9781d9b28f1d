package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/profile"
	"github.com/goliatone/go-userforms/pkg/render"
	"github.com/goliatone/go-userforms/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-userforms/pkg/validation"
)

// Renderer implements render.Renderer for terminal sessions. Render prompts
// for every schema field and returns the answers as a URL-encoded payload,
// the same shape the browser controller submits.
type Renderer struct {
	driver      PromptDriver
	engine      *validation.Engine
	maxAttempts int
	theme       Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, default engine).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		maxAttempts: DefaultMaxAttempts,
		theme:       Theme{ErrorPrefix: "! "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	if r.engine == nil {
		r.engine = validation.New()
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	return "application/x-www-form-urlencoded"
}

// Render prompts for the fields of page.Schema in declaration order. Earlier
// server errors in options are printed first; options.Values seed defaults in
// edit mode; options.Hidden is appended to the payload unchanged.
func (r *Renderer) Render(ctx context.Context, page render.Page, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	for _, message := range render.MapErrors(page.Schema, options.Errors).Ordered {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return nil, err
		}
	}

	state := NewState()
	schema := page.Schema
	for _, field := range schema.Fields() {
		if field.IsConfirmation() {
			continue
		}
		if pair, ok := schema.PairOf(field.ID); ok {
			if err := r.promptPair(ctx, pair, state); err != nil {
				return nil, err
			}
			continue
		}
		if err := r.promptField(ctx, field, options, state); err != nil {
			return nil, err
		}
	}

	for _, hidden := range render.SortedHiddenFields(options.Hidden) {
		state.Set(hidden.Name, hidden.Value)
	}
	return []byte(state.Encode()), nil
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, options render.RenderOptions, state *State) error {
	var existing any
	if options.Editing() {
		existing = options.Values[field.ID]
	}

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if err := r.ask(ctx, field, existing, state); err != nil {
			return err
		}
		problem, failed := r.engine.CheckField(field, state.Submission())
		if !failed {
			return nil
		}
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+problem.Message); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %s", ErrTooManyAttempts, field.ID)
}

// promptPair asks for both passwords and re-asks both while the pair rule
// fails.
func (r *Renderer) promptPair(ctx context.Context, pair model.Pair, state *State) error {
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		for _, field := range []model.Field{pair.Primary, pair.Confirmation} {
			value, err := r.driver.Password(ctx, InputConfig{Message: label(field), Help: help(field)})
			if err != nil {
				return err
			}
			state.Set(field.ID, value)
		}
		problem, failed := r.engine.CheckPair(pair, state.Submission())
		if !failed {
			return nil
		}
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+problem.Message); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %s", ErrTooManyAttempts, validation.PairKey(pair))
}

func (r *Renderer) ask(ctx context.Context, field model.Field, existing any, state *State) error {
	message := label(field)
	switch field.Kind {
	case model.KindPassword:
		value, err := r.driver.Password(ctx, InputConfig{Message: message, Help: help(field)})
		if err != nil {
			return err
		}
		state.Set(field.ID, value)
	case model.KindTextarea:
		value, err := r.driver.TextArea(ctx, TextAreaConfig{Message: message, Help: help(field), Default: components.ScalarValue(existing)})
		if err != nil {
			return err
		}
		state.Set(field.ID, value)
	case model.KindCheckbox:
		value, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: message,
			Help:    help(field),
			Default: components.ScalarValue(existing) == model.CheckboxOn,
		})
		if err != nil {
			return err
		}
		if value {
			state.Set(field.ID, model.CheckboxOn)
		} else {
			state.Set(field.ID, model.CheckboxOff)
		}
	case model.KindSelect, model.KindRadio:
		return r.askChoice(ctx, field, existing, state)
	default:
		value, err := r.driver.Input(ctx, InputConfig{Message: message, Help: help(field), Default: components.ScalarValue(existing)})
		if err != nil {
			return err
		}
		state.Set(field.ID, strings.TrimSpace(value))
	}
	return nil
}

func (r *Renderer) askChoice(ctx context.Context, field model.Field, existing any, state *State) error {
	labels := make([]string, len(field.Options))
	for idx, option := range field.Options {
		labels[idx] = optionLabel(option)
	}

	if field.Multiple {
		current := components.ListValue(existing)
		var defaults []int
		for idx, option := range field.Options {
			for _, value := range current {
				if option.Value == value {
					defaults = append(defaults, idx)
				}
			}
		}
		picked, err := r.driver.MultiSelect(ctx, SelectConfig{Message: label(field), Options: labels, Defaults: defaults, Help: help(field)})
		if err != nil {
			return err
		}
		values := make([]string, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(field.Options) && field.Options[idx].Value != "" {
				values = append(values, field.Options[idx].Value)
			}
		}
		state.Set(field.ID+"[]", values...)
		return nil
	}

	defaultIndex := -1
	current := components.ScalarValue(existing)
	for idx, option := range field.Options {
		if current != "" && option.Value == current {
			defaultIndex = idx
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: label(field), Options: labels, DefaultIndex: defaultIndex, Help: help(field)})
	if err != nil {
		return err
	}
	value := ""
	if idx >= 0 && idx < len(field.Options) {
		value = field.Options[idx].Value
	}
	state.Set(field.ID, value)
	return nil
}

func label(field model.Field) string {
	name := field.DisplayName()
	if field.Required {
		return name + " *"
	}
	return name
}

// help flattens the help markup to plain text.
func help(field model.Field) string {
	return profile.SanitizeText(field.Help, false)
}

func optionLabel(option model.Option) string {
	if strings.TrimSpace(option.Label) != "" {
		return option.Label
	}
	if option.Value == "" {
		return "(none)"
	}
	return option.Value
}
