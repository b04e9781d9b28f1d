package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/render"
	rendertemplate "github.com/goliatone/go-userforms/pkg/render/template"
	gotemplate "github.com/goliatone/go-userforms/pkg/render/template/gotemplate"
	"github.com/goliatone/go-userforms/pkg/renderers/vanilla/components"
)

// Template names inside TemplatesFS.
const (
	TemplateForm         = "form.tmpl"
	TemplateResetFailure = "reset_failure.tmpl"
	TemplateProfile      = "profile.tmpl"
	TemplateResetEmail   = "reset_email.tmpl"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateDir      string
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	assetsURL        string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk. Templates missing
// from the directory fall back to the embedded bundle.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templateDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the per-kind control renderers.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithAssetsURL makes form pages reference the stylesheet and controller
// script served under prefix (see AssetsFS).
func WithAssetsURL(prefix string) Option {
	return func(cfg *config) {
		cfg.assetsURL = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

// Renderer produces HTML for userforms pages.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *components.Registry
	assetsURL string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engineOptions := []gotemplate.Option{
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		}
		if cfg.templateDir != "" {
			engineOptions = append(engineOptions, gotemplate.WithBaseDir(cfg.templateDir))
		}
		engine, err := gotemplate.New(engineOptions...)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates: renderer,
		registry:  cfg.registry,
		assetsURL: cfg.assetsURL,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the markup of one page. Output is byte-identical for
// identical inputs.
func (r *Renderer) Render(_ context.Context, page render.Page, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	name := TemplateForm
	switch page.Kind {
	case render.PageRegistration, render.PageLogin, render.PageForgotPassword, render.PageResetPassword:
	case render.PageResetFailure:
		name = TemplateResetFailure
	case render.PageProfile:
		name = TemplateProfile
		options.Mode = render.ModeEdit
	default:
		return nil, fmt.Errorf("vanilla renderer: unknown page kind %q", page.Kind)
	}

	var fields string
	if page.Kind != render.PageResetFailure {
		var err error
		fields, err = newFieldRenderer(r.registry, page.Schema, options).renderAll(page.Schema.Fields())
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
	}

	result, err := r.templates.RenderTemplate(name, map[string]any{
		"form":   pageContext(page, options, fields),
		"assets": r.assetContext(),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// RenderFields renders only the field controls of fields, in order, without a
// page shell. fields must form a valid schema.
func (r *Renderer) RenderFields(fields []model.Field, options render.RenderOptions) (string, error) {
	schema, err := model.NewSchema(fields...)
	if err != nil {
		return "", fmt.Errorf("vanilla renderer: %w", err)
	}
	return newFieldRenderer(r.registry, schema, options).renderAll(schema.Fields())
}

// ResetEmail is the data of the password reset message body.
type ResetEmail struct {
	SiteURL string `json:"site_url"`
	Login   string `json:"login"`
	Link    string `json:"link"`
}

// RenderResetEmail renders the plain-text reset message body.
func (r *Renderer) RenderResetEmail(_ context.Context, email ResetEmail) (string, error) {
	body, err := r.templates.RenderTemplate(TemplateResetEmail, map[string]any{
		"email": map[string]any{
			"site_url": email.SiteURL,
			"login":    email.Login,
			"link":     email.Link,
		},
	})
	if err != nil {
		return "", fmt.Errorf("vanilla renderer: render reset email: %w", err)
	}
	return strings.TrimSpace(body) + "\n", nil
}

func (r *Renderer) assetContext() map[string]any {
	assets := map[string]any{"stylesheet": "", "script": ""}
	if r.assetsURL != "" {
		assets["stylesheet"] = r.assetsURL + "/" + StylesheetName
		assets["script"] = r.assetsURL + "/" + RuntimeScriptName
	}
	return assets
}

var defaultFormIDs = map[render.PageKind]string{
	render.PageRegistration:   "registrationForm",
	render.PageLogin:          "loginForm",
	render.PageForgotPassword: "forgotPasswordForm",
	render.PageResetPassword:  "resetPasswordForm",
	render.PageProfile:        "userformsProfile",
}

var defaultSubmitLabels = map[render.PageKind]string{
	render.PageRegistration:   "Register",
	render.PageLogin:          "Log in",
	render.PageForgotPassword: "Send",
	render.PageResetPassword:  "Change Password",
}

func pageContext(page render.Page, options render.RenderOptions, fields string) map[string]any {
	id := strings.TrimSpace(page.FormID)
	if id == "" {
		id = defaultFormIDs[page.Kind]
	}
	submit := strings.TrimSpace(page.SubmitLabel)
	if submit == "" {
		submit = defaultSubmitLabels[page.Kind]
	}
	success := page.SuccessAction
	if success == "" {
		success = render.SuccessReload
	}

	hidden := make([]any, 0, len(options.Hidden))
	for _, field := range render.SortedHiddenFields(options.Hidden) {
		hidden = append(hidden, map[string]any{"name": field.Name, "value": field.Value})
	}
	links := make([]any, 0, len(page.Links))
	for _, link := range page.Links {
		links = append(links, map[string]any{"href": link.Href, "label": link.Label})
	}
	messages := make([]any, 0, options.Errors.Len())
	for _, message := range render.MapErrors(page.Schema, options.Errors).Ordered {
		messages = append(messages, message)
	}

	return map[string]any{
		"id":        id,
		"kind":      string(page.Kind),
		"title":     page.Title,
		"operation": page.Operation,
		"endpoint":  page.Endpoint,
		"token":     page.Token,
		"success":   string(success),
		"message":   page.Message,
		"submit":    submit,
		"fields":    fields,
		"hidden":    hidden,
		"links":     links,
		"errors":    messages,
	}
}
