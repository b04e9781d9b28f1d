package render

import (
	"context"

	"github.com/goliatone/go-userforms/pkg/model"
)

// PageKind identifies the form shell a renderer should produce.
type PageKind string

const (
	PageRegistration   PageKind = "registration"
	PageLogin          PageKind = "login"
	PageForgotPassword PageKind = "forgot-password"
	PageResetPassword  PageKind = "reset-password"
	PageResetFailure   PageKind = "reset-failure"
	PageProfile        PageKind = "profile"
)

// SuccessAction tells the client controller what to do on status=1.
type SuccessAction string

const (
	SuccessReload  SuccessAction = "reload"
	SuccessMessage SuccessAction = "message"
	SuccessAlert   SuccessAction = "alert"
)

// Link is an auxiliary anchor rendered under a form.
type Link struct {
	Href  string `json:"href"`
	Label string `json:"label"`
}

// Page is everything a renderer needs to produce one form.
type Page struct {
	Kind      PageKind
	FormID    string
	Operation string
	Endpoint  string
	Schema    model.Schema
	// Title is shown above the profile table.
	Title string
	// Token is the anti-forgery token for Operation.
	Token         string
	SubmitLabel   string
	SuccessAction SuccessAction
	// Message is the success text revealed by the controller, or the failure
	// text of PageResetFailure.
	Message string
	Links   []Link
}

// Renderer converts a Page into a byte representation (HTML, terminal
// prompts, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page Page, options RenderOptions) ([]byte, error)
}
