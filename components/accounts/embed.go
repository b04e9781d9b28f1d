package accounts

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-userforms/pkg/render"
	"github.com/goliatone/go-userforms/pkg/validation"
)

// RegistrationForm renders the registration form with a fresh token.
func (c *Component) RegistrationForm(ctx context.Context) (string, error) {
	return c.renderForm(ctx, OpRegister, render.Page{
		Kind:          render.PageRegistration,
		SuccessAction: render.SuccessReload,
	}, render.RenderOptions{})
}

// LoginForm renders the login form with a link to the password reset
// request page.
func (c *Component) LoginForm(ctx context.Context) (string, error) {
	return c.renderForm(ctx, OpLogin, render.Page{
		Kind:          render.PageLogin,
		SuccessAction: render.SuccessReload,
		Links:         []render.Link{{Href: c.opts.Site.ForgotPath, Label: "Lost your password?"}},
	}, render.RenderOptions{})
}

// ForgotPasswordForm renders the password reset request form.
func (c *Component) ForgotPasswordForm(ctx context.Context) (string, error) {
	return c.renderForm(ctx, OpRequestReset, render.Page{
		Kind:          render.PageForgotPassword,
		SuccessAction: render.SuccessMessage,
		Message:       c.messages.ResetMailSent,
		Links:         []render.Link{{Href: c.opts.Site.LoginPath, Label: "Log in"}},
	}, render.RenderOptions{})
}

// ResetPasswordForm reads the key and login of a reset link from query. A
// key the host accepts yields the new password form carrying both as hidden
// inputs; otherwise the expired or invalid key message is rendered.
func (c *Component) ResetPasswordForm(ctx context.Context, query url.Values) (string, error) {
	key := strings.TrimSpace(query.Get("key"))
	login := strings.TrimSpace(query.Get("login"))

	if _, err := c.platform.ValidateResetKey(ctx, key, login); err != nil {
		c.opts.Logger.Debug().Err(err).Str("login", login).Msg("reset link rejected")
		out, rerr := c.opts.Renderer.Render(ctx, render.Page{
			Kind:    render.PageResetFailure,
			Message: c.resetKeyMessage(err),
			Links:   []render.Link{{Href: c.opts.Site.ForgotPath, Label: "Request a new link"}},
		}, render.RenderOptions{})
		if rerr != nil {
			return "", fmt.Errorf("accounts: render reset failure: %w", rerr)
		}
		return string(out), nil
	}

	return c.renderForm(ctx, OpPerformReset, render.Page{
		Kind:          render.PageResetPassword,
		SuccessAction: render.SuccessMessage,
		Message:       c.messages.PasswordChanged,
		Links:         []render.Link{{Href: c.opts.Site.LoginPath, Label: "Log in"}},
	}, render.RenderOptions{
		Hidden: render.MergeHiddenFields(nil, render.ResetKey(key), render.ResetLogin(login)),
	})
}

// ProfileFields renders the profile fields of accountID in edit mode, with
// a nonce that SaveProfile verifies.
func (c *Component) ProfileFields(ctx context.Context, accountID string) (string, error) {
	values, err := c.profiles.Values(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("accounts: profile values: %w", err)
	}
	nonce, err := c.platform.IssueAntiForgeryToken(ctx, profilePurpose(accountID))
	if err != nil {
		return "", fmt.Errorf("accounts: profile nonce: %w", err)
	}
	out, err := c.opts.Renderer.Render(ctx, render.Page{
		Kind:   render.PageProfile,
		Title:  c.opts.ProfileTitle,
		Schema: c.profiles.Schema(),
	}, render.RenderOptions{
		Mode:   render.ModeEdit,
		Values: values,
		Hidden: render.MergeHiddenFields(nil, render.Hidden(render.HiddenProfileNonce, nonce)),
	})
	if err != nil {
		return "", fmt.Errorf("accounts: render profile: %w", err)
	}
	return string(out), nil
}

// SaveProfile writes the profile fields submitted in form for accountID. A
// missing or foreign nonce, or a viewer without the edit capability, skips
// the whole batch and reports false with a nil error.
func (c *Component) SaveProfile(ctx context.Context, accountID string, form url.Values) (bool, error) {
	nonce := form.Get(render.HiddenProfileNonce)
	if !c.platform.VerifyAntiForgeryToken(ctx, nonce, profilePurpose(accountID)) {
		c.opts.Logger.Debug().Str("account_id", accountID).Msg("profile nonce rejected")
		return false, nil
	}
	saved, err := c.profiles.SaveBatch(ctx, accountID, validation.NewSubmission(form))
	if err != nil {
		return saved, fmt.Errorf("accounts: save profile: %w", err)
	}
	return saved, nil
}

func profilePurpose(accountID string) string {
	return "userforms:profile:" + accountID
}

func (c *Component) renderForm(ctx context.Context, op Operation, page render.Page, options render.RenderOptions) (string, error) {
	token, err := c.platform.IssueAntiForgeryToken(ctx, op.Purpose())
	if err != nil {
		return "", fmt.Errorf("accounts: issue %s token: %w", op, err)
	}
	page.Operation = string(op)
	page.Endpoint = c.Endpoint(op)
	page.Schema = c.Schema(op)
	page.Token = token

	out, err := c.opts.Renderer.Render(ctx, page, options)
	if err != nil {
		return "", fmt.Errorf("accounts: render %s: %w", op, err)
	}
	return string(out), nil
}
