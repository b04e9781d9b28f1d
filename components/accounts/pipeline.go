package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-userforms/pkg/errutil"
	"github.com/goliatone/go-userforms/pkg/host"
	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/render"
	"github.com/goliatone/go-userforms/pkg/validation"
)

// Error keys that do not belong to a schema field.
const (
	KeySignOn  = "signon_error"
	KeyReset   = "reset_error"
	KeyMail    = "mail_error"
	KeyMeta    = "meta_error"
	KeyRequest = "request_error"
)

// Process runs the validation and host stages of op over an already decoded
// submission. The anti-forgery check is the caller's job.
func (c *Component) Process(ctx context.Context, op Operation, sub validation.Submission) validation.Errors {
	switch op {
	case OpRegister:
		return c.register(ctx, sub)
	case OpLogin:
		return c.login(ctx, sub)
	case OpRequestReset:
		return c.requestReset(ctx, sub)
	case OpPerformReset:
		return c.performReset(ctx, sub)
	}
	var errs validation.Errors
	errs.Add(KeyRequest, c.messages.RequestFailed)
	return errs
}

// Schema returns the field schema posted to op.
func (c *Component) Schema(op Operation) model.Schema {
	switch op {
	case OpRegister:
		return c.opts.Schemas.Registration
	case OpLogin:
		return c.opts.Schemas.Login
	case OpRequestReset:
		return c.opts.Schemas.Forgot
	case OpPerformReset:
		return c.opts.Schemas.Reset
	}
	return model.Schema{}
}

func (c *Component) register(ctx context.Context, sub validation.Submission) validation.Errors {
	schema := c.opts.Schemas.Registration
	errs := c.opts.Engine.Validate(schema, sub)

	emailField, _ := schema.FirstOfKind(model.KindEmail)
	passwordField, _ := schema.PrimaryPassword()
	email := sub.Trimmed(emailField.ID)

	if !errs.HasField(emailField.ID) {
		exists, err := c.platform.AccountExistsByLoginOrEmail(ctx, email)
		switch {
		case err != nil:
			c.hostFailure(&errs, OpRegister, "account lookup failed", err)
		case exists:
			errs.AddField(emailField.ID, c.messages.EmailTaken)
		}
	}
	if !errs.Empty() {
		return errs
	}

	accountID, err := c.platform.CreateAccount(ctx, email, sub.Value(passwordField.ID), email)
	if err != nil {
		errutil.LogError(c.opts.Logger, "create account failed", err)
		if errors.Is(err, host.ErrAccountExists) {
			errs.AddField(emailField.ID, c.messages.EmailTaken)
		} else {
			errs.AddField(emailField.ID, hostMessage(err, c.messages.RequestFailed))
		}
		return errs
	}

	if err := c.profiles.Apply(ctx, accountID, sub); err != nil {
		errutil.LogError(c.opts.Logger.With().Str("account_id", accountID).Logger(), "profile metadata write failed", err)
		errs.Add(KeyMeta, c.messages.ProfileSaveFailed)
	}
	return errs
}

func (c *Component) login(ctx context.Context, sub validation.Submission) validation.Errors {
	schema := c.opts.Schemas.Login
	errs := c.opts.Engine.Validate(schema, sub)

	emailField, _ := schema.FirstOfKind(model.KindEmail)
	passwordField, _ := schema.PrimaryPassword()

	account := c.lookupAccount(ctx, &errs, OpLogin, emailField.ID, sub)
	if !errs.Empty() || account == nil {
		return errs
	}

	password := sub.Value(passwordField.ID)
	ok, err := c.platform.VerifyPassword(ctx, password, account.PasswordHash, account.ID)
	if err != nil {
		c.hostFailure(&errs, OpLogin, "password verification failed", err)
		return errs
	}
	if !ok {
		errs.AddField(passwordField.ID, c.messages.IncorrectPassword)
		return errs
	}

	if _, err := c.platform.EstablishSession(ctx, account.Login, password); err != nil {
		errutil.LogError(c.opts.Logger, "establish session failed", err)
		errs.Add(KeySignOn, c.messages.SignOnFailed)
	}
	return errs
}

func (c *Component) requestReset(ctx context.Context, sub validation.Submission) validation.Errors {
	schema := c.opts.Schemas.Forgot
	errs := c.opts.Engine.Validate(schema, sub)

	emailField, _ := schema.FirstOfKind(model.KindEmail)
	account := c.lookupAccount(ctx, &errs, OpRequestReset, emailField.ID, sub)
	if !errs.Empty() || account == nil {
		return errs
	}

	key, err := c.platform.IssueResetKey(ctx, account)
	if err != nil {
		errutil.LogError(c.opts.Logger, "issue reset key failed", err)
		errs.Add(KeyReset, c.messages.ResetKeyFailed)
		return errs
	}

	msg, err := c.resetEmail(ctx, account, key)
	if err != nil {
		errutil.LogError(c.opts.Logger, "compose reset email failed", err)
		errs.Add(KeyMail, c.messages.MailFailed)
		return errs
	}
	if err := c.platform.SendEmail(ctx, msg); err != nil {
		errutil.LogError(c.opts.Logger, "send reset email failed", err)
		errs.Add(KeyMail, c.messages.MailFailed)
	}
	return errs
}

func (c *Component) performReset(ctx context.Context, sub validation.Submission) validation.Errors {
	schema := c.opts.Schemas.Reset
	errs := c.opts.Engine.Validate(schema, sub)

	account, err := c.platform.ValidateResetKey(ctx, sub.Value(render.HiddenResetKey), sub.Value(render.HiddenResetLogin))
	if err != nil {
		errs.AddField(render.HiddenResetKey, c.resetKeyMessage(err))
	}
	if !errs.Empty() {
		return errs
	}

	passwordField, _ := schema.PrimaryPassword()
	if pair, ok := firstPair(schema); ok {
		if pairErr, failed := c.opts.Engine.CheckPair(pair, sub); failed {
			errs.Add(pairErr.Key, pairErr.Message)
			return errs
		}
	}

	if err := c.platform.SetPassword(ctx, account, sub.Value(passwordField.ID)); err != nil {
		errutil.LogError(c.opts.Logger, "set password failed", err)
		errs.Add(KeyReset, c.messages.ResetFailed)
	}
	return errs
}

// lookupAccount resolves the account behind the email field unless that
// field already failed syntax checks.
func (c *Component) lookupAccount(ctx context.Context, errs *validation.Errors, op Operation, emailID string, sub validation.Submission) *host.Account {
	if errs.HasField(emailID) {
		return nil
	}
	account, err := c.platform.GetAccountByEmail(ctx, sub.Trimmed(emailID))
	switch {
	case errors.Is(err, host.ErrAccountNotFound):
		errs.AddField(emailID, c.messages.EmailUnknown)
		return nil
	case err != nil:
		c.hostFailure(errs, op, "account lookup failed", err)
		return nil
	case account == nil:
		errs.AddField(emailID, c.messages.EmailUnknown)
		return nil
	}
	return account
}

func (c *Component) resetKeyMessage(err error) string {
	if errors.Is(err, host.ErrResetKeyExpired) {
		return c.messages.ResetKeyExpired
	}
	return c.messages.ResetKeyInvalid
}

func (c *Component) hostFailure(errs *validation.Errors, op Operation, msg string, err error) {
	errutil.LogError(c.opts.Logger.With().Str("operation", string(op)).Logger(), msg, err)
	errs.Add(KeyRequest, c.messages.RequestFailed)
}

// hostMessage returns the first line of err, or fallback when err carries no
// text.
func hostMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	text := strings.TrimSpace(err.Error())
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = strings.TrimSpace(text[:idx])
	}
	if text == "" {
		return fallback
	}
	return text
}

func firstPair(schema model.Schema) (model.Pair, bool) {
	pairs := schema.Pairs()
	if len(pairs) == 0 {
		return model.Pair{}, false
	}
	return pairs[0], true
}
