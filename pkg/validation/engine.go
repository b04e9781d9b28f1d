package validation

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-userforms/pkg/model"
)

// DefaultMinPasswordLength is the minimum accepted password length in runes.
const DefaultMinPasswordLength = 6

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// EmailValid reports whether value is shaped like local@domain.
func EmailValid(value string) bool {
	return getValidator().Var(value, "required,email") == nil
}

// Option configures an Engine.
type Option func(*Engine)

// WithMinPasswordLength overrides the minimum password length. Values below
// one are ignored.
func WithMinPasswordLength(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.minPasswordLength = n
		}
	}
}

// WithMessages overrides the user facing messages.
func WithMessages(messages Messages) Option {
	return func(e *Engine) {
		e.messages = messages.WithDefaults()
	}
}

// Engine validates submissions against a schema. It holds no per-request
// state and is safe for concurrent use.
type Engine struct {
	minPasswordLength int
	messages          Messages
}

// New constructs an Engine with the supplied options.
func New(options ...Option) *Engine {
	e := &Engine{
		minPasswordLength: DefaultMinPasswordLength,
		messages:          DefaultMessages(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Messages returns the configured messages.
func (e *Engine) Messages() Messages {
	return e.messages
}

// MinPasswordLength returns the configured minimum password length.
func (e *Engine) MinPasswordLength() int {
	return e.minPasswordLength
}

// Validate runs every syntactic rule over the schema in declaration order and
// returns the accumulated errors. Rules never short-circuit each other; a
// field contributes at most one error.
func (e *Engine) Validate(schema model.Schema, sub Submission) Errors {
	var errs Errors

	fields := schema.Fields()
	position := make(map[string]int, len(fields))
	for idx, field := range fields {
		position[field.ID] = idx
	}

	for idx, field := range fields {
		if pair, ok := schema.PairOf(field.ID); ok {
			last := max(position[pair.Primary.ID], position[pair.Confirmation.ID])
			if idx == last {
				if pairErr, failed := e.CheckPair(pair, sub); failed {
					errs.Add(pairErr.Key, pairErr.Message)
				}
			}
			continue
		}
		if message, failed := e.checkField(field, sub); failed {
			errs.AddField(field.ID, message)
		}
	}
	return errs
}

// CheckField applies the per-field rules alone. Pair members are not
// special-cased here; use CheckPair for them.
func (e *Engine) CheckField(field model.Field, sub Submission) (Error, bool) {
	message, failed := e.checkField(field, sub)
	if !failed {
		return Error{}, false
	}
	return Error{Key: FieldKey(field.ID), Message: message}, true
}

func (e *Engine) checkField(field model.Field, sub Submission) (string, bool) {
	if sub.IsEmpty(field) {
		if !field.Required {
			return "", false
		}
		if msg := strings.TrimSpace(field.ErrorMessage); msg != "" {
			return msg, true
		}
		return e.messages.RequiredMessage(field.DisplayName()), true
	}

	switch field.Kind {
	case model.KindEmail:
		if !EmailValid(sub.Trimmed(field.ID)) {
			return e.messages.InvalidEmail, true
		}
	case model.KindSelect:
		values := []string{sub.Value(field.ID)}
		if field.Multiple {
			values = sub.Values(field.ID)
		}
		for _, value := range values {
			if !field.HasOption(value) {
				return e.messages.InvalidOption, true
			}
		}
	case model.KindRadio:
		if !field.HasOption(sub.Value(field.ID)) {
			return e.messages.InvalidOption, true
		}
	}
	return "", false
}

// CheckPair applies the password pair rule and reports the single error it
// produces, if any. Checks run in order: emptiness, equality, length.
func (e *Engine) CheckPair(pair model.Pair, sub Submission) (Error, bool) {
	primary := sub.Value(pair.Primary.ID)
	confirm := sub.Value(pair.Confirmation.ID)
	key := PairKey(pair)

	primaryEmpty := strings.TrimSpace(primary) == ""
	confirmEmpty := strings.TrimSpace(confirm) == ""
	if primaryEmpty && confirmEmpty && !pair.Primary.Required && !pair.Confirmation.Required {
		return Error{}, false
	}

	switch {
	case primaryEmpty || confirmEmpty:
		return Error{Key: key, Message: e.messages.PasswordsEmpty}, true
	case primary != confirm:
		return Error{Key: key, Message: e.messages.PasswordMismatch}, true
	case utf8.RuneCountInString(primary) < e.minPasswordLength:
		return Error{Key: key, Message: e.messages.PasswordTooShort}, true
	}
	return Error{}, false
}
