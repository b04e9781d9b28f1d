package validation

import (
	"fmt"
	"strings"
)

// Messages holds every user facing message produced by the module. Hosts can
// override individual entries; empty entries fall back to the defaults.
type Messages struct {
	// Required is a format string receiving the field display name.
	Required         string `json:"required" koanf:"required"`
	InvalidEmail     string `json:"invalid_email" koanf:"invalid_email"`
	InvalidOption    string `json:"invalid_option" koanf:"invalid_option"`
	PasswordsEmpty   string `json:"passwords_empty" koanf:"passwords_empty"`
	PasswordMismatch string `json:"password_mismatch" koanf:"password_mismatch"`
	PasswordTooShort string `json:"password_too_short" koanf:"password_too_short"`

	EmailTaken        string `json:"email_taken" koanf:"email_taken"`
	EmailUnknown      string `json:"email_unknown" koanf:"email_unknown"`
	IncorrectPassword string `json:"incorrect_password" koanf:"incorrect_password"`
	SignOnFailed      string `json:"sign_on_failed" koanf:"sign_on_failed"`
	ResetKeyExpired   string `json:"reset_key_expired" koanf:"reset_key_expired"`
	ResetKeyInvalid   string `json:"reset_key_invalid" koanf:"reset_key_invalid"`
	ResetKeyFailed    string `json:"reset_key_failed" koanf:"reset_key_failed"`
	ResetFailed       string `json:"reset_failed" koanf:"reset_failed"`
	MailFailed        string `json:"mail_failed" koanf:"mail_failed"`
	ProfileSaveFailed string `json:"profile_save_failed" koanf:"profile_save_failed"`
	InvalidToken      string `json:"invalid_token" koanf:"invalid_token"`
	RequestFailed     string `json:"request_failed" koanf:"request_failed"`
	ResetMailSent     string `json:"reset_mail_sent" koanf:"reset_mail_sent"`
	PasswordChanged   string `json:"password_changed" koanf:"password_changed"`
}

// DefaultMessages returns the stock English messages.
func DefaultMessages() Messages {
	return Messages{
		Required:          "%s is required",
		InvalidEmail:      "Please enter valid email",
		InvalidOption:     "Please select a valid option",
		PasswordsEmpty:    "One or both passwords are empty",
		PasswordMismatch:  "Passwords do not match.",
		PasswordTooShort:  "Password is too short",
		EmailTaken:        "This email is already used",
		EmailUnknown:      "There is no user registered with that email address.",
		IncorrectPassword: "The password you entered is incorrect",
		SignOnFailed:      "Please check login or password",
		ResetKeyExpired:   "Sorry, that key has expired. Please try again.",
		ResetKeyInvalid:   "Sorry, that key does not appear to be valid.",
		ResetKeyFailed:    "A password reset link could not be generated.",
		ResetFailed:       "Your password could not be changed.",
		MailFailed:        "The e-mail could not be sent. Possible reason: your host may have disabled the mail() function.",
		ProfileSaveFailed: "Your account was created but some profile details could not be saved.",
		InvalidToken:      "Invalid security token sent!",
		RequestFailed:     "The request could not be completed. Please try again.",
		ResetMailSent:     "Check your email and follow the instructions.",
		PasswordChanged:   "Your password has been reset.",
	}
}

// WithDefaults fills empty entries from DefaultMessages.
func (m Messages) WithDefaults() Messages {
	def := DefaultMessages()
	fill := func(dst *string, fallback string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = fallback
		}
	}
	fill(&m.Required, def.Required)
	fill(&m.InvalidEmail, def.InvalidEmail)
	fill(&m.InvalidOption, def.InvalidOption)
	fill(&m.PasswordsEmpty, def.PasswordsEmpty)
	fill(&m.PasswordMismatch, def.PasswordMismatch)
	fill(&m.PasswordTooShort, def.PasswordTooShort)
	fill(&m.EmailTaken, def.EmailTaken)
	fill(&m.EmailUnknown, def.EmailUnknown)
	fill(&m.IncorrectPassword, def.IncorrectPassword)
	fill(&m.SignOnFailed, def.SignOnFailed)
	fill(&m.ResetKeyExpired, def.ResetKeyExpired)
	fill(&m.ResetKeyInvalid, def.ResetKeyInvalid)
	fill(&m.ResetKeyFailed, def.ResetKeyFailed)
	fill(&m.ResetFailed, def.ResetFailed)
	fill(&m.MailFailed, def.MailFailed)
	fill(&m.ProfileSaveFailed, def.ProfileSaveFailed)
	fill(&m.InvalidToken, def.InvalidToken)
	fill(&m.RequestFailed, def.RequestFailed)
	fill(&m.ResetMailSent, def.ResetMailSent)
	fill(&m.PasswordChanged, def.PasswordChanged)
	return m
}

// RequiredMessage formats the required message for a display name.
func (m Messages) RequiredMessage(name string) string {
	format := m.Required
	if !strings.Contains(format, "%s") {
		return format
	}
	return fmt.Sprintf(format, name)
}
