// Package host declares the platform contracts the module delegates to:
// account storage, password verification, session issuance, reset keys,
// profile metadata, mail delivery, anti-forgery tokens and the "may the
// current viewer edit this account" capability. Implementations are expected
// to return errors wrapping the sentinels below so callers can classify them
// with errors.Is.
package host

import (
	"context"
	"errors"
)

var (
	ErrAccountExists   = errors.New("host: account already exists")
	ErrAccountNotFound = errors.New("host: account not found")
	ErrResetKeyExpired = errors.New("host: reset key expired")
	ErrResetKeyInvalid = errors.New("host: reset key invalid")
	ErrSessionFailed   = errors.New("host: session could not be established")
	ErrMailFailed      = errors.New("host: mail could not be sent")
)

// Account is the host's view of a user account.
type Account struct {
	ID           string
	Login        string
	Email        string
	PasswordHash string
}

// Accounts creates and looks up accounts.
type Accounts interface {
	CreateAccount(ctx context.Context, login, password, email string) (string, error)
	AccountExistsByLoginOrEmail(ctx context.Context, value string) (bool, error)
	// GetAccountByEmail returns ErrAccountNotFound when no account matches.
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	VerifyPassword(ctx context.Context, plain, storedHash, accountID string) (bool, error)
}

// Sessions signs an account in.
type Sessions interface {
	EstablishSession(ctx context.Context, login, password string) (*Account, error)
}

// ResetKeys issues and redeems password reset keys.
type ResetKeys interface {
	IssueResetKey(ctx context.Context, account *Account) (string, error)
	// ValidateResetKey returns ErrResetKeyExpired or ErrResetKeyInvalid on
	// failure.
	ValidateResetKey(ctx context.Context, key, login string) (*Account, error)
	SetPassword(ctx context.Context, account *Account, newPassword string) error
}

// Metadata stores per-account profile values. Values are strings, or string
// slices for multi-valued fields.
type Metadata interface {
	ReadMetadata(ctx context.Context, accountID, key string) (any, error)
	WriteMetadata(ctx context.Context, accountID, key string, value any) error
}

// Email is an outgoing message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers email.
type Mailer interface {
	SendEmail(ctx context.Context, msg Email) error
}

// AntiForgery issues and verifies per-purpose request tokens.
type AntiForgery interface {
	IssueAntiForgeryToken(ctx context.Context, purpose string) (string, error)
	VerifyAntiForgeryToken(ctx context.Context, token, purpose string) bool
}

// Capabilities answers authorization questions about the current viewer,
// which implementations resolve from ctx.
type Capabilities interface {
	CurrentViewerCanEdit(ctx context.Context, accountID string) bool
}

// Platform bundles every contract.
type Platform interface {
	Accounts
	Sessions
	ResetKeys
	Metadata
	Mailer
	AntiForgery
	Capabilities
}
