package memory

import (
	"context"
	"errors"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-userforms/pkg/host"
)

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// CreateAccount stores a new account. The duplicate check happens under the
// write lock, so concurrent registrations with the same login or email
// cannot both succeed.
func (h *Host) CreateAccount(ctx context.Context, login, password, email string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	login = strings.TrimSpace(login)
	email = strings.TrimSpace(email)
	if login == "" || password == "" {
		return "", oops.Code("ACCOUNT_INVALID").Errorf("login and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.byLogin[normalizeKey(login)]; exists {
		return "", oops.Code("ACCOUNT_EXISTS").With("login", login).Wrap(host.ErrAccountExists)
	}
	if email != "" {
		if _, exists := h.byEmail[normalizeKey(email)]; exists {
			return "", oops.Code("ACCOUNT_EXISTS").With("email", email).Wrap(host.ErrAccountExists)
		}
	}

	id := ulid.Make().String()
	h.accounts[id] = &record{
		account: host.Account{
			ID:           id,
			Login:        login,
			Email:        email,
			PasswordHash: string(hash),
		},
		createdAt: h.now(),
	}
	h.byLogin[normalizeKey(login)] = id
	if email != "" {
		h.byEmail[normalizeKey(email)] = id
	}
	h.logger.Debug().Str("account_id", id).Msg("account created")
	return id, nil
}

// AccountExistsByLoginOrEmail reports whether value matches a login or an
// email, case-insensitively.
func (h *Host) AccountExistsByLoginOrEmail(ctx context.Context, value string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key := normalizeKey(value)
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.byLogin[key]; ok {
		return true, nil
	}
	_, ok := h.byEmail[key]
	return ok, nil
}

// GetAccountByEmail returns a copy of the matching account.
func (h *Host) GetAccountByEmail(ctx context.Context, email string) (*host.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	id, ok := h.byEmail[normalizeKey(email)]
	if !ok {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").With("email", email).Wrap(host.ErrAccountNotFound)
	}
	account := h.accounts[id].account
	return &account, nil
}

// Account returns a copy of the account with the given id.
func (h *Host) Account(id string) (*host.Account, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rec, ok := h.accounts[id]
	if !ok {
		return nil, false
	}
	account := rec.account
	return &account, true
}

// VerifyPassword compares plain against a bcrypt hash.
func (h *Host) VerifyPassword(ctx context.Context, plain, storedHash, accountID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, oops.Code("PASSWORD_VERIFY_FAILED").With("account_id", accountID).Wrap(err)
	}
}

// EstablishSession re-checks the credentials and records the sign-in. Cookie
// handling is left to the embedding application.
func (h *Host) EstablishSession(ctx context.Context, login, password string) (*host.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	id, ok := h.byLogin[normalizeKey(login)]
	if !ok {
		return nil, oops.Code("SESSION_FAILED").With("login", login).Wrap(host.ErrSessionFailed)
	}
	rec := h.accounts[id]
	if bcrypt.CompareHashAndPassword([]byte(rec.account.PasswordHash), []byte(password)) != nil {
		return nil, oops.Code("SESSION_FAILED").With("login", login).Wrap(host.ErrSessionFailed)
	}
	rec.lastLogin = h.now()
	account := rec.account
	return &account, nil
}
