package memory

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-userforms/pkg/host"
)

// ResetKeyBytes is the entropy of a reset key before hex encoding.
const ResetKeyBytes = 20

func generateResetKey() (key, hash string, err error) {
	raw := make([]byte, ResetKeyBytes)
	if _, err = rand.Read(raw); err != nil {
		return "", "", oops.Code("RESET_KEY_GENERATE_FAILED").Wrap(err)
	}
	key = hex.EncodeToString(raw)
	return key, hashResetKey(key), nil
}

func hashResetKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// IssueResetKey creates a reset key for the account, replacing any earlier
// one. Only the digest is kept.
func (h *Host) IssueResetKey(ctx context.Context, account *host.Account) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if account == nil {
		return "", oops.Code("RESET_KEY_NO_ACCOUNT").Wrap(host.ErrAccountNotFound)
	}
	key, hash, err := generateResetKey()
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.accounts[account.ID]; !ok {
		return "", oops.Code("ACCOUNT_NOT_FOUND").With("account_id", account.ID).Wrap(host.ErrAccountNotFound)
	}
	h.resets[account.ID] = resetEntry{hash: hash, expiresAt: h.now().Add(h.resetTTL)}
	return key, nil
}

// ValidateResetKey checks key against the digest stored for login.
func (h *Host) ValidateResetKey(ctx context.Context, key, login string) (*host.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	invalid := oops.Code("RESET_KEY_INVALID").With("login", login)
	if key == "" || login == "" {
		return nil, invalid.Wrap(host.ErrResetKeyInvalid)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	id, ok := h.byLogin[normalizeKey(login)]
	if !ok {
		return nil, invalid.Wrap(host.ErrResetKeyInvalid)
	}
	entry, ok := h.resets[id]
	if !ok {
		return nil, invalid.Wrap(host.ErrResetKeyInvalid)
	}
	if subtle.ConstantTimeCompare([]byte(hashResetKey(key)), []byte(entry.hash)) != 1 {
		return nil, invalid.Wrap(host.ErrResetKeyInvalid)
	}
	if !h.now().Before(entry.expiresAt) {
		return nil, oops.Code("RESET_KEY_EXPIRED").With("login", login).Wrap(host.ErrResetKeyExpired)
	}
	account := h.accounts[id].account
	return &account, nil
}

// SetPassword replaces the password hash and drops the pending reset key.
func (h *Host) SetPassword(ctx context.Context, account *host.Account, newPassword string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if account == nil {
		return oops.Code("ACCOUNT_NOT_FOUND").Wrap(host.ErrAccountNotFound)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), h.bcryptCost)
	if err != nil {
		return oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	rec, ok := h.accounts[account.ID]
	if !ok {
		return oops.Code("ACCOUNT_NOT_FOUND").With("account_id", account.ID).Wrap(host.ErrAccountNotFound)
	}
	rec.account.PasswordHash = string(hash)
	delete(h.resets, account.ID)
	return nil
}
