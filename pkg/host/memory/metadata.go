package memory

import (
	"context"

	"github.com/samber/oops"

	"github.com/goliatone/go-userforms/pkg/host"
)

// ReadMetadata returns the stored value or nil when none exists.
func (h *Host) ReadMetadata(ctx context.Context, accountID, key string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.accounts[accountID]; !ok {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").With("account_id", accountID).Wrap(host.ErrAccountNotFound)
	}
	value, ok := h.meta[accountID][key]
	if !ok {
		return nil, nil
	}
	if list, isList := value.([]string); isList {
		return append([]string(nil), list...), nil
	}
	return value, nil
}

// WriteMetadata stores value under key. Slices are copied.
func (h *Host) WriteMetadata(ctx context.Context, accountID, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.accounts[accountID]; !ok {
		return oops.Code("ACCOUNT_NOT_FOUND").With("account_id", accountID).Wrap(host.ErrAccountNotFound)
	}
	if list, isList := value.([]string); isList {
		value = append([]string(nil), list...)
	}
	bucket, ok := h.meta[accountID]
	if !ok {
		bucket = make(map[string]any)
		h.meta[accountID] = bucket
	}
	bucket[key] = value
	return nil
}
