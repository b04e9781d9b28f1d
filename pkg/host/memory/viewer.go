package memory

import "context"

type viewerKey struct{}

// WithViewer returns a context carrying the id of the signed-in viewer.
func WithViewer(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, viewerKey{}, accountID)
}

// ViewerFrom returns the viewer id stored by WithViewer.
func ViewerFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(viewerKey{}).(string)
	return id, ok && id != ""
}

// CurrentViewerCanEdit allows viewers to edit their own account and admins
// to edit any account.
func (h *Host) CurrentViewerCanEdit(ctx context.Context, accountID string) bool {
	viewer, ok := ViewerFrom(ctx)
	if !ok {
		return false
	}
	if viewer == accountID {
		return true
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, admin := h.admins[viewer]
	return admin
}
