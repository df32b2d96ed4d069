// Package session carries the acting user's identity on a context.Context so
// services can enforce ownership without depending on the HTTP layer.
package session

import "context"

type contextKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID uint64) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the authenticated user id stored on ctx.
func UserID(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(contextKey{}).(uint64)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}
