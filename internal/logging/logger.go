// Package logging is the structured logger of the auth server. Entries are
// tagged with the request id carried in the context, so every line written
// while serving one HTTP call can be correlated.
package logging

import "context"

// Logger writes leveled entries. args are key/value pairs:
//
//	log.Info(ctx, "Role assigned", "user_id", id, "role", role)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every entry.
	With(args ...any) Logger
}

// KeyRequestID is the attribute under which the request id is logged.
const KeyRequestID = "request_id"

type requestIDKey struct{}

// WithRequestID returns a context whose log entries carry id.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
