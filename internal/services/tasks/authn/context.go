package authn

import (
	"context"

	"github.com/louisbranch/tasktrack/internal/services/tasks/domain"
)

// callerContextKey is the context key for the authenticated caller.
type callerContextKey struct{}

// WithCaller stores the authenticated caller in context.
func WithCaller(ctx context.Context, caller domain.Caller) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, callerContextKey{}, caller)
}

// CallerFromContext returns the authenticated caller stored in context.
func CallerFromContext(ctx context.Context) (domain.Caller, bool) {
	if ctx == nil {
		return domain.Caller{}, false
	}
	caller, ok := ctx.Value(callerContextKey{}).(domain.Caller)
	return caller, ok
}
