package songsync

import "context"

type invocationKey struct{}

// WithInvocationID attaches an invocation id to ctx. The handler logs it and
// the library client forwards it as X-Request-Id.
func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationKey{}, id)
}

// InvocationID returns the id stored by WithInvocationID, or "".
func InvocationID(ctx context.Context) string {
	id, _ := ctx.Value(invocationKey{}).(string)
	return id
}
