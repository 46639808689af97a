package service

import "context"

type requestIDKey struct{}

// WithRequestID tags ctx with the id of the HTTP request that triggered a run.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
