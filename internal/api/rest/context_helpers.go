package rest

import "context"

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// requestIDFromContext returns the request id set by RequestIDMiddleware
func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}
