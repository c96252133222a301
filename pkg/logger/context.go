package logger

import (
	"context"

	"github.com/rs/zerolog"
)

type requestIDKey struct{}

// WithRequestID stores id on ctx for log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID.
func RequestID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// RequestIDHook adds request_id to every event logged with Ctx(ctx).
type RequestIDHook struct{}

func (RequestIDHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	if id, ok := RequestID(e.GetCtx()); ok {
		e.Str("request_id", id)
	}
}
