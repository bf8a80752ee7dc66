package reqctx

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const keyRID ctxKey = "request_id"

// WithRequestID stores the request correlation id.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RequestID returns the correlation id if present.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

// Logger returns log annotated with the request id carried by ctx, if any.
func Logger(ctx context.Context, log *zap.Logger) *zap.Logger {
	if rid := RequestID(ctx); rid != "" {
		return log.With(zap.String("rid", rid))
	}
	return log
}
