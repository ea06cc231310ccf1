package logger

import (
	"context"

	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
)

// WrapError attaches the LogCtx stored in ctx to err.
func WrapError(ctx context.Context, err error) error {
	return wrap.Error(ctx, err)
}

// ErrorCtx restores the LogCtx carried by err (if any) into ctx, so the log line
// shows where the error was produced rather than where it was logged.
func ErrorCtx(ctx context.Context, err error) context.Context {
	return wrap.ErrorCtx(ctx, err)
}
