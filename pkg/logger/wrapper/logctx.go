package wrap

import (
	"context"
)

type (
	// LogCtx holds contextual information for logging
	LogCtx struct {
		Action  string
		RunID   string
		Dataset string
		Period  string
		Object  string
	}

	// logCtxKeyStruct is an unexported type for context keys defined in this package.
	logCtxKeyStruct struct{}
)

// LogCtxKey is the key for log context values
var LogCtxKey = &logCtxKeyStruct{}

func fromContext(ctx context.Context) LogCtx {
	if lc, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
		return lc
	}
	return LogCtx{}
}

// WithLogCtx returns a new context with the provided LogCtx.
// Empty fields of newLc are filled from the LogCtx already stored in ctx.
func WithLogCtx(ctx context.Context, newLc LogCtx) context.Context {
	lc := fromContext(ctx)
	if newLc.Action == "" {
		newLc.Action = lc.Action
	}
	if newLc.RunID == "" {
		newLc.RunID = lc.RunID
	}
	if newLc.Dataset == "" {
		newLc.Dataset = lc.Dataset
	}
	if newLc.Period == "" {
		newLc.Period = lc.Period
	}
	if newLc.Object == "" {
		newLc.Object = lc.Object
	}
	return context.WithValue(ctx, LogCtxKey, newLc)
}

// WithAction adds or updates the Action in the LogCtx within the context
func WithAction(ctx context.Context, action string) context.Context {
	lc := fromContext(ctx)
	lc.Action = action
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithRunID adds or updates the RunID in the LogCtx within the context
func WithRunID(ctx context.Context, runID string) context.Context {
	lc := fromContext(ctx)
	lc.RunID = runID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithDataset adds or updates the Dataset (taxi variant) in the LogCtx
func WithDataset(ctx context.Context, dataset string) context.Context {
	lc := fromContext(ctx)
	lc.Dataset = dataset
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithPeriod adds or updates the Period (YYYY-MM) in the LogCtx
func WithPeriod(ctx context.Context, period string) context.Context {
	lc := fromContext(ctx)
	lc.Period = period
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithObject adds or updates the Object (bucket key or local file) in the LogCtx
func WithObject(ctx context.Context, object string) context.Context {
	lc := fromContext(ctx)
	lc.Object = object
	return context.WithValue(ctx, LogCtxKey, lc)
}
