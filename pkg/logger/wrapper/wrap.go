package wrap

import (
	"context"
)

// Error wraps an error with the current LogCtx from the context.
// The outermost wrap wins when the context is restored with ErrorCtx.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	return &errorWithLogCtx{
		err:    err,
		logCtx: fromContext(ctx),
	}
}
