package utils

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang-stock-analyzer/pkg/logger"
)

// GoSafe runs fn in a goroutine and logs any panic with its stack.
func GoSafe(log *logger.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Recovered from panic",
					logger.Field("panic", r),
					logger.StringField("stack", string(debug.Stack())))
			}
		}()
		fn()
	}()
}

// SafeCall runs fn on the current goroutine and turns a panic into an error.
func SafeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// ShouldContinue reports whether ctx is still alive, logging when it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.WarnContext(ctx, "Context done, stopping", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}
