package grant

import (
	"context"

	"github.com/dpup/grant/logging"
)

// logWarn emits a structured warning if ctx carries a logger, and is a
// silent no-op otherwise. Hosts that want engine diagnostics attach a
// logger with logging.With before calling into the engine; hosts that
// don't are not forced to take on the dependency.
func logWarn(ctx context.Context, msg string, keysAndValues ...interface{}) {
	if l := logging.FromContext(ctx); l != nil {
		l.Warnw(msg, keysAndValues...)
	}
}

// logError is the Error-level equivalent of logWarn, used when a resolved
// GrantContext violates an invariant the Backend is contractually supposed
// to uphold.
func logError(ctx context.Context, msg string, keysAndValues ...interface{}) {
	if l := logging.FromContext(ctx); l != nil {
		l.Errorw(msg, keysAndValues...)
	}
}
