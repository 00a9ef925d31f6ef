package logging

import "context"

type ctxkey struct {
	logger Logger
}

// With attaches a logger to ctx. The engine looks it up via FromContext
// before emitting a diagnostic; a ctx with no attached logger makes every
// diagnostic call a silent no-op.
func With(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, ctxkey{}, &ctxkey{
		logger: logger,
	})
}

// FromContext returns the logger attached to ctx, or nil if none was
// attached.
func FromContext(ctx context.Context) Logger {
	c, ok := ctx.Value(ctxkey{}).(*ctxkey)
	if ok {
		return c.logger
	}
	return nil
}

// Logger is the diagnostic sink the engine writes to. It only ever logs two
// kinds of event — a best-effort revoke that failed (Warnw) and a resolved
// GrantContext that violates a Backend invariant (Errorw) — so the contract
// a host must satisfy to plug in its own logger is exactly these two
// methods, not a general-purpose logging facade.
type Logger interface {
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}
