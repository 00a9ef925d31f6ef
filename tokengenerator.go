package grant

import "context"

// TokenGenerator produces opaque token material for a GrantContext. An
// implementation MUST be collision-resistant and MUST be unpredictable to
// adversaries in production; it MAY be deterministic in tests.
type TokenGenerator interface {
	Generate(ctx context.Context, gc GrantContext) (string, error)
}
