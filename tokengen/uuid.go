// Package tokengen provides reference implementations of the engine's
// TokenGenerator contract.
package tokengen

import (
	"context"

	"github.com/google/uuid"

	"github.com/dpup/grant"
)

// UUID is a TokenGenerator that returns a random UUIDv4 string, ignoring
// the GrantContext entirely. It satisfies the contract's collision
// resistance and unpredictability requirements via crypto/rand, which
// google/uuid uses internally for version-4 UUIDs.
type UUID struct {
	// newUUID is overridable for deterministic tests.
	newUUID func() (uuid.UUID, error)
}

// NewUUID constructs a production UUID token generator.
func NewUUID() *UUID {
	return &UUID{newUUID: uuid.NewRandom}
}

// Generate implements grant.TokenGenerator.
func (g *UUID) Generate(ctx context.Context, gc grant.GrantContext) (string, error) {
	id, err := g.newUUID()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
