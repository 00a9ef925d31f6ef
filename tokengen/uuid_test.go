package tokengen

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/grant"
)

func TestUUIDGenerateIsUnique(t *testing.T) {
	g := NewUUID()
	ctx := context.Background()

	a, err := g.Generate(ctx, grant.GrantContext{})
	require.NoError(t, err)
	b, err := g.Generate(ctx, grant.GrantContext{})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	_, err = uuid.Parse(a)
	assert.NoError(t, err)
}

func TestUUIDGenerateDeterministic(t *testing.T) {
	fixed := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	g := &UUID{newUUID: func() (uuid.UUID, error) { return fixed, nil }}

	token, err := g.Generate(context.Background(), grant.GrantContext{})
	require.NoError(t, err)
	assert.Equal(t, fixed.String(), token)
}
