package grant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConfig struct {
	ttls    map[grantKind]int64
	backend Backend
	tokgen  TokenGenerator
}

func (c *stubConfig) ExpiryTime(kind grantKind) (int64, error) { return c.ttls[kind], nil }
func (c *stubConfig) Backend() Backend                         { return c.backend }
func (c *stubConfig) TokenGeneration() TokenGenerator           { return c.tokgen }

func TestNewEngineResolvesLifetimesFromConfig(t *testing.T) {
	backend := newStubBackend()
	tokgen := &stubTokenGenerator{}
	cfg := &stubConfig{
		ttls: map[grantKind]int64{
			PasswordCredentials: 111,
			ClientCredentials:   222,
			CodeGrant:           333,
		},
		backend: backend,
		tokgen:  tokgen,
	}

	e, err := NewEngine(cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 111, e.ttlPasswordCredentials)
	assert.EqualValues(t, 222, e.ttlClientCredentials)
	assert.EqualValues(t, 333, e.ttlCodeGrant)
	assert.IsType(t, SystemClock{}, e.clock)
}

func TestNewEngineWithClockOption(t *testing.T) {
	cfg := &stubConfig{ttls: map[grantKind]int64{}, backend: newStubBackend(), tokgen: &stubTokenGenerator{}}
	clock := fixedClock{now: 42}

	e, err := NewEngine(cfg, WithClock(clock))
	require.NoError(t, err)
	assert.Equal(t, int64(42), e.clock.Now())
}

func TestNewEngineWithMetricsOption(t *testing.T) {
	cfg := &stubConfig{ttls: map[grantKind]int64{}, backend: newStubBackend(), tokgen: &stubTokenGenerator{}}
	m := &Metrics{}

	e, err := NewEngine(cfg, WithMetrics(m))
	require.NoError(t, err)
	assert.Same(t, m, e.metrics)
}

// A nil *Metrics (the default) must never panic when recording.
func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.recordIssued("token")
		m.recordError(ServerError)
	})
}
