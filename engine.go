package grant

// Engine is the public surface of this package: the flow functions that
// orchestrate Backend calls into Authorizations and issuance Responses.
// Engine itself is stateless across requests — all per-request state lives
// in the Authorization returned to the caller or in the context.Context
// threaded through Backend calls.
type Engine struct {
	backend Backend
	tokgen  TokenGenerator
	clock   Clock
	metrics *Metrics

	ttlPasswordCredentials int64
	ttlClientCredentials   int64
	ttlCodeGrant           int64
}

// NewEngine constructs an Engine from a Config. The Backend and
// TokenGenerator bindings, along with every configured lifetime, are
// resolved once here and held for the engine's lifetime.
func NewEngine(cfg Config, opts ...EngineOption) (*Engine, error) {
	ttlPW, err := cfg.ExpiryTime(PasswordCredentials)
	if err != nil {
		return nil, err
	}
	ttlCC, err := cfg.ExpiryTime(ClientCredentials)
	if err != nil {
		return nil, err
	}
	ttlCG, err := cfg.ExpiryTime(CodeGrant)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		backend:                cfg.Backend(),
		tokgen:                 cfg.TokenGeneration(),
		clock:                  SystemClock{},
		ttlPasswordCredentials: ttlPW,
		ttlClientCredentials:   ttlCC,
		ttlCodeGrant:           ttlCG,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// EngineOption configures optional Engine behavior at construction time.
type EngineOption func(*Engine)

// WithClock overrides the engine's Clock. Intended for tests.
func WithClock(c Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// WithMetrics attaches a Metrics collector to the engine. A nil Metrics (the
// default) disables metrics recording.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}
