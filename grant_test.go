package grant

import (
	"context"
	"fmt"
)

// ctxKey tags a context with a monotonic call counter, so tests can assert
// on property 1: the AppCtx observed by step N+1 equals the AppCtx returned
// by step N.
type ctxKey struct{}

func tagCtx(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, ctxKey{}, n)
}

func ctxTag(ctx context.Context) int {
	v, _ := ctx.Value(ctxKey{}).(int)
	return v
}

// stubBackend is a canned-result Backend test double. Each method advances
// the call counter on the context it returns and, unless a per-identifier
// error is configured, returns the configured canned result.
type stubBackend struct {
	calls int

	// canned results, keyed by the identifier each method is given.
	users   map[string]ResourceOwnerID
	userErr map[string]error

	clients   map[string]ClientID
	clientErr map[string]error

	redirectErr map[string]error

	ownerScope    map[string]Scope
	ownerScopeErr map[string]error

	clientScope    map[string]Scope
	clientScopeErr map[string]error

	scopeErr error

	codes   map[string]GrantContext
	codeErr map[string]error

	tokens   map[string]GrantContext
	tokenErr map[string]error

	refresh   map[string]GrantContext
	refreshErr map[string]error

	associatedCodes    []string
	associatedTokens   []string
	associatedRefresh  []string
	revokedCodes       []string
	revokedTokens      []string
	revokedRefresh     []string
	revokeCodeErr      error
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		users:          map[string]ResourceOwnerID{},
		userErr:        map[string]error{},
		clients:        map[string]ClientID{},
		clientErr:      map[string]error{},
		redirectErr:    map[string]error{},
		ownerScope:     map[string]Scope{},
		ownerScopeErr:  map[string]error{},
		clientScope:    map[string]Scope{},
		clientScopeErr: map[string]error{},
		codes:          map[string]GrantContext{},
		codeErr:        map[string]error{},
		tokens:         map[string]GrantContext{},
		tokenErr:       map[string]error{},
		refresh:        map[string]GrantContext{},
		refreshErr:     map[string]error{},
	}
}

func (b *stubBackend) next(ctx context.Context) context.Context {
	b.calls++
	return tagCtx(ctx, b.calls)
}

func (b *stubBackend) AuthenticateUsernamePassword(ctx context.Context, username, password string) (context.Context, ResourceOwnerID, error) {
	ctx = b.next(ctx)
	if err, ok := b.userErr[username]; ok {
		return ctx, "", err
	}
	return ctx, b.users[username], nil
}

func (b *stubBackend) AuthenticateClient(ctx context.Context, clientID, clientSecret string) (context.Context, ClientID, error) {
	ctx = b.next(ctx)
	if err, ok := b.clientErr[clientID]; ok {
		return ctx, "", err
	}
	return ctx, b.clients[clientID], nil
}

func (b *stubBackend) GetClientIdentity(ctx context.Context, clientID string) (context.Context, ClientID, error) {
	ctx = b.next(ctx)
	if err, ok := b.clientErr[clientID]; ok {
		return ctx, "", err
	}
	return ctx, b.clients[clientID], nil
}

func (b *stubBackend) VerifyRedirectionURI(ctx context.Context, client ClientID, uri string) (context.Context, error) {
	ctx = b.next(ctx)
	if err, ok := b.redirectErr[string(client)]; ok {
		return ctx, err
	}
	return ctx, nil
}

func (b *stubBackend) VerifyResourceOwnerScope(ctx context.Context, owner ResourceOwnerID, requested Scope) (context.Context, Scope, error) {
	ctx = b.next(ctx)
	if err, ok := b.ownerScopeErr[string(owner)]; ok {
		return ctx, nil, err
	}
	return ctx, b.ownerScope[string(owner)], nil
}

func (b *stubBackend) VerifyClientScope(ctx context.Context, client ClientID, requested Scope) (context.Context, Scope, error) {
	ctx = b.next(ctx)
	if err, ok := b.clientScopeErr[string(client)]; ok {
		return ctx, nil, err
	}
	return ctx, b.clientScope[string(client)], nil
}

func (b *stubBackend) VerifyScope(ctx context.Context, registered, requested Scope) (context.Context, Scope, error) {
	ctx = b.next(ctx)
	if b.scopeErr != nil {
		return ctx, nil, b.scopeErr
	}
	return ctx, requested, nil
}

func (b *stubBackend) AssociateAccessCode(ctx context.Context, code string, gc GrantContext) (context.Context, error) {
	ctx = b.next(ctx)
	b.associatedCodes = append(b.associatedCodes, code)
	b.codes[code] = gc
	return ctx, nil
}

func (b *stubBackend) AssociateAccessToken(ctx context.Context, token string, gc GrantContext) (context.Context, error) {
	ctx = b.next(ctx)
	b.associatedTokens = append(b.associatedTokens, token)
	b.tokens[token] = gc
	return ctx, nil
}

func (b *stubBackend) AssociateRefreshToken(ctx context.Context, token string, gc GrantContext) (context.Context, error) {
	ctx = b.next(ctx)
	b.associatedRefresh = append(b.associatedRefresh, token)
	b.refresh[token] = gc
	return ctx, nil
}

func (b *stubBackend) ResolveAccessCode(ctx context.Context, code string) (context.Context, GrantContext, error) {
	ctx = b.next(ctx)
	if err, ok := b.codeErr[code]; ok {
		return ctx, GrantContext{}, err
	}
	gc, ok := b.codes[code]
	if !ok {
		return ctx, GrantContext{}, fmt.Errorf("stub: unknown code %q", code)
	}
	return ctx, gc, nil
}

func (b *stubBackend) ResolveAccessToken(ctx context.Context, token string) (context.Context, GrantContext, error) {
	ctx = b.next(ctx)
	if err, ok := b.tokenErr[token]; ok {
		return ctx, GrantContext{}, err
	}
	gc, ok := b.tokens[token]
	if !ok {
		return ctx, GrantContext{}, fmt.Errorf("stub: unknown token %q", token)
	}
	return ctx, gc, nil
}

func (b *stubBackend) ResolveRefreshToken(ctx context.Context, token string) (context.Context, GrantContext, error) {
	ctx = b.next(ctx)
	if err, ok := b.refreshErr[token]; ok {
		return ctx, GrantContext{}, err
	}
	gc, ok := b.refresh[token]
	if !ok {
		return ctx, GrantContext{}, fmt.Errorf("stub: unknown refresh token %q", token)
	}
	return ctx, gc, nil
}

func (b *stubBackend) RevokeAccessCode(ctx context.Context, code string) (context.Context, error) {
	ctx = b.next(ctx)
	b.revokedCodes = append(b.revokedCodes, code)
	if b.revokeCodeErr != nil {
		return ctx, b.revokeCodeErr
	}
	delete(b.codes, code)
	return ctx, nil
}

func (b *stubBackend) RevokeAccessToken(ctx context.Context, token string) (context.Context, error) {
	ctx = b.next(ctx)
	b.revokedTokens = append(b.revokedTokens, token)
	delete(b.tokens, token)
	return ctx, nil
}

func (b *stubBackend) RevokeRefreshToken(ctx context.Context, token string) (context.Context, error) {
	ctx = b.next(ctx)
	b.revokedRefresh = append(b.revokedRefresh, token)
	delete(b.refresh, token)
	return ctx, nil
}

// stubTokenGenerator returns successive canned tokens from a queue, falling
// back to a counter-suffixed placeholder once the queue is exhausted.
type stubTokenGenerator struct {
	queue []string
	calls int
}

func (g *stubTokenGenerator) Generate(ctx context.Context, gc GrantContext) (string, error) {
	g.calls++
	if len(g.queue) > 0 {
		tok := g.queue[0]
		g.queue = g.queue[1:]
		return tok, nil
	}
	return fmt.Sprintf("token-%d", g.calls), nil
}

// fixedClock is a Clock that always reports the same instant.
type fixedClock struct{ now int64 }

func (c fixedClock) Now() int64 { return c.now }

func newTestEngine(backend Backend, tokgen TokenGenerator, clock Clock) *Engine {
	return &Engine{
		backend:                backend,
		tokgen:                 tokgen,
		clock:                  clock,
		ttlPasswordCredentials: 3600,
		ttlClientCredentials:   3600,
		ttlCodeGrant:           600,
	}
}
