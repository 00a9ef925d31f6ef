// Package memory provides an in-memory, concurrency-safe implementation of
// grant.Backend, suitable for tests and small single-process deployments.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dpup/grant"
	"github.com/dpup/grant/store"
)

type user struct {
	id           grant.ResourceOwnerID
	passwordHash []byte
	scope        grant.Scope
}

type client struct {
	id           grant.ClientID
	secret       string
	redirectURIs map[string]bool
	scope        grant.Scope
}

// Backend is an in-memory grant.Backend. The zero value is not usable; use
// New.
type Backend struct {
	mu     sync.RWMutex
	hasher store.Hasher

	users   map[string]*user
	clients map[string]*client

	accessCodes   map[string]grant.GrantContext
	accessTokens  map[string]grant.GrantContext
	refreshTokens map[string]grant.GrantContext
}

// Option configures a Backend at construction time.
type Option func(*Backend)

// WithHasher overrides the password Hasher. The default is store.DefaultHasher.
func WithHasher(h store.Hasher) Option {
	return func(b *Backend) { b.hasher = h }
}

// New constructs an empty in-memory Backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		hasher:        store.DefaultHasher,
		users:         make(map[string]*user),
		clients:       make(map[string]*client),
		accessCodes:   make(map[string]grant.GrantContext),
		accessTokens:  make(map[string]grant.GrantContext),
		refreshTokens: make(map[string]grant.GrantContext),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RegisterUser adds a resource owner with a hashed password and the scope
// they may be granted.
func (b *Backend) RegisterUser(username, password string, scope grant.Scope) error {
	hashed, err := b.hasher.Generate([]byte(password))
	if err != nil {
		return fmt.Errorf("store/memory: hashing password: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[username] = &user{
		id:           grant.ResourceOwnerID(username),
		passwordHash: hashed,
		scope:        scope,
	}
	return nil
}

// RegisterClient adds a client with its secret, allowed redirect URIs, and
// the scope it may be granted.
func (b *Backend) RegisterClient(clientID, secret string, redirectURIs []string, scope grant.Scope) {
	uris := make(map[string]bool, len(redirectURIs))
	for _, u := range redirectURIs {
		uris[u] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[clientID] = &client{
		id:           grant.ClientID(clientID),
		secret:       secret,
		redirectURIs: uris,
		scope:        scope,
	}
}

func (b *Backend) AuthenticateUsernamePassword(ctx context.Context, username, password string) (context.Context, grant.ResourceOwnerID, error) {
	b.mu.RLock()
	u, ok := b.users[username]
	b.mu.RUnlock()
	if !ok {
		return ctx, "", fmt.Errorf("store/memory: unknown user %q", username)
	}
	if err := b.hasher.Compare(u.passwordHash, []byte(password)); err != nil {
		return ctx, "", fmt.Errorf("store/memory: password mismatch for %q", username)
	}
	return ctx, u.id, nil
}

func (b *Backend) AuthenticateClient(ctx context.Context, clientID, clientSecret string) (context.Context, grant.ClientID, error) {
	b.mu.RLock()
	c, ok := b.clients[clientID]
	b.mu.RUnlock()
	if !ok || c.secret != clientSecret {
		return ctx, "", fmt.Errorf("store/memory: client authentication failed for %q", clientID)
	}
	return ctx, c.id, nil
}

func (b *Backend) GetClientIdentity(ctx context.Context, clientID string) (context.Context, grant.ClientID, error) {
	b.mu.RLock()
	c, ok := b.clients[clientID]
	b.mu.RUnlock()
	if !ok {
		return ctx, "", fmt.Errorf("store/memory: unknown client %q", clientID)
	}
	return ctx, c.id, nil
}

func (b *Backend) VerifyRedirectionURI(ctx context.Context, clientID grant.ClientID, uri string) (context.Context, error) {
	b.mu.RLock()
	c, ok := b.clients[string(clientID)]
	b.mu.RUnlock()
	if !ok || !c.redirectURIs[uri] {
		return ctx, fmt.Errorf("store/memory: redirect uri %q not registered for client %q", uri, clientID)
	}
	return ctx, nil
}

func (b *Backend) VerifyResourceOwnerScope(ctx context.Context, owner grant.ResourceOwnerID, requested grant.Scope) (context.Context, grant.Scope, error) {
	b.mu.RLock()
	u, ok := b.users[string(owner)]
	b.mu.RUnlock()
	if !ok {
		return ctx, nil, fmt.Errorf("store/memory: unknown resource owner %q", owner)
	}
	return ctx, store.NarrowScope(u.scope, requested), nil
}

func (b *Backend) VerifyClientScope(ctx context.Context, clientID grant.ClientID, requested grant.Scope) (context.Context, grant.Scope, error) {
	b.mu.RLock()
	c, ok := b.clients[string(clientID)]
	b.mu.RUnlock()
	if !ok {
		return ctx, nil, fmt.Errorf("store/memory: unknown client %q", clientID)
	}
	return ctx, store.NarrowScope(c.scope, requested), nil
}

func (b *Backend) VerifyScope(ctx context.Context, registered, requested grant.Scope) (context.Context, grant.Scope, error) {
	return ctx, store.NarrowScope(registered, requested), nil
}

func (b *Backend) AssociateAccessCode(ctx context.Context, code string, gc grant.GrantContext) (context.Context, error) {
	b.mu.Lock()
	b.accessCodes[code] = gc
	b.mu.Unlock()
	return ctx, nil
}

func (b *Backend) AssociateAccessToken(ctx context.Context, token string, gc grant.GrantContext) (context.Context, error) {
	b.mu.Lock()
	b.accessTokens[token] = gc
	b.mu.Unlock()
	return ctx, nil
}

func (b *Backend) AssociateRefreshToken(ctx context.Context, token string, gc grant.GrantContext) (context.Context, error) {
	b.mu.Lock()
	b.refreshTokens[token] = gc
	b.mu.Unlock()
	return ctx, nil
}

func (b *Backend) ResolveAccessCode(ctx context.Context, code string) (context.Context, grant.GrantContext, error) {
	b.mu.RLock()
	gc, ok := b.accessCodes[code]
	b.mu.RUnlock()
	if !ok {
		return ctx, grant.GrantContext{}, fmt.Errorf("store/memory: unknown access code")
	}
	return ctx, gc, nil
}

func (b *Backend) ResolveAccessToken(ctx context.Context, token string) (context.Context, grant.GrantContext, error) {
	b.mu.RLock()
	gc, ok := b.accessTokens[token]
	b.mu.RUnlock()
	if !ok {
		return ctx, grant.GrantContext{}, fmt.Errorf("store/memory: unknown access token")
	}
	return ctx, gc, nil
}

func (b *Backend) ResolveRefreshToken(ctx context.Context, token string) (context.Context, grant.GrantContext, error) {
	b.mu.RLock()
	gc, ok := b.refreshTokens[token]
	b.mu.RUnlock()
	if !ok {
		return ctx, grant.GrantContext{}, fmt.Errorf("store/memory: unknown refresh token")
	}
	return ctx, gc, nil
}

func (b *Backend) RevokeAccessCode(ctx context.Context, code string) (context.Context, error) {
	b.mu.Lock()
	delete(b.accessCodes, code)
	b.mu.Unlock()
	return ctx, nil
}

func (b *Backend) RevokeAccessToken(ctx context.Context, token string) (context.Context, error) {
	b.mu.Lock()
	delete(b.accessTokens, token)
	b.mu.Unlock()
	return ctx, nil
}

func (b *Backend) RevokeRefreshToken(ctx context.Context, token string) (context.Context, error) {
	b.mu.Lock()
	delete(b.refreshTokens, token)
	b.mu.Unlock()
	return ctx, nil
}
