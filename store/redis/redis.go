// Package redis provides a Redis-backed implementation of grant.Backend,
// suitable for deployments where multiple engine instances share grant
// state. Access codes, access tokens, and refresh tokens are stored as JSON
// with a TTL derived from their absolute expiry time; users and clients are
// stored without expiry.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dpup/grant"
	"github.com/dpup/grant/store"
)

const (
	userKeyPrefix         = "grant:user:"
	clientKeyPrefix       = "grant:client:"
	accessCodeKeyPrefix   = "grant:code:"
	accessTokenKeyPrefix  = "grant:token:"
	refreshTokenKeyPrefix = "grant:refresh:"
)

// Clock is a seconds-since-epoch time source, used to turn a GrantContext's
// absolute ExpiryTime into a relative TTL for Redis.
type Clock interface {
	Now() int64
}

type systemClock struct{}

func (systemClock) Now() int64 { return time.Now().Unix() }

// Option configures a Backend at construction time.
type Option func(*Backend)

// WithHasher overrides the password Hasher. The default is store.DefaultHasher.
func WithHasher(h store.Hasher) Option {
	return func(b *Backend) { b.hasher = h }
}

// WithClock overrides the Clock used to compute relative TTLs. Exposed for
// tests.
func WithClock(c Clock) Option {
	return func(b *Backend) { b.clock = c }
}

// New constructs a Redis-backed Backend around an existing client. The
// client's connection lifecycle is managed by the caller.
func New(client *goredis.Client, opts ...Option) *Backend {
	b := &Backend{
		client: client,
		hasher: store.DefaultHasher,
		clock:  systemClock{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Backend is a Redis-backed grant.Backend.
type Backend struct {
	client *goredis.Client
	hasher store.Hasher
	clock  Clock
}

type userRecord struct {
	PasswordHash []byte      `json:"password_hash"`
	Scope        grant.Scope `json:"scope"`
}

type clientRecord struct {
	Secret      string      `json:"secret"`
	RedirectURI string      `json:"redirect_uri"`
	Scope       grant.Scope `json:"scope"`
}

// RegisterUser adds a resource owner with a hashed password and scope.
func (b *Backend) RegisterUser(ctx context.Context, username, password string, scope grant.Scope) error {
	hashed, err := b.hasher.Generate([]byte(password))
	if err != nil {
		return fmt.Errorf("store/redis: hashing password: %w", err)
	}
	data, err := json.Marshal(userRecord{PasswordHash: hashed, Scope: scope})
	if err != nil {
		return fmt.Errorf("store/redis: encoding user: %w", err)
	}
	return b.client.Set(ctx, userKeyPrefix+username, data, 0).Err()
}

// RegisterClient adds a client with its secret, redirect URI, and scope.
func (b *Backend) RegisterClient(ctx context.Context, clientID, secret, redirectURI string, scope grant.Scope) error {
	data, err := json.Marshal(clientRecord{Secret: secret, RedirectURI: redirectURI, Scope: scope})
	if err != nil {
		return fmt.Errorf("store/redis: encoding client: %w", err)
	}
	return b.client.Set(ctx, clientKeyPrefix+clientID, data, 0).Err()
}

func (b *Backend) getUser(ctx context.Context, username string) (userRecord, error) {
	var rec userRecord
	raw, err := b.client.Get(ctx, userKeyPrefix+username).Result()
	if err != nil {
		return rec, translateError(err)
	}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return rec, fmt.Errorf("store/redis: decoding user: %w", err)
	}
	return rec, nil
}

func (b *Backend) getClient(ctx context.Context, clientID string) (clientRecord, error) {
	var rec clientRecord
	raw, err := b.client.Get(ctx, clientKeyPrefix+clientID).Result()
	if err != nil {
		return rec, translateError(err)
	}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return rec, fmt.Errorf("store/redis: decoding client: %w", err)
	}
	return rec, nil
}

func (b *Backend) AuthenticateUsernamePassword(ctx context.Context, username, password string) (context.Context, grant.ResourceOwnerID, error) {
	rec, err := b.getUser(ctx, username)
	if err != nil {
		return ctx, "", err
	}
	if err := b.hasher.Compare(rec.PasswordHash, []byte(password)); err != nil {
		return ctx, "", fmt.Errorf("store/redis: password mismatch for %q", username)
	}
	return ctx, grant.ResourceOwnerID(username), nil
}

func (b *Backend) AuthenticateClient(ctx context.Context, clientID, clientSecret string) (context.Context, grant.ClientID, error) {
	rec, err := b.getClient(ctx, clientID)
	if err != nil {
		return ctx, "", err
	}
	if rec.Secret != clientSecret {
		return ctx, "", fmt.Errorf("store/redis: client authentication failed for %q", clientID)
	}
	return ctx, grant.ClientID(clientID), nil
}

func (b *Backend) GetClientIdentity(ctx context.Context, clientID string) (context.Context, grant.ClientID, error) {
	if _, err := b.getClient(ctx, clientID); err != nil {
		return ctx, "", err
	}
	return ctx, grant.ClientID(clientID), nil
}

func (b *Backend) VerifyRedirectionURI(ctx context.Context, client grant.ClientID, uri string) (context.Context, error) {
	rec, err := b.getClient(ctx, string(client))
	if err != nil {
		return ctx, err
	}
	if rec.RedirectURI != uri {
		return ctx, fmt.Errorf("store/redis: redirect uri %q not registered for client %q", uri, client)
	}
	return ctx, nil
}

func (b *Backend) VerifyResourceOwnerScope(ctx context.Context, owner grant.ResourceOwnerID, requested grant.Scope) (context.Context, grant.Scope, error) {
	rec, err := b.getUser(ctx, string(owner))
	if err != nil {
		return ctx, nil, err
	}
	return ctx, store.NarrowScope(rec.Scope, requested), nil
}

func (b *Backend) VerifyClientScope(ctx context.Context, client grant.ClientID, requested grant.Scope) (context.Context, grant.Scope, error) {
	rec, err := b.getClient(ctx, string(client))
	if err != nil {
		return ctx, nil, err
	}
	return ctx, store.NarrowScope(rec.Scope, requested), nil
}

func (b *Backend) VerifyScope(ctx context.Context, registered, requested grant.Scope) (context.Context, grant.Scope, error) {
	return ctx, store.NarrowScope(registered, requested), nil
}

func (b *Backend) AssociateAccessCode(ctx context.Context, code string, gc grant.GrantContext) (context.Context, error) {
	return ctx, b.associate(ctx, accessCodeKeyPrefix, code, gc)
}

func (b *Backend) AssociateAccessToken(ctx context.Context, token string, gc grant.GrantContext) (context.Context, error) {
	return ctx, b.associate(ctx, accessTokenKeyPrefix, token, gc)
}

func (b *Backend) AssociateRefreshToken(ctx context.Context, token string, gc grant.GrantContext) (context.Context, error) {
	return ctx, b.associate(ctx, refreshTokenKeyPrefix, token, gc)
}

func (b *Backend) associate(ctx context.Context, prefix, key string, gc grant.GrantContext) error {
	data, err := json.Marshal(gc.Fields())
	if err != nil {
		return fmt.Errorf("store/redis: encoding grant context: %w", err)
	}

	ttl := time.Duration(gc.ExpiryTime-b.clock.Now()) * time.Second
	if ttl <= 0 {
		ttl = time.Second
	}
	return b.client.Set(ctx, prefix+key, data, ttl).Err()
}

func (b *Backend) ResolveAccessCode(ctx context.Context, code string) (context.Context, grant.GrantContext, error) {
	gc, err := b.resolve(ctx, accessCodeKeyPrefix, code)
	return ctx, gc, err
}

func (b *Backend) ResolveAccessToken(ctx context.Context, token string) (context.Context, grant.GrantContext, error) {
	gc, err := b.resolve(ctx, accessTokenKeyPrefix, token)
	return ctx, gc, err
}

func (b *Backend) ResolveRefreshToken(ctx context.Context, token string) (context.Context, grant.GrantContext, error) {
	gc, err := b.resolve(ctx, refreshTokenKeyPrefix, token)
	return ctx, gc, err
}

func (b *Backend) resolve(ctx context.Context, prefix, key string) (grant.GrantContext, error) {
	raw, err := b.client.Get(ctx, prefix+key).Result()
	if err != nil {
		return grant.GrantContext{}, translateError(err)
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return grant.GrantContext{}, fmt.Errorf("store/redis: decoding grant context: %w", err)
	}
	gc, err := grant.GrantContextFromFields(fields)
	if err != nil {
		return grant.GrantContext{}, fmt.Errorf("store/redis: decoding grant context: %w", err)
	}
	return gc, nil
}

func (b *Backend) RevokeAccessCode(ctx context.Context, code string) (context.Context, error) {
	return ctx, b.client.Del(ctx, accessCodeKeyPrefix+code).Err()
}

func (b *Backend) RevokeAccessToken(ctx context.Context, token string) (context.Context, error) {
	return ctx, b.client.Del(ctx, accessTokenKeyPrefix+token).Err()
}

func (b *Backend) RevokeRefreshToken(ctx context.Context, token string) (context.Context, error) {
	return ctx, b.client.Del(ctx, refreshTokenKeyPrefix+token).Err()
}

func translateError(err error) error {
	if errors.Is(err, goredis.Nil) {
		return fmt.Errorf("store/redis: not found: %w", err)
	}
	return err
}
