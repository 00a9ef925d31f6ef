// Package sqlite provides a SQLite-backed implementation of grant.Backend,
// suitable for embedding the engine in a single-binary server without an
// external database.
//
// Example:
//
//	backend := sqlite.New("file:grant.db?_auth&_auth_user=admin&_auth_pass=admin")
//	backend := sqlite.New(":memory:")
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/dpup/grant"
	"github.com/dpup/grant/store"
)

// Option is a functional option for configuring the Backend.
type Option func(*Backend)

// WithPrefix overrides the default table name prefix.
func WithPrefix(prefix string) Option {
	return func(b *Backend) { b.prefix = prefix }
}

// WithHasher overrides the password Hasher. The default is store.DefaultHasher.
func WithHasher(h store.Hasher) Option {
	return func(b *Backend) { b.hasher = h }
}

// New opens a SQLite-backed Backend. Table creation is attempted
// optimistically on open; a failure there is non-recoverable and panics, in
// line with how the rest of this repository's connection constructors
// behave. Use SafeNew to get an error instead.
func New(conn string, opts ...Option) *Backend {
	b, err := SafeNew(conn, opts...)
	if err != nil {
		panic("store/sqlite: " + err.Error())
	}
	return b
}

// SafeNew is the error-returning variant of New.
func SafeNew(conn string, opts ...Option) (*Backend, error) {
	db, err := sql.Open("sqlite3", conn)
	if err != nil {
		return nil, fmt.Errorf("store/sqlite: opening connection: %w", err)
	}

	b := &Backend{
		db:     db,
		prefix: "grant_",
		hasher: store.DefaultHasher,
	}
	for _, opt := range opts {
		opt(b)
	}

	if err := b.ensureTables(); err != nil {
		return nil, err
	}
	return b, nil
}

// Backend is a SQLite-backed grant.Backend.
type Backend struct {
	db     *sql.DB
	prefix string
	hasher store.Hasher
}

func (b *Backend) table(name string) string {
	return b.prefix + name
}

func (b *Backend) ensureTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + b.table("users") + ` (
			username TEXT PRIMARY KEY,
			password_hash BLOB NOT NULL,
			scope TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS ` + b.table("clients") + ` (
			client_id TEXT PRIMARY KEY,
			secret TEXT NOT NULL,
			redirect_uri TEXT NOT NULL,
			scope TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS ` + b.table("access_codes") + ` (
			code TEXT PRIMARY KEY,
			client_id TEXT,
			resource_owner TEXT,
			expiry_time INTEGER NOT NULL,
			scope TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS ` + b.table("access_tokens") + ` (
			token TEXT PRIMARY KEY,
			client_id TEXT,
			resource_owner TEXT,
			expiry_time INTEGER NOT NULL,
			scope TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS ` + b.table("refresh_tokens") + ` (
			token TEXT PRIMARY KEY,
			client_id TEXT,
			resource_owner TEXT,
			expiry_time INTEGER NOT NULL,
			scope TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := b.db.Exec(stmt); err != nil {
			return fmt.Errorf("store/sqlite: creating table: %w", err)
		}
	}
	return nil
}

// RegisterUser adds a resource owner with a hashed password and scope.
func (b *Backend) RegisterUser(ctx context.Context, username, password string, scope grant.Scope) error {
	hashed, err := b.hasher.Generate([]byte(password))
	if err != nil {
		return fmt.Errorf("store/sqlite: hashing password: %w", err)
	}
	_, err = b.db.ExecContext(ctx,
		`INSERT INTO `+b.table("users")+` (username, password_hash, scope) VALUES (?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash, scope = excluded.scope`,
		username, hashed, encodeScope(scope))
	if err != nil {
		return translateError(err)
	}
	return nil
}

// RegisterClient adds a client with its secret, redirect URI, and scope.
func (b *Backend) RegisterClient(ctx context.Context, clientID, secret, redirectURI string, scope grant.Scope) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO `+b.table("clients")+` (client_id, secret, redirect_uri, scope) VALUES (?, ?, ?, ?)
		 ON CONFLICT(client_id) DO UPDATE SET secret = excluded.secret, redirect_uri = excluded.redirect_uri, scope = excluded.scope`,
		clientID, secret, redirectURI, encodeScope(scope))
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (b *Backend) AuthenticateUsernamePassword(ctx context.Context, username, password string) (context.Context, grant.ResourceOwnerID, error) {
	var hash []byte
	err := b.db.QueryRowContext(ctx, `SELECT password_hash FROM `+b.table("users")+` WHERE username = ?`, username).Scan(&hash)
	if err != nil {
		return ctx, "", translateError(err)
	}
	if err := b.hasher.Compare(hash, []byte(password)); err != nil {
		return ctx, "", fmt.Errorf("store/sqlite: password mismatch for %q", username)
	}
	return ctx, grant.ResourceOwnerID(username), nil
}

func (b *Backend) AuthenticateClient(ctx context.Context, clientID, clientSecret string) (context.Context, grant.ClientID, error) {
	var secret string
	err := b.db.QueryRowContext(ctx, `SELECT secret FROM `+b.table("clients")+` WHERE client_id = ?`, clientID).Scan(&secret)
	if err != nil {
		return ctx, "", translateError(err)
	}
	if secret != clientSecret {
		return ctx, "", fmt.Errorf("store/sqlite: client authentication failed for %q", clientID)
	}
	return ctx, grant.ClientID(clientID), nil
}

func (b *Backend) GetClientIdentity(ctx context.Context, clientID string) (context.Context, grant.ClientID, error) {
	var id string
	err := b.db.QueryRowContext(ctx, `SELECT client_id FROM `+b.table("clients")+` WHERE client_id = ?`, clientID).Scan(&id)
	if err != nil {
		return ctx, "", translateError(err)
	}
	return ctx, grant.ClientID(id), nil
}

func (b *Backend) VerifyRedirectionURI(ctx context.Context, client grant.ClientID, uri string) (context.Context, error) {
	var registered string
	err := b.db.QueryRowContext(ctx, `SELECT redirect_uri FROM `+b.table("clients")+` WHERE client_id = ?`, string(client)).Scan(&registered)
	if err != nil {
		return ctx, translateError(err)
	}
	if registered != uri {
		return ctx, fmt.Errorf("store/sqlite: redirect uri %q not registered for client %q", uri, client)
	}
	return ctx, nil
}

func (b *Backend) VerifyResourceOwnerScope(ctx context.Context, owner grant.ResourceOwnerID, requested grant.Scope) (context.Context, grant.Scope, error) {
	var raw string
	err := b.db.QueryRowContext(ctx, `SELECT scope FROM `+b.table("users")+` WHERE username = ?`, string(owner)).Scan(&raw)
	if err != nil {
		return ctx, nil, translateError(err)
	}
	return ctx, store.NarrowScope(decodeScope(raw), requested), nil
}

func (b *Backend) VerifyClientScope(ctx context.Context, client grant.ClientID, requested grant.Scope) (context.Context, grant.Scope, error) {
	var raw string
	err := b.db.QueryRowContext(ctx, `SELECT scope FROM `+b.table("clients")+` WHERE client_id = ?`, string(client)).Scan(&raw)
	if err != nil {
		return ctx, nil, translateError(err)
	}
	return ctx, store.NarrowScope(decodeScope(raw), requested), nil
}

func (b *Backend) VerifyScope(ctx context.Context, registered, requested grant.Scope) (context.Context, grant.Scope, error) {
	return ctx, store.NarrowScope(registered, requested), nil
}

func (b *Backend) AssociateAccessCode(ctx context.Context, code string, gc grant.GrantContext) (context.Context, error) {
	return ctx, b.associate(ctx, "access_codes", "code", code, gc)
}

func (b *Backend) AssociateAccessToken(ctx context.Context, token string, gc grant.GrantContext) (context.Context, error) {
	return ctx, b.associate(ctx, "access_tokens", "token", token, gc)
}

func (b *Backend) AssociateRefreshToken(ctx context.Context, token string, gc grant.GrantContext) (context.Context, error) {
	return ctx, b.associate(ctx, "refresh_tokens", "token", token, gc)
}

func (b *Backend) associate(ctx context.Context, table, keyColumn, key string, gc grant.GrantContext) error {
	var client, owner any
	if gc.Client != nil {
		client = string(*gc.Client)
	}
	if gc.ResourceOwner != nil {
		owner = string(*gc.ResourceOwner)
	}
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, client_id, resource_owner, expiry_time, scope) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(%s) DO UPDATE SET client_id = excluded.client_id, resource_owner = excluded.resource_owner,
		 expiry_time = excluded.expiry_time, scope = excluded.scope`,
		b.table(table), keyColumn, keyColumn)
	_, err := b.db.ExecContext(ctx, query, key, client, owner, gc.ExpiryTime, encodeScope(gc.Scope))
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (b *Backend) ResolveAccessCode(ctx context.Context, code string) (context.Context, grant.GrantContext, error) {
	gc, err := b.resolve(ctx, "access_codes", "code", code)
	return ctx, gc, err
}

func (b *Backend) ResolveAccessToken(ctx context.Context, token string) (context.Context, grant.GrantContext, error) {
	gc, err := b.resolve(ctx, "access_tokens", "token", token)
	return ctx, gc, err
}

func (b *Backend) ResolveRefreshToken(ctx context.Context, token string) (context.Context, grant.GrantContext, error) {
	gc, err := b.resolve(ctx, "refresh_tokens", "token", token)
	return ctx, gc, err
}

func (b *Backend) resolve(ctx context.Context, table, keyColumn, key string) (grant.GrantContext, error) {
	var client, owner sql.NullString
	var expiry int64
	var rawScope string
	query := fmt.Sprintf(`SELECT client_id, resource_owner, expiry_time, scope FROM %s WHERE %s = ?`, b.table(table), keyColumn)
	err := b.db.QueryRowContext(ctx, query, key).Scan(&client, &owner, &expiry, &rawScope)
	if err != nil {
		return grant.GrantContext{}, translateError(err)
	}

	gc := grant.GrantContext{ExpiryTime: expiry, Scope: decodeScope(rawScope)}
	if client.Valid {
		c := grant.ClientID(client.String)
		gc.Client = &c
	}
	if owner.Valid {
		o := grant.ResourceOwnerID(owner.String)
		gc.ResourceOwner = &o
	}
	return gc, nil
}

func (b *Backend) RevokeAccessCode(ctx context.Context, code string) (context.Context, error) {
	return ctx, b.revoke(ctx, "access_codes", "code", code)
}

func (b *Backend) RevokeAccessToken(ctx context.Context, token string) (context.Context, error) {
	return ctx, b.revoke(ctx, "access_tokens", "token", token)
}

func (b *Backend) RevokeRefreshToken(ctx context.Context, token string) (context.Context, error) {
	return ctx, b.revoke(ctx, "refresh_tokens", "token", token)
}

func (b *Backend) revoke(ctx context.Context, table, keyColumn, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, b.table(table), keyColumn)
	_, err := b.db.ExecContext(ctx, query, key)
	if err != nil {
		return translateError(err)
	}
	return nil
}

func translateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("store/sqlite: not found: %w", err)
	}
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) {
		return fmt.Errorf("store/sqlite: %s: %w", sqlErr.Error(), err)
	}
	return err
}

func encodeScope(s grant.Scope) string {
	out := ""
	for i, tok := range s {
		if i > 0 {
			out += " "
		}
		out += tok
	}
	return out
}

func decodeScope(raw string) grant.Scope {
	if raw == "" {
		return nil
	}
	var scope grant.Scope
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ' ' {
			if i > start {
				scope = append(scope, raw[start:i])
			}
			start = i + 1
		}
	}
	return scope
}
