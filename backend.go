package grant

import "context"

// Backend is the persistence-and-identity collaborator the engine delegates
// to for everything it does not decide itself: credential verification,
// scope policy, and artifact storage. It is the sole owner of persistence;
// the engine never caches.
//
// Every method takes the caller-owned AppCtx as its trailing context.Context
// parameter and returns the next context.Context to use, threaded linearly
// by the engine from one Backend call to the next within a single public
// operation. A Backend MUST return a context derived from (or equal to) the
// one it was given; it MUST NOT be retained beyond the call.
type Backend interface {
	// AuthenticateUsernamePassword verifies a resource owner's credentials.
	AuthenticateUsernamePassword(ctx context.Context, username, password string) (context.Context, ResourceOwnerID, error)

	// AuthenticateClient verifies a client's credentials.
	AuthenticateClient(ctx context.Context, clientID, clientSecret string) (context.Context, ClientID, error)

	// GetClientIdentity resolves a client identifier without a secret, for
	// the authorization endpoint where the client is not present to
	// authenticate itself.
	GetClientIdentity(ctx context.Context, clientID string) (context.Context, ClientID, error)

	// VerifyRedirectionURI checks that uri is registered for client.
	VerifyRedirectionURI(ctx context.Context, client ClientID, uri string) (context.Context, error)

	// VerifyResourceOwnerScope checks requested against what resourceOwner
	// may be granted, returning the effective (possibly narrowed) scope.
	VerifyResourceOwnerScope(ctx context.Context, resourceOwner ResourceOwnerID, requested Scope) (context.Context, Scope, error)

	// VerifyClientScope checks requested against what client may be
	// granted, returning the effective (possibly narrowed) scope.
	VerifyClientScope(ctx context.Context, client ClientID, requested Scope) (context.Context, Scope, error)

	// VerifyScope checks requested against a previously registered scope
	// (used on refresh), returning the effective (possibly narrowed) scope.
	VerifyScope(ctx context.Context, registered, requested Scope) (context.Context, Scope, error)

	// AssociateAccessCode persists gc under code.
	AssociateAccessCode(ctx context.Context, code string, gc GrantContext) (context.Context, error)

	// AssociateAccessToken persists gc under token.
	AssociateAccessToken(ctx context.Context, token string, gc GrantContext) (context.Context, error)

	// AssociateRefreshToken persists gc under token.
	AssociateRefreshToken(ctx context.Context, token string, gc GrantContext) (context.Context, error)

	// ResolveAccessCode looks up the GrantContext associated with code.
	ResolveAccessCode(ctx context.Context, code string) (context.Context, GrantContext, error)

	// ResolveAccessToken looks up the GrantContext associated with token.
	ResolveAccessToken(ctx context.Context, token string) (context.Context, GrantContext, error)

	// ResolveRefreshToken looks up the GrantContext associated with token.
	ResolveRefreshToken(ctx context.Context, token string) (context.Context, GrantContext, error)

	// RevokeAccessCode invalidates code. It is called both for single-use
	// consumption and for expiry cleanup; callers on the best-effort path
	// treat failure as a logged warning rather than a fatal condition.
	RevokeAccessCode(ctx context.Context, code string) (context.Context, error)

	// RevokeAccessToken invalidates token.
	RevokeAccessToken(ctx context.Context, token string) (context.Context, error)

	// RevokeRefreshToken invalidates token.
	RevokeRefreshToken(ctx context.Context, token string) (context.Context, error)
}
