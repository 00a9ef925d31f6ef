package grant

import "context"

// AuthorizePassword runs the Resource Owner Password Credentials grant for
// a public client: it authenticates the resource owner's credentials, then
// narrows the requested scope, producing an Authorization bound to the
// resource owner only.
//
// Steps: AuthenticateUsernamePassword (failure -> AccessDenied);
// VerifyResourceOwnerScope (failure -> InvalidScope).
func (e *Engine) AuthorizePassword(ctx context.Context, username, password string, scope Scope) (context.Context, Authorization, error) {
	ctx, owner, err := e.backend.AuthenticateUsernamePassword(ctx, username, password)
	if err != nil {
		return ctx, Authorization{}, e.fail(AccessDenied)
	}

	ctx, effective, err := e.backend.VerifyResourceOwnerScope(ctx, owner, scope)
	if err != nil {
		return ctx, Authorization{}, e.fail(InvalidScope)
	}

	return ctx, Authorization{
		ResourceOwner: &owner,
		Scope:         effective,
		TTL:           e.ttlPasswordCredentials,
	}, nil
}

// AuthorizePasswordConfidential runs the Resource Owner Password
// Credentials grant for a confidential client: it authenticates the client
// first, then delegates to AuthorizePassword and binds the client onto the
// resulting Authorization. An error from the inner call surfaces unchanged
// (it is never rewritten to InvalidClient).
//
// Steps: AuthenticateClient (failure -> InvalidClient); AuthorizePassword.
func (e *Engine) AuthorizePasswordConfidential(ctx context.Context, clientID, clientSecret, username, password string, scope Scope) (context.Context, Authorization, error) {
	ctx, client, err := e.backend.AuthenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return ctx, Authorization{}, e.fail(InvalidClient)
	}

	ctx, a, err := e.AuthorizePassword(ctx, username, password, scope)
	if err != nil {
		return ctx, Authorization{}, err
	}

	return ctx, a.withClient(client), nil
}

// AuthorizePasswordImplicit runs the Resource Owner Password Credentials
// grant for a client presenting a redirect URI (the Implicit grant's
// credential path): it authenticates the client, validates the redirect
// URI, then delegates to AuthorizePassword and binds the client onto the
// result.
//
// Steps: AuthenticateClient (failure -> InvalidClient); VerifyRedirectionURI
// (failure -> InvalidGrant); AuthorizePassword.
func (e *Engine) AuthorizePasswordImplicit(ctx context.Context, clientID, clientSecret, redirectURI, username, password string, scope Scope) (context.Context, Authorization, error) {
	ctx, client, err := e.backend.AuthenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return ctx, Authorization{}, e.fail(InvalidClient)
	}

	ctx, err = e.backend.VerifyRedirectionURI(ctx, client, redirectURI)
	if err != nil {
		return ctx, Authorization{}, e.fail(InvalidGrant)
	}

	ctx, a, err := e.AuthorizePassword(ctx, username, password, scope)
	if err != nil {
		return ctx, Authorization{}, err
	}

	return ctx, a.withClient(client), nil
}

// AuthorizeResourceOwner builds an Authorization for a caller that has
// already authenticated the resource owner by some external means; it only
// narrows scope.
//
// Steps: VerifyResourceOwnerScope (failure -> InvalidScope).
func (e *Engine) AuthorizeResourceOwner(ctx context.Context, owner ResourceOwnerID, scope Scope) (context.Context, Authorization, error) {
	ctx, effective, err := e.backend.VerifyResourceOwnerScope(ctx, owner, scope)
	if err != nil {
		return ctx, Authorization{}, e.fail(InvalidScope)
	}

	return ctx, Authorization{
		ResourceOwner: &owner,
		Scope:         effective,
		TTL:           e.ttlPasswordCredentials,
	}, nil
}

// AuthorizeClientCredentials runs the Client Credentials grant.
//
// Steps: AuthenticateClient (failure -> InvalidClient); VerifyClientScope
// (failure -> InvalidScope).
func (e *Engine) AuthorizeClientCredentials(ctx context.Context, clientID, clientSecret string, scope Scope) (context.Context, Authorization, error) {
	ctx, client, err := e.backend.AuthenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return ctx, Authorization{}, e.fail(InvalidClient)
	}

	ctx, effective, err := e.backend.VerifyClientScope(ctx, client, scope)
	if err != nil {
		return ctx, Authorization{}, e.fail(InvalidScope)
	}

	return ctx, Authorization{
		Client: &client,
		Scope:  effective,
		TTL:    e.ttlClientCredentials,
	}, nil
}

// AuthorizeCodeGrant exchanges a previously issued authorization code for
// an Authorization that can be handed to IssueTokenAndRefresh. The code is
// revoked (single use) as soon as it resolves successfully, before the
// Authorization is built.
//
// Steps: AuthenticateClient (failure -> InvalidClient); VerifyRedirectionURI
// (failure -> InvalidGrant); VerifyAccessCodeForClient (propagates, normally
// InvalidGrant); RevokeAccessCode.
func (e *Engine) AuthorizeCodeGrant(ctx context.Context, clientID, clientSecret, code, redirectURI string) (context.Context, Authorization, error) {
	ctx, client, err := e.backend.AuthenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return ctx, Authorization{}, e.fail(InvalidClient)
	}

	ctx, err = e.backend.VerifyRedirectionURI(ctx, client, redirectURI)
	if err != nil {
		return ctx, Authorization{}, e.fail(InvalidGrant)
	}

	ctx, gc, err := e.VerifyAccessCodeForClient(ctx, code, client)
	if err != nil {
		return ctx, Authorization{}, err
	}

	ctx, err = e.backend.RevokeAccessCode(ctx, code)
	if err != nil {
		logWarn(ctx, "grant: failed to revoke consumed access code", "error", err)
	}

	return ctx, Authorization{
		Client:        gc.Client,
		ResourceOwner: gc.ResourceOwner,
		Scope:         gc.Scope,
		TTL:           e.ttlPasswordCredentials,
	}, nil
}

// AuthorizeCodeRequest runs the authorization endpoint side of the
// Authorization Code (and Implicit) grant: it validates the client and
// redirect URI without requiring a client secret, authenticates the
// resource owner, and narrows scope. The resulting Authorization is meant
// for IssueCode.
//
// Steps: GetClientIdentity (failure -> UnauthorizedClient);
// VerifyRedirectionURI (failure -> UnauthorizedClient, NOT InvalidGrant —
// this is the RFC distinction at the authorization endpoint);
// AuthenticateUsernamePassword (failure -> AccessDenied);
// VerifyResourceOwnerScope (failure -> InvalidScope).
func (e *Engine) AuthorizeCodeRequest(ctx context.Context, clientID, redirectURI, username, password string, scope Scope) (context.Context, Authorization, error) {
	ctx, client, err := e.backend.GetClientIdentity(ctx, clientID)
	if err != nil {
		return ctx, Authorization{}, e.fail(UnauthorizedClient)
	}

	ctx, err = e.backend.VerifyRedirectionURI(ctx, client, redirectURI)
	if err != nil {
		return ctx, Authorization{}, e.fail(UnauthorizedClient)
	}

	ctx, owner, err := e.backend.AuthenticateUsernamePassword(ctx, username, password)
	if err != nil {
		return ctx, Authorization{}, e.fail(AccessDenied)
	}

	ctx, effective, err := e.backend.VerifyResourceOwnerScope(ctx, owner, scope)
	if err != nil {
		return ctx, Authorization{}, e.fail(InvalidScope)
	}

	return ctx, Authorization{
		Client:        &client,
		ResourceOwner: &owner,
		Scope:         effective,
		TTL:           e.ttlCodeGrant,
	}, nil
}
