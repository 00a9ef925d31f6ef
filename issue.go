package grant

import "context"

// IssueCode mints an authorization code from a, persists its GrantContext,
// and returns a Response carrying the code. a must come from
// AuthorizeCodeRequest.
func (e *Engine) IssueCode(ctx context.Context, a Authorization) (context.Context, Response, error) {
	gc := newGrantContext(a, nowPlus(e.clock, a.TTL))

	code, err := e.tokgen.Generate(ctx, gc)
	if err != nil {
		return ctx, Response{}, e.failWrap(err)
	}

	ctx, err = e.backend.AssociateAccessCode(ctx, code, gc)
	if err != nil {
		return ctx, Response{}, e.failWrap(err)
	}

	e.metrics.recordIssued("code")
	return ctx, Response{
		AccessCode:    code,
		TTL:           a.TTL,
		ResourceOwner: a.ResourceOwner,
		Scope:         a.Scope,
	}, nil
}

// IssueToken mints an access token from a, persists its GrantContext, and
// returns a Response carrying the token. a may come from any authorize_*
// operation.
func (e *Engine) IssueToken(ctx context.Context, a Authorization) (context.Context, Response, error) {
	gc := newGrantContext(a, nowPlus(e.clock, a.TTL))

	token, err := e.tokgen.Generate(ctx, gc)
	if err != nil {
		return ctx, Response{}, e.failWrap(err)
	}

	ctx, err = e.backend.AssociateAccessToken(ctx, token, gc)
	if err != nil {
		return ctx, Response{}, e.failWrap(err)
	}

	e.metrics.recordIssued("token")
	return ctx, Response{
		AccessToken:   token,
		TTL:           a.TTL,
		ResourceOwner: a.ResourceOwner,
		Scope:         a.Scope,
	}, nil
}

// IssueTokenAndRefresh mints both an access token and a refresh token from
// a, persisting access-token association before refresh-token association.
// Both tokens are generated over, and associated with, the identical
// GrantContext.
//
// Guard: a must have both Client and ResourceOwner set, or this returns
// InvalidAuthorization without calling the TokenGenerator or Backend.
func (e *Engine) IssueTokenAndRefresh(ctx context.Context, a Authorization) (context.Context, Response, error) {
	if !a.HasClient() || !a.HasResourceOwner() {
		return ctx, Response{}, e.fail(InvalidAuthorization)
	}

	gc := newGrantContext(a, nowPlus(e.clock, a.TTL))

	accessToken, err := e.tokgen.Generate(ctx, gc)
	if err != nil {
		return ctx, Response{}, e.failWrap(err)
	}

	ctx, err = e.backend.AssociateAccessToken(ctx, accessToken, gc)
	if err != nil {
		return ctx, Response{}, e.failWrap(err)
	}

	refreshToken, err := e.tokgen.Generate(ctx, gc)
	if err != nil {
		return ctx, Response{}, e.failWrap(err)
	}

	ctx, err = e.backend.AssociateRefreshToken(ctx, refreshToken, gc)
	if err != nil {
		return ctx, Response{}, e.failWrap(err)
	}

	e.metrics.recordIssued("token_and_refresh")
	return ctx, Response{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		TTL:           a.TTL,
		ResourceOwner: a.ResourceOwner,
		Scope:         a.Scope,
	}, nil
}

// VerifyAccessCode resolves code and checks it has not expired. An
// unresolvable code is reported as InvalidGrant; an expired code is revoked
// best-effort and also reported as InvalidGrant.
func (e *Engine) VerifyAccessCode(ctx context.Context, code string) (context.Context, GrantContext, error) {
	ctx, gc, err := e.backend.ResolveAccessCode(ctx, code)
	if err != nil {
		return ctx, GrantContext{}, e.fail(InvalidGrant)
	}

	if gc.expired(e.clock.Now()) {
		var revokeErr error
		ctx, revokeErr = e.backend.RevokeAccessCode(ctx, code)
		_ = revokeErr // best-effort: swallowed per the expiry-path contract
		return ctx, GrantContext{}, e.fail(InvalidGrant)
	}

	return ctx, gc, nil
}

// VerifyAccessCodeForClient runs VerifyAccessCode, then additionally
// requires the resolved GrantContext's Client to equal client. A mismatch
// or missing client is reported as InvalidGrant.
func (e *Engine) VerifyAccessCodeForClient(ctx context.Context, code string, client ClientID) (context.Context, GrantContext, error) {
	ctx, gc, err := e.VerifyAccessCode(ctx, code)
	if err != nil {
		return ctx, GrantContext{}, err
	}

	if gc.Client == nil || *gc.Client != client {
		return ctx, GrantContext{}, e.fail(InvalidGrant)
	}

	return ctx, gc, nil
}

// VerifyAccessToken resolves token and checks it has not expired. An
// unresolvable token is reported as AccessDenied; an expired token is
// revoked best-effort and also reported as AccessDenied (NOT InvalidGrant — token verification is a resource-server
// semantic, distinct from authorization-server code exchange).
func (e *Engine) VerifyAccessToken(ctx context.Context, token string) (context.Context, GrantContext, error) {
	ctx, gc, err := e.backend.ResolveAccessToken(ctx, token)
	if err != nil {
		return ctx, GrantContext{}, e.fail(AccessDenied)
	}

	if gc.expired(e.clock.Now()) {
		var revokeErr error
		ctx, revokeErr = e.backend.RevokeAccessToken(ctx, token)
		_ = revokeErr
		return ctx, GrantContext{}, e.fail(AccessDenied)
	}

	return ctx, gc, nil
}

// RefreshAccessToken exchanges a refresh token for a new access token. The
// lifetime applied to the new access token is the password_credentials
// lifetime from Config — never the original grant's lifetime — and no new
// refresh token is issued; the caller keeps reusing the one it has.
//
// Steps: AuthenticateClient (failure -> InvalidClient); ResolveRefreshToken
// (failure -> InvalidGrant); expiry check (expired -> RevokeRefreshToken
// then InvalidGrant); client-equality check (mismatch -> InvalidGrant);
// VerifyScope (failure -> InvalidScope); IssueToken.
func (e *Engine) RefreshAccessToken(ctx context.Context, clientID, clientSecret, refreshToken string, requestedScope Scope) (context.Context, Response, error) {
	ctx, client, err := e.backend.AuthenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return ctx, Response{}, e.fail(InvalidClient)
	}

	ctx, gc, err := e.backend.ResolveRefreshToken(ctx, refreshToken)
	if err != nil {
		return ctx, Response{}, e.fail(InvalidGrant)
	}

	if gc.expired(e.clock.Now()) {
		ctx, err = e.backend.RevokeRefreshToken(ctx, refreshToken)
		if err != nil {
			logWarn(ctx, "grant: failed to revoke expired refresh token", "error", err)
		}
		return ctx, Response{}, e.fail(InvalidGrant)
	}

	if gc.Client == nil || *gc.Client != client {
		return ctx, Response{}, e.fail(InvalidGrant)
	}

	ctx, effective, err := e.backend.VerifyScope(ctx, gc.Scope, requestedScope)
	if err != nil {
		return ctx, Response{}, e.fail(InvalidScope)
	}

	if gc.ResourceOwner == nil {
		logError(ctx, "grant: resolved refresh token GrantContext has no resource_owner", "error", errMissingResourceOwner)
		return ctx, Response{}, e.failWrap(errMissingResourceOwner)
	}

	a := Authorization{
		Client:        &client,
		ResourceOwner: gc.ResourceOwner,
		Scope:         effective,
		TTL:           e.ttlPasswordCredentials,
	}

	return e.IssueToken(ctx, a)
}
