package grant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Property 3: issuance uses absolute expiry.
func TestIssueTokenUsesAbsoluteExpiry(t *testing.T) {
	backend := newStubBackend()
	e := newTestEngine(backend, &stubTokenGenerator{queue: []string{"T"}}, fixedClock{now: 1000})

	owner := ResourceOwnerID("alice")
	a := Authorization{ResourceOwner: &owner, Scope: Scope{"read"}, TTL: 10}

	_, resp, err := e.IssueToken(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "T", resp.AccessToken)

	gc, ok := backend.tokens["T"]
	require.True(t, ok)
	assert.EqualValues(t, 1010, gc.ExpiryTime)
}

// S5: issue_token_and_refresh requires both client and resource_owner.
func TestIssueTokenAndRefreshRequiresBoth(t *testing.T) {
	backend := newStubBackend()
	tokgen := &stubTokenGenerator{}
	e := newTestEngine(backend, tokgen, fixedClock{now: 1000})

	client := ClientID("c1")
	missingOwner := Authorization{Client: &client, Scope: Scope{"r"}, TTL: 10}

	_, _, err := e.IssueTokenAndRefresh(context.Background(), missingOwner)
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidAuthorization))
	assert.Zero(t, tokgen.calls)
	assert.Empty(t, backend.associatedTokens)
	assert.Empty(t, backend.associatedRefresh)
}

// Happy-path half of S5: both collaborators bound yields both
// tokens, associated in order, sharing one GrantContext.
func TestIssueTokenAndRefreshHappyPath(t *testing.T) {
	backend := newStubBackend()
	tokgen := &stubTokenGenerator{queue: []string{"ACCESS", "REFRESH"}}
	e := newTestEngine(backend, tokgen, fixedClock{now: 1000})

	client := ClientID("c1")
	owner := ResourceOwnerID("alice")
	a := Authorization{Client: &client, ResourceOwner: &owner, Scope: Scope{"r"}, TTL: 10}

	_, resp, err := e.IssueTokenAndRefresh(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "ACCESS", resp.AccessToken)
	assert.Equal(t, "REFRESH", resp.RefreshToken)

	require.Len(t, backend.associatedTokens, 1)
	require.Len(t, backend.associatedRefresh, 1)
	assert.Equal(t, []string{"ACCESS"}, backend.associatedTokens)
	assert.Equal(t, []string{"REFRESH"}, backend.associatedRefresh)

	accessGC := backend.tokens["ACCESS"]
	refreshGC := backend.refresh["REFRESH"]
	assert.Equal(t, accessGC, refreshGC)
	assert.EqualValues(t, 1010, accessGC.ExpiryTime)
}

// Property 4: single-use codes, from the verify side. (The authorize_code_grant
// side is covered by TestAuthorizeCodeGrantAndRevoke.)
func TestVerifyAccessCodeSingleUse(t *testing.T) {
	backend := newStubBackend()
	e := newTestEngine(backend, &stubTokenGenerator{}, fixedClock{now: 1000})

	owner := ResourceOwnerID("alice")
	backend.codes["C"] = GrantContext{ResourceOwner: &owner, ExpiryTime: 1060, Scope: Scope{"read"}}

	ctx, gc, err := e.VerifyAccessCode(context.Background(), "C")
	require.NoError(t, err)
	assert.Equal(t, Scope{"read"}, gc.Scope)

	_, err = backend.RevokeAccessCode(ctx, "C")
	require.NoError(t, err)

	_, _, err = e.VerifyAccessCode(ctx, "C")
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidGrant))
}

// Property 5: expiry causes revoke-and-deny, for both access tokens
// (access_denied) and access codes (invalid_grant).
func TestVerifyAccessTokenExpiryRevokesAndDenies(t *testing.T) {
	backend := newStubBackend()
	e := newTestEngine(backend, &stubTokenGenerator{}, fixedClock{now: 2000})

	backend.tokens["T"] = GrantContext{ExpiryTime: 1000, Scope: Scope{"read"}}

	_, _, err := e.VerifyAccessToken(context.Background(), "T")
	require.Error(t, err)
	assert.True(t, IsKind(err, AccessDenied))
	assert.Equal(t, []string{"T"}, backend.revokedTokens)
}

func TestVerifyAccessCodeExpiryRevokesAndDenies(t *testing.T) {
	backend := newStubBackend()
	e := newTestEngine(backend, &stubTokenGenerator{}, fixedClock{now: 2000})

	backend.codes["C"] = GrantContext{ExpiryTime: 1000, Scope: Scope{"read"}}

	_, _, err := e.VerifyAccessCode(context.Background(), "C")
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidGrant))
	assert.Equal(t, []string{"C"}, backend.revokedCodes)
}

// S6 / Property 9: refresh happy path narrows scope, reuses the
// password_credentials lifetime, and never issues a new refresh token.
func TestRefreshAccessTokenHappyPath(t *testing.T) {
	backend := newStubBackend()
	backend.clients["c1"] = "c1"
	client := ClientID("c1")
	owner := ResourceOwnerID("alice")
	backend.refresh["R"] = GrantContext{Client: &client, ResourceOwner: &owner, ExpiryTime: 2000, Scope: Scope{"a", "b"}}

	e := newTestEngine(backend, &stubTokenGenerator{queue: []string{"NEWACCESS"}}, fixedClock{now: 1000})

	_, resp, err := e.RefreshAccessToken(context.Background(), "c1", "s1", "R", Scope{"a"})
	require.NoError(t, err)
	assert.Equal(t, "NEWACCESS", resp.AccessToken)
	assert.Empty(t, resp.RefreshToken)
	assert.Equal(t, Scope{"a"}, resp.Scope)
	assert.EqualValues(t, 3600, resp.TTL)
}

func TestRefreshAccessTokenExpired(t *testing.T) {
	backend := newStubBackend()
	backend.clients["c1"] = "c1"
	client := ClientID("c1")
	owner := ResourceOwnerID("alice")
	backend.refresh["R"] = GrantContext{Client: &client, ResourceOwner: &owner, ExpiryTime: 500, Scope: Scope{"a"}}

	e := newTestEngine(backend, &stubTokenGenerator{}, fixedClock{now: 1000})

	_, _, err := e.RefreshAccessToken(context.Background(), "c1", "s1", "R", nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidGrant))
	assert.Equal(t, []string{"R"}, backend.revokedRefresh)
}

func TestRefreshAccessTokenMissingResourceOwnerIsServerError(t *testing.T) {
	backend := newStubBackend()
	backend.clients["c1"] = "c1"
	client := ClientID("c1")
	backend.refresh["R"] = GrantContext{Client: &client, ExpiryTime: 2000, Scope: Scope{"a"}}

	e := newTestEngine(backend, &stubTokenGenerator{}, fixedClock{now: 1000})

	_, _, err := e.RefreshAccessToken(context.Background(), "c1", "s1", "R", nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, ServerError))
}

func TestRefreshAccessTokenClientMismatch(t *testing.T) {
	backend := newStubBackend()
	backend.clients["c1"] = "c1"
	other := ClientID("c2")
	owner := ResourceOwnerID("alice")
	backend.refresh["R"] = GrantContext{Client: &other, ResourceOwner: &owner, ExpiryTime: 2000, Scope: Scope{"a"}}

	e := newTestEngine(backend, &stubTokenGenerator{}, fixedClock{now: 1000})

	_, _, err := e.RefreshAccessToken(context.Background(), "c1", "s1", "R", nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidGrant))
}
