package grant

// ClientID opaquely identifies an OAuth client. The engine never inspects
// its contents; it is compared for equality only.
type ClientID string

// ResourceOwnerID opaquely identifies an authenticated resource owner (end
// user). The engine never inspects its contents; it is compared for
// equality only.
type ResourceOwnerID string

// Scope is an ordered sequence of scope tokens. The engine treats Scope as
// opaque: it never parses or narrows it itself, it only persists and
// compares whatever a Backend scope-verifier returns.
type Scope []string

// Equal reports whether two scopes contain the same tokens in the same
// order.
func (s Scope) Equal(other Scope) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// grantKind names the per-grant-flow lifetime a Config is queried for.
type grantKind string

const (
	// PasswordCredentials is the lifetime used for tokens minted from the
	// Resource Owner Password Credentials grant, and the lifetime used for
	// access tokens reissued by RefreshAccessToken.
	PasswordCredentials grantKind = "password_credentials"

	// ClientCredentials is the lifetime used for tokens minted from the
	// Client Credentials grant.
	ClientCredentials grantKind = "client_credentials"

	// CodeGrant is the lifetime used for authorization codes minted by
	// AuthorizeCodeRequest.
	CodeGrant grantKind = "code_grant"
)
