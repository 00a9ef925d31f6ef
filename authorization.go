package grant

// Authorization is the engine's intermediate, pre-issuance record. It is
// produced by an authorize_* operation and consumed exactly once by an
// issue_* operation. The engine does not persist or cache it; what a caller
// does between authorization and issuance is outside the engine's
// guarantees.
type Authorization struct {
	// Client is the authenticated client, if any. Absent for pure
	// resource-owner flows using a public client.
	Client *ClientID

	// ResourceOwner is the authenticated resource owner, if any. Absent for
	// the Client Credentials grant.
	ResourceOwner *ResourceOwnerID

	// Scope is the effective scope granted, as returned by whichever
	// Backend scope-verifier produced it.
	Scope Scope

	// TTL is the RELATIVE lifetime, in seconds, of the artifact about to be
	// issued from this Authorization. It is resolved at construction time
	// from Config and is not recomputed later.
	TTL int64
}

// HasClient reports whether a is bound to a client.
func (a Authorization) HasClient() bool {
	return a.Client != nil
}

// HasResourceOwner reports whether a is bound to a resource owner.
func (a Authorization) HasResourceOwner() bool {
	return a.ResourceOwner != nil
}

// withClient returns a copy of a with Client set. Used by the confidential
// and implicit variants of authorize_password to enrich the public
// variant's result without mutating the original value.
func (a Authorization) withClient(client ClientID) Authorization {
	a.Client = &client
	return a
}
