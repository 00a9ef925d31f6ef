package store

import "github.com/dpup/grant"

// NarrowScope returns the subsequence of requested that also appears in
// registered, preserving requested's order. An empty requested scope
// narrows to the full registered scope. Every Backend implementation in
// this package applies the same narrowing policy so that swapping
// Backends does not change what scope a client or resource owner ends up
// with.
func NarrowScope(registered, requested grant.Scope) grant.Scope {
	if len(requested) == 0 {
		return registered
	}
	allowed := make(map[string]bool, len(registered))
	for _, s := range registered {
		allowed[s] = true
	}
	effective := make(grant.Scope, 0, len(requested))
	for _, s := range requested {
		if allowed[s] {
			effective = append(effective, s)
		}
	}
	return effective
}
