// Package grant implements the core grant/flow state machine of an OAuth
// 2.0 (RFC 6749) authorization server: the Resource Owner Password
// Credentials, Client Credentials, Authorization Code, Implicit and Refresh
// Token flows.
//
// The package itself does not speak HTTP, does not parse requests, does not
// serialize responses, and does not own storage or token cryptography. Those
// concerns belong to the Backend, TokenGenerator, Config and ResponseShaper
// interfaces, which callers supply. See the store and tokengen subpackages
// for reference implementations of the first two.
//
// Every public Engine method threads a context.Context through every
// Backend call in the order documented on that method, and maps Backend
// failures onto the closed Error enumeration documented in errors.go. No
// other error kind ever crosses the Engine boundary.
package grant
