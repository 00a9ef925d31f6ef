// Package store collects reference implementations of the engine's Backend
// contract and the shared password-hashing support they use for
// authenticate_username_password.
package store

import "golang.org/x/crypto/bcrypt"

// Hasher allows password hashing to be customized per Backend.
type Hasher interface {
	// Generate produces a hashed password from a plaintext password.
	Generate(password []byte) ([]byte, error)

	// Compare checks a hashed password against a plaintext password.
	Compare(hashedPassword, password []byte) error
}

// DefaultHasher hashes and compares passwords with bcrypt.
var DefaultHasher Hasher = bcryptHasher{}

// TestHasher stores passwords verbatim. Useful for fixtures where hashing
// cost would only slow down a test suite.
var TestHasher Hasher = testHasher{}

type bcryptHasher struct{}

func (bcryptHasher) Generate(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
}

func (bcryptHasher) Compare(hashedPassword, password []byte) error {
	return bcrypt.CompareHashAndPassword(hashedPassword, password)
}

type testHasher struct{}

func (testHasher) Generate(password []byte) ([]byte, error) {
	return password, nil
}

func (testHasher) Compare(hashedPassword, password []byte) error {
	if string(hashedPassword) != string(password) {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return nil
}
