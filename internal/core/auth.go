package core

import "context"

// AuthResult holds the outcome of a resource owner authentication attempt.
type AuthResult struct {
	UID     string
	Email   string
	Success bool
}

// AuthProvider is the interface that password-based resource owner
// authentication backends must implement.
type AuthProvider interface {
	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)
	Name() string
}

// PasswordVerifier hashes and compares resource owner passwords. The digest is
// keyed by the owner's uid and email so identical passwords never share a digest.
// Implementations must return an empty digest / false on missing arguments
// instead of failing.
type PasswordVerifier interface {
	Hash(password, uid, email string) string
	Compare(candidate, digest, uid, email string) bool
	Name() string
}
