package auth

import (
	"context"

	"github.com/mepla/Enchilada/internal/core"
)

var _ core.AuthProvider = (*LocalAuthProvider)(nil)

// LocalAuthProvider handles local database authentication
type LocalAuthProvider struct {
	users    core.UserStore
	verifier core.PasswordVerifier
}

// NewLocalAuthProvider creates a new local authentication provider
func NewLocalAuthProvider(users core.UserStore, verifier core.PasswordVerifier) *LocalAuthProvider {
	return &LocalAuthProvider{users: users, verifier: verifier}
}

// Authenticate verifies an email/password pair against the user store. An
// unknown email and a wrong password fail with the same error.
func (p *LocalAuthProvider) Authenticate(
	ctx context.Context,
	email, password string,
) (*Result, error) {
	user, err := p.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !p.verifier.Compare(password, user.PasswordHash, user.ID, user.Email) {
		return nil, ErrInvalidCredentials
	}

	return &Result{
		UID:     user.ID,
		Email:   user.Email,
		Success: true,
	}, nil
}

// Name returns provider name for logging
func (p *LocalAuthProvider) Name() string {
	return "local"
}
