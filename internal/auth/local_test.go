package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/mepla/Enchilada/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("not found")

type userStoreStub struct {
	byEmail map[string]*models.User
}

func (s *userStoreStub) GetUserByID(context.Context, string) (*models.User, error) {
	return nil, errNotFound
}

func (s *userStoreStub) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (s *userStoreStub) CountUsersByUDID(context.Context, string) (int64, error) { return 0, nil }
func (s *userStoreStub) CreateUser(context.Context, *models.User) error { return nil }
func (s *userStoreStub) UpdateUser(context.Context, *models.User) error { return nil }
func (s *userStoreStub) DeleteUser(context.Context, string) error { return nil }

func TestLocalAuthProvider_Authenticate(t *testing.T) {
	verifier := PBKDF2Verifier{}
	user := &models.User{ID: "uid_42", Email: "ana@example.com"}
	user.PasswordHash = verifier.Hash("pa55word", user.ID, user.Email)

	provider := NewLocalAuthProvider(&userStoreStub{
		byEmail: map[string]*models.User{user.Email: user},
	}, verifier)
	assert.Equal(t, "local", provider.Name())

	t.Run("valid credentials", func(t *testing.T) {
		res, err := provider.Authenticate(context.Background(), "ana@example.com", "pa55word")
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "uid_42", res.UID)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		_, errEmail := provider.Authenticate(context.Background(), "bob@example.com", "pa55word")
		_, errPass := provider.Authenticate(context.Background(), "ana@example.com", "nope")
		assert.ErrorIs(t, errEmail, ErrInvalidCredentials)
		assert.ErrorIs(t, errPass, ErrInvalidCredentials)
		assert.Equal(t, errEmail.Error(), errPass.Error())
	})
}
