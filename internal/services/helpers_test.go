package services

import (
	"context"
	"testing"

	"github.com/mepla/Enchilada/internal/auth"
	"github.com/mepla/Enchilada/internal/metrics"
	"github.com/mepla/Enchilada/internal/models"
	"github.com/mepla/Enchilada/internal/store"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createTestClient(t *testing.T, s *store.Store, clientID, secret, scopes string) *models.OAuthClient {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)

	client := &models.OAuthClient{
		ClientID:     clientID,
		ClientSecret: string(hash),
		ClientName:   "Test Client " + clientID,
		Scopes:       scopes,
		IsActive:     true,
	}
	require.NoError(t, s.UpsertClient(context.Background(), client))
	return client
}

func createTestScope(t *testing.T, s *store.Store, name string, templates ...string) {
	t.Helper()
	require.NoError(t, s.UpsertScopeDefinition(
		context.Background(),
		models.NewScopeDefinition(name, "", templates...),
	))
}

// testServices wires the services the way bootstrap does, with audit logging off.
type testServices struct {
	store   *store.Store
	audit   *AuditService
	clients *ClientService
	tokens  *TokenService
	scopes  *ScopeService
	gate    *Gate
	users   *UserService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	s := setupTestStore(t)
	m := metrics.NewNoopMetrics()
	audit := NewAuditService(s, false, 0)
	verifier := auth.PBKDF2Verifier{}

	tokens := NewTokenService(s, s, 0, audit, m)
	scopes := NewScopeService(s, audit)
	return &testServices{
		store:   s,
		audit:   audit,
		clients: NewClientService(s, audit, m),
		tokens:  tokens,
		scopes:  scopes,
		gate:    NewGate(tokens, scopes, audit, m),
		users: NewUserService(
			s, auth.NewLocalAuthProvider(s, verifier), verifier, 3, audit, m,
		),
	}
}
