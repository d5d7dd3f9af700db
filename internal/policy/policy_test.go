package policy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mepla/Enchilada/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const sample = `
clients:
  - client_id: mobile
    secret: s3cret
    scopes: [self_only, admin]
  - client_id: legacy
    secret: old
    disabled: true
scopes:
  - name: self_only
    description: own profile
    patterns:
      - get /users/{self}
      - put /users/{self}
`

type recordingWriter struct {
	clients []*models.OAuthClient
	scopes  []*models.ScopeDefinition
	err     error
}

func (w *recordingWriter) UpsertClient(_ context.Context, c *models.OAuthClient) error {
	w.clients = append(w.clients, c)
	return w.err
}

func (w *recordingWriter) UpsertScopeDefinition(_ context.Context, d *models.ScopeDefinition) error {
	w.scopes = append(w.scopes, d)
	return w.err
}

func TestParseAndApply(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	w := &recordingWriter{}
	require.NoError(t, f.Apply(context.Background(), w))

	require.Len(t, w.scopes, 1)
	assert.Equal(t, "self_only", w.scopes[0].Name)
	assert.Equal(t, []string{"get /users/{self}", "put /users/{self}"}, w.scopes[0].Templates())

	require.Len(t, w.clients, 2)
	mobile := w.clients[0]
	assert.Equal(t, "mobile", mobile.ClientName)
	assert.Equal(t, "self_only admin", mobile.Scopes)
	assert.True(t, mobile.IsActive)
	assert.NotEqual(t, "s3cret", mobile.ClientSecret)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(mobile.ClientSecret), []byte("s3cret")))
	assert.False(t, w.clients[1].IsActive)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{name: "client id", doc: "clients:\n  - secret: x\n", want: ErrMissingClientID},
		{name: "client secret", doc: "clients:\n  - client_id: a\n", want: ErrMissingClientSecret},
		{name: "scope name", doc: "scopes:\n  - patterns: [get /x]\n", want: ErrMissingScopeName},
		{name: "scope patterns", doc: "scopes:\n  - name: empty\n", want: ErrEmptyScope},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Parse([]byte("clientz: []\n"))
	assert.Error(t, err, "unknown keys are rejected")
}

func TestParse_Empty(t *testing.T) {
	f, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, f.Clients)
	assert.Empty(t, f.Scopes)
}

func TestApply_WriterError(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = f.Apply(context.Background(), &recordingWriter{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestLoadAndApply(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, LoadAndApply(context.Background(), "", w))
	assert.Empty(t, w.clients)

	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	require.NoError(t, LoadAndApply(context.Background(), path, w))
	assert.Len(t, w.clients, 2)

	err := LoadAndApply(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), w)
	assert.Error(t, err)
}
