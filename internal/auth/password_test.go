package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordVerifier(t *testing.T) {
	v, err := NewPasswordVerifier("")
	require.NoError(t, err)
	assert.Equal(t, SchemePBKDF2, v.Name())

	v, err = NewPasswordVerifier(SchemeHMAC)
	require.NoError(t, err)
	assert.Equal(t, SchemeHMAC, v.Name())

	_, err = NewPasswordVerifier("md5")
	assert.ErrorIs(t, err, ErrUnknownHashScheme)
}

func TestPasswordVerifiers(t *testing.T) {
	for _, scheme := range []string{SchemeHMAC, SchemePBKDF2} {
		t.Run(scheme, func(t *testing.T) {
			v, err := NewPasswordVerifier(scheme)
			require.NoError(t, err)

			digest := v.Hash("hunter2", "uid_1", "a@b.co")
			require.NotEmpty(t, digest)

			t.Run("deterministic", func(t *testing.T) {
				assert.Equal(t, digest, v.Hash("hunter2", "uid_1", "a@b.co"))
			})

			t.Run("compare", func(t *testing.T) {
				assert.True(t, v.Compare("hunter2", digest, "uid_1", "a@b.co"))
				assert.False(t, v.Compare("hunter3", digest, "uid_1", "a@b.co"))
			})

			t.Run("keyed by owner", func(t *testing.T) {
				assert.NotEqual(t, digest, v.Hash("hunter2", "uid_2", "a@b.co"))
				assert.NotEqual(t, digest, v.Hash("hunter2", "uid_1", "c@d.co"))
				assert.False(t, v.Compare("hunter2", digest, "uid_2", "a@b.co"))
			})

			t.Run("missing input", func(t *testing.T) {
				assert.Empty(t, v.Hash("", "uid_1", "a@b.co"))
				assert.Empty(t, v.Hash("hunter2", "", "a@b.co"))
				assert.Empty(t, v.Hash("hunter2", "uid_1", ""))
				assert.False(t, v.Compare("", digest, "uid_1", "a@b.co"))
				assert.False(t, v.Compare("hunter2", "", "uid_1", "a@b.co"))
			})
		})
	}
}

func TestHMACVerifier_KnownDigest(t *testing.T) {
	// HMAC-SHA256(key="Jefe", msg="what do ya want for nothing?") split as uid+email.
	got := HMACVerifier{}.Hash("what do ya want for nothing?", "Je", "fe")
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", got)
}
