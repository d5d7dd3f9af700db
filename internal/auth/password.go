package auth

import (
	"fmt"
	"log"

	"github.com/mepla/Enchilada/internal/core"
	"github.com/mepla/Enchilada/internal/util"
)

// Password hash schemes.
const (
	SchemeHMAC   = "hmac"
	SchemePBKDF2 = "pbkdf2"
)

var (
	_ core.PasswordVerifier = (*HMACVerifier)(nil)
	_ core.PasswordVerifier = (*PBKDF2Verifier)(nil)
)

// NewPasswordVerifier returns the verifier for the named scheme. An empty
// scheme selects pbkdf2.
func NewPasswordVerifier(scheme string) (core.PasswordVerifier, error) {
	switch scheme {
	case "", SchemePBKDF2:
		return PBKDF2Verifier{}, nil
	case SchemeHMAC:
		return HMACVerifier{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHashScheme, scheme)
	}
}

// HMACVerifier keys HMAC-SHA256 with uid+email and signs the password.
type HMACVerifier struct{}

// Hash returns the hex digest, or "" when any input is empty.
func (HMACVerifier) Hash(password, uid, email string) string {
	if !hashInputsPresent(password, uid, email) {
		return ""
	}
	return util.HMACSHA256Hex(uid+email, password)
}

// Compare reports whether candidate hashes to digest.
func (v HMACVerifier) Compare(candidate, digest, uid, email string) bool {
	return compareDigest(v.Hash(candidate, uid, email), digest)
}

func (HMACVerifier) Name() string { return SchemeHMAC }

// PBKDF2Verifier derives a PBKDF2-SHA256 key using uid+email as salt.
type PBKDF2Verifier struct{}

// Hash returns the hex digest, or "" when any input is empty.
func (PBKDF2Verifier) Hash(password, uid, email string) string {
	if !hashInputsPresent(password, uid, email) {
		return ""
	}
	return util.PBKDF2Hex(password, uid+email)
}

// Compare reports whether candidate hashes to digest.
func (v PBKDF2Verifier) Compare(candidate, digest, uid, email string) bool {
	return compareDigest(v.Hash(candidate, uid, email), digest)
}

func (PBKDF2Verifier) Name() string { return SchemePBKDF2 }

func hashInputsPresent(password, uid, email string) bool {
	if password == "" || uid == "" || email == "" {
		log.Printf("[Auth] Password hash requested with missing input (uid=%q)", uid)
		return false
	}
	return true
}

func compareDigest(computed, digest string) bool {
	if computed == "" || digest == "" {
		return false
	}
	return util.EqualHex(computed, digest)
}
