package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type OAuthClient struct {
	ClientID     string `gorm:"primaryKey"`
	ClientSecret string `gorm:"not null"` // bcrypt hashed secret
	ClientName   string `gorm:"not null"`
	Description  string `gorm:"type:text"`
	Scopes       string `gorm:"not null"` // space-separated granted scopes
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the table name used by OAuthClient to `oauth_clients`
func (OAuthClient) TableName() string {
	return "oauth_clients"
}

// ValidateClientSecret compares a plain secret against the stored bcrypt hash.
func (c *OAuthClient) ValidateClientSecret(secret []byte) bool {
	if c.ClientSecret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.ClientSecret), secret) == nil
}

// GrantedScopes returns the granted scopes as a set.
func (c *OAuthClient) GrantedScopes() map[string]bool {
	return ScopeSet(c.Scopes)
}

// ScopeSet splits a whitespace-separated scope string into a set.
func ScopeSet(scopes string) map[string]bool {
	set := make(map[string]bool)
	for _, s := range strings.Fields(scopes) {
		set[s] = true
	}
	return set
}
