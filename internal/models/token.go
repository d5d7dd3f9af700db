package models

import (
	"time"
)

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "Bearer"

// AccessToken is an issued access/refresh token pair. Raw token values are
// never persisted; lookups go through their SHA-256 hex digests.
type AccessToken struct {
	ID               string `gorm:"primaryKey"`
	AccessTokenHash  string `gorm:"uniqueIndex;not null"`
	RefreshTokenHash string `gorm:"uniqueIndex;not null"`
	RawAccessToken   string `gorm:"-"` // In-memory only; never persisted to DB
	RawRefreshToken  string `gorm:"-"` // In-memory only; never persisted to DB
	TokenType        string `gorm:"not null;default:'Bearer'"`
	Scope            string `gorm:"not null"` // space-separated scope names
	UserID           string `gorm:"not null;index"`
	ClientID         string `gorm:"not null;index"`
	IssueDate        time.Time `gorm:"not null"`
	ExpiresIn        int64     `gorm:"not null"` // seconds
	ExpiresAt        time.Time `gorm:"index"`    // IssueDate + ExpiresIn, used for gauges
	ParentTokenID    string    `gorm:"index"`    // Token this one was refreshed from
	CreatedAt        time.Time
}

// TableName overrides the table name used by AccessToken to `tokens`
func (AccessToken) TableName() string {
	return "tokens"
}

// Lifetime returns ExpiresIn as a duration.
func (t *AccessToken) Lifetime() time.Duration {
	return time.Duration(t.ExpiresIn) * time.Second
}

// IsExpiredAt reports whether the token is expired at now. A token is still
// valid when exactly ExpiresIn seconds have elapsed since issuance.
func (t *AccessToken) IsExpiredAt(now time.Time) bool {
	return now.Sub(t.IssueDate) > t.Lifetime()
}
