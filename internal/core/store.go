package core

import (
	"context"
	"time"

	"github.com/mepla/Enchilada/internal/models"
)

// ClientStore looks up registered API clients.
type ClientStore interface {
	GetClient(ctx context.Context, clientID string) (*models.OAuthClient, error)
}

// UserStore persists resource owners.
type UserStore interface {
	GetUserByID(ctx context.Context, uid string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CountUsersByUDID(ctx context.Context, udid string) (int64, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, uid string) error
}

// TokenStore is the durable record of issued tokens. Tokens are keyed by the
// SHA-256 hex digest of the raw access and refresh token values.
type TokenStore interface {
	CreateAccessToken(ctx context.Context, token *models.AccessToken) error
	GetAccessTokenByHash(ctx context.Context, accessHash string) (*models.AccessToken, error)
	GetAccessTokenByRefreshHash(ctx context.Context, refreshHash string) (*models.AccessToken, error)
}

// PolicyStore resolves scope names to their ordered path-pattern templates.
type PolicyStore interface {
	GetScopeDefinition(ctx context.Context, name string) (*models.ScopeDefinition, error)
}

// AuditStore persists audit log entries.
type AuditStore interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
	CreateAuditLogBatch(ctx context.Context, entries []*models.AuditLog) error
	DeleteOldAuditLogs(ctx context.Context, before time.Time) (int64, error)
}

// MetricsStore defines the DB operations needed by the metrics gauge updater.
type MetricsStore interface {
	CountActiveTokens(ctx context.Context, now time.Time) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
}
