package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mepla/Enchilada/internal/core"
	"github.com/mepla/Enchilada/internal/models"
	"github.com/mepla/Enchilada/internal/store"
	"github.com/mepla/Enchilada/internal/util"

	"github.com/google/uuid"
)

// DefaultTokenTTL applies when Issue is called with a non-positive ttl.
const DefaultTokenTTL = 7 * 24 * time.Hour

// tokenBytes is the entropy of each access and refresh token value.
const tokenBytes = 32

// Grant types, used as metric labels.
const (
	GrantTypePassword     = "password"
	GrantTypeRefreshToken = "refresh_token"
)

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTokenNotFound       = errors.New("token not found")
)

type TokenService struct {
	clients      core.ClientStore
	tokens       core.TokenStore
	defaultTTL   time.Duration
	auditService *AuditService
	metrics      core.Recorder
	now          func() time.Time
}

func NewTokenService(
	clients core.ClientStore,
	tokens core.TokenStore,
	defaultTTL time.Duration,
	auditService *AuditService,
	m core.Recorder,
) *TokenService {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTokenTTL
	}
	return &TokenService{
		clients:      clients,
		tokens:       tokens,
		defaultTTL:   defaultTTL,
		auditService: auditService,
		metrics:      m,
		now:          time.Now,
	}
}

// Issue creates and persists a new token pair for uid. The returned token
// carries the raw access and refresh values; only their hashes are stored.
func (s *TokenService) Issue(
	ctx context.Context,
	uid, clientID, scope string,
	ttl time.Duration,
) (*models.AccessToken, error) {
	return s.issue(ctx, uid, clientID, scope, ttl, "", GrantTypePassword)
}

// Refresh issues a new token with the uid, client, scope and lifetime of the
// token the refresh value belongs to. The old token stays valid. When
// clientID is non-empty the refresh token must have been issued to it.
func (s *TokenService) Refresh(ctx context.Context, refreshToken, clientID string) (*models.AccessToken, error) {
	if refreshToken == "" {
		s.metrics.RecordTokenRefresh(false)
		return nil, ErrInvalidRefreshToken
	}

	old, err := s.tokens.GetAccessTokenByRefreshHash(ctx, util.SHA256Hex(refreshToken))
	if err != nil {
		s.metrics.RecordTokenRefresh(false)
		return nil, ErrInvalidRefreshToken
	}
	if clientID != "" && old.ClientID != clientID {
		log.Printf("[Token] Refresh token of client %s presented by %s", old.ClientID, clientID)
		s.metrics.RecordTokenRefresh(false)
		return nil, ErrInvalidRefreshToken
	}

	tok, err := s.issue(ctx, old.UserID, old.ClientID, old.Scope, old.Lifetime(), old.ID, GrantTypeRefreshToken)
	if err != nil {
		s.metrics.RecordTokenRefresh(false)
		return nil, err
	}

	s.metrics.RecordTokenRefresh(true)
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventTokenRefreshed,
		UserID:       tok.UserID,
		ClientID:     tok.ClientID,
		Scope:        tok.Scope,
		ResourceType: models.ResourceToken,
		ResourceID:   tok.ID,
		Action:       "Token refreshed",
		Details:      models.AuditDetails{"parent_token_id": old.ID},
		Success:      true,
	})
	return tok, nil
}

// Lookup resolves a raw access token value.
func (s *TokenService) Lookup(ctx context.Context, accessToken string) (*models.AccessToken, error) {
	if accessToken == "" {
		return nil, ErrTokenNotFound
	}
	tok, err := s.tokens.GetAccessTokenByHash(ctx, util.SHA256Hex(accessToken))
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	return tok, nil
}

func (s *TokenService) issue(
	ctx context.Context,
	uid, clientID, scope string,
	ttl time.Duration,
	parentID, grantType string,
) (*models.AccessToken, error) {
	start := time.Now()

	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil || !client.IsActive {
		return nil, ErrClientDoesNotExist
	}

	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	access, err := util.RandomToken(tokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := util.RandomToken(tokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Whole seconds, so the stored issue date compares exactly on every driver.
	issued := s.now().UTC().Truncate(time.Second)
	tok := &models.AccessToken{
		ID:               uuid.New().String(),
		AccessTokenHash:  util.SHA256Hex(access),
		RefreshTokenHash: util.SHA256Hex(refresh),
		RawAccessToken:   access,
		RawRefreshToken:  refresh,
		TokenType:        models.TokenTypeBearer,
		Scope:            scope,
		UserID:           uid,
		ClientID:         clientID,
		IssueDate:        issued,
		ExpiresIn:        int64(ttl / time.Second),
		ExpiresAt:        issued.Add(ttl),
		ParentTokenID:    parentID,
	}

	if err := s.tokens.CreateAccessToken(ctx, tok); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}

	s.metrics.RecordTokenIssued(grantType, time.Since(start))
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventAccessTokenIssued,
		UserID:       uid,
		ClientID:     clientID,
		Scope:        scope,
		ResourceType: models.ResourceToken,
		ResourceID:   tok.ID,
		Action:       "Access token issued",
		Details: models.AuditDetails{
			"grant_type": grantType,
			"expires_in": tok.ExpiresIn,
		},
		Success: true,
	})

	return tok, nil
}
