package store

import (
	"context"
	"time"

	"github.com/mepla/Enchilada/internal/models"
)

func (s *Store) CreateAccessToken(ctx context.Context, token *models.AccessToken) error {
	return s.db.WithContext(ctx).Create(token).Error
}

// GetAccessTokenByHash looks a token up by the SHA-256 hex of its access value.
func (s *Store) GetAccessTokenByHash(ctx context.Context, accessHash string) (*models.AccessToken, error) {
	var t models.AccessToken
	if err := s.db.WithContext(ctx).Where("access_token_hash = ?", accessHash).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// GetAccessTokenByRefreshHash looks a token up by the SHA-256 hex of its refresh value.
func (s *Store) GetAccessTokenByRefreshHash(
	ctx context.Context,
	refreshHash string,
) (*models.AccessToken, error) {
	var t models.AccessToken
	if err := s.db.WithContext(ctx).Where("refresh_token_hash = ?", refreshHash).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// CountActiveTokens counts tokens whose expiry lies after now.
func (s *Store) CountActiveTokens(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.AccessToken{}).
		Where("expires_at >= ?", now).
		Count(&count).Error
	return count, err
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}
