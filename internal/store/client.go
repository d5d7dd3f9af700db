package store

import (
	"context"

	"github.com/mepla/Enchilada/internal/models"

	"gorm.io/gorm/clause"
)

// GetClient returns the client with the given id.
func (s *Store) GetClient(ctx context.Context, clientID string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("client_id = ?", clientID).First(&client).Error; err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

func (s *Store) ListClients(ctx context.Context) ([]models.OAuthClient, error) {
	var clients []models.OAuthClient
	err := s.db.WithContext(ctx).Order("client_id").Find(&clients).Error
	return clients, err
}

// UpsertClient inserts the client or replaces every column of an existing one.
func (s *Store) UpsertClient(ctx context.Context, client *models.OAuthClient) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"client_secret", "client_name", "description", "scopes", "is_active", "updated_at",
			}),
		}).
		Create(client).Error
}
