package store

import (
	"context"
	"log"

	"github.com/mepla/Enchilada/internal/models"
	"github.com/mepla/Enchilada/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// DefaultScopeDefinitions are installed when no scope definitions exist.
func DefaultScopeDefinitions() []*models.ScopeDefinition {
	return []*models.ScopeDefinition{
		models.NewScopeDefinition("self_only", "Read and update the caller's own user",
			"get /users/{self}",
			"put /users/{self}",
			"get /tokeninfo",
		),
		models.NewScopeDefinition("admin", "Full access to users",
			"get /users",
			"put /users",
			"delete /users",
			"get /tokeninfo",
		),
	}
}

func (s *Store) seedData(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	var scopeCount int64
	if err := db.Model(&models.ScopeDefinition{}).Count(&scopeCount).Error; err != nil {
		return err
	}
	if scopeCount == 0 {
		for _, def := range DefaultScopeDefinitions() {
			if err := s.UpsertScopeDefinition(ctx, def); err != nil {
				return err
			}
		}
		log.Printf("Created default scope definitions: self_only, admin")
	}

	var clientCount int64
	if err := db.Model(&models.OAuthClient{}).Count(&clientCount).Error; err != nil {
		return err
	}
	if clientCount == 0 {
		clientID, err := util.RandomToken(16)
		if err != nil {
			return err
		}
		clientSecret, err := util.RandomToken(24)
		if err != nil {
			return err
		}
		secretHash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		client := &models.OAuthClient{
			ClientID:     clientID,
			ClientSecret: string(secretHash),
			ClientName:   "Default client",
			Description:  "Created on first start",
			Scopes:       "self_only",
			IsActive:     true,
		}
		if err := db.Create(client).Error; err != nil {
			return err
		}
		log.Printf("Created default client: %s (scopes: %s)", clientID, client.Scopes)
		log.Printf("Client Secret (save this): %s", clientSecret)
	}

	return nil
}
