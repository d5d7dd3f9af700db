package store

import (
	"context"
	"fmt"
	"log"

	"github.com/mepla/Enchilada/internal/core"
	"github.com/mepla/Enchilada/internal/models"

	"gorm.io/gorm"
)

var (
	_ core.ClientStore  = (*Store)(nil)
	_ core.UserStore    = (*Store)(nil)
	_ core.TokenStore   = (*Store)(nil)
	_ core.PolicyStore  = (*Store)(nil)
	_ core.AuditStore   = (*Store)(nil)
	_ core.MetricsStore = (*Store)(nil)
)

type Store struct {
	db *gorm.DB
}

// New opens the database, migrates the schema and seeds default data when the
// client and scope tables are empty.
func New(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := openDB(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).AutoMigrate(
		&models.OAuthClient{},
		&models.User{},
		&models.ScopeDefinition{},
		&models.ScopePattern{},
		&models.AccessToken{},
		&models.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	store := &Store{db: db}

	if err := store.seedData(ctx); err != nil {
		log.Printf("Warning: failed to seed data: %v", err)
	}

	return store, nil
}

// Health checks the database connection
func (s *Store) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DB returns the underlying GORM database connection (for transactions)
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
