package bootstrap

import (
	"context"
	"fmt"

	"github.com/mepla/Enchilada/internal/config"
	"github.com/mepla/Enchilada/internal/policy"
	"github.com/mepla/Enchilada/internal/store"
)

// initializeDatabase creates and initializes the database connection
func initializeDatabase(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.DBInitTimeout)
	defer cancel()

	db, err := store.New(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

// applyPolicyFile upserts the clients and scopes of POLICY_FILE, if set.
func applyPolicyFile(ctx context.Context, cfg *config.Config, db *store.Store) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.DBInitTimeout)
	defer cancel()

	if err := policy.LoadAndApply(ctx, cfg.PolicyFile, db); err != nil {
		return fmt.Errorf("failed to apply policy file: %w", err)
	}
	return nil
}
