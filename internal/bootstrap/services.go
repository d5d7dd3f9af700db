package bootstrap

import (
	"fmt"

	"github.com/mepla/Enchilada/internal/auth"
	"github.com/mepla/Enchilada/internal/config"
	"github.com/mepla/Enchilada/internal/metrics"
	"github.com/mepla/Enchilada/internal/services"
	"github.com/mepla/Enchilada/internal/store"
)

type serviceSet struct {
	client *services.ClientService
	token  *services.TokenService
	scope  *services.ScopeService
	user   *services.UserService
	gate   *services.Gate
}

// initializeServices creates all business logic services
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	auditService *services.AuditService,
	prometheusMetrics metrics.Recorder,
) (serviceSet, error) {
	verifier, err := auth.NewPasswordVerifier(cfg.PasswordHashScheme)
	if err != nil {
		return serviceSet{}, fmt.Errorf("failed to create password verifier: %w", err)
	}
	localProvider := auth.NewLocalAuthProvider(db, verifier)

	tokenService := services.NewTokenService(db, db, cfg.AccessTokenTTL, auditService, prometheusMetrics)
	scopeService := services.NewScopeService(db, auditService)

	return serviceSet{
		client: services.NewClientService(db, auditService, prometheusMetrics),
		token:  tokenService,
		scope:  scopeService,
		user: services.NewUserService(
			db,
			localProvider,
			verifier,
			cfg.MaxUsersPerUDID,
			auditService,
			prometheusMetrics,
		),
		gate: services.NewGate(tokenService, scopeService, auditService, prometheusMetrics),
	}, nil
}
