package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/mepla/Enchilada/internal/core"
	"github.com/mepla/Enchilada/internal/models"
)

var (
	ErrClientDoesNotExist    = errors.New("client does not exist")
	ErrClientNotAuthorized   = errors.New("client is not authorized")
	ErrClientWithWrongScopes = errors.New("client is not granted the requested scopes")
)

// Client authentication results, used as metric labels.
const (
	clientAuthSuccess     = "success"
	clientAuthNotFound    = "not_found"
	clientAuthBadSecret   = "bad_secret"
	clientAuthWrongScopes = "wrong_scopes"
)

type ClientService struct {
	store        core.ClientStore
	auditService *AuditService
	metrics      core.Recorder
}

func NewClientService(s core.ClientStore, auditService *AuditService, m core.Recorder) *ClientService {
	return &ClientService{store: s, auditService: auditService, metrics: m}
}

// VerifyClient checks the client id and secret without looking at scopes.
func (s *ClientService) VerifyClient(
	ctx context.Context,
	clientID, clientSecret string,
) (*models.OAuthClient, error) {
	client, err := s.store.GetClient(ctx, clientID)
	if err != nil || !client.IsActive {
		if err != nil {
			log.Printf("[Client] Lookup failed for %q: %v", clientID, err)
		}
		s.reject(ctx, clientID, clientAuthNotFound, ErrClientDoesNotExist)
		return nil, ErrClientDoesNotExist
	}

	if !client.ValidateClientSecret([]byte(clientSecret)) {
		s.reject(ctx, clientID, clientAuthBadSecret, ErrClientNotAuthorized)
		return nil, ErrClientNotAuthorized
	}

	return client, nil
}

// AuthenticateClient succeeds when the secret matches and every requested
// scope name is granted to the client. An empty request is rejected because
// every token must carry a scope.
func (s *ClientService) AuthenticateClient(
	ctx context.Context,
	clientID, clientSecret, requestedScope string,
) error {
	client, err := s.VerifyClient(ctx, clientID, clientSecret)
	if err != nil {
		return err
	}

	if !scopeSubset(requestedScope, client.Scopes) {
		s.reject(ctx, clientID, clientAuthWrongScopes, ErrClientWithWrongScopes)
		return ErrClientWithWrongScopes
	}

	s.metrics.RecordClientAuthentication(clientAuthSuccess)
	return nil
}

func (s *ClientService) reject(ctx context.Context, clientID, result string, reason error) {
	s.metrics.RecordClientAuthentication(result)
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventClientRejected,
		Severity:     models.SeverityWarning,
		ResourceType: models.ResourceClient,
		ResourceID:   clientID,
		Action:       "Client authentication failed",
		Success:      false,
		ErrorMessage: reason.Error(),
	})
}

// scopeSubset reports whether requested is a non-empty subset of granted,
// both whitespace-separated.
func scopeSubset(requested, granted string) bool {
	names := strings.Fields(requested)
	if len(names) == 0 {
		return false
	}

	allowed := models.ScopeSet(granted)
	for _, name := range names {
		if !allowed[name] {
			return false
		}
	}
	return true
}
