package services

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mepla/Enchilada/internal/core"
	"github.com/mepla/Enchilada/internal/models"
)

// SelfAlias is the path segment and parameter value that stands for the caller.
const SelfAlias = "self"

var (
	ErrMissingClientIDHeader        = errors.New("missing client id header")
	ErrMalformedAuthorizationHeader = errors.New("malformed authorization header")
	ErrClientBindingMismatch        = errors.New("token was issued to another client")
	ErrTokenExpired                 = errors.New("token expired")
)

// Gate error codes returned to callers.
const (
	GateCodeMissingClientID        = "missing_client_id"
	GateCodeMalformedAuthorization = "malformed_authorization"
	GateCodeInvalidToken           = "invalid_token"
	GateCodeClientMismatch         = "client_mismatch"
	GateCodeTokenExpired           = "token_expired"
	GateCodeScopePolicyMissing     = "scope_policy_missing"
	GateCodeForbidden              = "forbidden"
	GateCodeServerError            = "server_error"

	gateResultAllow = "allow"
)

// GateRequest is the transport-independent view of an incoming request.
type GateRequest struct {
	ClientID      string
	Authorization string
	Method        string
	Path          string
	Params        map[string]string
	// CallerParam names a route parameter that always receives the caller's uid.
	CallerParam string
}

// GateResult is handed to the protected handler after every check passed.
type GateResult struct {
	UID      string
	Path     string
	Params   map[string]string
	Token    *models.AccessToken
	Decision *models.AuthorizationDecision
}

// GateError is a terminal gate failure with its HTTP status.
type GateError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *GateError) Error() string {
	return e.Code + ": " + e.Message
}

func (e *GateError) Unwrap() error {
	return e.Err
}

// Gate authenticates the bearer token of a request and authorizes the
// request against the token's scope.
type Gate struct {
	tokens       *TokenService
	scopes       *ScopeService
	auditService *AuditService
	metrics      core.Recorder
	now          func() time.Time
}

func NewGate(
	tokens *TokenService,
	scopes *ScopeService,
	auditService *AuditService,
	m core.Recorder,
) *Gate {
	return &Gate{
		tokens:       tokens,
		scopes:       scopes,
		auditService: auditService,
		metrics:      m,
		now:          time.Now,
	}
}

// Check runs the gate steps in order and stops at the first failure.
func (g *Gate) Check(ctx context.Context, req GateRequest) (*GateResult, *GateError) {
	start := time.Now()
	result, gerr := g.check(ctx, req)

	outcome := gateResultAllow
	if gerr != nil {
		outcome = gerr.Code
	}
	g.metrics.RecordGateDecision(outcome, time.Since(start))

	return result, gerr
}

func (g *Gate) check(ctx context.Context, req GateRequest) (*GateResult, *GateError) {
	if req.ClientID == "" {
		return nil, &GateError{
			Status:  http.StatusUnauthorized,
			Code:    GateCodeMissingClientID,
			Message: "Client id header is required",
			Err:     ErrMissingClientIDHeader,
		}
	}

	raw, ok := ParseBearer(req.Authorization)
	if !ok {
		return nil, &GateError{
			Status:  http.StatusUnauthorized,
			Code:    GateCodeMalformedAuthorization,
			Message: "Authorization header must be 'Bearer <token>'",
			Err:     ErrMalformedAuthorizationHeader,
		}
	}

	tok, err := g.tokens.Lookup(ctx, raw)
	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		log.Printf("[Gate] Token lookup failed: %v", err)
		return nil, &GateError{
			Status:  http.StatusInternalServerError,
			Code:    GateCodeServerError,
			Message: "Internal server error",
			Err:     err,
		}
	}
	if err != nil {
		return nil, &GateError{
			Status:  http.StatusUnauthorized,
			Code:    GateCodeInvalidToken,
			Message: "Invalid access token",
			Err:     err,
		}
	}

	if tok.ClientID != req.ClientID {
		log.Printf("[Gate] Token of client %s presented by client %s", tok.ClientID, req.ClientID)
		return nil, &GateError{
			Status:  http.StatusUnauthorized,
			Code:    GateCodeClientMismatch,
			Message: "Token was not issued to this client",
			Err:     ErrClientBindingMismatch,
		}
	}

	if tok.IsExpiredAt(g.now()) {
		return nil, &GateError{
			Status:  http.StatusUnauthorized,
			Code:    GateCodeTokenExpired,
			Message: "Access token expired",
			Err:     ErrTokenExpired,
		}
	}

	uid := tok.UserID
	path := NormalizePath(req.Path, uid)
	params := normalizeParams(req.Params, req.CallerParam, uid)

	decision, err := g.scopes.Authorize(ctx, tok.Scope, req.Method, path, uid)
	switch {
	case err == nil:
	case errors.Is(err, ErrAccessDenied):
		g.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventAccessDenied,
			Severity:     models.SeverityWarning,
			UserID:       uid,
			ClientID:     tok.ClientID,
			ResourceType: models.ResourceScope,
			Scope:        tok.Scope,
			Action:       "Request denied by scope",
			Success:      false,
			ErrorMessage: decision.Reason,
			Path:         path,
			Method:       req.Method,
		})
		return nil, &GateError{
			Status:  http.StatusForbidden,
			Code:    GateCodeForbidden,
			Message: "Token scope does not allow this request",
			Err:     err,
		}
	case errors.Is(err, ErrScopeNotDefined):
		return nil, &GateError{
			Status:  http.StatusInternalServerError,
			Code:    GateCodeScopePolicyMissing,
			Message: "Access policy is not configured",
			Err:     err,
		}
	default:
		log.Printf("[Gate] Authorization failed: %v", err)
		return nil, &GateError{
			Status:  http.StatusInternalServerError,
			Code:    GateCodeServerError,
			Message: "Internal server error",
			Err:     err,
		}
	}

	return &GateResult{
		UID:      uid,
		Path:     path,
		Params:   params,
		Token:    tok,
		Decision: decision,
	}, nil
}

// ParseBearer extracts the token from "Bearer <token>".
func ParseBearer(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], models.TokenTypeBearer) {
		return "", false
	}
	return parts[1], true
}

// NormalizePath replaces every "self" path segment with uid.
func NormalizePath(path, uid string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == SelfAlias {
			segments[i] = uid
		}
	}
	return strings.Join(segments, "/")
}

func normalizeParams(params map[string]string, callerParam, uid string) map[string]string {
	out := make(map[string]string, len(params)+1)
	for k, v := range params {
		if v == SelfAlias {
			v = uid
		}
		out[k] = v
	}
	if callerParam != "" {
		out[callerParam] = uid
	}
	return out
}
