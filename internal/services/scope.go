package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/mepla/Enchilada/internal/core"
	"github.com/mepla/Enchilada/internal/models"
	"github.com/mepla/Enchilada/internal/store"
)

var (
	ErrScopeNotDefined = errors.New("scope is not defined")
	ErrAccessDenied    = errors.New("access denied")
)

// selfPattern finds the {self} placeholder regardless of case.
var selfPattern = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(models.SelfPlaceholder))

type ScopeService struct {
	policies     core.PolicyStore
	auditService *AuditService
}

func NewScopeService(policies core.PolicyStore, auditService *AuditService) *ScopeService {
	return &ScopeService{policies: policies, auditService: auditService}
}

// Authorize evaluates "{method} {path}" against the templates of scope with
// {self} bound to uid. Templates are tried in order and the first match
// allows. A denied request returns the decision together with ErrAccessDenied.
func (s *ScopeService) Authorize(
	ctx context.Context,
	scope, method, path, uid string,
) (*models.AuthorizationDecision, error) {
	templates, err := s.resolve(ctx, scope)
	if err != nil {
		if errors.Is(err, ErrScopeNotDefined) {
			log.Printf("[Scope] ERROR: no policy for scope %q", scope)
			s.auditService.Log(ctx, AuditLogEntry{
				EventType:    models.EventScopePolicyMissing,
				Severity:     models.SeverityError,
				UserID:       uid,
				ResourceType: models.ResourceScope,
				Scope:        scope,
				Action:       "Scope definition missing",
				Success:      false,
				ErrorMessage: err.Error(),
				Path:         path,
				Method:       method,
			})
		}
		return nil, err
	}

	request := method + " " + path
	decision := &models.AuthorizationDecision{
		UID:           uid,
		RewrittenPath: path,
	}

	for _, tpl := range templates {
		re, err := compileTemplate(tpl, uid)
		if err != nil {
			log.Printf("[Scope] Skipping invalid template %q: %v", tpl, err)
			continue
		}
		if re.MatchString(request) {
			decision.Allow = true
			decision.MatchedPattern = tpl
			decision.Reason = "matched " + tpl
			return decision, nil
		}
	}

	decision.Reason = fmt.Sprintf("no template of scope %q matches %q", scope, request)
	return decision, ErrAccessDenied
}

// resolve returns the templates for scope. A scope string with several names
// that is not itself defined resolves to the union of its names' templates.
func (s *ScopeService) resolve(ctx context.Context, scope string) ([]string, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return nil, ErrScopeNotDefined
	}

	def, err := s.policies.GetScopeDefinition(ctx, scope)
	if err == nil {
		return def.Templates(), nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load scope %q: %w", scope, err)
	}

	names := strings.Fields(scope)
	if len(names) < 2 {
		return nil, fmt.Errorf("%w: %s", ErrScopeNotDefined, scope)
	}

	var templates []string
	for _, name := range names {
		def, err := s.policies.GetScopeDefinition(ctx, name)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrScopeNotDefined, name)
			}
			return nil, fmt.Errorf("failed to load scope %q: %w", name, err)
		}
		templates = append(templates, def.Templates()...)
	}
	return templates, nil
}

// compileTemplate turns a template into a case-insensitive prefix match
// anchored at the start of the request. The rest of the template is kept as
// written so escapes like \S keep their meaning.
func compileTemplate(tpl, uid string) (*regexp.Regexp, error) {
	fragment := selfPattern.ReplaceAllLiteralString(tpl, regexp.QuoteMeta(uid))
	return regexp.Compile(`(?i)^(?:` + fragment + `)`)
}
