package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/mepla/Enchilada/internal/core"
	"github.com/mepla/Enchilada/internal/models"
	"github.com/mepla/Enchilada/internal/store"

	"github.com/google/uuid"
)

// DefaultMaxUsersPerUDID caps accounts created from one device.
const DefaultMaxUsersPerUDID = 3

var (
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrEmailTaken            = errors.New("email is already registered")
	ErrTooManyUsersForDevice = errors.New("too many users registered from this device")
	ErrPasswordRequired      = errors.New("password is required")
	ErrUserNotFound          = errors.New("user not found")
	ErrAuthenticationFailed  = errors.New("wrong email or password")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type UserService struct {
	users        core.UserStore
	provider     core.AuthProvider
	verifier     core.PasswordVerifier
	maxPerUDID   int
	auditService *AuditService
	metrics      core.Recorder
}

func NewUserService(
	users core.UserStore,
	provider core.AuthProvider,
	verifier core.PasswordVerifier,
	maxPerUDID int,
	auditService *AuditService,
	m core.Recorder,
) *UserService {
	if maxPerUDID <= 0 {
		maxPerUDID = DefaultMaxUsersPerUDID
	}
	return &UserService{
		users:        users,
		provider:     provider,
		verifier:     verifier,
		maxPerUDID:   maxPerUDID,
		auditService: auditService,
		metrics:      m,
	}
}

// Authenticate exchanges an email and password for the owner's uid.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	start := time.Now()
	email = strings.TrimSpace(strings.ToLower(email))

	res, err := s.provider.Authenticate(ctx, email, password)
	if err != nil || res == nil || !res.Success {
		s.metrics.RecordLogin(GrantTypePassword, false, time.Since(start))
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventAuthenticationFailure,
			Severity:     models.SeverityWarning,
			ResourceType: models.ResourceUser,
			ResourceID:   email,
			Action:       "Password login failed",
			Details:      models.AuditDetails{"provider": s.provider.Name()},
			Success:      false,
			ErrorMessage: ErrAuthenticationFailed.Error(),
		})
		return "", ErrAuthenticationFailed
	}

	s.metrics.RecordLogin(GrantTypePassword, true, time.Since(start))
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventAuthenticationSuccess,
		UserID:       res.UID,
		ResourceType: models.ResourceUser,
		ResourceID:   res.UID,
		Action:       "Password login",
		Details:      models.AuditDetails{"provider": s.provider.Name()},
		Success:      true,
	})
	return res.UID, nil
}

type SignUpRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Gender    string
	BirthDate string
	Device    string
	UDID      string
}

// SignUp registers a new user. Email must look like an address and be
// unused, and at most maxPerUDID users may share a device id.
func (s *UserService) SignUp(ctx context.Context, req SignUpRequest) (*models.User, error) {
	user, err := s.signUp(ctx, req)
	s.metrics.RecordSignUp(err == nil)
	return user, err
}

func (s *UserService) signUp(ctx context.Context, req SignUpRequest) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if req.Password == "" {
		return nil, ErrPasswordRequired
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if req.UDID != "" {
		count, err := s.users.CountUsersByUDID(ctx, req.UDID)
		if err != nil {
			return nil, fmt.Errorf("failed to count device users: %w", err)
		}
		if count >= int64(s.maxPerUDID) {
			return nil, ErrTooManyUsersForDevice
		}
	}

	user := &models.User{
		ID:        "uid_" + strings.ReplaceAll(uuid.New().String(), "-", ""),
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
		BirthDate: req.BirthDate,
		Device:    req.Device,
		UDID:      req.UDID,
	}
	user.PasswordHash = s.verifier.Hash(req.Password, user.ID, user.Email)
	if user.PasswordHash == "" {
		return nil, ErrPasswordRequired
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[User] Signed up %s", user.ID)
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventUserSignedUp,
		UserID:       user.ID,
		ResourceType: models.ResourceUser,
		ResourceID:   user.ID,
		Action:       "User signed up",
		Details:      models.AuditDetails{"udid": user.UDID},
		Success:      true,
	})
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUserRequest holds optional profile changes; nil fields are untouched.
type UpdateUserRequest struct {
	FirstName *string
	LastName  *string
	Gender    *string
	BirthDate *string
	Password  *string
}

func (s *UserService) UpdateUser(
	ctx context.Context,
	actorUID, uid string,
	req UpdateUserRequest,
) (*models.User, error) {
	user, err := s.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.BirthDate != nil {
		user.BirthDate = *req.BirthDate
	}
	if req.Password != nil {
		digest := s.verifier.Hash(*req.Password, user.ID, user.Email)
		if digest == "" {
			return nil, ErrPasswordRequired
		}
		user.PasswordHash = digest
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventUserUpdated,
		UserID:       actorUID,
		ResourceType: models.ResourceUser,
		ResourceID:   uid,
		Action:       "User updated",
		Details:      models.AuditDetails{"credential_changed": req.Password != nil},
		Success:      true,
	})
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, actorUID, uid string) error {
	if err := s.users.DeleteUser(ctx, uid); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventUserDeleted,
		Severity:     models.SeverityWarning,
		UserID:       actorUID,
		ResourceType: models.ResourceUser,
		ResourceID:   uid,
		Action:       "User deleted",
		Success:      true,
	})
	return nil
}
