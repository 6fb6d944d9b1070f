package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/techflow/techflow-backend/internal/db/entities"
	"github.com/techflow/techflow-backend/internal/db/interfaces"
	"github.com/techflow/techflow-backend/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for bad email/password pairs and
	// deliberately does not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when signing up with an existing email
	ErrEmailTaken = errors.New("email already registered")
	// ErrUnauthorized is returned for missing or expired sessions
	ErrUnauthorized = errors.New("invalid or expired session")
)

// Session is what a bearer token resolves to
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service manages accounts and bearer-token sessions. Sessions live in
// the cache under a TTL; admin status is resolved at sign-in from the
// admin_settings table and fails closed on any lookup error.
type Service struct {
	users      interfaces.Repository
	adminRepo  interfaces.Repository
	cache      *store.Cache
	logger     *zap.SugaredLogger
	sessionTTL time.Duration
	bcryptCost int
}

func NewService(db interfaces.Database, cache *store.Cache, logger *zap.SugaredLogger, sessionTTL time.Duration, bcryptCost int) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      db.Repository(entities.UserSchema),
		adminRepo:  db.Repository(entities.AdminSettingSchema),
		cache:      cache,
		logger:     logger,
		sessionTTL: sessionTTL,
		bcryptCost: bcryptCost,
	}
}

// SignUp registers a new account and returns a fresh session
func (s *Service) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	record, err := s.users.Create(ctx, map[string]interface{}{
		"email":         email,
		"password_hash": string(hash),
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrUniqueConstraint) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	user := entities.UserFromRecord(record)
	if s.logger != nil {
		s.logger.Infow("User registered", "user_id", user.ID)
	}

	return s.startSession(ctx, user)
}

// SignIn verifies credentials and returns a fresh session
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)

	record, err := s.users.FindOne(ctx, &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: []interfaces.Filter{{Field: "email", Value: email}},
		},
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	user := entities.UserFromRecord(record)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

// SignOut revokes the session for the given token. Unknown tokens are
// treated as already signed out.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.cache.DeleteSession(ctx, token)
}

// Resolve looks up the session behind a bearer token
func (s *Service) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	var session Session
	if err := s.cache.GetSession(ctx, token, &session); err != nil {
		if errors.Is(err, store.ErrCacheMiss) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.cache.DeleteSession(ctx, token)
		return nil, ErrUnauthorized
	}

	return &session, nil
}

// IsAdmin reports whether the user has an admin_settings row with the
// flag set. Missing rows and lookup errors both mean no.
func (s *Service) IsAdmin(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}

	record, err := s.adminRepo.FindOne(ctx, &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: []interfaces.Filter{{Field: "user_id", Value: userID}},
		},
	})
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) && s.logger != nil {
			s.logger.Warnw("Admin lookup failed, denying", "user_id", userID, "error", err)
		}
		return false
	}

	setting := entities.AdminSettingFromRecord(record)
	return setting.IsAdmin
}

// GrantAdmin marks a user as admin, creating or updating the settings row
func (s *Service) GrantAdmin(ctx context.Context, userID string) error {
	_, err := s.adminRepo.Upsert(ctx,
		map[string]interface{}{"user_id": userID},
		map[string]interface{}{"is_admin": true},
	)
	if err != nil {
		return fmt.Errorf("grant admin: %w", err)
	}
	return nil
}

func (s *Service) startSession(ctx context.Context, user entities.User) (*Session, error) {
	session := &Session{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		Email:     user.Email,
		IsAdmin:   s.IsAdmin(ctx, user.ID),
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}

	if err := s.cache.SetSession(ctx, session.Token, session, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return session, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: malformed email", ErrInvalidCredentials)
	}
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidCredentials)
	}
	return nil
}
