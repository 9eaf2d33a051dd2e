package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/bloppost/core/internal/config"
	"github.com/bloppost/core/internal/database"
	"github.com/bloppost/core/internal/models"
	"github.com/bloppost/core/internal/pkg/apperr"
	"github.com/bloppost/core/internal/pkg/password"
	sessionpkg "github.com/bloppost/core/internal/pkg/session"
	"gorm.io/gorm"
)

// loginFailureDelay keeps failed logins uniformly slow regardless of cause.
const loginFailureDelay = 500 * time.Millisecond

// Service implements registration, login, and session management.
type Service struct {
	db         *gorm.DB
	policy     string
	sessionTTL time.Duration
	delay      time.Duration
}

func NewService(db *gorm.DB, cfg *config.AppConfig) *Service {
	policy := cfg.Auth.LoginIdentifier
	if policy == "" {
		policy = config.LoginIdentifierAny
	}
	return &Service{
		db:         db,
		policy:     policy,
		sessionTTL: time.Duration(cfg.SessionTTL) * time.Hour,
		delay:      loginFailureDelay,
	}
}

// Register creates a new account. The plaintext password is hashed before
// any row is written; a weak password writes nothing.
func (s *Service) Register(dto *RegisterDTO) (*models.UserModel, error) {
	email := strings.TrimSpace(dto.Email)
	if !strings.Contains(email, "@") {
		return nil, apperr.Validation("invalid email address")
	}

	role := models.RoleUser
	if dto.Role != "" {
		role = models.Role(dto.Role)
		if !role.Valid() {
			return nil, apperr.Validation("role must be %q or %q", models.RoleUser, models.RoleAuthor)
		}
	}

	hash, err := password.Hash(dto.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooShort) {
			return nil, apperr.Validation("%s", err.Error())
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Duplicate("email already registered")
	}

	u := models.UserModel{
		Username: strings.TrimSpace(dto.Username),
		Email:    email,
		Password: hash,
		Role:     role,
	}
	if err := s.db.Create(&u).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, apperr.Duplicate("email already registered")
		}
		return nil, err
	}
	return &u, nil
}

// Login verifies credentials and issues a session-bound token.
func (s *Service) Login(identifier, pwd, ip, ua string) (string, *models.UserModel, error) {
	u, err := s.lookup(strings.TrimSpace(identifier))
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		time.Sleep(s.delay)
		return "", nil, apperr.InvalidCredentials("invalid credentials")
	}

	ok, err := password.Verify(pwd, u.Password)
	if err != nil {
		return "", nil, apperr.Storage(err)
	}
	if !ok {
		time.Sleep(s.delay)
		return "", nil, apperr.InvalidCredentials("invalid credentials")
	}

	token, _, err := sessionpkg.Issue(s.db, u.ID, ip, ua, s.sessionTTL)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *Service) lookup(identifier string) (*models.UserModel, error) {
	var u models.UserModel
	err := s.db.Where("email = ?", identifier).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if s.policy != config.LoginIdentifierAny {
		return nil, nil
	}

	err = s.db.Where("username = ?", identifier).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

// Logout revokes the session bound to the presented token.
func (s *Service) Logout(userID, sessionID string) error {
	err := sessionpkg.Revoke(s.db, userID, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("session not found")
	}
	return err
}

// Sessions lists the caller's active sessions.
func (s *Service) Sessions(userID string) ([]models.UserSession, error) {
	return sessionpkg.ListActive(s.db, userID)
}

// RevokeOtherSessions revokes every session of the caller except the one
// backing the presented token.
func (s *Service) RevokeOtherSessions(userID, keepSessionID string) error {
	return sessionpkg.RevokeAll(s.db, userID, keepSessionID)
}

// RevokeSession revokes one of the caller's sessions by id.
func (s *Service) RevokeSession(userID, sessionID string) error {
	err := sessionpkg.Revoke(s.db, userID, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("session not found")
	}
	return err
}
