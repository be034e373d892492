package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"crestmont/internal/domain"
	"crestmont/internal/metrics"
	"crestmont/internal/util"
	apperrors "crestmont/pkg/errors"

	"gorm.io/gorm"
)

// AuthService implements the authentication collaborator: credential checks
// and token issuance. The core components trust the identity it establishes.
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// LoginResult carries the issued token
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login verifies credentials and issues a JWT token
func (s *AuthService) Login(username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	log.Printf("[AUTH] Login attempt for user: %s", username)

	var user domain.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[AUTH] Login failed: user '%s' not found", username)
			metrics.RecordAuthAttempt(false)
			return nil, apperrors.Unauthorized("incorrect username or password")
		}
		log.Printf("[AUTH] Login failed: database error for user '%s': %v", username, err)
		metrics.RecordAuthAttempt(false)
		return nil, apperrors.Internal("failed to load user", err)
	}

	if !util.CheckPasswordHash(password, user.HashedPassword) {
		log.Printf("[AUTH] Login failed: invalid password for user '%s'", username)
		metrics.RecordAuthAttempt(false)
		return nil, apperrors.Unauthorized("incorrect username or password")
	}

	if !user.IsActive {
		log.Printf("[AUTH] Login failed: user '%s' is inactive", username)
		metrics.RecordAuthAttempt(false)
		return nil, apperrors.Unauthorized("user account is inactive")
	}

	// Update last login
	now := time.Now()
	user.LastLogin = &now
	s.db.Save(&user)

	token, err := util.GenerateToken(&user)
	if err != nil {
		log.Printf("[AUTH] Login failed: token generation error for user '%s': %v", username, err)
		return nil, apperrors.Internal("failed to generate token", err)
	}

	log.Printf("[AUTH] Login successful for user '%s' (id=%d, admin=%v)", username, user.ID, user.IsAdmin)
	metrics.RecordAuthAttempt(true)

	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}
