package services

import (
	"testing"

	"crestmont/internal/domain"
	"crestmont/internal/util"
	apperrors "crestmont/pkg/errors"
)

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	hash, err := util.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := domain.User{Username: "alice", Email: "alice@example.com", HashedPassword: hash, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	result, err := svc.Login("alice", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("expected a non-empty access token")
	}
	if result.TokenType != "bearer" {
		t.Errorf("expected token type bearer, got %s", result.TokenType)
	}

	claims, err := util.ValidateToken(result.AccessToken)
	if err != nil {
		t.Fatalf("issued token failed validation: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("expected subject alice, got %s", claims.Username)
	}

	var reloaded domain.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if reloaded.LastLogin == nil {
		t.Error("expected last login to be recorded")
	}
}

func TestLoginTrimsWhitespace(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	hash, _ := util.HashPassword("hunter2")
	user := domain.User{Username: "alice", Email: "alice@example.com", HashedPassword: hash, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	if _, err := svc.Login("  alice  ", " hunter2 "); err != nil {
		t.Fatalf("Login with padded credentials failed: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	hash, _ := util.HashPassword("hunter2")
	user := domain.User{Username: "alice", Email: "alice@example.com", HashedPassword: hash, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	_, err := svc.Login("alice", "wrong")
	if !apperrors.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	_, err := svc.Login("nobody", "whatever")
	if !apperrors.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	hash, _ := util.HashPassword("hunter2")
	user := domain.User{Username: "bob", Email: "bob@example.com", HashedPassword: hash}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	if err := db.Model(&user).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate user: %v", err)
	}

	_, err := svc.Login("bob", "hunter2")
	if !apperrors.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}
