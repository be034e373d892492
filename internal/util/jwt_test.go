package util

import (
	"testing"

	"crestmont/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &domain.User{Username: "alice", IsAdmin: true}

	token, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims.Username != "alice" {
		t.Errorf("expected username alice, got %s", claims.Username)
	}
	if !claims.IsAdmin {
		t.Error("expected admin claim to survive the round trip")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("expected an error for a malformed token")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !CheckPasswordHash("s3cret", hash) {
		t.Error("expected the original password to verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("expected a wrong password to fail verification")
	}
}
