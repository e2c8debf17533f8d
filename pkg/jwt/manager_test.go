package jwt

import (
	"testing"
	"time"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateToken(42, "coach_kim", "trainer")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Role != "trainer" {
		t.Errorf("expected role trainer, got %s", claims.Role)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	m := NewManager("secret-a", time.Hour)
	other := NewManager("secret-b", time.Hour)

	token, err := m.GenerateToken(1, "", "user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := other.VerifyToken(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.GenerateToken(1, "", "user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := m.VerifyToken(token); err != ErrExpiredToken {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}
