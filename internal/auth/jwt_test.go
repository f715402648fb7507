package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vivaha/backend/internal/models"
)

func TestJWTService_GenerateToken(t *testing.T) {
	secret := "test-secret-key"
	expiryHours := 24
	service := NewJWTService(secret, expiryHours)

	userID := uuid.New()
	token, err := service.GenerateToken(userID, "VM0001", "test@example.com", models.RoleUser)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if token == "" {
		t.Fatal("Expected token to be generated")
	}
}

func TestJWTService_ValidateToken(t *testing.T) {
	secret := "test-secret-key"
	expiryHours := 24
	service := NewJWTService(secret, expiryHours)

	userID := uuid.New()
	token, err := service.GenerateToken(userID, "VM0001", "test@example.com", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("Expected userID %s, got %s", userID.String(), claims.UserID.String())
	}
	if claims.AccountID != "VM0001" {
		t.Errorf("Expected accountID VM0001, got %s", claims.AccountID)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("Expected role admin, got %s", claims.Role)
	}
}

func TestJWTService_ValidateToken_Invalid(t *testing.T) {
	secret := "test-secret-key"
	expiryHours := 24
	service := NewJWTService(secret, expiryHours)

	invalidToken := "invalid.token.here"
	_, err := service.ValidateToken(invalidToken)

	if err == nil {
		t.Fatal("Expected error for invalid token")
	}
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	userID := uuid.New()
	token, err := NewJWTService("secret-a", 24).GenerateToken(userID, "VM0001", "test@example.com", models.RoleUser)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	_, err = NewJWTService("secret-b", 24).ValidateToken(token)
	if err == nil {
		t.Fatal("Expected error for token signed with another secret")
	}
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	secret := "test-secret-key"
	expiryHours := -1 // Expired token
	service := NewJWTService(secret, expiryHours)

	userID := uuid.New()
	token, err := service.GenerateToken(userID, "VM0001", "test@example.com", models.RoleUser)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	// Wait a moment to ensure expiry
	time.Sleep(time.Millisecond * 100)

	_, err = service.ValidateToken(token)
	if err == nil {
		t.Fatal("Expected error for expired token")
	}
}
