package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account is a registered member of the platform. AccountID is the public
// handle used as the party identifier in conversations and messages; the
// uuid primary key never leaves the database layer.
type Account struct {
	ID           uuid.UUID `json:"id" db:"id"`
	AccountID    string    `json:"accountId" db:"account_id"`
	Email        string    `json:"email" db:"email"`
	DisplayName  string    `json:"displayName" db:"display_name"`
	PhotoURL     *string   `json:"photoUrl,omitempty" db:"photo_url"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Validate checks basic account fields
func (a *Account) Validate() error {
	if a.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(a.Email, "@") {
		return fmt.Errorf("invalid email")
	}
	if a.DisplayName == "" {
		return fmt.Errorf("display name is required")
	}
	if len(a.DisplayName) < 2 || len(a.DisplayName) > 100 {
		return fmt.Errorf("display name length invalid")
	}
	if a.Role != RoleUser && a.Role != RoleAdmin {
		return fmt.Errorf("invalid role %q", a.Role)
	}
	return nil
}

type RegisterRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8"`
	DisplayName string  `json:"displayName" binding:"required"`
	PhotoURL    *string `json:"photoUrl,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string  `json:"token"`
	Account Account `json:"account"`
}
