package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vivaha/backend/internal/database"
	"github.com/vivaha/backend/internal/models"
)

var ErrAccountNotFound = fmt.Errorf("account not found")

type AccountRepository struct {
	db *database.DB
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(account *models.Account) error {
	query := `
		INSERT INTO accounts (id, account_id, email, display_name, photo_url, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		account.ID,
		account.AccountID,
		account.Email,
		account.DisplayName,
		account.PhotoURL,
		account.PasswordHash,
		account.Role,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(email string) (*models.Account, error) {
	return r.getOne(`WHERE email = $1`, email)
}

// GetByID retrieves an account by primary key
func (r *AccountRepository) GetByID(id uuid.UUID) (*models.Account, error) {
	return r.getOne(`WHERE id = $1`, id)
}

// GetByAccountID retrieves an account by its public handle
func (r *AccountRepository) GetByAccountID(accountID string) (*models.Account, error) {
	return r.getOne(`WHERE account_id = $1`, accountID)
}

func (r *AccountRepository) getOne(where string, arg any) (*models.Account, error) {
	query := `
		SELECT id, account_id, email, display_name, photo_url, password_hash, role, created_at, updated_at
		FROM accounts
	` + where

	account := &models.Account{}
	err := r.db.QueryRow(query, arg).Scan(
		&account.ID,
		&account.AccountID,
		&account.Email,
		&account.DisplayName,
		&account.PhotoURL,
		&account.PasswordHash,
		&account.Role,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}
