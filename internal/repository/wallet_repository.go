package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vivaha/backend/internal/database"
)

// ErrInsufficientTokens is the wallet-level signal behind the
// INSUFFICIENT_TOKENS envelope code. Handlers translate it; nothing else
// inspects the message text.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// UnlockCost is the token price of opening a new contact.
const UnlockCost = 1

type WalletRepository struct {
	db *database.DB
}

func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Balance returns the account's token balance; accounts with no wallet row
// have a zero balance.
func (r *WalletRepository) Balance(accountID string) (int, error) {
	var balance int
	err := r.db.QueryRow(`SELECT balance FROM token_balances WHERE account_id = $1`, accountID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// Credit adds tokens to an account, creating the wallet row if needed.
func (r *WalletRepository) Credit(accountID string, amount int) error {
	query := `
		INSERT INTO token_balances (account_id, balance, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (account_id) DO UPDATE SET balance = token_balances.balance + $2, updated_at = NOW()
	`
	if _, err := r.db.Exec(query, accountID, amount); err != nil {
		return fmt.Errorf("failed to credit tokens: %w", err)
	}
	return nil
}

// IsUnlocked checks whether the account has already paid to contact the
// target.
func (r *WalletRepository) IsUnlocked(accountID, targetAccountID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM contact_unlocks
			WHERE account_id = $1 AND target_account_id = $2
		)
	`

	var exists bool
	err := r.db.QueryRow(query, accountID, targetAccountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check unlock: %w", err)
	}

	return exists, nil
}

// SpendForUnlock atomically deducts the unlock cost and records the unlock.
// Returns ErrInsufficientTokens when the balance cannot cover the cost.
func (r *WalletRepository) SpendForUnlock(accountID, targetAccountID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE token_balances SET balance = balance - $2, updated_at = NOW() WHERE account_id = $1 AND balance >= $2`,
		accountID, UnlockCost,
	)
	if err != nil {
		return fmt.Errorf("failed to spend tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrInsufficientTokens
	}

	_, err = tx.Exec(
		`INSERT INTO contact_unlocks (account_id, target_account_id, created_at) VALUES ($1, $2, NOW()) ON CONFLICT (account_id, target_account_id) DO NOTHING`,
		accountID, targetAccountID,
	)
	if err != nil {
		return fmt.Errorf("failed to record unlock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
