package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"
)

func CreateAccount(ctx context.Context, pool *pgxpool.Pool, userID int64, name, accountType string) (*models.Account, error) {
	query := `
		INSERT INTO accounts (user_id, name, type)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, name, type, balance, created_at
	`
	var a models.Account
	err := pool.QueryRow(ctx, query, userID, name, accountType).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &a, nil
}

func GetAccountsForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.Account, error) {
	query := `
		SELECT id, user_id, name, type, balance, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// IsAccountOwner reports whether the account exists and belongs to the user.
// A missing account yields false, never an error, so callers answer both
// cases with the same 403 and don't leak existence.
func IsAccountOwner(ctx context.Context, pool *pgxpool.Pool, accountID, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1 AND user_id = $2)`
	var owned bool
	if err := pool.QueryRow(ctx, query, accountID, userID).Scan(&owned); err != nil {
		return false, fmt.Errorf("ownership check failed: %w", err)
	}
	return owned, nil
}

func UpdateAccount(ctx context.Context, pool *pgxpool.Pool, userID, accountID int64, name, accountType string) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET name = COALESCE(NULLIF($1, ''), name),
		    type = COALESCE(NULLIF($2, ''), type)
		WHERE id = $3 AND user_id = $4
		RETURNING id, user_id, name, type, balance, created_at
	`
	var a models.Account
	err := pool.QueryRow(ctx, query, name, accountType, accountID, userID).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ledger.ErrNotOwner
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return &a, nil
}

// DeleteAccount removes the account and its whole transaction log atomically.
func DeleteAccount(ctx context.Context, pool *pgxpool.Pool, userID, accountID int64) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete account: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("failed to delete account transactions: %w", err)
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, accountID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ledger.ErrNotOwner
	}

	return tx.Commit(ctx)
}
