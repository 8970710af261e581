package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"
)

// Every balance-affecting mutation below runs inside a single database
// transaction that first locks the account row (SELECT ... FOR UPDATE). The
// lock spans validation read, write, and balance update, so two concurrent
// mutations on one account serialize and the sufficient-funds check can never
// act on a stale balance.

func lockAccountBalance(ctx context.Context, tx pgx.Tx, accountID int64) (float64, error) {
	var balance float64
	err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, ledger.ErrAccountNotFound
		}
		return 0, fmt.Errorf("lock account: %w", err)
	}
	return balance, nil
}

// recomputeBalanceTx re-derives the cached balance from the full transaction
// log. Idempotent; must be called with the account row already locked.
func recomputeBalanceTx(ctx context.Context, tx pgx.Tx, accountID int64) (float64, error) {
	query := `
		UPDATE accounts
		SET balance = (
			SELECT COALESCE(SUM(CASE WHEN type = 'INCOME' THEN amount ELSE -amount END), 0)
			FROM transactions
			WHERE account_id = $1
		)
		WHERE id = $1
		RETURNING balance
	`
	var balance float64
	if err := tx.QueryRow(ctx, query, accountID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("recompute balance: %w", err)
	}
	return balance, nil
}

func hasDuplicateTx(ctx context.Context, tx pgx.Tx, accountID int64, description string, amount float64, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM transactions
			WHERE account_id = $1
			  AND description = $2
			  AND amount = $3
			  AND date_trunc('day', date) = date_trunc('day', $4::timestamptz)
		)
	`
	var exists bool
	if err := tx.QueryRow(ctx, query, accountID, description, amount, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}
	return exists, nil
}

// CreateTransaction validates (duplicate, sufficient funds) and inserts under
// the account lock, then applies the signed delta to the cached balance. The
// delta is safe here because the lock guarantees the balance just read is
// current.
func CreateTransaction(ctx context.Context, pool *pgxpool.Pool, txn *models.Transaction) (*models.Transaction, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	balance, err := lockAccountBalance(ctx, tx, txn.AccountID)
	if err != nil {
		return nil, err
	}

	duplicate, err := hasDuplicateTx(ctx, tx, txn.AccountID, txn.Description, txn.Amount, txn.Date)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, ledger.ErrDuplicateTransaction
	}

	if err := ledger.CheckLimit(balance, txn.Amount, txn.Type); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO transactions (account_id, description, amount, type, category, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, account_id, description, amount, type, category, date, created_at
	`
	var created models.Transaction
	err = tx.QueryRow(ctx, query,
		txn.AccountID,
		txn.Description,
		txn.Amount,
		txn.Type,
		txn.Category,
		txn.Date,
	).Scan(
		&created.ID,
		&created.AccountID,
		&created.Description,
		&created.Amount,
		&created.Type,
		&created.Category,
		&created.Date,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	newBalance := ledger.ApplyDelta(balance, created.Amount, created.Type)
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2`, newBalance, created.AccountID); err != nil {
		return nil, fmt.Errorf("apply balance delta: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create transaction: %w", err)
	}
	return &created, nil
}

// UpdateTransaction mutates fields in place and re-derives the cached balance
// from scratch, all under the account lock.
func UpdateTransaction(ctx context.Context, pool *pgxpool.Pool, txn *models.Transaction) (*models.Transaction, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lockAccountBalance(ctx, tx, txn.AccountID); err != nil {
		return nil, err
	}

	query := `
		UPDATE transactions
		SET description = $1, amount = $2, type = $3, category = $4, date = $5
		WHERE id = $6 AND account_id = $7
		RETURNING id, account_id, description, amount, type, category, date, created_at
	`
	var updated models.Transaction
	err = tx.QueryRow(ctx, query,
		txn.Description,
		txn.Amount,
		txn.Type,
		txn.Category,
		txn.Date,
		txn.ID,
		txn.AccountID,
	).Scan(
		&updated.ID,
		&updated.AccountID,
		&updated.Description,
		&updated.Amount,
		&updated.Type,
		&updated.Category,
		&updated.Date,
		&updated.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ledger.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	if _, err := recomputeBalanceTx(ctx, tx, updated.AccountID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update transaction: %w", err)
	}
	return &updated, nil
}

// DeleteTransaction physically removes the row and re-derives the cached
// balance under the account lock.
func DeleteTransaction(ctx context.Context, pool *pgxpool.Pool, transactionID, accountID int64) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lockAccountBalance(ctx, tx, accountID); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND account_id = $2`, transactionID, accountID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ledger.ErrTransactionNotFound
	}

	if _, err := recomputeBalanceTx(ctx, tx, accountID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func scanTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(&t.ID, &t.AccountID, &t.Description, &t.Amount, &t.Type, &t.Category, &t.Date, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// GetTransactions lists one account's transactions newest first, optionally
// restricted to a [from, to) window.
func GetTransactions(ctx context.Context, pool *pgxpool.Pool, userID, accountID int64, from, to *time.Time) ([]models.Transaction, error) {
	query := `
		SELECT t.id, t.account_id, t.description, t.amount, t.type, t.category, t.date, t.created_at
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		WHERE a.user_id = $1 AND t.account_id = $2
	`
	args := []any{userID, accountID}
	if from != nil && to != nil {
		query += ` AND t.date >= $3 AND t.date < $4`
		args = append(args, *from, *to)
	}
	query += ` ORDER BY t.date DESC, t.id DESC`

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

// GetTransactionsForUser fetches a user's transactions across accounts inside
// [from, to), ascending by date then id so running balances are deterministic.
func GetTransactionsForUser(ctx context.Context, pool *pgxpool.Pool, userID int64, from, to time.Time, accountID *int64) ([]models.Transaction, error) {
	query := `
		SELECT t.id, t.account_id, t.description, t.amount, t.type, t.category, t.date, t.created_at
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		WHERE a.user_id = $1 AND t.date >= $2 AND t.date < $3
	`
	args := []any{userID, from, to}
	if accountID != nil {
		query += ` AND t.account_id = $4`
		args = append(args, *accountID)
	}
	query += ` ORDER BY t.date ASC, t.id ASC`

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

// SumTransactionsForUser computes income/expense totals across the user's
// accounts, optionally windowed and optionally per account.
func SumTransactionsForUser(ctx context.Context, pool *pgxpool.Pool, userID int64, from, to *time.Time, accountID *int64) (income, expense float64, err error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN t.type = 'INCOME' THEN t.amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN t.type = 'EXPENSE' THEN t.amount ELSE 0 END), 0)
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		WHERE a.user_id = $1
	`
	args := []any{userID}
	if from != nil && to != nil {
		query += fmt.Sprintf(` AND t.date >= $%d AND t.date < $%d`, len(args)+1, len(args)+2)
		args = append(args, *from, *to)
	}
	if accountID != nil {
		query += fmt.Sprintf(` AND t.account_id = $%d`, len(args)+1)
		args = append(args, *accountID)
	}

	if err = pool.QueryRow(ctx, query, args...).Scan(&income, &expense); err != nil {
		return 0, 0, fmt.Errorf("sum transactions: %w", err)
	}
	return income, expense, nil
}
