package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintrack-server/src/models"
)

func GetUserByID(ctx context.Context, pool *pgxpool.Pool, id int64) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	err := pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("query error: %w", err)
	}
	return &user, nil
}

func GetUserByEmail(ctx context.Context, pool *pgxpool.Pool, email string) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`
	err := pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("query error: %w", err)
	}
	return &user, nil
}

func CreateUser(ctx context.Context, pool *pgxpool.Pool, name, email, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, created_at
	`

	var user models.User
	err := pool.QueryRow(ctx, query, name, email, passwordHash).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

func UpdateUserSettings(ctx context.Context, pool *pgxpool.Pool, userID int64, name, email string) error {
	query := `
		UPDATE users
		SET name = $1, email = $2
		WHERE id = $3
	`
	_, err := pool.Exec(ctx, query, name, email, userID)
	if err != nil {
		return fmt.Errorf("failed to update user settings: %w", err)
	}
	return nil
}

// UpdateUserPassword also clears any outstanding reset token so a consumed
// link cannot be replayed.
func UpdateUserPassword(ctx context.Context, pool *pgxpool.Pool, userID int64, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, reset_token = NULL, reset_token_exp = NULL
		WHERE id = $2
	`
	_, err := pool.Exec(ctx, query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func SetResetToken(ctx context.Context, pool *pgxpool.Pool, userID int64, tokenHash string, expiry time.Time) error {
	query := `
		UPDATE users
		SET reset_token = $1, reset_token_exp = $2
		WHERE id = $3
	`
	_, err := pool.Exec(ctx, query, tokenHash, expiry, userID)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	return nil
}

func GetUserByResetToken(ctx context.Context, pool *pgxpool.Pool, tokenHash string) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE reset_token = $1 AND reset_token_exp > NOW()
	`
	err := pool.QueryRow(ctx, query, tokenHash).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New("invalid or expired reset token")
		}
		return nil, fmt.Errorf("query error: %w", err)
	}
	return &user, nil
}
