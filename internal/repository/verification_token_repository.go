package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stash/internal/domain"
)

var (
	ErrVerificationTokenNotFound = errors.New("verification token not found")
)

// VerificationTokenRepository defines the interface for email verification
// token data access
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *domain.VerificationToken) error
	FindByToken(ctx context.Context, token string) (*domain.VerificationToken, error)
	Delete(ctx context.Context, token string) error
}

type verificationTokenRepository struct {
	db *sql.DB
}

// NewVerificationTokenRepository creates a new instance of VerificationTokenRepository
func NewVerificationTokenRepository(db *sql.DB) VerificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

// Create inserts a new verification token using parameterized queries
func (r *verificationTokenRepository) Create(ctx context.Context, token *domain.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	return nil
}

// FindByToken retrieves a verification token by its token string
func (r *verificationTokenRepository) FindByToken(ctx context.Context, token string) (*domain.VerificationToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, created_at
		FROM verification_tokens
		WHERE token = $1
	`

	verificationToken := &domain.VerificationToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&verificationToken.ID,
		&verificationToken.UserID,
		&verificationToken.Token,
		&verificationToken.ExpiresAt,
		&verificationToken.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVerificationTokenNotFound
		}
		return nil, fmt.Errorf("failed to find verification token: %w", err)
	}

	return verificationToken, nil
}

// Delete removes a consumed verification token
func (r *verificationTokenRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM verification_tokens WHERE token = $1`

	result, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to delete verification token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrVerificationTokenNotFound
	}

	return nil
}
