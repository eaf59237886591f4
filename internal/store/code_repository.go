/**
 * @description
 * PostgreSQL implementation of the CodeRepository. Expiry is enforced with
 * an explicit issued_at window at read time rather than a store-level TTL,
 * which keeps the semantics portable and testable without a background
 * reaper. A startup sweep removes rows that aged out.
 */
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reckon/reckon-api/internal/domain"
)

// PostgresCodeRepository is the PostgreSQL implementation of CodeRepository.
type PostgresCodeRepository struct {
	db *pgxpool.Pool
}

// NewPostgresCodeRepository creates a new instance of PostgresCodeRepository.
func NewPostgresCodeRepository(db *pgxpool.Pool) *PostgresCodeRepository {
	return &PostgresCodeRepository{db: db}
}

// Replace deletes every code stored for the address and inserts the new one
// in a single transaction, so issuing is idempotent: at most one valid code
// exists per address at any time.
func (r *PostgresCodeRepository) Replace(ctx context.Context, email, code string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace code: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM verification_codes WHERE email = $1`, email); err != nil {
		return fmt.Errorf("delete prior codes: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO verification_codes (email, code, consumed, issued_at) VALUES ($1, $2, FALSE, NOW())`,
		email, code,
	); err != nil {
		return fmt.Errorf("insert code: %w", err)
	}
	return tx.Commit(ctx)
}

// FindActive returns the matching unconsumed, unexpired code or ErrNotFound.
func (r *PostgresCodeRepository) FindActive(ctx context.Context, email, code string, ttl time.Duration) (*domain.VerificationCode, error) {
	row := r.db.QueryRow(ctx, `
        SELECT email, code, consumed, issued_at
        FROM verification_codes
        WHERE email = $1 AND code = $2 AND consumed = FALSE
          AND issued_at > NOW() - $3::interval
    `, email, code, ttl)

	var vc domain.VerificationCode
	if err := row.Scan(&vc.Email, &vc.Code, &vc.Consumed, &vc.IssuedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find active code: %w", err)
	}
	return &vc, nil
}

// Consume removes every code for the address. Registration is the only
// caller; dropping the rows makes a second consumption attempt fail.
func (r *PostgresCodeRepository) Consume(ctx context.Context, email string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM verification_codes WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("consume code: %w", err)
	}
	return nil
}

// DeleteExpired removes codes older than ttl.
func (r *PostgresCodeRepository) DeleteExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM verification_codes WHERE issued_at <= NOW() - $1::interval`, ttl)
	if err != nil {
		return 0, fmt.Errorf("delete expired codes: %w", err)
	}
	return tag.RowsAffected(), nil
}
