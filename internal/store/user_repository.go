package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reckon/reckon-api/internal/domain"
)

// PostgresUserRepository is the PostgreSQL implementation of UserRepository.
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepository creates a new instance of PostgresUserRepository.
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, name, age, gender, course, email, phone_number, password_hash, college, tags, balance, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Age, &u.Gender, &u.Course, &u.Email,
		&u.PhoneNumber, &u.PasswordHash, &u.College, &u.Tags, &u.Balance,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if u.Tags == nil {
		u.Tags = []string{}
	}
	return &u, nil
}

// Create inserts a new user and returns its generated ID. Unique-index
// violations are mapped to *ErrDuplicate naming the offending field; the
// database is the tie-breaker for concurrent registrations.
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) (string, error) {
	query := `
        INSERT INTO users (name, age, gender, course, email, phone_number, password_hash, college, tags, balance)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at
    `
	tags := user.Tags
	if tags == nil {
		tags = []string{}
	}
	err := r.db.QueryRow(ctx, query,
		user.Name, user.Age, user.Gender, user.Course, user.Email,
		user.PhoneNumber, user.PasswordHash, user.College, tags, user.Balance,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			log.Printf("level=warn component=store msg=\"unique constraint violation on user insert\" constraint=%s", pgErr.ConstraintName)
			return "", &ErrDuplicate{Field: duplicateField(pgErr.ConstraintName)}
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return user.ID, nil
}

func duplicateField(constraint string) string {
	if strings.Contains(constraint, "phone") {
		return "phoneNumber"
	}
	return "email"
}

// FindByEmail returns the user with the given email or ErrNotFound.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID returns the user with the given ID or ErrNotFound.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// ExistsByEmail reports whether a user with the given email exists.
func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// MergeTags adds any tags the user does not already have.
func (r *PostgresUserRepository) MergeTags(ctx context.Context, userID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
        UPDATE users
        SET tags = (SELECT ARRAY(SELECT DISTINCT t FROM unnest(tags || $2::text[]) AS t)),
            updated_at = NOW()
        WHERE id = $1
    `, userID, tags)
	if err != nil {
		return fmt.Errorf("merge tags: %w", err)
	}
	return nil
}
