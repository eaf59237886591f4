/**
 * @description
 * This file defines the repository interfaces for the Reckon API. Interfaces
 * decouple the application's business logic from the PostgreSQL
 * implementation, which keeps the services testable with in-memory fakes.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - internal/domain: The service's domain models.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/reckon/reckon-api/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
// Field names the offending column ("email" or "phoneNumber").
type ErrDuplicate struct {
	Field string
}

func (e *ErrDuplicate) Error() string {
	return "store: duplicate value for " + e.Field
}

// CodeRepository stores one-time verification codes keyed by email address.
type CodeRepository interface {
	// Replace deletes every code for the address and inserts the new one,
	// atomically, so at most one valid code exists per address.
	Replace(ctx context.Context, email, code string) error
	// FindActive returns a matching code that is unconsumed and younger
	// than ttl, or ErrNotFound.
	FindActive(ctx context.Context, email, code string, ttl time.Duration) (*domain.VerificationCode, error)
	// Consume removes all codes for the address.
	Consume(ctx context.Context, email string) error
	// DeleteExpired removes codes older than ttl and reports how many.
	DeleteExpired(ctx context.Context, ttl time.Duration) (int64, error)
}

// UserRepository stores registered accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (string, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// MergeTags adds any new tags to the user's tag set.
	MergeTags(ctx context.Context, userID string, tags []string) error
}

// EntryRepository stores spending entries and their ledger transactions.
type EntryRepository interface {
	// CreateWithTransaction inserts the entry, applies its signed amount to
	// the user's balance and records the ledger transaction with the
	// resulting closing balance, all inside one database transaction.
	CreateWithTransaction(ctx context.Context, entry *domain.Entry, txType domain.TransactionType) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Entry, error)
	ListTransactionsByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Transaction, error)
	CategoryTotals(ctx context.Context, userID string) ([]domain.CategoryTotal, error)
}
