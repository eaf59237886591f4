/**
 * @description
 * PostgreSQL implementation of the EntryRepository. Creating an entry,
 * applying it to the user's balance and writing the ledger transaction with
 * the resulting closing balance happen inside one database transaction so a
 * partial failure never leaves the ledger out of step with the balance.
 */
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reckon/reckon-api/internal/domain"
)

// PostgresEntryRepository is the PostgreSQL implementation of EntryRepository.
type PostgresEntryRepository struct {
	db *pgxpool.Pool
}

// NewPostgresEntryRepository creates a new instance of PostgresEntryRepository.
func NewPostgresEntryRepository(db *pgxpool.Pool) *PostgresEntryRepository {
	return &PostgresEntryRepository{db: db}
}

// balanceDelta returns the signed balance effect of a transaction type.
// Expenses and lends reduce the balance; borrows and receipts increase it.
func balanceDelta(txType domain.TransactionType, amount int64) int64 {
	switch txType {
	case domain.TransactionExpense, domain.TransactionLend:
		return -amount
	default:
		return amount
	}
}

// CreateWithTransaction persists the entry and its ledger transaction.
func (r *PostgresEntryRepository) CreateWithTransaction(ctx context.Context, entry *domain.Entry, txType domain.TransactionType) (*domain.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create entry: %w", err)
	}
	defer tx.Rollback(ctx)

	tags := entry.Tags
	if tags == nil {
		tags = []string{}
	}
	err = tx.QueryRow(ctx, `
        INSERT INTO entries (user_id, description, amount, category, tags, done_at, note)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at
    `, entry.UserID, entry.Description, entry.Amount, entry.Category, tags, entry.DoneAt, entry.Note).
		Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	var closingBalance int64
	err = tx.QueryRow(ctx, `
        UPDATE users SET balance = balance + $2, updated_at = NOW()
        WHERE id = $1
        RETURNING balance
    `, entry.UserID, balanceDelta(txType, entry.Amount)).Scan(&closingBalance)
	if err != nil {
		return nil, fmt.Errorf("apply entry to balance: %w", err)
	}

	ledger := &domain.Transaction{
		UserID:         entry.UserID,
		EntryID:        entry.ID,
		Amount:         entry.Amount,
		Type:           txType,
		Description:    entry.Description,
		ClosingBalance: closingBalance,
	}
	err = tx.QueryRow(ctx, `
        INSERT INTO transactions (user_id, entry_id, amount, type, description, closing_balance)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `, ledger.UserID, ledger.EntryID, ledger.Amount, ledger.Type, ledger.Description, ledger.ClosingBalance).
		Scan(&ledger.ID, &ledger.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert ledger transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create entry: %w", err)
	}
	return ledger, nil
}

// ListByUser returns the user's entries, newest first.
func (r *PostgresEntryRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, description, amount, category, tags, done_at, note, created_at, updated_at
        FROM entries WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.Entry{}
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Amount, &e.Category,
			&e.Tags, &e.DoneAt, &e.Note, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.Tags == nil {
			e.Tags = []string{}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListTransactionsByUser returns the user's ledger transactions, newest first.
func (r *PostgresEntryRepository) ListTransactionsByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, entry_id, amount, type, description, closing_balance, created_at
        FROM transactions WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.EntryID, &t.Amount, &t.Type,
			&t.Description, &t.ClosingBalance, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// CategoryTotals aggregates the user's spending per category.
func (r *PostgresEntryRepository) CategoryTotals(ctx context.Context, userID string) ([]domain.CategoryTotal, error) {
	rows, err := r.db.Query(ctx, `
        SELECT category, COALESCE(SUM(amount), 0), COUNT(*)
        FROM entries WHERE user_id = $1
        GROUP BY category
        ORDER BY SUM(amount) DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	totals := []domain.CategoryTotal{}
	for rows.Next() {
		var ct domain.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}
