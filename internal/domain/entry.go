package domain

import "time"

// TransactionType classifies a ledger transaction.
type TransactionType string

const (
	TransactionExpense  TransactionType = "expense"
	TransactionBorrow   TransactionType = "borrow"
	TransactionLend     TransactionType = "lend"
	TransactionReceived TransactionType = "received"
)

// Entry is a single recorded spending item (manual, quick or speech).
type Entry struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Description string     `json:"description"`
	Amount      int64      `json:"amount"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	DoneAt      *time.Time `json:"doneAt,omitempty"`
	Note        *string    `json:"note,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Transaction is the ledger record written alongside every entry. The
// closing balance captures the user's balance after the entry was applied.
type Transaction struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	EntryID        string          `json:"entryId"`
	Amount         int64           `json:"amount"`
	Type           TransactionType `json:"type"`
	Description    string          `json:"description"`
	ClosingBalance int64           `json:"closingBalance"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// EntryRequest is the payload received when creating an entry.
type EntryRequest struct {
	Description string     `json:"description" validate:"required"`
	Amount      int64      `json:"amount" validate:"required,gt=0"`
	Category    string     `json:"category" validate:"required"`
	Tags        []string   `json:"tags"`
	DoneAt      *time.Time `json:"doneAt"`
	Note        *string    `json:"note"`
}

// QuickEntryRequest carries the single amount of a one-tap quick entry.
type QuickEntryRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// CategoryTotal aggregates spending per category for the dashboard cards.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
	Count    int    `json:"count"`
}
