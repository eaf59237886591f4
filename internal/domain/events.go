package domain

// UserRegisteredEvent is published after a new account is created so that
// downstream consumers (welcome mail, analytics) can react asynchronously.
type UserRegisteredEvent struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	College string `json:"college"`
}

// EntryCreatedEvent is published after an entry and its ledger transaction
// have been committed.
type EntryCreatedEvent struct {
	UserID         string `json:"user_id"`
	EntryID        string `json:"entry_id"`
	Amount         int64  `json:"amount"`
	Category       string `json:"category"`
	ClosingBalance int64  `json:"closing_balance"`
}
