/**
 * @description
 * This file contains the business logic for spending entries: manual
 * entries, one-tap quick entries and speech entries whose audio is
 * transcribed by an external service. Every entry writes a ledger
 * transaction carrying the closing balance.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/reckon/reckon-api/internal/domain"
	"github.com/reckon/reckon-api/internal/store"
)

// Transcription is the parsed result of a speech-entry audio clip.
type Transcription struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Category    string `json:"category"`
}

// Transcriber converts recorded audio into a structured entry draft.
// Speech-to-text itself runs in an external service.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (*Transcription, error)
}

// EntryResult pairs a created entry with its ledger transaction.
type EntryResult struct {
	Entry       *domain.Entry       `json:"entry"`
	Transaction *domain.Transaction `json:"transaction"`
}

// EntryService records spending entries.
type EntryService struct {
	entries     store.EntryRepository
	users       store.UserRepository
	transcriber Transcriber
	producer    EventPublisher
}

// NewEntryService creates the entry service. transcriber and producer may
// be nil when the corresponding integrations are not configured.
func NewEntryService(entries store.EntryRepository, users store.UserRepository, transcriber Transcriber, producer EventPublisher) *EntryService {
	return &EntryService{entries: entries, users: users, transcriber: transcriber, producer: producer}
}

// Create records a manual entry as an expense.
func (s *EntryService) Create(ctx context.Context, userID string, req domain.EntryRequest) (*EntryResult, error) {
	if appErr := checkStruct(req); appErr != nil {
		return nil, appErr
	}

	entry := &domain.Entry{
		UserID:      userID,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Tags:        req.Tags,
		DoneAt:      req.DoneAt,
		Note:        req.Note,
	}
	ledger, err := s.entries.CreateWithTransaction(ctx, entry, domain.TransactionExpense)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewError(KindNotFound, "User not found")
		}
		log.Printf("level=error component=entry msg=\"entry insert failed\" err=%v", err)
		return nil, Internal(err)
	}

	if len(req.Tags) > 0 {
		if err := s.users.MergeTags(ctx, userID, req.Tags); err != nil {
			log.Printf("level=warn component=entry msg=\"tag merge failed\" user_id=%s err=%v", userID, err)
		}
	}

	if s.producer != nil {
		event := domain.EntryCreatedEvent{
			UserID:         userID,
			EntryID:        entry.ID,
			Amount:         entry.Amount,
			Category:       entry.Category,
			ClosingBalance: ledger.ClosingBalance,
		}
		if err := s.producer.Publish(ctx, EventsExchange, "entry.created", event); err != nil {
			log.Printf("level=warn component=entry msg=\"failed to publish entry.created\" entry_id=%s err=%v", entry.ID, err)
		}
	}

	return &EntryResult{Entry: entry, Transaction: ledger}, nil
}

// CreateQuick records a one-tap entry with a generated description and the
// Miscellaneous category.
func (s *EntryService) CreateQuick(ctx context.Context, userID string, amount int64) (*EntryResult, error) {
	if amount <= 0 {
		return nil, NewValidationError(map[string]string{"amount": "Must be greater than 0"})
	}
	return s.Create(ctx, userID, domain.EntryRequest{
		Description: fmt.Sprintf("Quick expense of %d", amount),
		Amount:      amount,
		Category:    "Miscellaneous",
		Tags:        []string{},
	})
}

// CreateFromSpeech forwards the audio to the transcriber and records the
// parsed entry.
func (s *EntryService) CreateFromSpeech(ctx context.Context, userID string, audio io.Reader, filename string) (*EntryResult, error) {
	if s.transcriber == nil {
		return nil, NewError(KindInternal, "Speech entry is not available")
	}
	tr, err := s.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		log.Printf("level=warn component=entry msg=\"transcription failed\" user_id=%s err=%v", userID, err)
		return nil, Internal(err)
	}
	category := tr.Category
	if category == "" {
		category = "Miscellaneous"
	}
	return s.Create(ctx, userID, domain.EntryRequest{
		Description: tr.Description,
		Amount:      tr.Amount,
		Category:    category,
		Tags:        []string{},
	})
}

// List returns the user's entries, newest first.
func (s *EntryService) List(ctx context.Context, userID string, limit, offset int) ([]domain.Entry, error) {
	entries, err := s.entries.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewError(KindNotFound, "User not found")
		}
		return nil, Internal(err)
	}
	return entries, nil
}

// Transactions returns the user's ledger transactions, newest first.
func (s *EntryService) Transactions(ctx context.Context, userID string, limit, offset int) ([]domain.Transaction, error) {
	txs, err := s.entries.ListTransactionsByUser(ctx, userID, limit, offset)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewError(KindNotFound, "User not found")
		}
		return nil, Internal(err)
	}
	return txs, nil
}

// Tags returns the user's accumulated tag set for autocomplete.
func (s *EntryService) Tags(ctx context.Context, userID string) ([]string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewError(KindNotFound, "User not found")
		}
		return nil, Internal(err)
	}
	return user.Tags, nil
}

// CategoryTotals aggregates the user's spending per category.
func (s *EntryService) CategoryTotals(ctx context.Context, userID string) ([]domain.CategoryTotal, error) {
	totals, err := s.entries.CategoryTotals(ctx, userID)
	if err != nil {
		return nil, Internal(err)
	}
	return totals, nil
}
