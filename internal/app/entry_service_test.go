package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/reckon/reckon-api/internal/domain"
)

type entryFixture struct {
	users    *fakeUserRepo
	entries  *fakeEntryRepo
	producer *fakePublisher
	svc      *EntryService
	userID   string
}

func newEntryFixture(t *testing.T) *entryFixture {
	t.Helper()
	users := newFakeUserRepo()
	userID, err := users.Create(context.Background(), validUser("a@x.edu", "9876543210"))
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	entries := newFakeEntryRepo(users)
	producer := &fakePublisher{}
	return &entryFixture{
		users:    users,
		entries:  entries,
		producer: producer,
		svc:      NewEntryService(entries, users, nil, producer),
		userID:   userID,
	}
}

func TestCreateEntry_WritesLedgerWithClosingBalance(t *testing.T) {
	f := newEntryFixture(t)
	ctx := context.Background()

	result, err := f.svc.Create(ctx, f.userID, domain.EntryRequest{
		Description: "Canteen lunch",
		Amount:      12000,
		Category:    "Food",
		Tags:        []string{"canteen"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if result.Transaction.Type != domain.TransactionExpense {
		t.Fatalf("transaction type = %q, want expense", result.Transaction.Type)
	}
	if result.Transaction.ClosingBalance != -12000 {
		t.Fatalf("closing balance = %d, want -12000", result.Transaction.ClosingBalance)
	}

	user, err := f.users.FindByID(ctx, f.userID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if user.Balance != -12000 {
		t.Fatalf("user balance = %d, want -12000", user.Balance)
	}
	if len(user.Tags) != 1 || user.Tags[0] != "canteen" {
		t.Fatalf("user tags = %v, want [canteen]", user.Tags)
	}
	if len(f.producer.keys) != 1 || f.producer.keys[0] != "entry.created" {
		t.Fatalf("expected entry.created event, got %v", f.producer.keys)
	}
}

func TestCreateEntry_ValidationFailures(t *testing.T) {
	f := newEntryFixture(t)

	tests := []struct {
		name string
		req  domain.EntryRequest
	}{
		{"missing description", domain.EntryRequest{Amount: 100, Category: "Food"}},
		{"zero amount", domain.EntryRequest{Description: "x", Category: "Food"}},
		{"negative amount", domain.EntryRequest{Description: "x", Amount: -5, Category: "Food"}},
		{"missing category", domain.EntryRequest{Description: "x", Amount: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Create(context.Background(), f.userID, tt.req); !IsKind(err, KindValidationFailed) {
				t.Fatalf("Create() error = %v, want KindValidationFailed", err)
			}
		})
	}
	if len(f.entries.entries) != 0 {
		t.Fatal("no entry may be written on validation failure")
	}
}

func TestCreateQuick_DefaultsCategoryAndDescription(t *testing.T) {
	f := newEntryFixture(t)

	result, err := f.svc.CreateQuick(context.Background(), f.userID, 500)
	if err != nil {
		t.Fatalf("CreateQuick() error = %v", err)
	}
	if result.Entry.Category != "Miscellaneous" {
		t.Fatalf("category = %q, want Miscellaneous", result.Entry.Category)
	}
	if !strings.Contains(result.Entry.Description, "500") {
		t.Fatalf("description %q should mention the amount", result.Entry.Description)
	}

	if _, err := f.svc.CreateQuick(context.Background(), f.userID, 0); !IsKind(err, KindValidationFailed) {
		t.Fatalf("CreateQuick(0) error = %v, want KindValidationFailed", err)
	}
}

type fakeTranscriber struct {
	result *Transcription
	err    error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (*Transcription, error) {
	return f.result, f.err
}

func TestCreateFromSpeech_RecordsParsedEntry(t *testing.T) {
	f := newEntryFixture(t)
	f.svc = NewEntryService(f.entries, f.users, &fakeTranscriber{
		result: &Transcription{Description: "Auto rickshaw to campus", Amount: 4500},
	}, f.producer)

	result, err := f.svc.CreateFromSpeech(context.Background(), f.userID, strings.NewReader("audio-bytes"), "clip.webm")
	if err != nil {
		t.Fatalf("CreateFromSpeech() error = %v", err)
	}
	if result.Entry.Description != "Auto rickshaw to campus" {
		t.Fatalf("description = %q", result.Entry.Description)
	}
	if result.Entry.Category != "Miscellaneous" {
		t.Fatalf("empty category should default to Miscellaneous, got %q", result.Entry.Category)
	}
}

func TestCreateFromSpeech_TranscriberFailure(t *testing.T) {
	f := newEntryFixture(t)
	f.svc = NewEntryService(f.entries, f.users, &fakeTranscriber{err: errors.New("upstream 502")}, f.producer)

	if _, err := f.svc.CreateFromSpeech(context.Background(), f.userID, strings.NewReader("x"), "clip.webm"); !IsKind(err, KindInternal) {
		t.Fatalf("CreateFromSpeech() error = %v, want KindInternal", err)
	}
	if len(f.entries.entries) != 0 {
		t.Fatal("no entry may be written when transcription fails")
	}
}

func TestEntryService_VanishedAccountIsNotFound(t *testing.T) {
	f := newEntryFixture(t)
	ctx := context.Background()
	ghost := "00000000-0000-0000-0000-000000000000"

	if _, err := f.svc.Tags(ctx, ghost); !IsKind(err, KindNotFound) {
		t.Fatalf("Tags() error = %v, want KindNotFound", err)
	}
	req := domain.EntryRequest{Description: "lunch", Amount: 100, Category: "Food"}
	if _, err := f.svc.Create(ctx, ghost, req); !IsKind(err, KindNotFound) {
		t.Fatalf("Create() error = %v, want KindNotFound", err)
	}
}

func TestCategoryTotals_Aggregates(t *testing.T) {
	f := newEntryFixture(t)
	ctx := context.Background()

	for _, e := range []domain.EntryRequest{
		{Description: "lunch", Amount: 100, Category: "Food"},
		{Description: "dinner", Amount: 250, Category: "Food"},
		{Description: "bus", Amount: 40, Category: "Travel"},
	} {
		if _, err := f.svc.Create(ctx, f.userID, e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	totals, err := f.svc.CategoryTotals(ctx, f.userID)
	if err != nil {
		t.Fatalf("CategoryTotals() error = %v", err)
	}
	byCategory := map[string]domain.CategoryTotal{}
	for _, ct := range totals {
		byCategory[ct.Category] = ct
	}
	if got := byCategory["Food"]; got.Total != 350 || got.Count != 2 {
		t.Fatalf("Food total = %+v, want total 350 count 2", got)
	}
	if got := byCategory["Travel"]; got.Total != 40 || got.Count != 1 {
		t.Fatalf("Travel total = %+v, want total 40 count 1", got)
	}
}
