package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reckon/reckon-api/internal/domain"
	"github.com/reckon/reckon-api/internal/store"
)

// fakeCodeRepo is an in-memory CodeRepository. Tests may rewind a code's
// IssuedAt through backdate to simulate expiry.
type fakeCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*domain.VerificationCode

	replaceErr error
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{codes: map[string]*domain.VerificationCode{}}
}

func (r *fakeCodeRepo) Replace(ctx context.Context, email, code string) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[email] = &domain.VerificationCode{Email: email, Code: code, IssuedAt: time.Now()}
	return nil
}

func (r *fakeCodeRepo) FindActive(ctx context.Context, email, code string, ttl time.Duration) (*domain.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vc, ok := r.codes[email]
	if !ok || vc.Consumed || vc.Code != code || time.Since(vc.IssuedAt) >= ttl {
		return nil, store.ErrNotFound
	}
	copied := *vc
	return &copied, nil
}

func (r *fakeCodeRepo) Consume(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, email)
	return nil
}

func (r *fakeCodeRepo) DeleteExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for email, vc := range r.codes {
		if time.Since(vc.IssuedAt) >= ttl {
			delete(r.codes, email)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeCodeRepo) backdate(email string, age time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if vc, ok := r.codes[email]; ok {
		vc.IssuedAt = time.Now().Add(-age)
	}
}

func (r *fakeCodeRepo) storedCode(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if vc, ok := r.codes[email]; ok {
		return vc.Code
	}
	return ""
}

// fakeUserRepo is an in-memory UserRepository enforcing the unique indexes
// on email and phone number the way the database would.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // by ID

	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (string, error) {
	if r.createErr != nil {
		return "", r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return "", &store.ErrDuplicate{Field: "email"}
		}
		if u.PhoneNumber == user.PhoneNumber {
			return "", &store.ErrDuplicate{Field: "phoneNumber"}
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return user.ID, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUserRepo) MergeTags(ctx context.Context, userID string, tags []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	seen := map[string]bool{}
	for _, t := range u.Tags {
		seen[t] = true
	}
	for _, t := range tags {
		if !seen[t] {
			u.Tags = append(u.Tags, t)
			seen[t] = true
		}
	}
	return nil
}

// fakeEntryRepo is an in-memory EntryRepository mirroring the transactional
// balance update of the Postgres implementation.
type fakeEntryRepo struct {
	mu      sync.Mutex
	users   *fakeUserRepo
	entries []domain.Entry
	txs     []domain.Transaction
}

func newFakeEntryRepo(users *fakeUserRepo) *fakeEntryRepo {
	return &fakeEntryRepo{users: users}
}

func (r *fakeEntryRepo) CreateWithTransaction(ctx context.Context, entry *domain.Entry, txType domain.TransactionType) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users.mu.Lock()
	defer r.users.mu.Unlock()

	u, ok := r.users.users[entry.UserID]
	if !ok {
		return nil, store.ErrNotFound
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt

	delta := entry.Amount
	if txType == domain.TransactionExpense || txType == domain.TransactionLend {
		delta = -delta
	}
	u.Balance += delta

	ledger := domain.Transaction{
		ID:             uuid.NewString(),
		UserID:         entry.UserID,
		EntryID:        entry.ID,
		Amount:         entry.Amount,
		Type:           txType,
		Description:    entry.Description,
		ClosingBalance: u.Balance,
		CreatedAt:      time.Now(),
	}
	r.entries = append(r.entries, *entry)
	r.txs = append(r.txs, ledger)
	return &ledger, nil
}

func (r *fakeEntryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Entry{}
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) ListTransactionsByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Transaction{}
	for _, t := range r.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) CategoryTotals(ctx context.Context, userID string) ([]domain.CategoryTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byCategory := map[string]*domain.CategoryTotal{}
	order := []string{}
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &domain.CategoryTotal{Category: e.Category}
			byCategory[e.Category] = ct
			order = append(order, e.Category)
		}
		ct.Total += e.Amount
		ct.Count++
	}
	out := []domain.CategoryTotal{}
	for _, c := range order {
		out = append(out, *byCategory[c])
	}
	return out, nil
}

// fakeSender records deliveries and can be told to fail.
type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	codes []string
	err   error
}

func (s *fakeSender) Send(ctx context.Context, to, code string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	s.codes = append(s.codes, code)
	return nil
}

// fakeLimiter returns a fixed count for every consume call.
type fakeLimiter struct {
	count int
	err   error
}

func (l *fakeLimiter) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	return l.count, 60, l.err
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	keys   []string
	bodies []interface{}
}

func (p *fakePublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	p.bodies = append(p.bodies, body)
	return nil
}
