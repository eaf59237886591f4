/**
 * @description
 * This file contains the core business logic for account registration and
 * login. Registration validates the request shape, checks the verification
 * code read-only, inserts the account (the database's unique indexes break
 * ties between concurrent registrations) and then consumes the code as a
 * best-effort cleanup. A stale code left behind by a crash is harmless
 * because the duplicate check still blocks a second account.
 */
package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/reckon/reckon-api/internal/domain"
	"github.com/reckon/reckon-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// EventPublisher publishes domain events to the message broker. A nil
// publisher is tolerated: events are best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// EventsExchange is the topic exchange all Reckon events are published to.
const EventsExchange = "reckon_events"

// AccountService registers accounts and issues sessions.
type AccountService struct {
	users    store.UserRepository
	codes    store.CodeRepository
	tokens   *TokenIssuer
	producer EventPublisher
	otpTTL   time.Duration
}

// NewAccountService creates the account service.
func NewAccountService(users store.UserRepository, codes store.CodeRepository, tokens *TokenIssuer, producer EventPublisher, otpTTL time.Duration) *AccountService {
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &AccountService{users: users, codes: codes, tokens: tokens, producer: producer, otpTTL: otpTTL}
}

// Register creates a new account after validating the request and the
// verification code. On success it returns the sanitized account and a
// signed session token.
func (s *AccountService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	// (a) Shape and strength checks, before any side effect.
	if appErr := checkStruct(req); appErr != nil {
		return nil, appErr
	}
	if msg := passwordPolicyViolation(req.Password); msg != "" {
		return nil, NewValidationError(map[string]string{"password": msg})
	}
	if req.Password != req.ConfirmPassword {
		return nil, NewValidationError(map[string]string{"confirmPassword": "Passwords do not match"})
	}

	// (b) An unconsumed, unexpired code must match. Read-only here; the
	// code is consumed only after the account insert succeeds.
	if _, err := s.codes.FindActive(ctx, req.Email, req.OTP, s.otpTTL); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewError(KindInvalidOrExpiredCode, "Invalid OTP or OTP expired")
		}
		log.Printf("level=error component=account msg=\"code lookup failed\" err=%v", err)
		return nil, Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Internal(err)
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	user := &domain.User{
		Name:         req.Name,
		Age:          req.Age,
		Gender:       req.Gender,
		Course:       req.Course,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: string(hash),
		College:      req.College,
		Tags:         tags,
	}

	// (c) Insert. The unique indexes are the authoritative duplicate
	// check for races that pass a prior lookup.
	if _, err := s.users.Create(ctx, user); err != nil {
		var dup *store.ErrDuplicate
		if errors.As(err, &dup) {
			return nil, NewFieldError(KindDuplicateAccount, dup.Field,
				"User with this "+duplicateNoun(dup.Field)+" already exists")
		}
		log.Printf("level=error component=account msg=\"user insert failed\" err=%v", err)
		return nil, Internal(err)
	}

	// Best-effort cleanup: the account exists, so a leftover code cannot
	// create a second one.
	if err := s.codes.Consume(ctx, req.Email); err != nil {
		log.Printf("level=warn component=account msg=\"consuming code failed after registration\" email=%s err=%v", req.Email, err)
	}

	if s.producer != nil {
		event := domain.UserRegisteredEvent{UserID: user.ID, Email: user.Email, Name: user.Name, College: user.College}
		if err := s.producer.Publish(ctx, EventsExchange, "user.registered", event); err != nil {
			log.Printf("level=warn component=account msg=\"failed to publish user.registered\" user_id=%s err=%v", user.ID, err)
		}
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		log.Printf("level=error component=account msg=\"token signing failed\" err=%v", err)
		return nil, Internal(err)
	}
	return &domain.AuthResponse{Token: token, User: user}, nil
}

func duplicateNoun(field string) string {
	if field == "phoneNumber" {
		return "phone number"
	}
	return "email"
}

// Login verifies credentials and issues a session token. Misses collapse to
// one generic error so callers cannot probe which addresses are registered.
func (s *AccountService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	if appErr := checkStruct(req); appErr != nil {
		return nil, appErr
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewError(KindInvalidCredentials, "Invalid email or password")
		}
		log.Printf("level=error component=account msg=\"login lookup failed\" err=%v", err)
		return nil, Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewError(KindInvalidCredentials, "Invalid email or password")
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, Internal(err)
	}
	return &domain.AuthResponse{Token: token, User: user}, nil
}

// Profile returns the account for an authenticated user ID.
func (s *AccountService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewError(KindNotFound, "User not found")
		}
		return nil, Internal(err)
	}
	return user, nil
}
