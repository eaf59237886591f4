/**
 * @description
 * This file contains the business logic for issuing and verifying one-time
 * email verification codes. Issuing replaces any prior code for the address
 * so at most one valid code exists at a time; verification is a read-only
 * advisory check, and registration is the single authoritative consumer of
 * a code (see AccountService.Register).
 */
package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"time"

	"github.com/reckon/reckon-api/internal/store"
)

// Sender delivers a verification code to an email address out-of-band.
type Sender interface {
	Send(ctx context.Context, to, code string) error
}

// OTPService issues and verifies one-time verification codes.
type OTPService struct {
	codes   store.CodeRepository
	users   store.UserRepository
	sender  Sender
	limiter RateLimiter
	ttl     time.Duration
	// issuesPerHour bounds how many codes one address can request.
	issuesPerHour int
	// revealOnSendFailure exposes the code in the issue result when email
	// delivery fails. Development-only; the code is a secret and must
	// never reach a production caller.
	revealOnSendFailure bool
}

// NewOTPService creates the OTP service. limiter and sender may be nil in
// local setups; a nil sender behaves like a failed delivery.
func NewOTPService(codes store.CodeRepository, users store.UserRepository, sender Sender, limiter RateLimiter, ttl time.Duration, issuesPerHour int, revealOnSendFailure bool) *OTPService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OTPService{
		codes:               codes,
		users:               users,
		sender:              sender,
		limiter:             limiter,
		ttl:                 ttl,
		issuesPerHour:       issuesPerHour,
		revealOnSendFailure: revealOnSendFailure,
	}
}

// IssueResult reports the outcome of issuing a code. DevCode is only set in
// development mode when delivery failed.
type IssueResult struct {
	Delivered bool
	DevCode   string
}

// Issue generates a fresh 6-digit code for the address, invalidates all
// prior codes, persists the new one and attempts delivery. Delivery failure
// is logged but never escalated: the stored code stays valid.
func (s *OTPService) Issue(ctx context.Context, email string) (*IssueResult, error) {
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, NewFieldError(KindInvalidAddress, "email", "Please provide a valid email address")
	}

	if s.limiter != nil && s.issuesPerHour > 0 {
		count, retryAfter, err := s.limiter.ConsumeRateLimit(ctx, "otp_issue", email, s.issuesPerHour, time.Hour)
		if err != nil {
			// Limiter trouble must not block signups.
			log.Printf("level=warn component=otp msg=\"rate limiter unavailable; allowing request\" err=%v", err)
		} else if count > s.issuesPerHour {
			return nil, NewError(KindRateLimited,
				fmt.Sprintf("Too many code requests. Try again in %d seconds", retryAfter))
		}
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		log.Printf("level=error component=otp msg=\"existing-user lookup failed\" err=%v", err)
		return nil, Internal(err)
	}
	if exists {
		return nil, NewFieldError(KindAddressAlreadyRegistered, "email", "Email is already registered")
	}

	code, err := generateCode()
	if err != nil {
		return nil, Internal(err)
	}

	if err := s.codes.Replace(ctx, email, code); err != nil {
		log.Printf("level=error component=otp msg=\"storing code failed\" err=%v", err)
		return nil, Internal(err)
	}

	if s.sender == nil {
		log.Printf("level=warn component=otp msg=\"no mail sender configured; code stored but not delivered\" email=%s", email)
		return s.sendFailureResult(code), nil
	}
	if err := s.sender.Send(ctx, email, code); err != nil {
		// The stored code is still usable through any channel, so the
		// request succeeds. Operators detect delivery failures here.
		log.Printf("level=warn component=otp msg=\"code email delivery failed\" email=%s err=%v", email, err)
		return s.sendFailureResult(code), nil
	}

	log.Printf("verification code sent to %s", email)
	return &IssueResult{Delivered: true}, nil
}

func (s *OTPService) sendFailureResult(code string) *IssueResult {
	res := &IssueResult{Delivered: false}
	if s.revealOnSendFailure {
		res.DevCode = code
	}
	return res
}

// Verify checks that an unconsumed, unexpired code matching the submitted
// value exists for the address. It does not consume the code: the frontend
// calls verify as a UX gate and then submits the same code to register,
// which performs the one authoritative consumption.
func (s *OTPService) Verify(ctx context.Context, email, submittedCode string) error {
	if email == "" || submittedCode == "" {
		fields := map[string]string{}
		if email == "" {
			fields["email"] = "Email is required"
		}
		if submittedCode == "" {
			fields["otp"] = "OTP is required"
		}
		return NewValidationError(fields)
	}
	_, err := s.codes.FindActive(ctx, email, submittedCode, s.ttl)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewError(KindInvalidOrExpiredCode, "Invalid OTP or OTP expired")
		}
		log.Printf("level=error component=otp msg=\"code lookup failed\" err=%v", err)
		return Internal(err)
	}
	return nil
}

// generateCode draws a uniform 6-digit code in [100000, 999999] from a
// cryptographic source.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
