package domain

import "time"

// VerificationCode is a one-time numeric code proving control of an email
// address before registration. A code is valid while it is unconsumed and
// younger than the configured TTL; issuing a new code for an address
// invalidates every prior code for that address.
type VerificationCode struct {
	Email    string    `json:"email"`
	Code     string    `json:"-"`
	Consumed bool      `json:"consumed"`
	IssuedAt time.Time `json:"issuedAt"`
}

// IssueCodeRequest is the payload received on the OTP generation endpoint.
type IssueCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyCodeRequest is the payload received on the OTP verification endpoint.
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}
