package domain

import "time"

// Gender enumerates the accepted values for a user's gender field.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// User represents a registered student account.
// Balance is stored in minor currency units to avoid float drift.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	Gender       Gender    `json:"gender"`
	Course       string    `json:"course"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	PasswordHash string    `json:"-"`
	College      string    `json:"college"`
	Tags         []string  `json:"tags"`
	Balance      int64     `json:"balance"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RegisterRequest is the payload received on the registration endpoint.
// Validation tags follow the rules the original signup form enforces.
type RegisterRequest struct {
	Name            string   `json:"name" validate:"required"`
	Age             int      `json:"age" validate:"required,gt=0,lte=120"`
	Gender          Gender   `json:"gender" validate:"required,oneof=Male Female Other"`
	Course          string   `json:"course" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	PhoneNumber     string   `json:"phoneNumber" validate:"required,len=10,numeric"`
	Password        string   `json:"password" validate:"required"`
	ConfirmPassword string   `json:"confirmPassword" validate:"required"`
	College         string   `json:"college" validate:"required"`
	Tags            []string `json:"tags"`
	OTP             string   `json:"otp" validate:"required,len=6,numeric"`
}

// LoginRequest is the payload received on the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse pairs a sanitized user with a freshly signed session token.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
