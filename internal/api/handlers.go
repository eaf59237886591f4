/**
 * @description
 * This file contains the HTTP handlers for the account lifecycle: code
 * issuance and verification, registration, login and profile. Handlers
 * decode and hand off to the services; all policy lives in internal/app.
 */
package api

import (
	"encoding/json"
	"net/http"

	"github.com/reckon/reckon-api/internal/app"
	"github.com/reckon/reckon-api/internal/domain"
)

// AuthHandler serves the OTP and account endpoints.
type AuthHandler struct {
	otp      *app.OTPService
	accounts *app.AccountService
}

// NewAuthHandler creates a new handler for the auth endpoints.
func NewAuthHandler(otp *app.OTPService, accounts *app.AccountService) *AuthHandler {
	return &AuthHandler{otp: otp, accounts: accounts}
}

// IssueCode handles POST /api/otp/generate.
func (h *AuthHandler) IssueCode(w http.ResponseWriter, r *http.Request) {
	var req domain.IssueCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.otp.Issue(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]interface{}{
		"success": true,
		"message": "OTP sent successfully to your email",
	}
	if !result.Delivered {
		resp["message"] = "OTP generated but email could not be sent"
		if result.DevCode != "" {
			// Development-only diagnostic path.
			resp["otp"] = result.DevCode
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// VerifyCode handles POST /api/otp/verify.
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	if err := h.otp.Verify(r.Context(), req.Email, req.OTP); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "OTP verified successfully",
	})
}

// Register handles POST /api/users/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	auth, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "User registered successfully",
		"token":   auth.Token,
		"user":    auth.User,
	})
}

// Login handles POST /api/users/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	auth, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   auth.Token,
		"user":    auth.User,
	})
}

// Profile handles GET /api/users/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Success: false,
			Kind:    app.KindInvalidCredentials,
			Message: "Access denied, token missing",
		})
		return
	}

	user, err := h.accounts.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}
