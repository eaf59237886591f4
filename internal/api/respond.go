package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/reckon/reckon-api/internal/app"
)

// errorResponse is the stable error envelope: a machine-readable kind, an
// optional field, and a human-readable message. Internal detail never
// appears here.
type errorResponse struct {
	Success bool              `json:"success"`
	Kind    app.ErrorKind     `json:"kind"`
	Message string            `json:"message"`
	Field   string            `json:"field,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("level=warn component=api msg=\"failed to encode response\" err=%v", err)
	}
}

func statusForKind(kind app.ErrorKind) int {
	switch kind {
	case app.KindInvalidAddress, app.KindAddressAlreadyRegistered,
		app.KindInvalidOrExpiredCode, app.KindValidationFailed,
		app.KindDuplicateAccount:
		return http.StatusBadRequest
	case app.KindInvalidCredentials:
		return http.StatusUnauthorized
	case app.KindNotFound:
		return http.StatusNotFound
	case app.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps an application error to its HTTP response.
func writeError(w http.ResponseWriter, err error) {
	appErr := app.AsError(err)
	if appErr.Kind == app.KindInternal {
		log.Printf("level=error component=api msg=\"request failed\" err=%v", err)
	}
	writeJSON(w, statusForKind(appErr.Kind), errorResponse{
		Success: false,
		Kind:    appErr.Kind,
		Message: appErr.Message,
		Field:   appErr.Field,
		Errors:  appErr.Fields,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Success: false,
		Kind:    app.KindValidationFailed,
		Message: message,
	})
}
