package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/reckon/reckon-api/internal/app"
	"github.com/reckon/reckon-api/internal/domain"
)

// maxAudioUploadBytes bounds speech-entry uploads.
const maxAudioUploadBytes = 10 << 20

// EntryHandler serves the spending-entry endpoints.
type EntryHandler struct {
	entries *app.EntryService
}

// NewEntryHandler creates a new handler for the entry endpoints.
func NewEntryHandler(entries *app.EntryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Success: false,
			Kind:    app.KindInvalidCredentials,
			Message: "Access denied, token missing",
		})
		return "", false
	}
	return userID, true
}

func pageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Create handles POST /api/entries.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req domain.EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.entries.Create(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"entry":       result.Entry,
		"transaction": result.Transaction,
	})
}

// CreateQuick handles POST /api/entries/quick.
func (h *EntryHandler) CreateQuick(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req domain.QuickEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.entries.CreateQuick(r.Context(), userID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"entry":       result.Entry,
		"transaction": result.Transaction,
	})
}

// CreateFromSpeech handles POST /api/entries/speech (multipart upload).
func (h *EntryHandler) CreateFromSpeech(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUploadBytes)
	if err := r.ParseMultipartForm(maxAudioUploadBytes); err != nil {
		writeBadRequest(w, "Invalid or oversized audio upload")
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeBadRequest(w, "Audio file is required")
		return
	}
	defer file.Close()

	result, err := h.entries.CreateFromSpeech(r.Context(), userID, file, header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"entry":       result.Entry,
		"transaction": result.Transaction,
	})
}

// List handles GET /api/entries.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := pageParams(r)
	entries, err := h.entries.List(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"entries": entries,
	})
}

// ListTransactions handles GET /api/transactions.
func (h *EntryHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := pageParams(r)
	txs, err := h.entries.Transactions(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"transactions": txs,
	})
}

// Tags handles GET /api/user/tags.
func (h *EntryHandler) Tags(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	tags, err := h.entries.Tags(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"tags":    tags,
	})
}

// CategoryTotals handles GET /api/analysis/categories.
func (h *EntryHandler) CategoryTotals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	totals, err := h.entries.CategoryTotals(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": totals,
	})
}
