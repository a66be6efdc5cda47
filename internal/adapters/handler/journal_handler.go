package handler

import (
	"net/http"

	"github.com/IANDYI/pregnancy-service/internal/core/ports"
	"github.com/rs/zerolog"
)

// JournalHandler handles HTTP requests for weekly journal entries
type JournalHandler struct {
	journalService ports.JournalService
	logger         zerolog.Logger
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(journalService ports.JournalService, logger zerolog.Logger) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
		logger:         logger.With().Str("component", "journal_handler").Logger(),
	}
}

// CreateEntry handles POST /profiles/{profile_id}/journal
// Owner only; one entry per week
func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}
	profileID, ok := pathUUID(w, r, "profile_id")
	if !ok {
		return
	}

	var req ports.JournalEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	entry, err := h.journalService.CreateEntry(r.Context(), profileID, req, c.userID, c.isAdmin)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
	logStructured(h.logger, c, r, http.StatusCreated)
}

// ListEntries handles GET /profiles/{profile_id}/journal
// ADMIN: any profile, USER: owned only
func (h *JournalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}
	profileID, ok := pathUUID(w, r, "profile_id")
	if !ok {
		return
	}

	entries, err := h.journalService.ListEntries(r.Context(), profileID, c.userID, c.isAdmin)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
	logStructured(h.logger, c, r, http.StatusOK)
}

// UndocumentedWeeks handles GET /profiles/{profile_id}/journal/undocumented
func (h *JournalHandler) UndocumentedWeeks(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}
	profileID, ok := pathUUID(w, r, "profile_id")
	if !ok {
		return
	}

	report, err := h.journalService.UndocumentedWeeks(r.Context(), profileID, c.userID, c.isAdmin)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
	logStructured(h.logger, c, r, http.StatusOK)
}

// GetEntry handles GET /journal/{entry_id}
func (h *JournalHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}
	entryID, ok := pathUUID(w, r, "entry_id")
	if !ok {
		return
	}

	entry, err := h.journalService.GetEntry(r.Context(), entryID, c.userID, c.isAdmin)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
	logStructured(h.logger, c, r, http.StatusOK)
}

// UpdateEntry handles PUT /journal/{entry_id}
// Replaces the content of the entry; the week cannot change
func (h *JournalHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}
	entryID, ok := pathUUID(w, r, "entry_id")
	if !ok {
		return
	}

	var req ports.JournalEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	entry, err := h.journalService.UpdateEntry(r.Context(), entryID, req, c.userID, c.isAdmin)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
	logStructured(h.logger, c, r, http.StatusOK)
}

// DeleteEntry handles DELETE /journal/{entry_id}
// Owner only (ADMIN cannot delete)
func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}
	entryID, ok := pathUUID(w, r, "entry_id")
	if !ok {
		return
	}

	if err := h.journalService.DeleteEntry(r.Context(), entryID, c.userID, c.isAdmin); err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logStructured(h.logger, c, r, http.StatusNoContent)
}
