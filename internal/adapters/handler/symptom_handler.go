package handler

import (
	"net/http"

	"github.com/IANDYI/pregnancy-service/internal/core/ports"
	"github.com/rs/zerolog"
)

// SymptomHandler serves the symptom catalog
type SymptomHandler struct {
	symptomService ports.SymptomService
	logger         zerolog.Logger
}

func NewSymptomHandler(symptomService ports.SymptomService, logger zerolog.Logger) *SymptomHandler {
	return &SymptomHandler{
		symptomService: symptomService,
		logger:         logger.With().Str("component", "symptom_handler").Logger(),
	}
}

// CreateSymptomRequest is the body of POST /symptoms
type CreateSymptomRequest struct {
	Name string `json:"name"`
}

// ListSymptoms handles GET /symptoms: templates plus the caller's own
func (h *SymptomHandler) ListSymptoms(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}

	symptoms, err := h.symptomService.ListSymptoms(r.Context(), c.userID)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	writeJSON(w, http.StatusOK, symptoms)
	logStructured(h.logger, c, r, http.StatusOK)
}

// CreateSymptom handles POST /symptoms
func (h *SymptomHandler) CreateSymptom(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateSymptomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	symptom, err := h.symptomService.CreateSymptom(r.Context(), req.Name, c.userID, c.isAdmin)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, symptom)
	logStructured(h.logger, c, r, http.StatusCreated)
}
