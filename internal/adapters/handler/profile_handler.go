package handler

import (
	"net/http"

	"github.com/IANDYI/pregnancy-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProfileHandler handles HTTP requests for pregnancy profiles
type ProfileHandler struct {
	profileService ports.ProfileService
	logger         zerolog.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ports.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger.With().Str("component", "profile_handler").Logger(),
	}
}

// CreateProfile handles POST /profiles
// The caller creates their own profile; ADMIN cannot create
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}

	var req ports.CreateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	profile, err := h.profileService.CreateProfile(r.Context(), req, c.userID, c.isAdmin)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, profile)
	logStructured(h.logger, c, r, http.StatusCreated)
}

// ListProfiles handles GET /profiles
// ADMIN: all profiles, USER: their own
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}

	profiles, err := h.profileService.ListProfiles(r.Context(), c.userID, c.isAdmin)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profiles)
	logStructured(h.logger, c, r, http.StatusOK)
}

// GetProfile handles GET /profiles/{profile_id}
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	h.withProfile(w, r, func(c caller, profileID uuid.UUID) (interface{}, error) {
		return h.profileService.GetProfile(r.Context(), profileID, c.userID, c.isAdmin)
	})
}

// GetStatus handles GET /profiles/{profile_id}/status
func (h *ProfileHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.withProfile(w, r, func(c caller, profileID uuid.UUID) (interface{}, error) {
		return h.profileService.GetStatus(r.Context(), profileID, c.userID, c.isAdmin)
	})
}

// UpdateProfile handles PATCH /profiles/{profile_id}
// Owner only; omitted fields are left unchanged
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}
	profileID, ok := pathUUID(w, r, "profile_id")
	if !ok {
		return
	}

	var req ports.UpdateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	profile, err := h.profileService.UpdateProfile(r.Context(), profileID, req, c.userID, c.isAdmin)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
	logStructured(h.logger, c, r, http.StatusOK)
}

func (h *ProfileHandler) withProfile(w http.ResponseWriter, r *http.Request, fetch func(caller, uuid.UUID) (interface{}, error)) {
	c, ok := identify(w, r, h.logger)
	if !ok {
		return
	}
	profileID, ok := pathUUID(w, r, "profile_id")
	if !ok {
		return
	}

	result, err := fetch(c, profileID)
	if err != nil {
		writeError(w, h.logger, c, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
	logStructured(h.logger, c, r, http.StatusOK)
}
