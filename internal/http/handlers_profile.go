package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"tipjar/internal/core"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetProfile(w, r)
	case http.MethodPut:
		s.handleUpdateProfile(w, r)
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.tips.Profile(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Profile load error", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile core.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile.Name = sanitizeInput(profile.Name)
	profile.Bio = sanitizeInput(profile.Bio)
	profile.AvatarURL = sanitizeInput(profile.AvatarURL)

	if err := s.tips.UpdateProfile(r.Context(), profile); err != nil {
		// Storage failures are wrapped by the service; anything else is
		// the caller's input.
		if strings.Contains(err.Error(), "save profile") {
			slog.ErrorContext(r.Context(), "Profile save error", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to save profile")
			return
		}
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updated, err := s.tips.Profile(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Profile reload error", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}
