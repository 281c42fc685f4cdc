package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"familycal/internal/service"
	"familycal/internal/validation"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Field   string   `json:"field,omitempty"`
	EventID string   `json:"eventId,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps service and validation errors onto HTTP statuses.
// Anything unrecognized is a 500 with the detail kept server-side.
func writeError(w http.ResponseWriter, err error) {
	var verr validation.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
		return
	}

	var perr *service.PartialParticipantError
	if errors.As(err, &perr) {
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:   "event created but some participants were not added",
			EventID: perr.EventID,
			Missing: perr.Missing,
		})
		return
	}

	writeJSON(w, statusForError(err), errorResponse{Error: publicMessage(err)})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFamilyMember),
		errors.Is(err, service.ErrNotEventCreator),
		errors.Is(err, service.ErrAdminCannotLeave):
		return http.StatusForbidden
	case errors.Is(err, service.ErrFamilyNotFound),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrPhoneTaken),
		errors.Is(err, service.ErrAlreadyMember):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoFamilySelected):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error) string {
	if statusForError(err) == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
		return "internal server error"
	}
	return err.Error()
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
