package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/logging"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const internalErrorMessage = "internal server error"

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// statusFor maps a domain error kind onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNotAllowed):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError hides unclassified failures behind a generic message and logs them.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logFor(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, status, internalErrorMessage)
		return
	}
	writeError(w, status, err.Error())
}

func (s *HTTPServer) logFor(r *http.Request) *zerolog.Logger {
	return logging.FromContext(r.Context(), s.logger)
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return domain.Validation("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Validation("invalid JSON body")
	}
	return nil
}

// callerID reads the acting user from X-Sharer-User-Id.
func callerID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(userIDHeader))
	if raw == "" {
		return 0, domain.Validation("header %s is required", userIDHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.Validation("header %s must be an integer", userIDHeader)
	}
	return id, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, domain.Validation("path parameter %s must be an integer", name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validation("query parameter %s must be an integer", name)
	}
	return v, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, domain.Validation("query parameter %s is required", name)
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.Validation("query parameter %s must be true or false", name)
	}
	return v, nil
}
