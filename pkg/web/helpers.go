package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// RespondJSON writes a raw JSON payload without the success envelope.
// Used by endpoints that are not part of the enveloped API surface (health checks).
func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, logger, status, payload)
}

// ParseID extracts and validates a positive integer ID from the request path.
// Returns the ID and a boolean indicating success.
func ParseID(w http.ResponseWriter, r *http.Request, rp *Responder) (int64, bool) {
	pathValueID := r.PathValue("id")
	id, err := strconv.ParseInt(pathValueID, 10, 64)
	if err != nil || id <= 0 {
		rp.RespondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", pathValueID))
		return 0, false
	}
	return id, true
}

// ParsePagination reads optional limit/offset query parameters, falling back
// to the given default limit. Negative values are rejected.
func ParsePagination(r *http.Request, defaultLimit int32) (limit, offset int32, err error) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, perr := strconv.ParseInt(v, 10, 32)
		if perr != nil || parsed <= 0 {
			return 0, 0, fmt.Errorf("invalid limit: %s", v)
		}
		limit = int32(parsed)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		parsed, perr := strconv.ParseInt(v, 10, 32)
		if perr != nil || parsed < 0 {
			return 0, 0, fmt.Errorf("invalid offset: %s", v)
		}
		offset = int32(parsed)
	}
	return limit, offset, nil
}

// DecodeAndValidate decodes the request body into dto and runs struct
// validation. On failure it writes the appropriate envelope (400 for malformed
// bodies, 422 with field-level messages for rule violations) and returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, rp *Responder, validate *validator.Validate, logger *slog.Logger, dto any) bool {
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		rp.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			// Extract field-specific messages so the client can map them to inputs.
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			rp.Respond(w, http.StatusUnprocessableEntity, SuccessFalse, map[string]any{
				"validation_errors": errorResponse,
			})
			return false
		}
		logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		rp.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
