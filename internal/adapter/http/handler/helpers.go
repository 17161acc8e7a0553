package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/greenledger/internal/adapter/http/dto"
	"github.com/iho/greenledger/internal/domain"
)

// Error codes returned in the error field of error responses.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodePreconditionFailed  = "PRECONDITION_FAILED"
	CodeTransferCompensated = "TRANSFER_COMPENSATED"
	CodeBackendUnavailable  = "BACKEND_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string, retryable bool) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:     code,
		Message:   message,
		Retryable: retryable,
	})
}

// writeDomainError maps err onto a status and writes it. Internal errors
// are not echoed to the caller.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := mapDomainError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeError(w, status, code, message, domain.ClassOf(err).Retryable())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) (int, string) {
	switch domain.ClassOf(err) {
	case domain.ClassValidation:
		return http.StatusBadRequest, CodeInvalidRequest
	case domain.ClassCompensated:
		return http.StatusConflict, CodeTransferCompensated
	case domain.ClassBackend:
		return http.StatusServiceUnavailable, CodeBackendUnavailable
	case domain.ClassPrecondition:
		switch {
		case errors.Is(err, domain.ErrAccountNotFound),
			errors.Is(err, domain.ErrEntryNotFound),
			errors.Is(err, domain.ErrProfileNotFound),
			errors.Is(err, domain.ErrScheduledTransferNotFound),
			errors.Is(err, domain.ErrMerchantNotFound):
			return http.StatusNotFound, CodeNotFound
		case errors.Is(err, domain.ErrAccountExists),
			errors.Is(err, domain.ErrDuplicateExternalRef):
			return http.StatusConflict, CodeConflict
		default:
			return http.StatusUnprocessableEntity, CodePreconditionFailed
		}
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// writeBadBody reports an undecodable request body.
func writeBadBody(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error(), false)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
