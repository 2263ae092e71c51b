// Package shared holds response helpers used by every HTTP handler so the
// error envelope stays uniform across the API.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "ballotbox/pkg/domain-errors"
)

// ErrorBody is the JSON error envelope. Reason carries the stable
// machine-readable discriminator when the domain error set one, so clients can
// branch without parsing prose.
type ErrorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the HTTP envelope. Internal
// failures never leak their description to the client.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	description := ""
	var dErr *dErrors.Error
	if errors.As(err, &dErr) {
		code = dErr.Code
		description = dErr.Message
	}

	body := ErrorBody{Error: string(code), Reason: dErrors.ReasonOf(err)}
	if code != dErrors.CodeInternal && code != dErrors.CodeInvariantViolation {
		body.Description = description
	}
	WriteJSON(w, statusFor(code), body)
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeValidation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
