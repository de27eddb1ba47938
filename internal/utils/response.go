package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	ErrCodeInvalidPayload = "invalid_payload"
	ErrCodeValidation     = "validation_error"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeTokenExpired   = "token_expired"
	ErrCodeForbidden      = "forbidden"
	ErrCodeInternal       = "internal_server_error"
	ErrCodeNotFound       = "not_found"
	ErrCodeConflict       = "conflict"
	ErrCodeNotVerified    = "account_not_verified"

	ErrCodeExternalServiceFailure = "external_service_failure"
)

// ErrorResponse mirrors the platform's error contract: `message` is
// always an array of human-readable strings.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message []string `json:"message"`
}

// RespondErrorWithCode builds a JSON error response with a standard
// code and one or more public messages. The optional devErr is only
// logged, never leaked to the client.
func RespondErrorWithCode(
	w http.ResponseWriter,
	status int,
	errorCode string,
	publicMessage string,
	devErrs ...error,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Code:    errorCode,
		Message: []string{publicMessage},
	})

	if len(devErrs) > 0 && devErrs[0] != nil {
		Logger.WithFields(logrus.Fields{
			"status": status,
			"error":  devErrs[0].Error(),
		}).Error(publicMessage)
	} else {
		Logger.WithFields(logrus.Fields{
			"status": status,
		}).Error(publicMessage)
	}
}

// RespondValidationErrors reports field-level validation failures.
func RespondValidationErrors(w http.ResponseWriter, msgs []string, devErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Code:    ErrCodeValidation,
		Message: msgs,
	})
	if devErr != nil {
		Logger.WithError(devErr).Error("request validation failed")
	}
}

// RespondWithJSON for successful cases
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondWithXML writes a raw XML document, used by the carrier
// webhook which expects a minimal reply body.
func RespondWithXML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
