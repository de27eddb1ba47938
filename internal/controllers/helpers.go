package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/middleware"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

var validate = validator.New()

// getUserIDFromContext reads the authenticated subject set by the auth
// middleware. Nil when the request is anonymous.
func getUserIDFromContext(r *http.Request) *uuid.UUID {
	userID, ok := r.Context().Value(middleware.ContextKeyUserID).(string)
	if !ok || userID == "" {
		return nil
	}
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	return &parsed
}

// requireUserID responds 401 when no authenticated subject is present.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id := getUserIDFromContext(r)
	if id == nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required",
		)
		return uuid.Nil, false
	}
	return *id, true
}

// pathUUID parses a UUID path variable, responding 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			fmt.Sprintf("Invalid %s", name), err,
		)
		return uuid.Nil, false
	}
	return id, true
}

// decodeAndValidate decodes the JSON body into dst and runs the
// struct validator, writing the error response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid request payload", err,
		)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			msgs := make([]string, 0, len(vErrs))
			for _, fe := range vErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on the %s rule", fe.Field(), fe.Tag()))
			}
			utils.RespondValidationErrors(w, msgs, err)
		} else {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed", err,
			)
		}
		return false
	}
	return true
}

// respondServiceError maps domain sentinel errors onto the HTTP error
// contract; anything unrecognized becomes a generic 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Resource not found", err)

	case errors.Is(err, utils.ErrEmailExists):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "Email is already registered", err)
	case errors.Is(err, utils.ErrInvalidCredential):
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid credentials", err)
	case errors.Is(err, utils.ErrNotVerified):
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeNotVerified, "Account is not verified", err)
	case errors.Is(err, utils.ErrRoleNotConfigured):
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Role configuration missing", err)

	case errors.Is(err, utils.ErrPropertyUnavailable):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeConflict, "Property is not available", err)
	case errors.Is(err, utils.ErrPastAppointment):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Appointment must be in the future", err)
	case errors.Is(err, utils.ErrOutsideBusinessHour):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Requested time is outside business hours", err)
	case errors.Is(err, utils.ErrSlotTaken):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeConflict, "That time slot is already booked", err)
	case errors.Is(err, utils.ErrTooManyAppointments):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeConflict, "Active appointment limit reached", err)
	case errors.Is(err, utils.ErrInvalidTransition):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeConflict, "Operation not allowed in the current state", err)

	case errors.Is(err, utils.ErrPriceModeMismatch):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Price does not match the business mode", err)
	case errors.Is(err, utils.ErrTooManyImages):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Image limit exceeded", err)

	case errors.Is(err, utils.ErrNoCodeIssued):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "No verification code is pending", err)
	case errors.Is(err, utils.ErrCodeExpired):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Verification code has expired", err)
	case errors.Is(err, utils.ErrCodeMismatch):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Verification code does not match", err)

	case errors.Is(err, utils.ErrDuplicateOffer):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "An active offer already exists for this property", err)
	case errors.Is(err, utils.ErrDuplicateReview):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "You have already reviewed this property", err)
	case errors.Is(err, utils.ErrReviewNotEligible):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "A completed visit is required before reviewing", err)
	case errors.Is(err, utils.ErrAlreadyVoted):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "You have already voted on this review", err)

	case errors.Is(err, utils.ErrNoRecipients):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "No eligible recipients", err)
	case errors.Is(err, utils.ErrNoFailedToResend):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "No failed recipients to resend", err)
	case errors.Is(err, utils.ErrBroadcastDeadline):
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeExternalServiceFailure, "Broadcast aborted after exceeding the time limit", err)

	default:
		utils.HandleAppError(w, err)
	}
}
