package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrNotFound          = errors.New("not_found")
	ErrEmailExists       = errors.New("email_exists")
	ErrInvalidPhone      = errors.New("invalid_phone")
	ErrRoleNotConfigured = errors.New("role_not_configured")
	ErrNotVerified       = errors.New("account_not_verified")
	ErrInvalidCredential = errors.New("invalid_credentials")

	// Appointment workflow
	ErrPropertyUnavailable = errors.New("property_unavailable")
	ErrPastAppointment     = errors.New("appointment_in_past")
	ErrOutsideBusinessHour = errors.New("outside_business_hours")
	ErrSlotTaken           = errors.New("slot_taken")
	ErrTooManyAppointments = errors.New("too_many_active_appointments")
	ErrInvalidTransition   = errors.New("invalid_status_transition")

	// Verification workflow
	ErrNoCodeIssued = errors.New("no_code_issued")
	ErrCodeExpired  = errors.New("code_expired")
	ErrCodeMismatch = errors.New("code_mismatch")

	// Property catalogue
	ErrPriceModeMismatch = errors.New("price_mode_mismatch")
	ErrTooManyImages     = errors.New("too_many_images")

	// Offers / reviews
	ErrDuplicateOffer    = errors.New("duplicate_active_offer")
	ErrDuplicateReview   = errors.New("duplicate_review")
	ErrReviewNotEligible = errors.New("review_not_eligible")
	ErrAlreadyVoted      = errors.New("already_voted")

	// Broadcast
	ErrNoRecipients      = errors.New("no_recipients")
	ErrNoFailedToResend  = errors.New("no_failed_recipients")
	ErrBroadcastDeadline = errors.New("broadcast_deadline_exceeded")

	// External gateways (Twilio, SendGrid)
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// AppError carries an HTTP status and a public message from the
// service layer up to the controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, appErr.Err)
	} else {
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", err)
	}
}
