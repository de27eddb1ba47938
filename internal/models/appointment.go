package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentPendingSMS AppointmentStatus = "pending_sms_confirmation"
	AppointmentPending    AppointmentStatus = "pending"
	AppointmentConfirmed  AppointmentStatus = "confirmed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
	AppointmentCompleted  AppointmentStatus = "completed"
)

// Notification types recorded on the appointment history log.
const (
	NotificationInitial      = "initial"
	NotificationConfirmation = "confirmation"
	NotificationReminder     = "reminder"
	NotificationAssignment   = "assignment"
)

type Visitor struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type AppointmentNotification struct {
	Type   string    `json:"type"`
	SentAt time.Time `json:"sent_at"`
	Status string    `json:"status"` // sent | failed
}

type Appointment struct {
	ID         uuid.UUID  `json:"id"`
	PropertyID uuid.UUID  `json:"property_id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`

	Visitor Visitor `json:"visitor"`

	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"` // "HH:MM"

	// TimeSlot is the double-booking key: "YYYY-MM-DD-HH:MM".
	TimeSlot string `json:"time_slot"`

	Status           AppointmentStatus `json:"status"`
	ConfirmationCode string            `json:"-"`

	AssignedTo *uuid.UUID `json:"assigned_to,omitempty"`

	Notifications []AppointmentNotification `json:"notifications,omitempty"`
	Notes         string                    `json:"notes,omitempty"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SlotKey derives the conflict-detection key from a date and an "HH:MM" time.
func SlotKey(date time.Time, hhmm string) string {
	return fmt.Sprintf("%s-%s", date.Format("2006-01-02"), hhmm)
}

// HasNotification reports whether an entry of the given type was logged.
func (a *Appointment) HasNotification(kind string) bool {
	for _, n := range a.Notifications {
		if n.Type == kind {
			return true
		}
	}
	return false
}

// IsActive covers statuses that block a slot or count against the
// per-user appointment limit.
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentPending || a.Status == AppointmentConfirmed
}
