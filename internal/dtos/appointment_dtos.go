package dtos

import (
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
)

type CreateAppointmentRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid4"`

	VisitorName  string `json:"visitor_name" validate:"required,min=2,max=100"`
	VisitorPhone string `json:"visitor_phone" validate:"required,e164"`
	VisitorEmail string `json:"visitor_email" validate:"omitempty,email"`

	// Date is "YYYY-MM-DD", Time is "HH:MM" on the hour.
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"time" validate:"required,datetime=15:04"`

	Notes string `json:"notes" validate:"max=500"`
}

type ConfirmByCodeRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// SMSWebhookRequest carries the carrier's inbound-message form fields.
type SMSWebhookRequest struct {
	From string
	Body string
}

type AssignAppointmentRequest struct {
	StaffID string `json:"staff_id" validate:"required,uuid4"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type AvailableSlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

type AppointmentListResponse struct {
	Appointments []*models.Appointment `json:"appointments"`
	Total        int                   `json:"total"`
}
