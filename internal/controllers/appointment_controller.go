package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/dtos"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/repositories"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/services"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

// smsWebhookAck is the minimal reply document the carrier expects.
const smsWebhookAck = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

type AppointmentController struct {
	appointmentService services.AppointmentService
}

func NewAppointmentController(appointmentService services.AppointmentService) *AppointmentController {
	return &AppointmentController{appointmentService: appointmentService}
}

func (c *AppointmentController) Create(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateAppointmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	appt, err := c.appointmentService.Create(r.Context(), req, getUserIDFromContext(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, appt)
}

func (c *AppointmentController) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(r.URL.Query().Get("propertyId"))
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid propertyId", err,
		)
		return
	}
	date, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("date"), time.Local)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid date, expected YYYY-MM-DD", err,
		)
		return
	}

	slots, err := c.appointmentService.AvailableSlots(r.Context(), propertyID, date)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.AvailableSlotsResponse{
		Date:  date.Format("2006-01-02"),
		Slots: slots,
	})
}

// ConfirmByLink is the public deep-link landing: GET with the
// appointment id and its confirmation code in the path.
func (c *AppointmentController) ConfirmByLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	code := mux.Vars(r)["code"]

	appt, err := c.appointmentService.ConfirmByLink(r.Context(), id, code)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, appt)
}

func (c *AppointmentController) ConfirmByCode(w http.ResponseWriter, r *http.Request) {
	var req dtos.ConfirmByCodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	appt, err := c.appointmentService.ConfirmByCode(r.Context(), req.Code)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, appt)
}

// SMSWebhook receives the carrier's inbound-message callback. The
// carrier does not consume error codes, so the response is always a
// 200 acknowledgment regardless of the internal outcome.
func (c *AppointmentController) SMSWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.Logger.WithError(err).Warn("Malformed SMS webhook payload")
		utils.RespondWithXML(w, http.StatusOK, smsWebhookAck)
		return
	}

	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")

	if _, err := c.appointmentService.ConfirmBySMSReply(r.Context(), from, body); err != nil {
		utils.Logger.WithError(err).Infof("SMS reply from %s not applied", from)
	}
	utils.RespondWithXML(w, http.StatusOK, smsWebhookAck)
}

// ---------------------------------------------------------------------
// Staff endpoints
// ---------------------------------------------------------------------

func (c *AppointmentController) Confirm(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.appointmentService.Confirm)
}

func (c *AppointmentController) Complete(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.appointmentService.Complete)
}

func (c *AppointmentController) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	// Body is optional on cancel.
	var req dtos.CancelAppointmentRequest
	if r.ContentLength > 0 && !decodeAndValidate(w, r, &req) {
		return
	}

	appt, err := c.appointmentService.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, appt)
}

func (c *AppointmentController) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dtos.AssignAppointmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	staffID, err := uuid.Parse(req.StaffID)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid staff_id", err,
		)
		return
	}

	appt, aErr := c.appointmentService.Assign(r.Context(), id, staffID)
	if aErr != nil {
		respondServiceError(w, aErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, appt)
}

func (c *AppointmentController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	appt, err := c.appointmentService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, appt)
}

func (c *AppointmentController) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.AppointmentFilter{}
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
			filter.From = &t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
			filter.To = &t
		}
	}
	if v := q.Get("propertyId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.PropertyID = &id
		}
	}
	if v := q.Get("status"); v != "" {
		status := models.AppointmentStatus(v)
		filter.Status = &status
	}

	appointments, err := c.appointmentService.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.AppointmentListResponse{
		Appointments: appointments,
		Total:        len(appointments),
	})
}

func (c *AppointmentController) MyAppointments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	appointments, err := c.appointmentService.ListByUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.AppointmentListResponse{
		Appointments: appointments,
		Total:        len(appointments),
	})
}

func (c *AppointmentController) Purge(w http.ResponseWriter, r *http.Request) {
	deleted, err := c.appointmentService.Purge(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (c *AppointmentController) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id uuid.UUID) (*models.Appointment, error),
) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	appt, err := op(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, appt)
}
