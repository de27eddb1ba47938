package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/config"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/dtos"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/repositories"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

// Per-user ceiling on simultaneously active appointments.
const maxActiveAppointments = 2

const confirmationCodeLength = 6

// businessWindow is the bookable hour range for one weekday,
// inclusive start, exclusive end.
type businessWindow struct {
	open  int
	close int
}

// Closed days have no entry.
var businessHours = map[time.Weekday]businessWindow{
	time.Monday:    {9, 18},
	time.Tuesday:   {9, 18},
	time.Wednesday: {9, 18},
	time.Thursday:  {9, 18},
	time.Friday:    {9, 18},
	time.Saturday:  {10, 14},
}

// ---------------------------------------------------------------------
// AppointmentService interface
// ---------------------------------------------------------------------

type AppointmentService interface {
	Create(ctx context.Context, req dtos.CreateAppointmentRequest, userID *uuid.UUID) (*models.Appointment, error)

	AvailableSlots(ctx context.Context, propertyID uuid.UUID, date time.Time) ([]string, error)

	// Visitor-side confirmation channels.
	ConfirmByCode(ctx context.Context, code string) (*models.Appointment, error)
	ConfirmByLink(ctx context.Context, id uuid.UUID, code string) (*models.Appointment, error)
	ConfirmBySMSReply(ctx context.Context, fromPhone, body string) (*models.Appointment, error)

	// Staff-side transitions.
	Confirm(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	Complete(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*models.Appointment, error)
	Assign(ctx context.Context, id, staffID uuid.UUID) (*models.Appointment, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	List(ctx context.Context, f repositories.AppointmentFilter) ([]*models.Appointment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Appointment, error)

	// Purge removes every appointment record. Admin maintenance only.
	Purge(ctx context.Context) (int64, error)
}

type appointmentService struct {
	appointmentRepo repositories.AppointmentRepository
	propertyRepo    repositories.PropertyRepository
	userRepo        repositories.UserRepository
	sms             SMSSender
	cfg             *config.Config

	now func() time.Time
}

func NewAppointmentService(
	appointmentRepo repositories.AppointmentRepository,
	propertyRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
	sms SMSSender,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		appointmentRepo: appointmentRepo,
		propertyRepo:    propertyRepo,
		userRepo:        userRepo,
		sms:             sms,
		cfg:             cfg,
		now:             time.Now,
	}
}

// ---------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------

func (s *appointmentService) Create(
	ctx context.Context,
	req dtos.CreateAppointmentRequest,
	userID *uuid.UUID,
) (*models.Appointment, error) {

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, utils.ErrNotFound
	}

	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("lookup property: %w", err)
	}
	if property == nil {
		return nil, utils.ErrNotFound
	}
	if property.Status != models.PropertyAvailable {
		return nil, utils.ErrPropertyUnavailable
	}

	date, when, err := s.parseWhen(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	if !when.After(s.now()) {
		return nil, utils.ErrPastAppointment
	}
	if !withinBusinessHours(when) {
		return nil, utils.ErrOutsideBusinessHour
	}

	slot := models.SlotKey(date, req.Time)
	taken, err := s.appointmentRepo.SlotTaken(ctx, propertyID, slot)
	if err != nil {
		return nil, fmt.Errorf("check slot: %w", err)
	}
	if taken {
		return nil, utils.ErrSlotTaken
	}

	if userID != nil {
		active, err := s.appointmentRepo.CountActiveByUser(ctx, *userID)
		if err != nil {
			return nil, fmt.Errorf("count active appointments: %w", err)
		}
		if active >= maxActiveAppointments {
			return nil, utils.ErrTooManyAppointments
		}
	}

	appt := &models.Appointment{
		ID:         uuid.New(),
		PropertyID: propertyID,
		UserID:     userID,
		Visitor: models.Visitor{
			Name:  strings.TrimSpace(req.VisitorName),
			Phone: req.VisitorPhone,
			Email: strings.TrimSpace(req.VisitorEmail),
		},
		AppointmentDate:  date,
		AppointmentTime:  req.Time,
		TimeSlot:         slot,
		Status:           models.AppointmentPendingSMS,
		ConfirmationCode: utils.RandomUpperString(confirmationCodeLength),
		Notes:            strings.TrimSpace(req.Notes),
	}
	if err := s.appointmentRepo.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.dispatchConfirmationSMS(ctx, appt, property)
	return appt, nil
}

// dispatchConfirmationSMS sends the confirmation request to the
// visitor. If dispatch fails the appointment auto-advances to
// confirmed: the confirmation channel is a convenience, not a
// prerequisite for holding the slot.
func (s *appointmentService) dispatchConfirmationSMS(
	ctx context.Context,
	appt *models.Appointment,
	property *models.Property,
) {
	link := fmt.Sprintf("%s/citas/confirmar/%s/%s", s.cfg.FrontendURL, appt.ID, appt.ConfirmationCode)
	body := fmt.Sprintf(
		"%s: confirm your visit to %q on %s at %s. Reply YES to confirm or NO to cancel, "+
			"or use code %s here: %s",
		s.cfg.OrganizationName, property.Title,
		appt.AppointmentDate.Format("2006-01-02"), appt.AppointmentTime,
		appt.ConfirmationCode, link,
	)

	err := s.sms.SendSMS(appt.Visitor.Phone, body)
	if err != nil {
		utils.Logger.WithError(err).Warnf(
			"Confirmation SMS failed for appointment %s, auto-confirming", appt.ID,
		)
		appt.Status = models.AppointmentConfirmed
		appt.ConfirmedAt = utils.Ptr(s.now())
		appt.Notifications = append(appt.Notifications, models.AppointmentNotification{
			Type: models.NotificationInitial, SentAt: s.now(), Status: "failed",
		})
	} else {
		appt.Notifications = append(appt.Notifications, models.AppointmentNotification{
			Type: models.NotificationInitial, SentAt: s.now(), Status: "sent",
		})
	}

	if uErr := s.appointmentRepo.Update(ctx, appt); uErr != nil {
		utils.Logger.WithError(uErr).Errorf("Failed to record dispatch outcome for appointment %s", appt.ID)
	}
}

func (s *appointmentService) parseWhen(dateStr, timeStr string) (time.Time, time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	t, err := time.Parse("15:04", timeStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse time: %w", err)
	}
	when := time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.Local)
	return date, when, nil
}

// withinBusinessHours checks the wall-clock hour against the day's
// window. Hour granularity: a 13:30 booking counts as the 13:00 hour.
func withinBusinessHours(when time.Time) bool {
	window, open := businessHours[when.Weekday()]
	if !open {
		return false
	}
	h := when.Hour()
	return h >= window.open && h < window.close
}

// ---------------------------------------------------------------------
// Available slots
// ---------------------------------------------------------------------

func (s *appointmentService) AvailableSlots(
	ctx context.Context,
	propertyID uuid.UUID,
	date time.Time,
) ([]string, error) {

	window, open := businessHours[date.Weekday()]
	if !open {
		return []string{}, nil
	}

	prefix := date.Format("2006-01-02")
	taken, err := s.appointmentRepo.TakenSlotKeys(ctx, propertyID, prefix)
	if err != nil {
		return nil, fmt.Errorf("load taken slots: %w", err)
	}

	var slots []string
	for h := window.open; h < window.close; h++ {
		for _, m := range []int{0, 30} {
			hhmm := fmt.Sprintf("%02d:%02d", h, m)
			if !taken[prefix+"-"+hhmm] {
				slots = append(slots, hhmm)
			}
		}
	}
	sort.Strings(slots)
	return slots, nil
}

// ---------------------------------------------------------------------
// Visitor confirmation channels
// ---------------------------------------------------------------------

func (s *appointmentService) ConfirmByCode(ctx context.Context, code string) (*models.Appointment, error) {
	appt, err := s.appointmentRepo.GetByConfirmationCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("lookup by code: %w", err)
	}
	if appt == nil {
		return nil, utils.ErrNotFound
	}
	return s.confirmVisitor(ctx, appt)
}

func (s *appointmentService) ConfirmByLink(ctx context.Context, id uuid.UUID, code string) (*models.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup appointment: %w", err)
	}
	if appt == nil || appt.ConfirmationCode != strings.ToUpper(strings.TrimSpace(code)) {
		return nil, utils.ErrNotFound
	}
	return s.confirmVisitor(ctx, appt)
}

// ConfirmBySMSReply handles the carrier inbound webhook: an
// affirmative reply confirms the visitor's most recent pending
// appointment, a negative one cancels it. Unrecognized bodies are
// ignored.
func (s *appointmentService) ConfirmBySMSReply(ctx context.Context, fromPhone, body string) (*models.Appointment, error) {
	appt, err := s.appointmentRepo.GetLatestPendingByPhone(ctx, fromPhone)
	if err != nil {
		return nil, fmt.Errorf("lookup pending by phone: %w", err)
	}
	if appt == nil {
		return nil, utils.ErrNotFound
	}

	switch normalizeReply(body) {
	case "yes":
		return s.confirmVisitor(ctx, appt)
	case "no":
		return s.cancel(ctx, appt, "visitor declined by SMS")
	default:
		return nil, utils.ErrInvalidTransition
	}
}

func normalizeReply(body string) string {
	b := strings.ToUpper(strings.TrimSpace(body))
	switch b {
	case "YES", "Y", "SI", "SÍ", "CONFIRM", "CONFIRMAR":
		return "yes"
	case "NO", "N", "CANCEL", "CANCELAR":
		return "no"
	}
	return ""
}

func (s *appointmentService) confirmVisitor(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	switch appt.Status {
	case models.AppointmentPendingSMS, models.AppointmentPending:
	case models.AppointmentConfirmed:
		// Idempotent: a second confirmation attempt is harmless.
		return appt, nil
	default:
		return nil, utils.ErrInvalidTransition
	}

	appt.Status = models.AppointmentConfirmed
	appt.ConfirmedAt = utils.Ptr(s.now())
	s.appendNotification(appt, models.NotificationConfirmation,
		s.sms.SendSMS(appt.Visitor.Phone, fmt.Sprintf(
			"%s: your visit on %s at %s is confirmed. See you there!",
			s.cfg.OrganizationName, appt.AppointmentDate.Format("2006-01-02"), appt.AppointmentTime,
		)))

	if err := s.appointmentRepo.Update(ctx, appt); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return appt, nil
}

// ---------------------------------------------------------------------
// Staff transitions
// ---------------------------------------------------------------------

func (s *appointmentService) Confirm(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	appt, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.confirmVisitor(ctx, appt)
}

func (s *appointmentService) Complete(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	appt, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.AppointmentConfirmed {
		return nil, utils.ErrInvalidTransition
	}
	appt.Status = models.AppointmentCompleted
	if err := s.appointmentRepo.Update(ctx, appt); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return appt, nil
}

func (s *appointmentService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*models.Appointment, error) {
	appt, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, appt, reason)
}

func (s *appointmentService) cancel(ctx context.Context, appt *models.Appointment, reason string) (*models.Appointment, error) {
	switch appt.Status {
	case models.AppointmentCancelled, models.AppointmentCompleted:
		return nil, utils.ErrInvalidTransition
	}
	appt.Status = models.AppointmentCancelled
	if reason != "" {
		if appt.Notes != "" {
			appt.Notes += "\n"
		}
		appt.Notes += "Cancelled: " + reason
	}
	if err := s.appointmentRepo.Update(ctx, appt); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return appt, nil
}

func (s *appointmentService) Assign(ctx context.Context, id, staffID uuid.UUID) (*models.Appointment, error) {
	appt, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.AppointmentConfirmed {
		return nil, utils.ErrInvalidTransition
	}

	staff, err := s.userRepo.GetByID(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("lookup staff: %w", err)
	}
	if staff == nil {
		return nil, utils.ErrNotFound
	}

	appt.AssignedTo = &staffID
	s.appendNotification(appt, models.NotificationAssignment,
		s.sms.SendSMS(appt.Visitor.Phone, fmt.Sprintf(
			"%s: %s will guide your visit on %s at %s.",
			s.cfg.OrganizationName, staff.Username,
			appt.AppointmentDate.Format("2006-01-02"), appt.AppointmentTime,
		)))

	if err := s.appointmentRepo.Update(ctx, appt); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return appt, nil
}

// ---------------------------------------------------------------------
// Queries / maintenance
// ---------------------------------------------------------------------

func (s *appointmentService) GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	return s.mustGet(ctx, id)
}

func (s *appointmentService) List(ctx context.Context, f repositories.AppointmentFilter) ([]*models.Appointment, error) {
	return s.appointmentRepo.List(ctx, f)
}

func (s *appointmentService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Appointment, error) {
	return s.appointmentRepo.ListByUser(ctx, userID)
}

func (s *appointmentService) Purge(ctx context.Context) (int64, error) {
	return s.appointmentRepo.DeleteAll(ctx)
}

func (s *appointmentService) mustGet(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup appointment: %w", err)
	}
	if appt == nil {
		return nil, utils.ErrNotFound
	}
	return appt, nil
}

func (s *appointmentService) appendNotification(appt *models.Appointment, kind string, sendErr error) {
	status := "sent"
	if sendErr != nil {
		status = "failed"
		utils.Logger.WithError(sendErr).Warnf("%s SMS failed for appointment %s", kind, appt.ID)
	}
	appt.Notifications = append(appt.Notifications, models.AppointmentNotification{
		Type: kind, SentAt: s.now(), Status: status,
	})
}
