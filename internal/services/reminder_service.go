package services

import (
	"context"
	"fmt"
	"time"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/config"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/repositories"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

// ---------------------------------------------------------------------
// ReminderService interface
// ---------------------------------------------------------------------
//
// Runs once a day from the cron scheduler and nudges visitors (and
// assigned staff) about tomorrow's confirmed visits. A reminder entry
// in the appointment's notification log keeps reruns idempotent.

type ReminderService interface {
	CheckAndSendReminders(ctx context.Context) (sent int, err error)
}

type reminderService struct {
	appointmentRepo repositories.AppointmentRepository
	propertyRepo    repositories.PropertyRepository
	userRepo        repositories.UserRepository
	sms             SMSSender
	cfg             *config.Config

	now func() time.Time
}

func NewReminderService(
	appointmentRepo repositories.AppointmentRepository,
	propertyRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
	sms SMSSender,
	cfg *config.Config,
) ReminderService {
	return &reminderService{
		appointmentRepo: appointmentRepo,
		propertyRepo:    propertyRepo,
		userRepo:        userRepo,
		sms:             sms,
		cfg:             cfg,
		now:             time.Now,
	}
}

func (s *reminderService) CheckAndSendReminders(ctx context.Context) (int, error) {
	now := s.now()
	tomorrow := now.AddDate(0, 0, 1)
	from := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 1)

	appointments, err := s.appointmentRepo.ListConfirmedBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("list tomorrow's appointments: %w", err)
	}

	sent := 0
	for _, appt := range appointments {
		if appt.HasNotification(models.NotificationReminder) {
			continue
		}
		if s.remind(ctx, appt) {
			sent++
		}
	}

	utils.Logger.Infof("Reminder run finished: %d appointments checked, %d reminders sent", len(appointments), sent)
	return sent, nil
}

// remind sends the visitor reminder and, when staff is assigned, a
// separate staff reminder. Either success marks the appointment so the
// next tick skips it.
func (s *reminderService) remind(ctx context.Context, appt *models.Appointment) bool {
	title := "your scheduled property"
	if property, err := s.propertyRepo.GetByID(ctx, appt.PropertyID); err == nil && property != nil {
		title = fmt.Sprintf("%q", property.Title)
	}

	visitorErr := s.sms.SendSMS(appt.Visitor.Phone, fmt.Sprintf(
		"%s: reminder, your visit to %s is tomorrow at %s.",
		s.cfg.OrganizationName, title, appt.AppointmentTime,
	))
	if visitorErr != nil {
		utils.Logger.WithError(visitorErr).Warnf("Visitor reminder failed for appointment %s", appt.ID)
	}

	staffSent := false
	if appt.AssignedTo != nil {
		staff, err := s.userRepo.GetByID(ctx, *appt.AssignedTo)
		if err == nil && staff != nil && staff.Phone != "" {
			staffErr := s.sms.SendSMS(staff.Phone, fmt.Sprintf(
				"%s: you have a visit with %s tomorrow at %s (%s).",
				s.cfg.OrganizationName, appt.Visitor.Name, appt.AppointmentTime, title,
			))
			if staffErr != nil {
				utils.Logger.WithError(staffErr).Warnf("Staff reminder failed for appointment %s", appt.ID)
			}
			staffSent = staffErr == nil
		}
	}

	// Mark only when somebody actually got the reminder.
	if visitorErr != nil && !staffSent {
		return false
	}

	appt.Notifications = append(appt.Notifications, models.AppointmentNotification{
		Type: models.NotificationReminder, SentAt: s.now(), Status: "sent",
	})
	if err := s.appointmentRepo.Update(ctx, appt); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to record reminder for appointment %s", appt.ID)
	}
	return true
}
