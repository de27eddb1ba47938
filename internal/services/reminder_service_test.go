package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
)

type reminderFixture struct {
	svc   *reminderService
	appts *fakeAppointmentRepo
	props *fakePropertyRepo
	users *fakeUserRepo
	sms   *fakeSMS
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()

	roles := newFakeRoleRepo()
	users := newFakeUserRepo(roles)
	props := newFakePropertyRepo()
	appts := newFakeAppointmentRepo()
	sms := newFakeSMS()

	svc := NewReminderService(appts, props, users, sms, testConfig()).(*reminderService)
	svc.now = func() time.Time { return testNow }

	return &reminderFixture{svc: svc, appts: appts, props: props, users: users, sms: sms}
}

// seedAppointment stores a confirmed appointment on the given day
// offset from the fixture clock.
func (fx *reminderFixture) seedAppointment(t *testing.T, dayOffset int, status models.AppointmentStatus) *models.Appointment {
	t.Helper()

	date := testNow.AddDate(0, 0, dayOffset)
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.Local)

	appt := &models.Appointment{
		ID:         uuid.New(),
		PropertyID: uuid.New(),
		Visitor: models.Visitor{
			Name:  "Laura Mendez",
			Phone: "+5281100011",
		},
		AppointmentDate: date,
		AppointmentTime: "11:00",
		TimeSlot:        models.SlotKey(date, "11:00"),
		Status:          status,
	}
	require.NoError(t, fx.appts.Create(context.Background(), appt))
	return appt
}

func TestRemindersCoverTomorrowsConfirmedVisits(t *testing.T) {
	fx := newReminderFixture(t)

	tomorrow := fx.seedAppointment(t, 1, models.AppointmentConfirmed)
	fx.seedAppointment(t, 2, models.AppointmentConfirmed) // day after: out of range
	fx.seedAppointment(t, 1, models.AppointmentPendingSMS)

	sent, err := fx.svc.CheckAndSendReminders(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Equal(t, 1, fx.sms.totalSent())

	stored, err := fx.appts.GetByID(context.Background(), tomorrow.ID)
	require.NoError(t, err)
	require.True(t, stored.HasNotification(models.NotificationReminder))
}

func TestRemindersAreIdempotent(t *testing.T) {
	fx := newReminderFixture(t)
	fx.seedAppointment(t, 1, models.AppointmentConfirmed)

	sent, err := fx.svc.CheckAndSendReminders(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	// Second run on the same day sends nothing new.
	sent, err = fx.svc.CheckAndSendReminders(context.Background())
	require.NoError(t, err)
	require.Zero(t, sent)
	require.Equal(t, 1, fx.sms.totalSent())
}

func TestReminderIncludesAssignedStaff(t *testing.T) {
	fx := newReminderFixture(t)

	staff := &models.User{ID: uuid.New(), Username: "carlos", Phone: "+5281100777"}
	require.NoError(t, fx.users.Create(context.Background(), staff))

	appt := fx.seedAppointment(t, 1, models.AppointmentConfirmed)
	appt.AssignedTo = &staff.ID
	require.NoError(t, fx.appts.Update(context.Background(), appt))

	sent, err := fx.svc.CheckAndSendReminders(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Equal(t, 1, fx.sms.sentTo("+5281100011"))
	require.Equal(t, 1, fx.sms.sentTo("+5281100777"))
}

func TestReminderNotMarkedWhenAllSendsFail(t *testing.T) {
	fx := newReminderFixture(t)
	fx.sms.failFor["+5281100011"] = true

	appt := fx.seedAppointment(t, 1, models.AppointmentConfirmed)

	sent, err := fx.svc.CheckAndSendReminders(context.Background())
	require.NoError(t, err)
	require.Zero(t, sent)

	stored, err := fx.appts.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	require.False(t, stored.HasNotification(models.NotificationReminder))
}

func TestReminderNotMarkedWhenAssignedStaffUnreachable(t *testing.T) {
	fx := newReminderFixture(t)
	fx.sms.failFor["+5281100011"] = true

	// Assigned staff without a phone cannot receive the reminder either.
	staff := &models.User{ID: uuid.New(), Username: "carlos"}
	require.NoError(t, fx.users.Create(context.Background(), staff))

	appt := fx.seedAppointment(t, 1, models.AppointmentConfirmed)
	appt.AssignedTo = &staff.ID
	require.NoError(t, fx.appts.Update(context.Background(), appt))

	sent, err := fx.svc.CheckAndSendReminders(context.Background())
	require.NoError(t, err)
	require.Zero(t, sent)

	stored, err := fx.appts.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	require.False(t, stored.HasNotification(models.NotificationReminder))
}
