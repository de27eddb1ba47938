package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
)

// AppointmentFilter narrows admin listings. Nil fields mean "no filter".
type AppointmentFilter struct {
	From       *time.Time
	To         *time.Time
	PropertyID *uuid.UUID
	Status     *models.AppointmentStatus
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	GetByConfirmationCode(ctx context.Context, code string) (*models.Appointment, error)
	// GetLatestPendingByPhone backs the inbound SMS webhook, which only
	// knows the sender's phone number.
	GetLatestPendingByPhone(ctx context.Context, phone string) (*models.Appointment, error)

	// SlotTaken reports whether a non-cancelled appointment already
	// holds the (property, slot) pair.
	SlotTaken(ctx context.Context, propertyID uuid.UUID, slot string) (bool, error)
	// TakenSlotKeys returns the occupied slot keys for one property and
	// calendar date (keys share the "YYYY-MM-DD-" prefix).
	TakenSlotKeys(ctx context.Context, propertyID uuid.UUID, datePrefix string) (map[string]bool, error)
	CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error)

	List(ctx context.Context, f AppointmentFilter) ([]*models.Appointment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Appointment, error)
	// ListConfirmedBetween backs the reminder scheduler.
	ListConfirmedBetween(ctx context.Context, from, to time.Time) ([]*models.Appointment, error)

	Update(ctx context.Context, a *models.Appointment) error
	DeleteAll(ctx context.Context) (int64, error)
}

type appointmentRepo struct{ db DB }

func NewAppointmentRepository(db DB) AppointmentRepository { return &appointmentRepo{db: db} }

const baseSelectAppointment = `
	SELECT id, property_id, user_id, visitor, appointment_date, appointment_time,
	       time_slot, status, confirmation_code, assigned_to, notifications,
	       notes, confirmed_at, created_at, updated_at
	FROM appointments
`

func scanAppointment(row pgx.Row) (*models.Appointment, error) {
	var (
		a                 models.Appointment
		visitorJSON       []byte
		notificationsJSON []byte
	)
	err := row.Scan(
		&a.ID,
		&a.PropertyID,
		&a.UserID,
		&visitorJSON,
		&a.AppointmentDate,
		&a.AppointmentTime,
		&a.TimeSlot,
		&a.Status,
		&a.ConfirmationCode,
		&a.AssignedTo,
		&notificationsJSON,
		&a.Notes,
		&a.ConfirmedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(visitorJSON) > 0 {
		if err := json.Unmarshal(visitorJSON, &a.Visitor); err != nil {
			return nil, err
		}
	}
	if len(notificationsJSON) > 0 {
		if err := json.Unmarshal(notificationsJSON, &a.Notifications); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func (r *appointmentRepo) Create(ctx context.Context, a *models.Appointment) error {
	visitorJSON, err := json.Marshal(a.Visitor)
	if err != nil {
		return err
	}
	notificationsJSON, err := json.Marshal(a.Notifications)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO appointments (
			id, property_id, user_id, visitor, appointment_date, appointment_time,
			time_slot, status, confirmation_code, assigned_to, notifications,
			notes, confirmed_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW())
	`,
		a.ID, a.PropertyID, a.UserID, visitorJSON, a.AppointmentDate, a.AppointmentTime,
		a.TimeSlot, a.Status, a.ConfirmationCode, a.AssignedTo, notificationsJSON,
		a.Notes, a.ConfirmedAt,
	)
	return err
}

func (r *appointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	a, err := scanAppointment(r.db.QueryRow(ctx, baseSelectAppointment+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *appointmentRepo) GetByConfirmationCode(ctx context.Context, code string) (*models.Appointment, error) {
	a, err := scanAppointment(r.db.QueryRow(ctx, baseSelectAppointment+` WHERE confirmation_code=$1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *appointmentRepo) GetLatestPendingByPhone(ctx context.Context, phone string) (*models.Appointment, error) {
	q := baseSelectAppointment + `
		WHERE visitor->>'phone' = $1 AND status = 'pending_sms_confirmation'
		ORDER BY created_at DESC
		LIMIT 1
	`
	a, err := scanAppointment(r.db.QueryRow(ctx, q, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *appointmentRepo) SlotTaken(ctx context.Context, propertyID uuid.UUID, slot string) (bool, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		SELECT id FROM appointments
		WHERE property_id=$1 AND time_slot=$2 AND status <> 'cancelled'
		LIMIT 1
	`, propertyID, slot).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *appointmentRepo) TakenSlotKeys(ctx context.Context, propertyID uuid.UUID, datePrefix string) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `
		SELECT time_slot FROM appointments
		WHERE property_id=$1 AND time_slot LIKE $2 || '%' AND status <> 'cancelled'
	`, propertyID, datePrefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taken := make(map[string]bool)
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		taken[slot] = true
	}
	return taken, rows.Err()
}

func (r *appointmentRepo) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE user_id=$1 AND status IN ('pending', 'confirmed')
	`, userID).Scan(&n)
	return n, err
}

func (r *appointmentRepo) List(ctx context.Context, f AppointmentFilter) ([]*models.Appointment, error) {
	q := baseSelectAppointment + ` WHERE TRUE`
	args := []interface{}{}
	i := 1
	if f.From != nil && f.To != nil {
		q += ` AND appointment_date >= $` + itoa(i) + ` AND appointment_date <= $` + itoa(i+1)
		args = append(args, *f.From, *f.To)
		i += 2
	}
	if f.PropertyID != nil {
		q += ` AND property_id = $` + itoa(i)
		args = append(args, *f.PropertyID)
		i++
	}
	if f.Status != nil {
		q += ` AND status = $` + itoa(i)
		args = append(args, *f.Status)
	}
	q += ` ORDER BY appointment_date`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *appointmentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Appointment, error) {
	rows, err := r.db.Query(ctx, baseSelectAppointment+` WHERE user_id=$1 ORDER BY appointment_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *appointmentRepo) ListConfirmedBetween(ctx context.Context, from, to time.Time) ([]*models.Appointment, error) {
	rows, err := r.db.Query(ctx, baseSelectAppointment+`
		WHERE status='confirmed' AND appointment_date >= $1 AND appointment_date <= $2
		ORDER BY appointment_date
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *appointmentRepo) Update(ctx context.Context, a *models.Appointment) error {
	visitorJSON, err := json.Marshal(a.Visitor)
	if err != nil {
		return err
	}
	notificationsJSON, err := json.Marshal(a.Notifications)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		UPDATE appointments SET
			visitor=$2, appointment_date=$3, appointment_time=$4, time_slot=$5,
			status=$6, confirmation_code=$7, assigned_to=$8, notifications=$9,
			notes=$10, confirmed_at=$11, updated_at=NOW()
		WHERE id=$1
	`,
		a.ID, visitorJSON, a.AppointmentDate, a.AppointmentTime, a.TimeSlot,
		a.Status, a.ConfirmationCode, a.AssignedTo, notificationsJSON,
		a.Notes, a.ConfirmedAt,
	)
	return err
}

func (r *appointmentRepo) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func collectAppointments(rows pgx.Rows) ([]*models.Appointment, error) {
	var out []*models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
