package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Notification, error)

	// UpdateProgress persists the running stats after each batch so a
	// crash mid-run leaves an inspectable partial state.
	UpdateProgress(ctx context.Context, id uuid.UUID, stats models.BroadcastStats) error
	// Finalize sets the terminal status and processing-time window.
	Finalize(ctx context.Context, id uuid.UUID, status models.BroadcastStatus, stats models.BroadcastStats, completedAt time.Time, durationSeconds int) error
}

type notificationRepo struct{ db DB }

func NewNotificationRepository(db DB) NotificationRepository { return &notificationRepo{db: db} }

const baseSelectNotification = `
	SELECT id, type, property_id, message, stats, status, created_by,
	       started_at, completed_at, duration_seconds, created_at
	FROM notifications
`

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var (
		n         models.Notification
		statsJSON []byte
	)
	err := row.Scan(
		&n.ID,
		&n.Type,
		&n.PropertyID,
		&n.Message,
		&statsJSON,
		&n.Status,
		&n.CreatedBy,
		&n.StartedAt,
		&n.CompletedAt,
		&n.DurationSeconds,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(statsJSON) > 0 {
		if err := json.Unmarshal(statsJSON, &n.Stats); err != nil {
			return nil, err
		}
	}
	return &n, nil
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	statsJSON, err := json.Marshal(n.Stats)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO notifications (
			id, type, property_id, message, stats, status, created_by,
			started_at, completed_at, duration_seconds, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW())
	`,
		n.ID, n.Type, n.PropertyID, n.Message, statsJSON, n.Status, n.CreatedBy,
		n.StartedAt, n.CompletedAt, n.DurationSeconds,
	)
	return err
}

func (r *notificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	n, err := scanNotification(r.db.QueryRow(ctx, baseSelectNotification+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return n, err
}

func (r *notificationRepo) ListRecent(ctx context.Context, limit int) ([]*models.Notification, error) {
	rows, err := r.db.Query(ctx, baseSelectNotification+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *notificationRepo) UpdateProgress(ctx context.Context, id uuid.UUID, stats models.BroadcastStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `UPDATE notifications SET stats=$2 WHERE id=$1`, id, statsJSON)
	return err
}

func (r *notificationRepo) Finalize(
	ctx context.Context,
	id uuid.UUID,
	status models.BroadcastStatus,
	stats models.BroadcastStats,
	completedAt time.Time,
	durationSeconds int,
) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		UPDATE notifications
		SET status=$2, stats=$3, completed_at=$4, duration_seconds=$5
		WHERE id=$1
	`, id, status, statsJSON, completedAt, durationSeconds)
	return err
}
