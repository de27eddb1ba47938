package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
)

type OfferRepository interface {
	Create(ctx context.Context, o *models.Offer) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	// GetActiveByPropertyAndUser enforces the one-active-offer rule.
	GetActiveByPropertyAndUser(ctx context.Context, propertyID, userID uuid.UUID) (*models.Offer, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Offer, error)
	ListPending(ctx context.Context) ([]*models.Offer, error)
	ListByAssignee(ctx context.Context, staffID uuid.UUID) ([]*models.Offer, error)
	ListAll(ctx context.Context) ([]*models.Offer, error)

	Update(ctx context.Context, o *models.Offer) error
}

type offerRepo struct{ db DB }

func NewOfferRepository(db DB) OfferRepository { return &offerRepo{db: db} }

const baseSelectOffer = `
	SELECT id, property_id, user_id, offer_amount, messages, status,
	       assigned_to, assigned_at, unread_count, created_at, updated_at
	FROM offers
`

func scanOffer(row pgx.Row) (*models.Offer, error) {
	var (
		o            models.Offer
		messagesJSON []byte
		unreadJSON   []byte
	)
	err := row.Scan(
		&o.ID,
		&o.PropertyID,
		&o.UserID,
		&o.OfferAmount,
		&messagesJSON,
		&o.Status,
		&o.AssignedTo,
		&o.AssignedAt,
		&unreadJSON,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(messagesJSON) > 0 {
		if err := json.Unmarshal(messagesJSON, &o.Messages); err != nil {
			return nil, err
		}
	}
	if len(unreadJSON) > 0 {
		if err := json.Unmarshal(unreadJSON, &o.Unread); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

func (r *offerRepo) Create(ctx context.Context, o *models.Offer) error {
	messagesJSON, err := json.Marshal(o.Messages)
	if err != nil {
		return err
	}
	unreadJSON, err := json.Marshal(o.Unread)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO offers (
			id, property_id, user_id, offer_amount, messages, status,
			assigned_to, assigned_at, unread_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
	`,
		o.ID, o.PropertyID, o.UserID, o.OfferAmount, messagesJSON, o.Status,
		o.AssignedTo, o.AssignedAt, unreadJSON,
	)
	return err
}

func (r *offerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	o, err := scanOffer(r.db.QueryRow(ctx, baseSelectOffer+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

func (r *offerRepo) GetActiveByPropertyAndUser(ctx context.Context, propertyID, userID uuid.UUID) (*models.Offer, error) {
	q := baseSelectOffer + `
		WHERE property_id=$1 AND user_id=$2 AND status IN ('pending', 'in_progress')
		LIMIT 1
	`
	o, err := scanOffer(r.db.QueryRow(ctx, q, propertyID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

func (r *offerRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Offer, error) {
	rows, err := r.db.Query(ctx, baseSelectOffer+` WHERE user_id=$1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOffers(rows)
}

func (r *offerRepo) ListPending(ctx context.Context) ([]*models.Offer, error) {
	rows, err := r.db.Query(ctx, baseSelectOffer+` WHERE status='pending' AND assigned_to IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOffers(rows)
}

func (r *offerRepo) ListByAssignee(ctx context.Context, staffID uuid.UUID) ([]*models.Offer, error) {
	rows, err := r.db.Query(ctx, baseSelectOffer+` WHERE assigned_to=$1 ORDER BY updated_at DESC`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOffers(rows)
}

func (r *offerRepo) ListAll(ctx context.Context) ([]*models.Offer, error) {
	rows, err := r.db.Query(ctx, baseSelectOffer+` ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOffers(rows)
}

func (r *offerRepo) Update(ctx context.Context, o *models.Offer) error {
	messagesJSON, err := json.Marshal(o.Messages)
	if err != nil {
		return err
	}
	unreadJSON, err := json.Marshal(o.Unread)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		UPDATE offers SET
			offer_amount=$2, messages=$3, status=$4, assigned_to=$5,
			assigned_at=$6, unread_count=$7, updated_at=NOW()
		WHERE id=$1
	`,
		o.ID, o.OfferAmount, messagesJSON, o.Status, o.AssignedTo,
		o.AssignedAt, unreadJSON,
	)
	return err
}

func collectOffers(rows pgx.Rows) ([]*models.Offer, error) {
	var out []*models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
