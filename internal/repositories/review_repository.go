package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
)

type ReviewRepository interface {
	Create(ctx context.Context, rv *models.Review) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	// GetByPropertyAndUser enforces the one-review-per-pair rule.
	GetByPropertyAndUser(ctx context.Context, propertyID, userID uuid.UUID) (*models.Review, error)

	ListApprovedByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Review, error)
	ListPending(ctx context.Context) ([]*models.Review, error)

	// ApprovedStats computes the aggregate used on the parent property.
	ApprovedStats(ctx context.Context, propertyID uuid.UUID) (average float64, count int, err error)

	Update(ctx context.Context, rv *models.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type reviewRepo struct{ db DB }

func NewReviewRepository(db DB) ReviewRepository { return &reviewRepo{db: db} }

const baseSelectReview = `
	SELECT id, property_id, user_id, appointment_id, rating, subcategories,
	       comment, images, status, moderation_notes, moderated_by, moderated_at,
	       featured, helpful_votes, helpful_count, created_at, updated_at
	FROM reviews
`

func scanReview(row pgx.Row) (*models.Review, error) {
	var (
		rv        models.Review
		subJSON   []byte
		imgJSON   []byte
		votesJSON []byte
	)
	err := row.Scan(
		&rv.ID,
		&rv.PropertyID,
		&rv.UserID,
		&rv.AppointmentID,
		&rv.Rating,
		&subJSON,
		&rv.Comment,
		&imgJSON,
		&rv.Status,
		&rv.ModerationNotes,
		&rv.ModeratedBy,
		&rv.ModeratedAt,
		&rv.Featured,
		&votesJSON,
		&rv.HelpfulCount,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(subJSON) > 0 {
		if err := json.Unmarshal(subJSON, &rv.Subcategories); err != nil {
			return nil, err
		}
	}
	if len(imgJSON) > 0 {
		if err := json.Unmarshal(imgJSON, &rv.Images); err != nil {
			return nil, err
		}
	}
	if len(votesJSON) > 0 {
		if err := json.Unmarshal(votesJSON, &rv.HelpfulVotes); err != nil {
			return nil, err
		}
	}
	return &rv, nil
}

func (r *reviewRepo) Create(ctx context.Context, rv *models.Review) error {
	subJSON, err := json.Marshal(rv.Subcategories)
	if err != nil {
		return err
	}
	imgJSON, err := json.Marshal(rv.Images)
	if err != nil {
		return err
	}
	votesJSON, err := json.Marshal(rv.HelpfulVotes)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO reviews (
			id, property_id, user_id, appointment_id, rating, subcategories,
			comment, images, status, moderation_notes, moderated_by, moderated_at,
			featured, helpful_votes, helpful_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,NOW(),NOW())
	`,
		rv.ID, rv.PropertyID, rv.UserID, rv.AppointmentID, rv.Rating, subJSON,
		rv.Comment, imgJSON, rv.Status, rv.ModerationNotes, rv.ModeratedBy, rv.ModeratedAt,
		rv.Featured, votesJSON, rv.HelpfulCount,
	)
	return err
}

func (r *reviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	rv, err := scanReview(r.db.QueryRow(ctx, baseSelectReview+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rv, err
}

func (r *reviewRepo) GetByPropertyAndUser(ctx context.Context, propertyID, userID uuid.UUID) (*models.Review, error) {
	rv, err := scanReview(r.db.QueryRow(ctx, baseSelectReview+` WHERE property_id=$1 AND user_id=$2 LIMIT 1`, propertyID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rv, err
}

func (r *reviewRepo) ListApprovedByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Review, error) {
	rows, err := r.db.Query(ctx, baseSelectReview+`
		WHERE property_id=$1 AND status='approved'
		ORDER BY featured DESC, created_at DESC
	`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

func (r *reviewRepo) ListPending(ctx context.Context) ([]*models.Review, error) {
	rows, err := r.db.Query(ctx, baseSelectReview+` WHERE status='pending' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

func (r *reviewRepo) ApprovedStats(ctx context.Context, propertyID uuid.UUID) (float64, int, error) {
	var (
		average float64
		count   int
	)
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE property_id=$1 AND status='approved'
	`, propertyID).Scan(&average, &count)
	return average, count, err
}

func (r *reviewRepo) Update(ctx context.Context, rv *models.Review) error {
	subJSON, err := json.Marshal(rv.Subcategories)
	if err != nil {
		return err
	}
	imgJSON, err := json.Marshal(rv.Images)
	if err != nil {
		return err
	}
	votesJSON, err := json.Marshal(rv.HelpfulVotes)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		UPDATE reviews SET
			rating=$2, subcategories=$3, comment=$4, images=$5, status=$6,
			moderation_notes=$7, moderated_by=$8, moderated_at=$9,
			featured=$10, helpful_votes=$11, helpful_count=$12, updated_at=NOW()
		WHERE id=$1
	`,
		rv.ID, rv.Rating, subJSON, rv.Comment, imgJSON, rv.Status,
		rv.ModerationNotes, rv.ModeratedBy, rv.ModeratedAt,
		rv.Featured, votesJSON, rv.HelpfulCount,
	)
	return err
}

func (r *reviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	return err
}

func collectReviews(rows pgx.Rows) ([]*models.Review, error) {
	var out []*models.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
