package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	// ListPublic returns properties visible to anonymous visitors.
	ListPublic(ctx context.Context) ([]*models.Property, error)
	ListByCreator(ctx context.Context, createdBy uuid.UUID) ([]*models.Property, error)
	ListAll(ctx context.Context) ([]*models.Property, error)

	Update(ctx context.Context, p *models.Property) error
	UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type propertyRepo struct{ db DB }

func NewPropertyRepository(db DB) PropertyRepository { return &propertyRepo{db: db} }

const baseSelectProperty = `
	SELECT id, title, description, address, business_mode, price, details,
	       images, documents, amenities, availability, status, status_history,
	       rating, contact_phone, contact_email, created_by, updated_by,
	       created_at, updated_at
	FROM properties
`

func scanProperty(row pgx.Row) (*models.Property, error) {
	var (
		p                                  models.Property
		addr, price, details               []byte
		images, documents, avail, history  []byte
		rating                             []byte
		amenities                          []string
	)
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&addr,
		&p.BusinessMode,
		&price,
		&details,
		&images,
		&documents,
		&amenities,
		&avail,
		&p.Status,
		&history,
		&rating,
		&p.ContactPhone,
		&p.ContactEmail,
		&p.CreatedBy,
		&p.UpdatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Amenities = amenities
	for _, pair := range []struct {
		raw []byte
		dst any
	}{
		{addr, &p.Address},
		{price, &p.Price},
		{details, &p.Details},
		{images, &p.Images},
		{documents, &p.Documents},
		{avail, &p.Availability},
		{history, &p.StatusHistory},
		{rating, &p.Rating},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func marshalPropertyJSON(p *models.Property) (addr, price, details, images, documents, avail, history, rating []byte, err error) {
	if addr, err = json.Marshal(p.Address); err != nil {
		return
	}
	if price, err = json.Marshal(p.Price); err != nil {
		return
	}
	if details, err = json.Marshal(p.Details); err != nil {
		return
	}
	if images, err = json.Marshal(p.Images); err != nil {
		return
	}
	if documents, err = json.Marshal(p.Documents); err != nil {
		return
	}
	if avail, err = json.Marshal(p.Availability); err != nil {
		return
	}
	if history, err = json.Marshal(p.StatusHistory); err != nil {
		return
	}
	rating, err = json.Marshal(p.Rating)
	return
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	addr, price, details, images, documents, avail, history, rating, err := marshalPropertyJSON(p)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO properties (
			id, title, description, address, business_mode, price, details,
			images, documents, amenities, availability, status, status_history,
			rating, contact_phone, contact_email, created_by, updated_by,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,NOW(),NOW())
	`,
		p.ID, p.Title, p.Description, addr, p.BusinessMode, price, details,
		images, documents, p.Amenities, avail, p.Status, history,
		rating, p.ContactPhone, p.ContactEmail, p.CreatedBy, p.UpdatedBy,
	)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	p, err := scanProperty(r.db.QueryRow(ctx, baseSelectProperty+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *propertyRepo) ListPublic(ctx context.Context) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, baseSelectProperty+` WHERE status='DISPONIBLE' ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProperties(rows)
}

func (r *propertyRepo) ListByCreator(ctx context.Context, createdBy uuid.UUID) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, baseSelectProperty+` WHERE created_by=$1 ORDER BY created_at DESC`, createdBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProperties(rows)
}

func (r *propertyRepo) ListAll(ctx context.Context) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, baseSelectProperty+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProperties(rows)
}

func (r *propertyRepo) Update(ctx context.Context, p *models.Property) error {
	addr, price, details, images, documents, avail, history, rating, err := marshalPropertyJSON(p)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		UPDATE properties SET
			title=$2, description=$3, address=$4, business_mode=$5, price=$6,
			details=$7, images=$8, documents=$9, amenities=$10, availability=$11,
			status=$12, status_history=$13, rating=$14,
			contact_phone=$15, contact_email=$16, updated_by=$17, updated_at=NOW()
		WHERE id=$1
	`,
		p.ID, p.Title, p.Description, addr, p.BusinessMode, price,
		details, images, documents, p.Amenities, avail,
		p.Status, history, rating,
		p.ContactPhone, p.ContactEmail, p.UpdatedBy,
	)
	return err
}

func (r *propertyRepo) UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int) error {
	rating, err := json.Marshal(models.Rating{Average: average, Count: count})
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `UPDATE properties SET rating=$2, updated_at=NOW() WHERE id=$1`, id, rating)
	return err
}

func (r *propertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id=$1`, id)
	return err
}

func collectProperties(rows pgx.Rows) ([]*models.Property, error) {
	var out []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
