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

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByEmailOrUsername backs login, which accepts either identifier.
	GetByEmailOrUsername(ctx context.Context, identifier string) (*models.User, error)

	ListAll(ctx context.Context) ([]*models.User, error)
	// ListBroadcastRecipients returns users with a non-empty phone and
	// both verification flags set, excluding the admin role.
	ListBroadcastRecipients(ctx context.Context) ([]*models.User, error)
	CountBroadcastRecipients(ctx context.Context) (int, error)

	SetVerificationCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	// MarkVerified clears the pending code and sets both flags true.
	MarkVerified(ctx context.Context, id uuid.UUID) error

	UpdateProfileImage(ctx context.Context, id uuid.UUID, img models.ProfileImage) error
	UpdateRole(ctx context.Context, id uuid.UUID, roleID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepo struct{ db DB }

func NewUserRepository(db DB) UserRepository { return &userRepo{db: db} }

const baseSelectUser = `
	SELECT id, username, email, phone, password_hash, role_id, profile_image,
	       is_email_verified, is_phone_verified,
	       verification_code, verification_code_expiry,
	       created_at, updated_at
	FROM users
`

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u       models.User
		imgJSON []byte
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.RoleID,
		&imgJSON,
		&u.IsEmailVerified,
		&u.IsPhoneVerified,
		&u.VerificationCode,
		&u.VerificationCodeExpiry,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(imgJSON) > 0 {
		if err := json.Unmarshal(imgJSON, &u.ProfileImage); err != nil {
			return nil, err
		}
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	imgJSON, err := json.Marshal(u.ProfileImage)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO users (
			id, username, email, phone, password_hash, role_id, profile_image,
			is_email_verified, is_phone_verified,
			verification_code, verification_code_expiry,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW(),NOW())
	`,
		u.ID, u.Username, u.Email, u.Phone, u.PasswordHash, u.RoleID, imgJSON,
		u.IsEmailVerified, u.IsPhoneVerified,
		u.VerificationCode, u.VerificationCodeExpiry,
	)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, baseSelectUser+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, baseSelectUser+` WHERE email=$1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *userRepo) GetByEmailOrUsername(ctx context.Context, identifier string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, baseSelectUser+` WHERE email=$1 OR username=$1`, identifier))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *userRepo) ListAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, baseSelectUser+` ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

const broadcastRecipientFilter = `
	JOIN roles r ON r.id = users.role_id
	WHERE users.phone <> ''
	  AND users.is_email_verified
	  AND users.is_phone_verified
	  AND r.name <> 'admin'
`

func (r *userRepo) ListBroadcastRecipients(ctx context.Context) ([]*models.User, error) {
	q := `
		SELECT users.id, users.username, users.email, users.phone, users.password_hash,
		       users.role_id, users.profile_image,
		       users.is_email_verified, users.is_phone_verified,
		       users.verification_code, users.verification_code_expiry,
		       users.created_at, users.updated_at
		FROM users
	` + broadcastRecipientFilter + ` ORDER BY users.created_at`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *userRepo) CountBroadcastRecipients(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`+broadcastRecipientFilter).Scan(&n)
	return n, err
}

func (r *userRepo) SetVerificationCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET verification_code=$2, verification_code_expiry=$3, updated_at=NOW()
		WHERE id=$1
	`, id, code, expiresAt)
	return err
}

func (r *userRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET verification_code=NULL, verification_code_expiry=NULL,
		    is_email_verified=TRUE, is_phone_verified=TRUE, updated_at=NOW()
		WHERE id=$1
	`, id)
	return err
}

func (r *userRepo) UpdateProfileImage(ctx context.Context, id uuid.UUID, img models.ProfileImage) error {
	imgJSON, err := json.Marshal(img)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `UPDATE users SET profile_image=$2, updated_at=NOW() WHERE id=$1`, id, imgJSON)
	return err
}

func (r *userRepo) UpdateRole(ctx context.Context, id uuid.UUID, roleID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET role_id=$2, updated_at=NOW() WHERE id=$1`, id, roleID)
	return err
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	return err
}

func collectUsers(rows pgx.Rows) ([]*models.User, error) {
	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
