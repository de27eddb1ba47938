package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
)

type RoleRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	ListAll(ctx context.Context) ([]*models.Role, error)
	Ensure(ctx context.Context, name string) (*models.Role, error)
}

type roleRepo struct{ db DB }

func NewRoleRepository(db DB) RoleRepository { return &roleRepo{db: db} }

func (r *roleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name FROM roles WHERE id=$1`, id)
	var role models.Role
	if err := row.Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) GetByName(ctx context.Context, name string) (*models.Role, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name FROM roles WHERE name=$1`, name)
	var role models.Role
	if err := row.Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) ListAll(ctx context.Context) ([]*models.Role, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		out = append(out, &role)
	}
	return out, rows.Err()
}

// Ensure creates the role if missing and returns it. Used by startup
// seeding of the user/co-admin/admin roles.
func (r *roleRepo) Ensure(ctx context.Context, name string) (*models.Role, error) {
	existing, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	role := &models.Role{ID: uuid.New(), Name: name}
	_, err = r.db.Exec(ctx, `INSERT INTO roles (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`, role.ID, role.Name)
	if err != nil {
		return nil, err
	}
	return r.GetByName(ctx, name)
}
