package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/config"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/repositories"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SeedRoles makes sure the three role rows exist. Idempotent.
func SeedRoles(ctx context.Context, roleRepo repositories.RoleRepository) error {
	for _, name := range []string{models.RoleUser, models.RoleCoAdmin, models.RoleAdmin} {
		if _, err := roleRepo.Ensure(ctx, name); err != nil {
			return fmt.Errorf("ensure role %q: %w", name, err)
		}
	}
	return nil
}

// SeedAdminUser provisions the bootstrap admin account from SETUP_*
// env vars. A no-op when the vars are absent or the email is taken.
func SeedAdminUser(
	ctx context.Context,
	cfg *config.Config,
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		utils.Logger.Info("No SETUP_ADMIN_* vars present; skipping admin seed.")
		return nil
	}

	role, err := roleRepo.GetByName(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("resolve admin role: %w", err)
	}
	if role == nil {
		return utils.ErrRoleNotConfigured
	}

	existing, err := userRepo.GetByEmail(ctx, cfg.AdminEmail)
	if err != nil {
		return fmt.Errorf("check existing admin: %w", err)
	}
	if existing != nil {
		utils.Logger.Infof("Admin account %s already present; skipping seed.", cfg.AdminEmail)
		return nil
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		ID:              uuid.New(),
		Username:        "admin",
		Email:           cfg.AdminEmail,
		Phone:           cfg.AdminPhone,
		PasswordHash:    hash,
		RoleID:          role.ID,
		IsEmailVerified: true,
		IsPhoneVerified: true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		if isUniqueViolation(err) {
			utils.Logger.Infof("Admin account %s already present; skipping seed.", cfg.AdminEmail)
			return nil
		}
		return fmt.Errorf("insert admin: %w", err)
	}

	utils.Logger.Infof("Seeded admin account %s (id=%s).", admin.Email, admin.ID)
	return nil
}
