package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/repositories"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

// ---------------------------------------------------------------------
// UserService interface — admin-side account management.
// ---------------------------------------------------------------------

type UserService interface {
	ListAll(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListRoles(ctx context.Context) ([]*models.Role, error)
	ChangeRole(ctx context.Context, userID uuid.UUID, roleName string) (*models.User, error)
	IsStaff(ctx context.Context, userID uuid.UUID) (bool, error)
	UpdateProfileImage(ctx context.Context, userID uuid.UUID, img models.ProfileImage) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	userRepo repositories.UserRepository
	roleRepo repositories.RoleRepository
}

func NewUserService(userRepo repositories.UserRepository, roleRepo repositories.RoleRepository) UserService {
	return &userService{userRepo: userRepo, roleRepo: roleRepo}
}

func (s *userService) ListAll(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.ListAll(ctx)
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, utils.ErrNotFound
	}
	return user, nil
}

func (s *userService) ListRoles(ctx context.Context) ([]*models.Role, error) {
	return s.roleRepo.ListAll(ctx)
}

func (s *userService) ChangeRole(ctx context.Context, userID uuid.UUID, roleName string) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	role, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		return nil, fmt.Errorf("resolve role: %w", err)
	}
	if role == nil {
		return nil, utils.ErrRoleNotConfigured
	}

	if err := s.userRepo.UpdateRole(ctx, user.ID, role.ID); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	user.RoleID = role.ID
	return user, nil
}

func (s *userService) IsStaff(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	role, err := s.roleRepo.GetByID(ctx, user.RoleID)
	if err != nil {
		return false, fmt.Errorf("resolve role: %w", err)
	}
	if role == nil {
		return false, utils.ErrRoleNotConfigured
	}
	return models.IsStaff(role.Name), nil
}

func (s *userService) UpdateProfileImage(ctx context.Context, userID uuid.UUID, img models.ProfileImage) error {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.UpdateProfileImage(ctx, userID, img)
}

func (s *userService) Delete(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}
