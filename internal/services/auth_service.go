package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/dtos"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/repositories"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

// ---------------------------------------------------------------------
// AuthService interface
// ---------------------------------------------------------------------

type AuthService interface {
	Register(ctx context.Context, req dtos.RegisterRequest) (*models.User, error)

	// Login returns the user and a signed access token. Regular users
	// must have completed contact verification; staff accounts are
	// exempt since they are provisioned internally.
	Login(ctx context.Context, identifier, password string) (*models.User, string, error)

	Profile(ctx context.Context, userID uuid.UUID) (*models.User, *models.Role, error)

	VerifyCode(ctx context.Context, userID uuid.UUID, code string) error
	ResendCode(ctx context.Context, userID uuid.UUID) error
}

type authService struct {
	userRepo     repositories.UserRepository
	roleRepo     repositories.RoleRepository
	jwtService   JWTService
	verification VerificationService
}

func NewAuthService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	jwtService JWTService,
	verification VerificationService,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		jwtService:   jwtService,
		verification: verification,
	}
}

func (s *authService) Register(ctx context.Context, req dtos.RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check existing email: %w", err)
	}
	if existing != nil {
		return nil, utils.ErrEmailExists
	}

	role, err := s.roleRepo.GetByName(ctx, models.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("resolve default role: %w", err)
	}
	if role == nil {
		return nil, utils.ErrRoleNotConfigured
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(req.Username),
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: hash,
		RoleID:       role.ID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.verification.SendCode(ctx, user); err != nil {
		// Account exists; the code can be requested again.
		utils.Logger.WithError(err).Warnf("Initial verification code failed for user %s", user.ID)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, identifier, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmailOrUsername(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", utils.ErrInvalidCredential
	}

	role, err := s.roleRepo.GetByID(ctx, user.RoleID)
	if err != nil {
		return nil, "", fmt.Errorf("resolve role: %w", err)
	}
	if role == nil {
		return nil, "", utils.ErrRoleNotConfigured
	}

	if !models.IsStaff(role.Name) && !user.IsVerified() {
		return nil, "", utils.ErrNotVerified
	}

	token, err := s.jwtService.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	return user, token, nil
}

func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, *models.Role, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, nil, utils.ErrNotFound
	}

	role, err := s.roleRepo.GetByID(ctx, user.RoleID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve role: %w", err)
	}

	return user, role, nil
}

func (s *authService) VerifyCode(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return utils.ErrNotFound
	}
	return s.verification.VerifyCode(ctx, user, code)
}

func (s *authService) ResendCode(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return utils.ErrNotFound
	}
	if user.IsVerified() {
		return nil
	}
	return s.verification.SendCode(ctx, user)
}
