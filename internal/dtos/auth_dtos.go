package dtos

import (
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,e164"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	// Identifier accepts the email or the username.
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type VerifyCodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type ProfileResponse struct {
	User *models.User `json:"user"`
	Role string       `json:"role"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user co-admin admin"`
}

type UpdateProfileImageRequest struct {
	URL      string `json:"url" validate:"required,url"`
	PublicID string `json:"public_id"`
}
