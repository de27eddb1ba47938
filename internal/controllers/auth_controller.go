package controllers

import (
	"net/http"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/config"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/dtos"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/services"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

type AuthController struct {
	authService services.AuthService
	cfg         *config.Config
}

func NewAuthController(authService services.AuthService, cfg *config.Config) *AuthController {
	return &AuthController{authService: authService, cfg: cfg}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.authService.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, user)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, token, err := c.authService.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.SetAuthCookie(w, token, c.cfg.TokenExpiry, c.cfg.LocalMode())
	utils.RespondWithJSON(w, http.StatusOK, dtos.AuthResponse{Token: token, User: user})
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	utils.ClearAuthCookie(w, c.cfg.LocalMode())
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (c *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, role, err := c.authService.Profile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	roleName := ""
	if role != nil {
		roleName = role.Name
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ProfileResponse{User: user, Role: roleName})
}

func (c *AuthController) VerifyCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dtos.VerifyCodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := c.authService.VerifyCode(r.Context(), userID, req.Code); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

func (c *AuthController) ResendCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := c.authService.ResendCode(r.Context(), userID); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "code_sent"})
}
