package services

import (
	"crypto/rsa"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/config"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/middleware"
)

// ---------------------------------------------------------------------
// JWTService interface
// ---------------------------------------------------------------------

type JWTService interface {
	GenerateAccessToken(subjectID uuid.UUID) (string, error)
}

type jwtService struct {
	privateKey  *rsa.PrivateKey
	tokenExpiry time.Duration

	now func() time.Time
}

func NewJWTService(cfg *config.Config) JWTService {
	return &jwtService{
		privateKey:  cfg.RSAPrivateKey,
		tokenExpiry: cfg.TokenExpiry,
		now:         time.Now,
	}
}

func (j *jwtService) GenerateAccessToken(subjectID uuid.UUID) (string, error) {
	now := j.now()
	claims := jwt.MapClaims{
		"iss": middleware.TokenIssuer,
		"sub": subjectID.String(),
		"exp": now.Add(j.tokenExpiry).Unix(),
		"iat": now.Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(j.privateKey)
}
