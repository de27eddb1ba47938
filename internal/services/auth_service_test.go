package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/dtos"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/middleware"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

type authFixture struct {
	svc   AuthService
	users *fakeUserRepo
	roles *fakeRoleRepo
	sms   *fakeSMS
	key   *rsa.PrivateKey
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	cfg := testConfig()
	cfg.RSAPrivateKey = key

	roles := newFakeRoleRepo()
	users := newFakeUserRepo(roles)
	sms := newFakeSMS()

	verification := NewVerificationService(users, sms, &fakeEmail{}, cfg).(*verificationService)
	verification.now = func() time.Time { return testNow }

	svc := NewAuthService(users, roles, NewJWTService(cfg), verification)
	return &authFixture{svc: svc, users: users, roles: roles, sms: sms, key: key}
}

func registerRequest() dtos.RegisterRequest {
	return dtos.RegisterRequest{
		Username: "laura",
		Email:    "Laura@Example.com",
		Phone:    "+5281100011",
		Password: "hunter2hunter2",
	}
}

func TestRegisterNormalizesEmailAndIssuesCode(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	user, err := fx.svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	require.Equal(t, "laura@example.com", user.Email)
	require.NotEqual(t, "hunter2hunter2", user.PasswordHash)

	stored, err := fx.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.VerificationCode)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	dup := registerRequest()
	dup.Username = "laura2"
	_, err = fx.svc.Register(ctx, dup)
	require.ErrorIs(t, err, utils.ErrEmailExists)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, _, err = fx.svc.Login(ctx, "laura@example.com", "wrong-password")
	require.ErrorIs(t, err, utils.ErrInvalidCredential)

	_, _, err = fx.svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, utils.ErrInvalidCredential)
}

func TestLoginRequiresVerification(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	user, err := fx.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, _, err = fx.svc.Login(ctx, "laura@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, utils.ErrNotVerified)

	require.NoError(t, fx.users.MarkVerified(ctx, user.ID))
	loggedIn, token, err := fx.svc.Login(ctx, "laura@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)

	parsed, err := middleware.ValidateToken(token, &fx.key.PublicKey)
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, user.ID.String(), claims["sub"])
}

func TestLoginAcceptsUsername(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	user, err := fx.svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	require.NoError(t, fx.users.MarkVerified(ctx, user.ID))

	loggedIn, _, err := fx.svc.Login(ctx, "laura", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)
}

func TestLoginStaffExemptFromVerification(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	adminRole, err := fx.roles.GetByName(ctx, models.RoleAdmin)
	require.NoError(t, err)
	hash, err := utils.HashPassword("s3cret-pass")
	require.NoError(t, err)
	admin := &models.User{
		ID:           uuid.New(),
		Username:     "root",
		Email:        "root@example.com",
		PasswordHash: hash,
		RoleID:       adminRole.ID,
	}
	require.NoError(t, fx.users.Create(ctx, admin))

	_, _, err = fx.svc.Login(ctx, "root", "s3cret-pass")
	require.NoError(t, err)
}

func TestVerifyCodeFlow(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	user, err := fx.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	stored, err := fx.users.GetByID(ctx, user.ID)
	require.NoError(t, err)

	require.ErrorIs(t, fx.svc.VerifyCode(ctx, user.ID, "000000"), utils.ErrCodeMismatch)
	require.NoError(t, fx.svc.VerifyCode(ctx, user.ID, *stored.VerificationCode))

	verified, err := fx.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, verified.IsVerified())
}

func TestResendCodeSkipsVerifiedUser(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	user, err := fx.svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	require.NoError(t, fx.users.MarkVerified(ctx, user.ID))

	require.NoError(t, fx.svc.ResendCode(ctx, user.ID))
	stored, err := fx.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Nil(t, stored.VerificationCode)
}
