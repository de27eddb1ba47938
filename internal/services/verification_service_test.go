package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

func newVerificationFixture(t *testing.T) (*verificationService, *fakeUserRepo, *models.User) {
	t.Helper()

	roles := newFakeRoleRepo()
	users := newFakeUserRepo(roles)
	user := &models.User{
		ID:       uuid.New(),
		Username: "laura",
		Email:    "laura@example.com",
		Phone:    "+5281100011",
	}
	require.NoError(t, users.Create(context.Background(), user))

	svc := NewVerificationService(users, newFakeSMS(), &fakeEmail{}, testConfig()).(*verificationService)
	svc.now = func() time.Time { return testNow }
	return svc, users, user
}

func TestSendCodeStoresCodeWithExpiry(t *testing.T) {
	svc, users, user := newVerificationFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, user))

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.VerificationCode)
	require.Len(t, *stored.VerificationCode, 6)
	require.NotNil(t, stored.VerificationCodeExpiry)
	require.Equal(t, testNow.Add(10*time.Minute), *stored.VerificationCodeExpiry)
}

func TestVerifyCodeWithoutIssuedCode(t *testing.T) {
	svc, _, user := newVerificationFixture(t)

	err := svc.VerifyCode(context.Background(), user, "123456")
	require.ErrorIs(t, err, utils.ErrNoCodeIssued)
}

func TestVerifyCodeExpired(t *testing.T) {
	svc, users, user := newVerificationFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, user))
	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)

	svc.now = func() time.Time { return testNow.Add(11 * time.Minute) }
	err = svc.VerifyCode(ctx, stored, *stored.VerificationCode)
	require.ErrorIs(t, err, utils.ErrCodeExpired)
}

func TestVerifyCodeMismatch(t *testing.T) {
	svc, users, user := newVerificationFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, user))
	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)

	err = svc.VerifyCode(ctx, stored, "000000")
	require.ErrorIs(t, err, utils.ErrCodeMismatch)
}

func TestVerifyCodeMarksBothChannels(t *testing.T) {
	svc, users, user := newVerificationFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, user))
	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.VerifyCode(ctx, stored, *stored.VerificationCode))

	verified, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, verified.IsEmailVerified)
	require.True(t, verified.IsPhoneVerified)
	require.Nil(t, verified.VerificationCode)
	require.Nil(t, verified.VerificationCodeExpiry)
}
