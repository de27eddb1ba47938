package services

import (
	"context"
	"fmt"
	"time"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/config"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/repositories"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

// ---------------------------------------------------------------------
// VerificationService interface
// ---------------------------------------------------------------------
//
// A single numeric code covers both contact channels: it is delivered
// over SMS and email simultaneously, and verifying it marks both the
// phone and the email as trusted.

type VerificationService interface {
	// SendCode issues a fresh code for the user and dispatches it over
	// SMS and email. Dispatch is best-effort: the call succeeds once
	// the code is stored, even if both sends fail.
	SendCode(ctx context.Context, user *models.User) error

	// VerifyCode checks the submitted code against the pending one and
	// marks the account verified on match.
	VerifyCode(ctx context.Context, user *models.User, code string) error
}

type verificationService struct {
	userRepo repositories.UserRepository
	sms      SMSSender
	email    EmailSender
	cfg      *config.Config

	now func() time.Time
}

func NewVerificationService(
	userRepo repositories.UserRepository,
	sms SMSSender,
	email EmailSender,
	cfg *config.Config,
) VerificationService {
	return &verificationService{
		userRepo: userRepo,
		sms:      sms,
		email:    email,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *verificationService) SendCode(ctx context.Context, user *models.User) error {
	code := utils.RandomNumericString(s.cfg.VerificationCodeLength)
	expiresAt := s.now().Add(s.cfg.VerificationCodeExpiry)

	if err := s.userRepo.SetVerificationCode(ctx, user.ID, code, expiresAt); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}

	smsBody := fmt.Sprintf(
		"%s: your verification code is %s. It expires in %d minutes.",
		s.cfg.OrganizationName, code, int(s.cfg.VerificationCodeExpiry.Minutes()),
	)
	subject := fmt.Sprintf("%s verification code", s.cfg.OrganizationName)
	plain, html := verificationEmailBodies(s.cfg.OrganizationName, code, s.cfg.VerificationCodeExpiry)

	// Both channels fire concurrently; neither failure blocks the
	// caller since the code is already persisted and can be re-sent.
	go func() {
		if err := s.sms.SendSMS(user.Phone, smsBody); err != nil {
			utils.Logger.WithError(err).Warnf("Verification SMS failed for user %s", user.ID)
		}
	}()
	go func() {
		if err := s.email.SendEmail(user.Username, user.Email, subject, plain, html); err != nil {
			utils.Logger.WithError(err).Warnf("Verification email failed for user %s", user.ID)
		}
	}()

	return nil
}

func (s *verificationService) VerifyCode(ctx context.Context, user *models.User, code string) error {
	if user.VerificationCode == nil || user.VerificationCodeExpiry == nil {
		return utils.ErrNoCodeIssued
	}
	if s.now().After(*user.VerificationCodeExpiry) {
		return utils.ErrCodeExpired
	}
	if *user.VerificationCode != code {
		return utils.ErrCodeMismatch
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}
