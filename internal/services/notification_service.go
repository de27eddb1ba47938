package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/config"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/dtos"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/repositories"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

// ---------------------------------------------------------------------
// NotificationService interface
// ---------------------------------------------------------------------

type NotificationService interface {
	// Broadcast runs a full mass-SMS send synchronously and returns
	// the finalized record.
	Broadcast(ctx context.Context, req dtos.SendBroadcastRequest, createdBy uuid.UUID) (*models.Notification, error)

	// ResendFailed re-attempts only the recipients that failed in a
	// prior run, replacing their recorded outcomes.
	ResendFailed(ctx context.Context, notificationID uuid.UUID) (*models.Notification, error)

	Preview(ctx context.Context, req dtos.SendBroadcastRequest) (*dtos.BroadcastPreviewResponse, error)
	Stats(ctx context.Context) (*dtos.BroadcastStatsResponse, error)
	History(ctx context.Context, limit int) ([]*models.Notification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	propertyRepo     repositories.PropertyRepository
	sms              SMSSender
	cfg              *config.Config

	now   func() time.Time
	sleep func(time.Duration)
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	propertyRepo repositories.PropertyRepository,
	sms SMSSender,
	cfg *config.Config,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		propertyRepo:     propertyRepo,
		sms:              sms,
		cfg:              cfg,
		now:              time.Now,
		sleep:            time.Sleep,
	}
}

// ---------------------------------------------------------------------
// Broadcast
// ---------------------------------------------------------------------

func (s *notificationService) Broadcast(
	ctx context.Context,
	req dtos.SendBroadcastRequest,
	createdBy uuid.UUID,
) (*models.Notification, error) {

	message, propertyID, err := s.renderMessage(ctx, req)
	if err != nil {
		return nil, err
	}

	recipients, err := s.userRepo.ListBroadcastRecipients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	if len(recipients) == 0 {
		return nil, utils.ErrNoRecipients
	}

	record := &models.Notification{
		ID:         uuid.New(),
		Type:       req.Type,
		PropertyID: propertyID,
		Message:    message,
		Status:     models.BroadcastInProgress,
		CreatedBy:  createdBy,
		StartedAt:  s.now(),
		Stats:      models.BroadcastStats{TotalUsers: len(recipients)},
	}
	if err := s.notificationRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create broadcast record: %w", err)
	}

	phones := make([]string, len(recipients))
	for i, u := range recipients {
		phones[i] = u.Phone
	}

	if err := s.run(ctx, record, phones, message); err != nil {
		return record, err
	}
	return record, nil
}

// run drives batched delivery over the given phone list, mutating and
// persisting record.Stats as it goes.
func (s *notificationService) run(
	ctx context.Context,
	record *models.Notification,
	phones []string,
	message string,
) error {
	started := s.now()

	for batchStart := 0; batchStart < len(phones); batchStart += s.cfg.BroadcastBatchSize {
		if s.now().Sub(started) > s.cfg.BroadcastDeadline {
			s.finalize(ctx, record, models.BroadcastFailed)
			return utils.ErrBroadcastDeadline
		}

		end := batchStart + s.cfg.BroadcastBatchSize
		if end > len(phones) {
			end = len(phones)
		}
		batch := phones[batchStart:end]

		var (
			mu     sync.Mutex
			wg     sync.WaitGroup
			sent   int
			failed []models.FailedRecipient
		)
		for _, phone := range batch {
			wg.Add(1)
			go func(phone string) {
				defer wg.Done()
				if err := s.sendWithRetry(phone, message); err != nil {
					mu.Lock()
					failed = append(failed, models.FailedRecipient{Phone: phone, Error: err.Error()})
					mu.Unlock()
					return
				}
				mu.Lock()
				sent++
				mu.Unlock()
			}(phone)
		}
		wg.Wait()

		record.Stats.SentCount += sent
		record.Stats.FailedCount += len(failed)
		record.Stats.InvalidNumbers = append(record.Stats.InvalidNumbers, failed...)

		if err := s.notificationRepo.UpdateProgress(ctx, record.ID, record.Stats); err != nil {
			utils.Logger.WithError(err).Errorf("Failed to persist broadcast progress for %s", record.ID)
		}

		if end < len(phones) {
			s.sleep(s.cfg.BroadcastBatchInterval)
		}
	}

	s.finalize(ctx, record, models.BroadcastCompleted)
	return nil
}

// sendWithRetry attempts one recipient with linear backoff between
// attempts.
func (s *notificationService) sendWithRetry(phone, message string) error {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.BroadcastMaxRetries; attempt++ {
		if lastErr = s.sms.SendSMS(phone, message); lastErr == nil {
			return nil
		}
		if attempt < s.cfg.BroadcastMaxRetries {
			s.sleep(time.Duration(attempt) * s.cfg.BroadcastRetryBackoff)
		}
	}
	return lastErr
}

func (s *notificationService) finalize(ctx context.Context, record *models.Notification, status models.BroadcastStatus) {
	completedAt := s.now()
	record.Status = status
	record.CompletedAt = &completedAt
	record.DurationSeconds = int(completedAt.Sub(record.StartedAt).Seconds())

	if err := s.notificationRepo.Finalize(
		ctx, record.ID, status, record.Stats, completedAt, record.DurationSeconds,
	); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to finalize broadcast %s", record.ID)
	}
}

// ---------------------------------------------------------------------
// Resend
// ---------------------------------------------------------------------

func (s *notificationService) ResendFailed(ctx context.Context, notificationID uuid.UUID) (*models.Notification, error) {
	record, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, fmt.Errorf("lookup broadcast: %w", err)
	}
	if record == nil {
		return nil, utils.ErrNotFound
	}
	if len(record.Stats.InvalidNumbers) == 0 {
		return nil, utils.ErrNoFailedToResend
	}

	phones := make([]string, len(record.Stats.InvalidNumbers))
	for i, f := range record.Stats.InvalidNumbers {
		phones[i] = f.Phone
	}

	// Previous failures are replaced by their new outcome rather than
	// accumulated across runs.
	record.Stats.FailedCount = 0
	record.Stats.InvalidNumbers = nil
	record.Status = models.BroadcastInProgress
	record.StartedAt = s.now()
	record.CompletedAt = nil

	if err := s.notificationRepo.UpdateProgress(ctx, record.ID, record.Stats); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to reset broadcast stats for %s", record.ID)
	}

	if err := s.run(ctx, record, phones, record.Message); err != nil {
		return record, err
	}
	return record, nil
}

// ---------------------------------------------------------------------
// Rendering / queries
// ---------------------------------------------------------------------

func (s *notificationService) renderMessage(ctx context.Context, req dtos.SendBroadcastRequest) (string, *uuid.UUID, error) {
	if req.Type == models.BroadcastTypeGeneral {
		return req.Message, nil, nil
	}

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return "", nil, utils.ErrNotFound
	}
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return "", nil, fmt.Errorf("lookup property: %w", err)
	}
	if property == nil {
		return "", nil, utils.ErrNotFound
	}

	var headline string
	switch req.Type {
	case models.BroadcastTypeAvailableAgain:
		headline = "Back on the market"
	default:
		headline = "New listing"
	}

	price := "consult price"
	if property.Price.Sale != nil {
		price = fmt.Sprintf("%.0f %s", *property.Price.Sale, property.Price.Currency)
	} else if property.Price.Rent != nil {
		price = fmt.Sprintf("%.0f %s/month", *property.Price.Rent, property.Price.Currency)
	}

	link := fmt.Sprintf("%s/propiedades/%s", s.cfg.FrontendURL, property.ID)
	msg := fmt.Sprintf(
		"%s: %s! %q in %s. %d bed, %d bath. %s. Details: %s",
		s.cfg.OrganizationName, headline, property.Title, property.Address.City,
		property.Details.Bedrooms, property.Details.Bathrooms, price, link,
	)
	return msg, &propertyID, nil
}

func (s *notificationService) Preview(ctx context.Context, req dtos.SendBroadcastRequest) (*dtos.BroadcastPreviewResponse, error) {
	message, _, err := s.renderMessage(ctx, req)
	if err != nil {
		return nil, err
	}
	count, err := s.userRepo.CountBroadcastRecipients(ctx)
	if err != nil {
		return nil, fmt.Errorf("count recipients: %w", err)
	}
	return &dtos.BroadcastPreviewResponse{RecipientCount: count, Message: message}, nil
}

func (s *notificationService) Stats(ctx context.Context) (*dtos.BroadcastStatsResponse, error) {
	history, err := s.notificationRepo.ListRecent(ctx, 1000)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	resp := &dtos.BroadcastStatsResponse{TotalBroadcasts: len(history)}
	for _, n := range history {
		resp.TotalSent += n.Stats.SentCount
		resp.TotalFailed += n.Stats.FailedCount
	}
	return resp, nil
}

func (s *notificationService) History(ctx context.Context, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notificationRepo.ListRecent(ctx, limit)
}

func (s *notificationService) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	record, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup broadcast: %w", err)
	}
	if record == nil {
		return nil, utils.ErrNotFound
	}
	return record, nil
}
