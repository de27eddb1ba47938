package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/dtos"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/repositories"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

// ---------------------------------------------------------------------
// OfferService interface
// ---------------------------------------------------------------------

type OfferService interface {
	// Create opens a negotiation thread. One active offer per
	// (property, user) pair.
	Create(ctx context.Context, req dtos.CreateOfferRequest, userID uuid.UUID) (*models.Offer, error)

	// AddMessage appends to the thread and bumps the unread counter
	// for the opposite side.
	AddMessage(ctx context.Context, offerID, senderID uuid.UUID, content string, senderIsStaff bool) (*models.Offer, error)

	// MarkRead clears the reader's side of the unread counter.
	MarkRead(ctx context.Context, offerID uuid.UUID, readerIsStaff bool) (*models.Offer, error)

	ChangeStatus(ctx context.Context, offerID uuid.UUID, status models.OfferStatus) (*models.Offer, error)
	Take(ctx context.Context, offerID, staffID uuid.UUID) (*models.Offer, error)

	GetByID(ctx context.Context, offerID uuid.UUID) (*models.Offer, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Offer, error)
	ListPending(ctx context.Context) ([]*models.Offer, error)
	ListByAssignee(ctx context.Context, staffID uuid.UUID) ([]*models.Offer, error)
	ListAll(ctx context.Context) ([]*models.Offer, error)
}

type offerService struct {
	offerRepo    repositories.OfferRepository
	propertyRepo repositories.PropertyRepository

	now func() time.Time
}

func NewOfferService(
	offerRepo repositories.OfferRepository,
	propertyRepo repositories.PropertyRepository,
) OfferService {
	return &offerService{
		offerRepo:    offerRepo,
		propertyRepo: propertyRepo,
		now:          time.Now,
	}
}

func (s *offerService) Create(ctx context.Context, req dtos.CreateOfferRequest, userID uuid.UUID) (*models.Offer, error) {
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, utils.ErrNotFound
	}

	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("lookup property: %w", err)
	}
	if property == nil {
		return nil, utils.ErrNotFound
	}
	if property.Status != models.PropertyAvailable {
		return nil, utils.ErrPropertyUnavailable
	}

	existing, err := s.offerRepo.GetActiveByPropertyAndUser(ctx, propertyID, userID)
	if err != nil {
		return nil, fmt.Errorf("check existing offer: %w", err)
	}
	if existing != nil {
		return nil, utils.ErrDuplicateOffer
	}

	now := s.now()
	offer := &models.Offer{
		ID:          uuid.New(),
		PropertyID:  propertyID,
		UserID:      userID,
		OfferAmount: req.OfferAmount,
		Status:      models.OfferPending,
		Messages: []models.OfferMessage{{
			ID:        uuid.New(),
			SenderID:  userID,
			Content:   req.Message,
			CreatedAt: now,
		}},
		Unread: models.UnreadCount{Admin: 1},
	}
	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	return offer, nil
}

func (s *offerService) AddMessage(
	ctx context.Context,
	offerID, senderID uuid.UUID,
	content string,
	senderIsStaff bool,
) (*models.Offer, error) {

	offer, err := s.mustGet(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !offer.IsActive() {
		return nil, utils.ErrInvalidTransition
	}

	offer.Messages = append(offer.Messages, models.OfferMessage{
		ID:        uuid.New(),
		SenderID:  senderID,
		Content:   content,
		CreatedAt: s.now(),
	})
	if senderIsStaff {
		offer.Unread.User++
	} else {
		offer.Unread.Admin++
	}

	if err := s.offerRepo.Update(ctx, offer); err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}
	return offer, nil
}

func (s *offerService) MarkRead(ctx context.Context, offerID uuid.UUID, readerIsStaff bool) (*models.Offer, error) {
	offer, err := s.mustGet(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if readerIsStaff {
		offer.Unread.Admin = 0
	} else {
		offer.Unread.User = 0
	}
	for i := range offer.Messages {
		offer.Messages[i].Read = true
	}

	if err := s.offerRepo.Update(ctx, offer); err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}
	return offer, nil
}

func (s *offerService) ChangeStatus(ctx context.Context, offerID uuid.UUID, status models.OfferStatus) (*models.Offer, error) {
	if !models.ValidOfferStatus(status) {
		return nil, utils.ErrInvalidTransition
	}

	offer, err := s.mustGet(ctx, offerID)
	if err != nil {
		return nil, err
	}

	// Terminal statuses stay terminal.
	switch offer.Status {
	case models.OfferAccepted, models.OfferRejected, models.OfferClosed:
		return nil, utils.ErrInvalidTransition
	}

	offer.Status = status
	if err := s.offerRepo.Update(ctx, offer); err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}
	return offer, nil
}

// Take claims an unassigned offer for a staff member and moves it into
// negotiation.
func (s *offerService) Take(ctx context.Context, offerID, staffID uuid.UUID) (*models.Offer, error) {
	offer, err := s.mustGet(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.AssignedTo != nil {
		return nil, utils.ErrInvalidTransition
	}

	offer.AssignedTo = &staffID
	offer.AssignedAt = utils.Ptr(s.now())
	if offer.Status == models.OfferPending {
		offer.Status = models.OfferInProgress
	}

	if err := s.offerRepo.Update(ctx, offer); err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}
	return offer, nil
}

func (s *offerService) GetByID(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	return s.mustGet(ctx, offerID)
}

func (s *offerService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Offer, error) {
	return s.offerRepo.ListByUser(ctx, userID)
}

func (s *offerService) ListPending(ctx context.Context) ([]*models.Offer, error) {
	return s.offerRepo.ListPending(ctx)
}

func (s *offerService) ListByAssignee(ctx context.Context, staffID uuid.UUID) ([]*models.Offer, error) {
	return s.offerRepo.ListByAssignee(ctx, staffID)
}

func (s *offerService) ListAll(ctx context.Context) ([]*models.Offer, error) {
	return s.offerRepo.ListAll(ctx)
}

func (s *offerService) mustGet(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup offer: %w", err)
	}
	if offer == nil {
		return nil, utils.ErrNotFound
	}
	return offer, nil
}
