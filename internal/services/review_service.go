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
// ReviewService interface
// ---------------------------------------------------------------------

type ReviewService interface {
	// Create requires a completed appointment on the property by the
	// same user, and at most one review per (property, user) pair.
	Create(ctx context.Context, req dtos.CreateReviewRequest, userID uuid.UUID) (*models.Review, error)

	// Moderate transitions a pending review; approving (or
	// un-approving) recomputes the property's aggregate rating.
	Moderate(ctx context.Context, reviewID, moderatorID uuid.UUID, status models.ReviewStatus, notes string) (*models.Review, error)

	SetFeatured(ctx context.Context, reviewID uuid.UUID, featured bool) (*models.Review, error)
	VoteHelpful(ctx context.Context, reviewID, voterID uuid.UUID) (*models.Review, error)
	Delete(ctx context.Context, reviewID uuid.UUID) error

	GetByID(ctx context.Context, reviewID uuid.UUID) (*models.Review, error)
	ListApprovedByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Review, error)
	ListPending(ctx context.Context) ([]*models.Review, error)
}

type reviewService struct {
	reviewRepo      repositories.ReviewRepository
	appointmentRepo repositories.AppointmentRepository
	propertyRepo    repositories.PropertyRepository

	now func() time.Time
}

func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	appointmentRepo repositories.AppointmentRepository,
	propertyRepo repositories.PropertyRepository,
) ReviewService {
	return &reviewService{
		reviewRepo:      reviewRepo,
		appointmentRepo: appointmentRepo,
		propertyRepo:    propertyRepo,
		now:             time.Now,
	}
}

func (s *reviewService) Create(ctx context.Context, req dtos.CreateReviewRequest, userID uuid.UUID) (*models.Review, error) {
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, utils.ErrNotFound
	}
	appointmentID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		return nil, utils.ErrNotFound
	}

	appt, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("lookup appointment: %w", err)
	}
	if appt == nil ||
		appt.PropertyID != propertyID ||
		appt.UserID == nil || *appt.UserID != userID ||
		appt.Status != models.AppointmentCompleted {
		return nil, utils.ErrReviewNotEligible
	}

	existing, err := s.reviewRepo.GetByPropertyAndUser(ctx, propertyID, userID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing != nil {
		return nil, utils.ErrDuplicateReview
	}

	review := &models.Review{
		ID:            uuid.New(),
		PropertyID:    propertyID,
		UserID:        userID,
		AppointmentID: appointmentID,
		Rating:        req.Rating,
		Subcategories: models.Subcategories{
			Location:  req.Subcategories.Location,
			Condition: req.Subcategories.Condition,
			Value:     req.Subcategories.Value,
			Service:   req.Subcategories.Service,
		},
		Comment: req.Comment,
		Status:  models.ReviewPending,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

func (s *reviewService) Moderate(
	ctx context.Context,
	reviewID, moderatorID uuid.UUID,
	status models.ReviewStatus,
	notes string,
) (*models.Review, error) {

	switch status {
	case models.ReviewApproved, models.ReviewRejected, models.ReviewChangesRequested:
	default:
		return nil, utils.ErrInvalidTransition
	}

	review, err := s.mustGet(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	wasApproved := review.Status == models.ReviewApproved
	review.Status = status
	review.ModerationNotes = notes
	review.ModeratedBy = &moderatorID
	review.ModeratedAt = utils.Ptr(s.now())

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	if status == models.ReviewApproved || wasApproved {
		if err := s.recomputeRating(ctx, review.PropertyID); err != nil {
			utils.Logger.WithError(err).Warnf("Rating recompute failed for property %s", review.PropertyID)
		}
	}
	return review, nil
}

func (s *reviewService) SetFeatured(ctx context.Context, reviewID uuid.UUID, featured bool) (*models.Review, error) {
	review, err := s.mustGet(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Status != models.ReviewApproved {
		return nil, utils.ErrInvalidTransition
	}

	review.Featured = featured
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

func (s *reviewService) VoteHelpful(ctx context.Context, reviewID, voterID uuid.UUID) (*models.Review, error) {
	review, err := s.mustGet(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.HasVoted(voterID) {
		return nil, utils.ErrAlreadyVoted
	}

	review.HelpfulVotes = append(review.HelpfulVotes, models.HelpfulVote{
		UserID: voterID, VotedAt: s.now(),
	})
	review.HelpfulCount = len(review.HelpfulVotes)

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, reviewID uuid.UUID) error {
	review, err := s.mustGet(ctx, reviewID)
	if err != nil {
		return err
	}
	wasApproved := review.Status == models.ReviewApproved

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if wasApproved {
		if err := s.recomputeRating(ctx, review.PropertyID); err != nil {
			utils.Logger.WithError(err).Warnf("Rating recompute failed for property %s", review.PropertyID)
		}
	}
	return nil
}

func (s *reviewService) GetByID(ctx context.Context, reviewID uuid.UUID) (*models.Review, error) {
	return s.mustGet(ctx, reviewID)
}

func (s *reviewService) ListApprovedByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Review, error) {
	return s.reviewRepo.ListApprovedByProperty(ctx, propertyID)
}

func (s *reviewService) ListPending(ctx context.Context) ([]*models.Review, error) {
	return s.reviewRepo.ListPending(ctx)
}

func (s *reviewService) recomputeRating(ctx context.Context, propertyID uuid.UUID) error {
	average, count, err := s.reviewRepo.ApprovedStats(ctx, propertyID)
	if err != nil {
		return err
	}
	return s.propertyRepo.UpdateRating(ctx, propertyID, average, count)
}

func (s *reviewService) mustGet(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup review: %w", err)
	}
	if review == nil {
		return nil, utils.ErrNotFound
	}
	return review, nil
}
