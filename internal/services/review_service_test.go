package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/dtos"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

type reviewFixture struct {
	svc     *reviewService
	reviews *fakeReviewRepo
	appts   *fakeAppointmentRepo
	props   *fakePropertyRepo

	property *models.Property
	visitor  uuid.UUID
	appt     *models.Appointment
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	reviews := newFakeReviewRepo()
	appts := newFakeAppointmentRepo()
	props := newFakePropertyRepo()

	property := &models.Property{
		ID:     uuid.New(),
		Title:  "Casa Roble 12",
		Status: models.PropertyAvailable,
	}
	require.NoError(t, props.Create(context.Background(), property))

	visitor := uuid.New()
	appt := &models.Appointment{
		ID:         uuid.New(),
		PropertyID: property.ID,
		UserID:     &visitor,
		Status:     models.AppointmentCompleted,
	}
	require.NoError(t, appts.Create(context.Background(), appt))

	svc := NewReviewService(reviews, appts, props).(*reviewService)
	svc.now = func() time.Time { return testNow }

	return &reviewFixture{
		svc: svc, reviews: reviews, appts: appts, props: props,
		property: property, visitor: visitor, appt: appt,
	}
}

func (fx *reviewFixture) createRequest() dtos.CreateReviewRequest {
	return dtos.CreateReviewRequest{
		PropertyID:    fx.property.ID.String(),
		AppointmentID: fx.appt.ID.String(),
		Rating:        4,
		Subcategories: dtos.SubcategoriesPayload{
			Location:  utils.Ptr(5),
			Condition: utils.Ptr(4),
			Value:     utils.Ptr(4),
			Service:   utils.Ptr(5),
		},
		Comment: "Great house, quiet street, quick responses.",
	}
}

func TestCreateReviewRequiresCompletedVisit(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	// Appointment still confirmed: not eligible yet.
	fx.appt.Status = models.AppointmentConfirmed
	require.NoError(t, fx.appts.Update(ctx, fx.appt))
	_, err := fx.svc.Create(ctx, fx.createRequest(), fx.visitor)
	require.ErrorIs(t, err, utils.ErrReviewNotEligible)

	fx.appt.Status = models.AppointmentCompleted
	require.NoError(t, fx.appts.Update(ctx, fx.appt))
	review, err := fx.svc.Create(ctx, fx.createRequest(), fx.visitor)
	require.NoError(t, err)
	require.Equal(t, models.ReviewPending, review.Status)
}

func TestCreateReviewRejectsOtherUsersAppointment(t *testing.T) {
	fx := newReviewFixture(t)

	_, err := fx.svc.Create(context.Background(), fx.createRequest(), uuid.New())
	require.ErrorIs(t, err, utils.ErrReviewNotEligible)
}

func TestCreateReviewOnePerPropertyAndUser(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, fx.createRequest(), fx.visitor)
	require.NoError(t, err)

	_, err = fx.svc.Create(ctx, fx.createRequest(), fx.visitor)
	require.ErrorIs(t, err, utils.ErrDuplicateReview)
}

func TestModerateApprovalRecomputesRating(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()
	moderator := uuid.New()

	review, err := fx.svc.Create(ctx, fx.createRequest(), fx.visitor)
	require.NoError(t, err)

	approved, err := fx.svc.Moderate(ctx, review.ID, moderator, models.ReviewApproved, "looks genuine")
	require.NoError(t, err)
	require.Equal(t, models.ReviewApproved, approved.Status)
	require.Equal(t, moderator, *approved.ModeratedBy)

	property, err := fx.props.GetByID(ctx, fx.property.ID)
	require.NoError(t, err)
	require.Equal(t, 4.0, property.Rating.Average)
	require.Equal(t, 1, property.Rating.Count)
}

func TestModerateRejectingApprovedReviewClearsRating(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()
	moderator := uuid.New()

	review, err := fx.svc.Create(ctx, fx.createRequest(), fx.visitor)
	require.NoError(t, err)
	_, err = fx.svc.Moderate(ctx, review.ID, moderator, models.ReviewApproved, "")
	require.NoError(t, err)

	_, err = fx.svc.Moderate(ctx, review.ID, moderator, models.ReviewRejected, "user retracted")
	require.NoError(t, err)

	property, err := fx.props.GetByID(ctx, fx.property.ID)
	require.NoError(t, err)
	require.Zero(t, property.Rating.Average)
	require.Zero(t, property.Rating.Count)
}

func TestSetFeaturedRequiresApproval(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	review, err := fx.svc.Create(ctx, fx.createRequest(), fx.visitor)
	require.NoError(t, err)

	_, err = fx.svc.SetFeatured(ctx, review.ID, true)
	require.ErrorIs(t, err, utils.ErrInvalidTransition)

	_, err = fx.svc.Moderate(ctx, review.ID, uuid.New(), models.ReviewApproved, "")
	require.NoError(t, err)
	featured, err := fx.svc.SetFeatured(ctx, review.ID, true)
	require.NoError(t, err)
	require.True(t, featured.Featured)
}

func TestVoteHelpfulOncePerUser(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()
	voter := uuid.New()

	review, err := fx.svc.Create(ctx, fx.createRequest(), fx.visitor)
	require.NoError(t, err)

	voted, err := fx.svc.VoteHelpful(ctx, review.ID, voter)
	require.NoError(t, err)
	require.Equal(t, 1, voted.HelpfulCount)

	_, err = fx.svc.VoteHelpful(ctx, review.ID, voter)
	require.ErrorIs(t, err, utils.ErrAlreadyVoted)

	voted, err = fx.svc.VoteHelpful(ctx, review.ID, uuid.New())
	require.NoError(t, err)
	require.Equal(t, 2, voted.HelpfulCount)
}

func TestDeleteApprovedReviewRecomputesRating(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	review, err := fx.svc.Create(ctx, fx.createRequest(), fx.visitor)
	require.NoError(t, err)
	_, err = fx.svc.Moderate(ctx, review.ID, uuid.New(), models.ReviewApproved, "")
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(ctx, review.ID))

	property, err := fx.props.GetByID(ctx, fx.property.ID)
	require.NoError(t, err)
	require.Zero(t, property.Rating.Count)

	_, err = fx.svc.GetByID(ctx, review.ID)
	require.ErrorIs(t, err, utils.ErrNotFound)
}
