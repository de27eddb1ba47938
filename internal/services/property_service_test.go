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

// spyBroadcaster records Broadcast calls on a channel so tests can wait
// for the goroutine that ChangeStatus spins up.
type spyBroadcaster struct {
	calls chan dtos.SendBroadcastRequest
}

func newSpyBroadcaster() *spyBroadcaster {
	return &spyBroadcaster{calls: make(chan dtos.SendBroadcastRequest, 8)}
}

func (s *spyBroadcaster) Broadcast(_ context.Context, req dtos.SendBroadcastRequest, _ uuid.UUID) (*models.Notification, error) {
	s.calls <- req
	return &models.Notification{ID: uuid.New(), Type: req.Type, Status: models.BroadcastCompleted}, nil
}

func (s *spyBroadcaster) ResendFailed(context.Context, uuid.UUID) (*models.Notification, error) {
	return nil, nil
}

func (s *spyBroadcaster) Preview(context.Context, dtos.SendBroadcastRequest) (*dtos.BroadcastPreviewResponse, error) {
	return nil, nil
}

func (s *spyBroadcaster) Stats(context.Context) (*dtos.BroadcastStatsResponse, error) {
	return nil, nil
}

func (s *spyBroadcaster) History(context.Context, int) ([]*models.Notification, error) {
	return nil, nil
}

func (s *spyBroadcaster) GetByID(context.Context, uuid.UUID) (*models.Notification, error) {
	return nil, nil
}

func (s *spyBroadcaster) waitForCall(t *testing.T) dtos.SendBroadcastRequest {
	t.Helper()
	select {
	case req := <-s.calls:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("expected a broadcast call")
		return dtos.SendBroadcastRequest{}
	}
}

func (s *spyBroadcaster) assertNoCall(t *testing.T) {
	t.Helper()
	select {
	case req := <-s.calls:
		t.Fatalf("unexpected broadcast call: %+v", req)
	case <-time.After(100 * time.Millisecond):
	}
}

func newPropertyFixture(t *testing.T) (*propertyService, *fakePropertyRepo, *spyBroadcaster) {
	t.Helper()
	props := newFakePropertyRepo()
	spy := newSpyBroadcaster()
	svc := NewPropertyService(props, spy).(*propertyService)
	svc.now = func() time.Time { return testNow }
	return svc, props, spy
}

func validPropertyRequest() dtos.CreatePropertyRequest {
	return dtos.CreatePropertyRequest{
		Title:       "Casa Roble 12, Valle Alto",
		Description: "Three bedroom house with a garden.",
		Address: dtos.AddressPayload{
			Street: "Roble 12", City: "Monterrey", State: "NL", ZipCode: "64989",
		},
		BusinessMode: "sale",
		Price:        dtos.PricePayload{Sale: utils.Ptr(2500000.0), Currency: "MXN"},
		Details:      dtos.DetailsPayload{Bedrooms: 3, Bathrooms: 2, PropertyType: "house"},
		Amenities:    []string{"garden"},
	}
}

func TestCreatePropertySeedsStatusHistory(t *testing.T) {
	svc, _, _ := newPropertyFixture(t)

	property, err := svc.Create(context.Background(), validPropertyRequest(), nil, uuid.New())
	require.NoError(t, err)
	require.Equal(t, models.PropertyAvailable, property.Status)
	require.True(t, property.Availability.IsAvailable)
	require.Len(t, property.StatusHistory, 1)
	require.Equal(t, "created", property.StatusHistory[0].Reason)
}

func TestCreatePropertyFirstImageBecomesMain(t *testing.T) {
	svc, _, _ := newPropertyFixture(t)

	images := []dtos.AddImagePayload{
		{URL: "https://cdn.example.com/a.jpg"},
		{URL: "https://cdn.example.com/b.jpg"},
	}
	property, err := svc.Create(context.Background(), validPropertyRequest(), images, uuid.New())
	require.NoError(t, err)
	require.True(t, property.Images[0].IsMain)
	require.False(t, property.Images[1].IsMain)
}

func TestCreatePropertySingleMainFlag(t *testing.T) {
	svc, _, _ := newPropertyFixture(t)

	images := []dtos.AddImagePayload{
		{URL: "https://cdn.example.com/a.jpg", IsMain: true},
		{URL: "https://cdn.example.com/b.jpg", IsMain: true},
	}
	property, err := svc.Create(context.Background(), validPropertyRequest(), images, uuid.New())
	require.NoError(t, err)
	require.True(t, property.Images[0].IsMain)
	require.False(t, property.Images[1].IsMain)
}

func TestChangeStatusAppendsHistoryAndSyncsAvailability(t *testing.T) {
	svc, _, _ := newPropertyFixture(t)
	ctx := context.Background()
	admin := uuid.New()

	property, err := svc.Create(ctx, validPropertyRequest(), nil, admin)
	require.NoError(t, err)

	updated, err := svc.ChangeStatus(ctx, property.ID, models.PropertyUnderContract, "offer accepted", admin)
	require.NoError(t, err)
	require.Equal(t, models.PropertyUnderContract, updated.Status)
	require.False(t, updated.Availability.IsAvailable)
	require.Len(t, updated.StatusHistory, 2)
	require.Equal(t, "offer accepted", updated.StatusHistory[1].Reason)
}

func TestChangeStatusAvailableAgainBroadcastsOnce(t *testing.T) {
	svc, _, spy := newPropertyFixture(t)
	ctx := context.Background()
	admin := uuid.New()

	property, err := svc.Create(ctx, validPropertyRequest(), nil, admin)
	require.NoError(t, err)

	// Going under contract stays quiet.
	_, err = svc.ChangeStatus(ctx, property.ID, models.PropertyUnderContract, "", admin)
	require.NoError(t, err)
	spy.assertNoCall(t)

	// Coming back announces availability.
	_, err = svc.ChangeStatus(ctx, property.ID, models.PropertyAvailable, "deal fell through", admin)
	require.NoError(t, err)
	req := spy.waitForCall(t)
	require.Equal(t, models.BroadcastTypeAvailableAgain, req.Type)
	require.Equal(t, property.ID.String(), req.PropertyID)

	// Re-applying the same status is a no-op and stays quiet.
	_, err = svc.ChangeStatus(ctx, property.ID, models.PropertyAvailable, "", admin)
	require.NoError(t, err)
	spy.assertNoCall(t)
}

func TestChangeStatusSoldDoesNotBroadcastWhenRelisted(t *testing.T) {
	svc, _, spy := newPropertyFixture(t)
	ctx := context.Background()
	admin := uuid.New()

	property, err := svc.Create(ctx, validPropertyRequest(), nil, admin)
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, property.ID, models.PropertySold, "", admin)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, property.ID, models.PropertyAvailable, "", admin)
	require.NoError(t, err)
	spy.assertNoCall(t)
}

func TestImageManagement(t *testing.T) {
	svc, _, _ := newPropertyFixture(t)
	ctx := context.Background()
	admin := uuid.New()

	property, err := svc.Create(ctx, validPropertyRequest(), []dtos.AddImagePayload{
		{URL: "https://cdn.example.com/a.jpg"},
	}, admin)
	require.NoError(t, err)
	mainID := property.Images[0].ID

	// Added images never steal the main flag.
	property, err = svc.AddImages(ctx, property.ID, []dtos.AddImagePayload{
		{URL: "https://cdn.example.com/b.jpg", IsMain: true},
	}, admin)
	require.NoError(t, err)
	require.Len(t, property.Images, 2)
	require.Equal(t, mainID, property.MainImage().ID)

	// SetMainImage moves the flag exclusively.
	property, err = svc.SetMainImage(ctx, property.ID, property.Images[1].ID, admin)
	require.NoError(t, err)
	require.False(t, property.Images[0].IsMain)
	require.True(t, property.Images[1].IsMain)

	// Removing the main image promotes the first remaining one.
	property, err = svc.RemoveImage(ctx, property.ID, property.Images[1].ID, admin)
	require.NoError(t, err)
	require.Len(t, property.Images, 1)
	require.True(t, property.Images[0].IsMain)
}

func TestAddImagesEnforcesCap(t *testing.T) {
	svc, _, _ := newPropertyFixture(t)
	ctx := context.Background()
	admin := uuid.New()

	var images []dtos.AddImagePayload
	for i := 0; i < maxPropertyImages; i++ {
		images = append(images, dtos.AddImagePayload{URL: "https://cdn.example.com/a.jpg"})
	}
	property, err := svc.Create(ctx, validPropertyRequest(), images, admin)
	require.NoError(t, err)

	_, err = svc.AddImages(ctx, property.ID, []dtos.AddImagePayload{
		{URL: "https://cdn.example.com/extra.jpg"},
	}, admin)
	require.ErrorIs(t, err, utils.ErrTooManyImages)
}

func TestCreateRejectsPriceMissingForMode(t *testing.T) {
	svc, _, _ := newPropertyFixture(t)
	ctx := context.Background()
	admin := uuid.New()

	req := validPropertyRequest()
	req.Price = dtos.PricePayload{Currency: "MXN"}
	_, err := svc.Create(ctx, req, nil, admin)
	require.ErrorIs(t, err, utils.ErrPriceModeMismatch)

	req = validPropertyRequest()
	req.BusinessMode = "both"
	_, err = svc.Create(ctx, req, nil, admin)
	require.ErrorIs(t, err, utils.ErrPriceModeMismatch)

	req.Price.Rent = utils.Ptr(18000.0)
	created, err := svc.Create(ctx, req, nil, admin)
	require.NoError(t, err)
	require.Equal(t, models.ModeBoth, created.BusinessMode)
}

func TestUpdateRejectsPriceMissingForMode(t *testing.T) {
	svc, _, _ := newPropertyFixture(t)
	ctx := context.Background()
	admin := uuid.New()

	property, err := svc.Create(ctx, validPropertyRequest(), nil, admin)
	require.NoError(t, err)

	mode := "rent"
	_, err = svc.Update(ctx, property.ID, dtos.UpdatePropertyRequest{BusinessMode: &mode}, admin)
	require.ErrorIs(t, err, utils.ErrPriceModeMismatch)

	_, err = svc.Update(ctx, property.ID, dtos.UpdatePropertyRequest{
		BusinessMode: &mode,
		Price:        &dtos.PricePayload{Rent: utils.Ptr(18000.0), Currency: "MXN"},
	}, admin)
	require.NoError(t, err)
}

func TestDocumentManagement(t *testing.T) {
	svc, _, _ := newPropertyFixture(t)
	ctx := context.Background()
	admin := uuid.New()

	property, err := svc.Create(ctx, validPropertyRequest(), nil, admin)
	require.NoError(t, err)

	property, err = svc.AddDocument(ctx, property.ID, dtos.AddDocumentPayload{
		Name: "Escritura", URL: "https://cdn.example.com/deed.pdf",
	}, admin)
	require.NoError(t, err)
	require.Len(t, property.Documents, 1)

	property, err = svc.RemoveDocument(ctx, property.ID, property.Documents[0].ID, admin)
	require.NoError(t, err)
	require.Empty(t, property.Documents)

	_, err = svc.RemoveDocument(ctx, property.ID, uuid.New(), admin)
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestUpdatePatchesOnlyProvidedFields(t *testing.T) {
	svc, _, _ := newPropertyFixture(t)
	ctx := context.Background()
	admin := uuid.New()

	property, err := svc.Create(ctx, validPropertyRequest(), nil, admin)
	require.NoError(t, err)

	newTitle := "Casa Roble 12, remodelada"
	updated, err := svc.Update(ctx, property.ID, dtos.UpdatePropertyRequest{Title: &newTitle}, admin)
	require.NoError(t, err)
	require.Equal(t, newTitle, updated.Title)
	require.Equal(t, property.Description, updated.Description)
	require.Equal(t, property.Address, updated.Address)
}

func TestListMineReturnsOnlyOwnListings(t *testing.T) {
	svc, _, _ := newPropertyFixture(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	mine, err := svc.Create(ctx, validPropertyRequest(), nil, alice)
	require.NoError(t, err)
	_, err = svc.Create(ctx, validPropertyRequest(), nil, bob)
	require.NoError(t, err)

	listed, err := svc.ListMine(ctx, alice)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, mine.ID, listed[0].ID)
}
