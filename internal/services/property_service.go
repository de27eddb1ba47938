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

const maxPropertyImages = 10

// ---------------------------------------------------------------------
// PropertyService interface
// ---------------------------------------------------------------------

type PropertyService interface {
	Create(ctx context.Context, req dtos.CreatePropertyRequest, images []dtos.AddImagePayload, createdBy uuid.UUID) (*models.Property, error)
	Update(ctx context.Context, id uuid.UUID, req dtos.UpdatePropertyRequest, updatedBy uuid.UUID) (*models.Property, error)
	Delete(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListPublic(ctx context.Context) ([]*models.Property, error)
	ListAll(ctx context.Context) ([]*models.Property, error)
	ListMine(ctx context.Context, createdBy uuid.UUID) ([]*models.Property, error)

	// ChangeStatus appends to the status history and keeps the
	// availability flag in sync. Returning to the market fires a
	// single available-again broadcast.
	ChangeStatus(ctx context.Context, id uuid.UUID, status models.PropertyStatus, reason string, changedBy uuid.UUID) (*models.Property, error)

	AddImages(ctx context.Context, id uuid.UUID, images []dtos.AddImagePayload, updatedBy uuid.UUID) (*models.Property, error)
	RemoveImage(ctx context.Context, id, imageID uuid.UUID, updatedBy uuid.UUID) (*models.Property, error)
	SetMainImage(ctx context.Context, id, imageID uuid.UUID, updatedBy uuid.UUID) (*models.Property, error)

	AddDocument(ctx context.Context, id uuid.UUID, doc dtos.AddDocumentPayload, updatedBy uuid.UUID) (*models.Property, error)
	RemoveDocument(ctx context.Context, id, docID uuid.UUID, updatedBy uuid.UUID) (*models.Property, error)
}

type propertyService struct {
	propertyRepo repositories.PropertyRepository
	broadcasts   NotificationService

	now func() time.Time
}

func NewPropertyService(
	propertyRepo repositories.PropertyRepository,
	broadcasts NotificationService,
) PropertyService {
	return &propertyService{
		propertyRepo: propertyRepo,
		broadcasts:   broadcasts,
		now:          time.Now,
	}
}

// ---------------------------------------------------------------------
// CRUD
// ---------------------------------------------------------------------

func (s *propertyService) Create(
	ctx context.Context,
	req dtos.CreatePropertyRequest,
	images []dtos.AddImagePayload,
	createdBy uuid.UUID,
) (*models.Property, error) {

	if len(images) > maxPropertyImages {
		return nil, utils.ErrTooManyImages
	}

	mode := models.BusinessMode(req.BusinessMode)
	price := models.Price{
		Sale:     req.Price.Sale,
		Rent:     req.Price.Rent,
		Deposit:  req.Price.Deposit,
		Currency: req.Price.Currency,
	}
	if err := validatePriceMode(mode, price); err != nil {
		return nil, err
	}

	now := s.now()
	property := &models.Property{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Address: models.Address{
			Street:    req.Address.Street,
			City:      req.Address.City,
			State:     req.Address.State,
			ZipCode:   req.Address.ZipCode,
			Latitude:  req.Address.Latitude,
			Longitude: req.Address.Longitude,
		},
		BusinessMode: mode,
		Price:        price,
		Details: models.PropertyDetails{
			Bedrooms:     req.Details.Bedrooms,
			Bathrooms:    req.Details.Bathrooms,
			SquareFeet:   req.Details.SquareFeet,
			PropertyType: req.Details.PropertyType,
			YearBuilt:    req.Details.YearBuilt,
			Parking:      req.Details.Parking,
			PetFriendly:  req.Details.PetFriendly,
			Furnished:    req.Details.Furnished,
		},
		Amenities:    req.Amenities,
		Availability: models.Availability{IsAvailable: true},
		Status:       models.PropertyAvailable,
		StatusHistory: []models.StatusChange{{
			Status: models.PropertyAvailable, ChangedBy: createdBy, Reason: "created", ChangedAt: now,
		}},
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		CreatedBy:    createdBy,
	}

	property.Images = buildImages(images)

	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}
	return property, nil
}

// validatePriceMode enforces that the listing carries the price fields
// its business mode requires: a sale price for "sale", a rent price for
// "rent", both for "both".
func validatePriceMode(mode models.BusinessMode, price models.Price) error {
	needsSale := mode == models.ModeSale || mode == models.ModeBoth
	needsRent := mode == models.ModeRent || mode == models.ModeBoth
	if needsSale && price.Sale == nil {
		return utils.ErrPriceModeMismatch
	}
	if needsRent && price.Rent == nil {
		return utils.ErrPriceModeMismatch
	}
	return nil
}

func buildImages(payloads []dtos.AddImagePayload) []models.PropertyImage {
	images := make([]models.PropertyImage, 0, len(payloads))
	hasMain := false
	for _, p := range payloads {
		img := models.PropertyImage{
			ID:       uuid.New(),
			URL:      p.URL,
			PublicID: p.PublicID,
			IsMain:   p.IsMain && !hasMain,
			Caption:  p.Caption,
		}
		if img.IsMain {
			hasMain = true
		}
		images = append(images, img)
	}
	// First image becomes main when none is flagged.
	if !hasMain && len(images) > 0 {
		images[0].IsMain = true
	}
	return images
}

func (s *propertyService) Update(
	ctx context.Context,
	id uuid.UUID,
	req dtos.UpdatePropertyRequest,
	updatedBy uuid.UUID,
) (*models.Property, error) {

	property, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		property.Title = *req.Title
	}
	if req.Description != nil {
		property.Description = *req.Description
	}
	if req.Address != nil {
		property.Address = models.Address{
			Street:    req.Address.Street,
			City:      req.Address.City,
			State:     req.Address.State,
			ZipCode:   req.Address.ZipCode,
			Latitude:  req.Address.Latitude,
			Longitude: req.Address.Longitude,
		}
	}
	if req.BusinessMode != nil {
		property.BusinessMode = models.BusinessMode(*req.BusinessMode)
	}
	if req.Price != nil {
		property.Price = models.Price{
			Sale:     req.Price.Sale,
			Rent:     req.Price.Rent,
			Deposit:  req.Price.Deposit,
			Currency: req.Price.Currency,
		}
	}
	if req.Details != nil {
		property.Details = models.PropertyDetails{
			Bedrooms:     req.Details.Bedrooms,
			Bathrooms:    req.Details.Bathrooms,
			SquareFeet:   req.Details.SquareFeet,
			PropertyType: req.Details.PropertyType,
			YearBuilt:    req.Details.YearBuilt,
			Parking:      req.Details.Parking,
			PetFriendly:  req.Details.PetFriendly,
			Furnished:    req.Details.Furnished,
		}
	}
	if req.Amenities != nil {
		property.Amenities = req.Amenities
	}
	if req.ContactPhone != nil {
		property.ContactPhone = *req.ContactPhone
	}
	if req.ContactEmail != nil {
		property.ContactEmail = *req.ContactEmail
	}
	if err := validatePriceMode(property.BusinessMode, property.Price); err != nil {
		return nil, err
	}
	property.UpdatedBy = &updatedBy

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, fmt.Errorf("update property: %w", err)
	}
	return property, nil
}

func (s *propertyService) Delete(ctx context.Context, id uuid.UUID) error {
	property, err := s.mustGet(ctx, id)
	if err != nil {
		return err
	}
	return s.propertyRepo.Delete(ctx, property.ID)
}

func (s *propertyService) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return s.mustGet(ctx, id)
}

func (s *propertyService) ListPublic(ctx context.Context) ([]*models.Property, error) {
	return s.propertyRepo.ListPublic(ctx)
}

func (s *propertyService) ListAll(ctx context.Context) ([]*models.Property, error) {
	return s.propertyRepo.ListAll(ctx)
}

func (s *propertyService) ListMine(ctx context.Context, createdBy uuid.UUID) ([]*models.Property, error) {
	return s.propertyRepo.ListByCreator(ctx, createdBy)
}

// ---------------------------------------------------------------------
// Status transitions
// ---------------------------------------------------------------------

func (s *propertyService) ChangeStatus(
	ctx context.Context,
	id uuid.UUID,
	status models.PropertyStatus,
	reason string,
	changedBy uuid.UUID,
) (*models.Property, error) {

	if !models.ValidPropertyStatus(status) {
		return nil, utils.ErrInvalidTransition
	}

	property, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if property.Status == status {
		return property, nil
	}

	previous := property.Status
	property.Status = status
	property.Availability.IsAvailable = status == models.PropertyAvailable
	property.StatusHistory = append(property.StatusHistory, models.StatusChange{
		Status: status, ChangedBy: changedBy, Reason: reason, ChangedAt: s.now(),
	})
	property.UpdatedBy = &changedBy

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, fmt.Errorf("update property status: %w", err)
	}

	// Coming back from under-contract announces availability once;
	// other transitions stay quiet.
	if previous == models.PropertyUnderContract && status == models.PropertyAvailable {
		go func() {
			req := dtos.SendBroadcastRequest{
				Type:       models.BroadcastTypeAvailableAgain,
				PropertyID: property.ID.String(),
			}
			if _, err := s.broadcasts.Broadcast(context.Background(), req, changedBy); err != nil {
				utils.Logger.WithError(err).Warnf("Available-again broadcast failed for property %s", property.ID)
			}
		}()
	}

	return property, nil
}

// ---------------------------------------------------------------------
// Images / documents
// ---------------------------------------------------------------------

func (s *propertyService) AddImages(
	ctx context.Context,
	id uuid.UUID,
	images []dtos.AddImagePayload,
	updatedBy uuid.UUID,
) (*models.Property, error) {

	property, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(property.Images)+len(images) > maxPropertyImages {
		return nil, utils.ErrTooManyImages
	}

	added := buildImages(images)
	// Keep the existing main flag if one is already set.
	if property.MainImage() != nil {
		for i := range added {
			added[i].IsMain = false
		}
	}
	property.Images = append(property.Images, added...)
	property.UpdatedBy = &updatedBy

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, fmt.Errorf("update property images: %w", err)
	}
	return property, nil
}

func (s *propertyService) RemoveImage(ctx context.Context, id, imageID uuid.UUID, updatedBy uuid.UUID) (*models.Property, error) {
	property, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}

	kept := property.Images[:0]
	removedMain := false
	found := false
	for _, img := range property.Images {
		if img.ID == imageID {
			found = true
			removedMain = img.IsMain
			continue
		}
		kept = append(kept, img)
	}
	if !found {
		return nil, utils.ErrNotFound
	}
	property.Images = kept
	if removedMain && len(property.Images) > 0 {
		property.Images[0].IsMain = true
	}
	property.UpdatedBy = &updatedBy

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, fmt.Errorf("update property images: %w", err)
	}
	return property, nil
}

func (s *propertyService) SetMainImage(ctx context.Context, id, imageID uuid.UUID, updatedBy uuid.UUID) (*models.Property, error) {
	property, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range property.Images {
		if property.Images[i].ID == imageID {
			property.Images[i].IsMain = true
			found = true
		} else {
			property.Images[i].IsMain = false
		}
	}
	if !found {
		return nil, utils.ErrNotFound
	}
	property.UpdatedBy = &updatedBy

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, fmt.Errorf("update main image: %w", err)
	}
	return property, nil
}

func (s *propertyService) AddDocument(ctx context.Context, id uuid.UUID, doc dtos.AddDocumentPayload, updatedBy uuid.UUID) (*models.Property, error) {
	property, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	property.Documents = append(property.Documents, models.PropertyDocument{
		ID:       uuid.New(),
		Name:     doc.Name,
		URL:      doc.URL,
		PublicID: doc.PublicID,
	})
	property.UpdatedBy = &updatedBy

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, fmt.Errorf("update property documents: %w", err)
	}
	return property, nil
}

func (s *propertyService) RemoveDocument(ctx context.Context, id, docID uuid.UUID, updatedBy uuid.UUID) (*models.Property, error) {
	property, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}

	kept := property.Documents[:0]
	found := false
	for _, d := range property.Documents {
		if d.ID == docID {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	if !found {
		return nil, utils.ErrNotFound
	}
	property.Documents = kept
	property.UpdatedBy = &updatedBy

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, fmt.Errorf("update property documents: %w", err)
	}
	return property, nil
}

func (s *propertyService) mustGet(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup property: %w", err)
	}
	if property == nil {
		return nil, utils.ErrNotFound
	}
	return property, nil
}
