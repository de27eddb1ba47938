package dtos

import (
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
)

type AddressPayload struct {
	Street    string   `json:"street" validate:"required"`
	City      string   `json:"city" validate:"required"`
	State     string   `json:"state" validate:"required"`
	ZipCode   string   `json:"zip_code" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

type PricePayload struct {
	Sale     *float64 `json:"sale" validate:"omitempty,gt=0"`
	Rent     *float64 `json:"rent" validate:"omitempty,gt=0"`
	Deposit  *float64 `json:"deposit" validate:"omitempty,gte=0"`
	Currency string   `json:"currency" validate:"required,iso4217"`
}

type DetailsPayload struct {
	Bedrooms     int    `json:"bedrooms" validate:"gte=0"`
	Bathrooms    int    `json:"bathrooms" validate:"gte=0"`
	SquareFeet   *int   `json:"square_feet" validate:"omitempty,gt=0"`
	PropertyType string `json:"property_type" validate:"required"`
	YearBuilt    *int   `json:"year_built" validate:"omitempty,gte=1800"`
	Parking      bool   `json:"parking"`
	PetFriendly  bool   `json:"pet_friendly"`
	Furnished    bool   `json:"furnished"`
}

type CreatePropertyRequest struct {
	Title        string         `json:"title" validate:"required,min=5,max=150"`
	Description  string         `json:"description" validate:"required,min=10"`
	Address      AddressPayload `json:"address" validate:"required"`
	BusinessMode string         `json:"business_mode" validate:"required,oneof=sale rent both"`
	Price        PricePayload   `json:"price" validate:"required"`
	Details      DetailsPayload `json:"details" validate:"required"`
	Amenities    []string       `json:"amenities" validate:"dive,min=1"`
	ContactPhone string         `json:"contact_phone" validate:"omitempty,e164"`
	ContactEmail string         `json:"contact_email" validate:"omitempty,email"`

	Images []AddImagePayload `json:"images" validate:"max=10,dive"`
}

type UpdatePropertyRequest struct {
	Title        *string         `json:"title" validate:"omitempty,min=5,max=150"`
	Description  *string         `json:"description" validate:"omitempty,min=10"`
	Address      *AddressPayload `json:"address"`
	BusinessMode *string         `json:"business_mode" validate:"omitempty,oneof=sale rent both"`
	Price        *PricePayload   `json:"price"`
	Details      *DetailsPayload `json:"details"`
	Amenities    []string        `json:"amenities" validate:"dive,min=1"`
	ContactPhone *string         `json:"contact_phone" validate:"omitempty,e164"`
	ContactEmail *string         `json:"contact_email" validate:"omitempty,email"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=DISPONIBLE EN_CONTRATO VENDIDA"`
	Reason string `json:"reason" validate:"max=500"`
}

type AddImagePayload struct {
	URL      string `json:"url" validate:"required,url"`
	PublicID string `json:"public_id"`
	IsMain   bool   `json:"is_main"`
	Caption  string `json:"caption" validate:"max=200"`
}

type AddDocumentPayload struct {
	Name     string `json:"name" validate:"required,max=150"`
	URL      string `json:"url" validate:"required,url"`
	PublicID string `json:"public_id"`
}

type PropertyListResponse struct {
	Properties []*models.Property `json:"properties"`
	Total      int                `json:"total"`
}
