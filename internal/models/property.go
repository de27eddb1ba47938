package models

import (
	"time"

	"github.com/google/uuid"
)

type PropertyStatus string

const (
	PropertyAvailable     PropertyStatus = "DISPONIBLE"
	PropertyUnderContract PropertyStatus = "EN_CONTRATO"
	PropertySold          PropertyStatus = "VENDIDA"
)

func ValidPropertyStatus(s PropertyStatus) bool {
	switch s {
	case PropertyAvailable, PropertyUnderContract, PropertySold:
		return true
	}
	return false
}

// BusinessMode decides which pricing fields are required.
type BusinessMode string

const (
	ModeSale BusinessMode = "sale"
	ModeRent BusinessMode = "rent"
	ModeBoth BusinessMode = "both"
)

type Address struct {
	Street    string   `json:"street"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	ZipCode   string   `json:"zip_code"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type Price struct {
	Sale     *float64 `json:"sale,omitempty"`
	Rent     *float64 `json:"rent,omitempty"`
	Deposit  *float64 `json:"deposit,omitempty"`
	Currency string   `json:"currency"`
}

type PropertyDetails struct {
	Bedrooms     int    `json:"bedrooms"`
	Bathrooms    int    `json:"bathrooms"`
	SquareFeet   *int   `json:"square_feet,omitempty"`
	PropertyType string `json:"property_type"`
	YearBuilt    *int   `json:"year_built,omitempty"`
	Parking      bool   `json:"parking"`
	PetFriendly  bool   `json:"pet_friendly"`
	Furnished    bool   `json:"furnished"`
}

type PropertyImage struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	PublicID string    `json:"public_id,omitempty"`
	IsMain   bool      `json:"is_main"`
	Caption  string    `json:"caption,omitempty"`
}

type PropertyDocument struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	PublicID string    `json:"public_id,omitempty"`
}

type Availability struct {
	IsAvailable   bool       `json:"is_available"`
	AvailableFrom *time.Time `json:"available_from,omitempty"`
	LeaseTerm     string     `json:"lease_term,omitempty"`
}

// StatusChange is one entry of the append-only status history.
type StatusChange struct {
	Status    PropertyStatus `json:"status"`
	ChangedBy uuid.UUID      `json:"changed_by"`
	Reason    string         `json:"reason"`
	ChangedAt time.Time      `json:"changed_at"`
}

type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type Property struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`

	Address      Address         `json:"address"`
	BusinessMode BusinessMode    `json:"business_mode"`
	Price        Price           `json:"price"`
	Details      PropertyDetails `json:"details"`

	Images    []PropertyImage    `json:"images"`
	Documents []PropertyDocument `json:"documents,omitempty"`
	Amenities []string           `json:"amenities"`

	Availability  Availability   `json:"availability"`
	Status        PropertyStatus `json:"status"`
	StatusHistory []StatusChange `json:"status_history,omitempty"`

	Rating Rating `json:"rating"`

	ContactPhone string `json:"contact_phone,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`

	CreatedBy uuid.UUID  `json:"created_by"`
	UpdatedBy *uuid.UUID `json:"updated_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MainImage returns the image flagged as main, or nil.
func (p *Property) MainImage() *PropertyImage {
	for i := range p.Images {
		if p.Images[i].IsMain {
			return &p.Images[i]
		}
	}
	return nil
}
