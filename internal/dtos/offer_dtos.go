package dtos

import (
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
)

type CreateOfferRequest struct {
	PropertyID  string  `json:"property_id" validate:"required,uuid4"`
	OfferAmount float64 `json:"offer_amount" validate:"required,gt=0"`
	Message     string  `json:"message" validate:"required,min=1,max=1000"`
}

type OfferMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

type OfferStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress accepted rejected closed"`
}

type OfferListResponse struct {
	Offers []*models.Offer `json:"offers"`
	Total  int             `json:"total"`
}
