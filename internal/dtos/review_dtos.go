package dtos

import (
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
)

type SubcategoriesPayload struct {
	Location  *int `json:"location" validate:"omitempty,min=1,max=5"`
	Condition *int `json:"condition" validate:"omitempty,min=1,max=5"`
	Value     *int `json:"value" validate:"omitempty,min=1,max=5"`
	Service   *int `json:"service" validate:"omitempty,min=1,max=5"`
}

type CreateReviewRequest struct {
	PropertyID    string               `json:"property_id" validate:"required,uuid4"`
	AppointmentID string               `json:"appointment_id" validate:"required,uuid4"`
	Rating        int                  `json:"rating" validate:"required,min=1,max=5"`
	Subcategories SubcategoriesPayload `json:"subcategories"`
	Comment       string               `json:"comment" validate:"required,min=10,max=2000"`
}

type ModerateReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected changes_requested"`
	Notes  string `json:"notes" validate:"max=1000"`
}

type FeatureReviewRequest struct {
	Featured bool `json:"featured"`
}

type ReviewListResponse struct {
	Reviews []*models.Review `json:"reviews"`
	Total   int              `json:"total"`
}
