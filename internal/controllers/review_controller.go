package controllers

import (
	"net/http"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/dtos"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/services"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

type ReviewController struct {
	reviewService services.ReviewService
}

func NewReviewController(reviewService services.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

func (c *ReviewController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dtos.CreateReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	review, err := c.reviewService.Create(r.Context(), req, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, review)
}

func (c *ReviewController) Moderate(w http.ResponseWriter, r *http.Request) {
	moderatorID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dtos.ModerateReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	review, err := c.reviewService.Moderate(
		r.Context(), id, moderatorID, models.ReviewStatus(req.Status), req.Notes,
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, review)
}

func (c *ReviewController) SetFeatured(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dtos.FeatureReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	review, err := c.reviewService.SetFeatured(r.Context(), id, req.Featured)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, review)
}

func (c *ReviewController) VoteHelpful(w http.ResponseWriter, r *http.Request) {
	voterID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	review, err := c.reviewService.VoteHelpful(r.Context(), id, voterID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, review)
}

func (c *ReviewController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.reviewService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (c *ReviewController) ByProperty(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := pathUUID(w, r, "propertyId")
	if !ok {
		return
	}
	reviews, err := c.reviewService.ListApprovedByProperty(r.Context(), propertyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ReviewListResponse{Reviews: reviews, Total: len(reviews)})
}

func (c *ReviewController) Pending(w http.ResponseWriter, r *http.Request) {
	reviews, err := c.reviewService.ListPending(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ReviewListResponse{Reviews: reviews, Total: len(reviews)})
}
