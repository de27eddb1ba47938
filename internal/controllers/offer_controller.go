package controllers

import (
	"net/http"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/dtos"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/services"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

type OfferController struct {
	offerService services.OfferService
	userService  services.UserService
}

func NewOfferController(offerService services.OfferService, userService services.UserService) *OfferController {
	return &OfferController{offerService: offerService, userService: userService}
}

func (c *OfferController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dtos.CreateOfferRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	offer, err := c.offerService.Create(r.Context(), req, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, offer)
}

func (c *OfferController) AddMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dtos.OfferMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	isStaff, err := c.userService.IsStaff(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	offer, err := c.offerService.AddMessage(r.Context(), id, userID, req.Content, isStaff)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, offer)
}

func (c *OfferController) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	isStaff, err := c.userService.IsStaff(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	offer, err := c.offerService.MarkRead(r.Context(), id, isStaff)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, offer)
}

func (c *OfferController) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dtos.OfferStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	offer, err := c.offerService.ChangeStatus(r.Context(), id, models.OfferStatus(req.Status))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, offer)
}

func (c *OfferController) Take(w http.ResponseWriter, r *http.Request) {
	staffID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	offer, err := c.offerService.Take(r.Context(), id, staffID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, offer)
}

func (c *OfferController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	offer, err := c.offerService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, offer)
}

func (c *OfferController) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	offers, err := c.offerService.ListByUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.OfferListResponse{Offers: offers, Total: len(offers)})
}

func (c *OfferController) Pending(w http.ResponseWriter, r *http.Request) {
	offers, err := c.offerService.ListPending(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.OfferListResponse{Offers: offers, Total: len(offers)})
}

func (c *OfferController) Assigned(w http.ResponseWriter, r *http.Request) {
	staffID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	offers, err := c.offerService.ListByAssignee(r.Context(), staffID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.OfferListResponse{Offers: offers, Total: len(offers)})
}

func (c *OfferController) ListAll(w http.ResponseWriter, r *http.Request) {
	offers, err := c.offerService.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.OfferListResponse{Offers: offers, Total: len(offers)})
}
