package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/dtos"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/services"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

const multipartMaxMemory = 32 << 20

type PropertyController struct {
	propertyService services.PropertyService
}

func NewPropertyController(propertyService services.PropertyService) *PropertyController {
	return &PropertyController{propertyService: propertyService}
}

// Create accepts either a JSON body or a multipart form carrying a
// "data" JSON field (the upload flow sends metadata alongside the
// already-hosted image URLs).
func (c *PropertyController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dtos.CreatePropertyRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid multipart payload", err,
			)
			return
		}
		if err := json.Unmarshal([]byte(r.PostFormValue("data")), &req); err != nil {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid data field", err,
			)
			return
		}
		if err := validate.Struct(&req); err != nil {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed", err,
			)
			return
		}
	} else if !decodeAndValidate(w, r, &req) {
		return
	}

	property, err := c.propertyService.Create(r.Context(), req, req.Images, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, property)
}

func (c *PropertyController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dtos.UpdatePropertyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	property, err := c.propertyService.Update(r.Context(), id, req, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, property)
}

func (c *PropertyController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.propertyService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (c *PropertyController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	property, err := c.propertyService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, property)
}

func (c *PropertyController) ListPublic(w http.ResponseWriter, r *http.Request) {
	properties, err := c.propertyService.ListPublic(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.PropertyListResponse{
		Properties: properties, Total: len(properties),
	})
}

func (c *PropertyController) ListAll(w http.ResponseWriter, r *http.Request) {
	properties, err := c.propertyService.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.PropertyListResponse{
		Properties: properties, Total: len(properties),
	})
}

// ListMine returns the listings created by the authenticated staff user.
func (c *PropertyController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	properties, err := c.propertyService.ListMine(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.PropertyListResponse{
		Properties: properties, Total: len(properties),
	})
}

func (c *PropertyController) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dtos.ChangeStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	property, err := c.propertyService.ChangeStatus(
		r.Context(), id, models.PropertyStatus(req.Status), req.Reason, userID,
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, property)
}

func (c *PropertyController) StatusHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	property, err := c.propertyService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, property.StatusHistory)
}

// ---------------------------------------------------------------------
// Images / documents
// ---------------------------------------------------------------------

func (c *PropertyController) AddImages(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var payloads []dtos.AddImagePayload
	if err := json.NewDecoder(r.Body).Decode(&payloads); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid request payload", err,
		)
		return
	}
	for _, p := range payloads {
		if err := validate.Struct(&p); err != nil {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed", err,
			)
			return
		}
	}

	property, err := c.propertyService.AddImages(r.Context(), id, payloads, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, property)
}

func (c *PropertyController) RemoveImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	imageID, ok := pathUUID(w, r, "imageId")
	if !ok {
		return
	}

	property, err := c.propertyService.RemoveImage(r.Context(), id, imageID, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, property)
}

func (c *PropertyController) SetMainImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	imageID, ok := pathUUID(w, r, "imageId")
	if !ok {
		return
	}

	property, err := c.propertyService.SetMainImage(r.Context(), id, imageID, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, property)
}

func (c *PropertyController) AddDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dtos.AddDocumentPayload
	if !decodeAndValidate(w, r, &req) {
		return
	}

	property, err := c.propertyService.AddDocument(r.Context(), id, req, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, property)
}

func (c *PropertyController) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	docID, ok := pathUUID(w, r, "docId")
	if !ok {
		return
	}

	property, err := c.propertyService.RemoveDocument(r.Context(), id, docID, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, property)
}
