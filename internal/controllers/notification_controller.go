package controllers

import (
	"net/http"
	"strconv"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/dtos"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/services"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

type NotificationController struct {
	notificationService services.NotificationService
}

func NewNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// Send runs the broadcast synchronously; large runs can take a while,
// the frontend polls the record for progress.
func (c *NotificationController) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dtos.SendBroadcastRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	record, err := c.notificationService.Broadcast(r.Context(), req, userID)
	if err != nil {
		if record != nil {
			// Partial progress was persisted; surface the record too.
			utils.RespondWithJSON(w, http.StatusInternalServerError, record)
			return
		}
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, record)
}

func (c *NotificationController) Resend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	record, err := c.notificationService.ResendFailed(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, record)
}

func (c *NotificationController) Preview(w http.ResponseWriter, r *http.Request) {
	var req dtos.SendBroadcastRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	preview, err := c.notificationService.Preview(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, preview)
}

func (c *NotificationController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.notificationService.Stats(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

func (c *NotificationController) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	history, err := c.notificationService.History(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NotificationListResponse{
		Notifications: history, Total: len(history),
	})
}

func (c *NotificationController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	record, err := c.notificationService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, record)
}
