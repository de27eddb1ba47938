package dtos

import (
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
)

type SendBroadcastRequest struct {
	Type       string `json:"type" validate:"required,oneof=new_property available_again general"`
	PropertyID string `json:"property_id" validate:"omitempty,uuid4"`
	Message    string `json:"message" validate:"required_if=Type general,max=1600"`
}

type BroadcastPreviewResponse struct {
	RecipientCount int    `json:"recipient_count"`
	Message        string `json:"message"`
}

type BroadcastStatsResponse struct {
	TotalBroadcasts int `json:"total_broadcasts"`
	TotalSent       int `json:"total_sent"`
	TotalFailed     int `json:"total_failed"`
}

type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int                    `json:"total"`
}
