package models

import (
	"time"

	"github.com/google/uuid"
)

type BroadcastStatus string

const (
	BroadcastPending    BroadcastStatus = "pending"
	BroadcastInProgress BroadcastStatus = "in_progress"
	BroadcastCompleted  BroadcastStatus = "completed"
	BroadcastFailed     BroadcastStatus = "failed"
)

const (
	BroadcastTypeNewProperty    = "new_property"
	BroadcastTypeAvailableAgain = "available_again"
	BroadcastTypeGeneral        = "general"
)

// FailedRecipient records one phone number the broadcast could not reach.
type FailedRecipient struct {
	Phone string `json:"phone"`
	Error string `json:"error"`
}

type BroadcastStats struct {
	TotalUsers     int               `json:"total_users"`
	SentCount      int               `json:"sent_count"`
	FailedCount    int               `json:"failed_count"`
	InvalidNumbers []FailedRecipient `json:"invalid_numbers"`
}

// Notification is the persisted audit record of one mass-SMS run.
type Notification struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	PropertyID *uuid.UUID `json:"property_id,omitempty"`
	Message    string     `json:"message"`

	Stats  BroadcastStats  `json:"stats"`
	Status BroadcastStatus `json:"status"`

	CreatedBy uuid.UUID `json:"created_by"`

	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationSeconds int        `json:"duration_seconds"`

	CreatedAt time.Time `json:"created_at"`
}
