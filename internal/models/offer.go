package models

import (
	"time"

	"github.com/google/uuid"
)

type OfferStatus string

const (
	OfferPending    OfferStatus = "pending"
	OfferInProgress OfferStatus = "in_progress"
	OfferAccepted   OfferStatus = "accepted"
	OfferRejected   OfferStatus = "rejected"
	OfferClosed     OfferStatus = "closed"
)

func ValidOfferStatus(s OfferStatus) bool {
	switch s {
	case OfferPending, OfferInProgress, OfferAccepted, OfferRejected, OfferClosed:
		return true
	}
	return false
}

type OfferMessage struct {
	ID        uuid.UUID `json:"id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// UnreadCount keeps independent counters for each side of the thread.
type UnreadCount struct {
	User  int `json:"user"`
	Admin int `json:"admin"`
}

type Offer struct {
	ID          uuid.UUID `json:"id"`
	PropertyID  uuid.UUID `json:"property_id"`
	UserID      uuid.UUID `json:"user_id"`
	OfferAmount float64   `json:"offer_amount"`

	Messages []OfferMessage `json:"messages"`
	Status   OfferStatus    `json:"status"`

	AssignedTo *uuid.UUID `json:"assigned_to,omitempty"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`

	Unread UnreadCount `json:"unread_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the offer still blocks a new one for the
// same (property, user) pair.
func (o *Offer) IsActive() bool {
	return o.Status == OfferPending || o.Status == OfferInProgress
}
