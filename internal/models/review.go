package models

import (
	"time"

	"github.com/google/uuid"
)

type ReviewStatus string

const (
	ReviewPending          ReviewStatus = "pending"
	ReviewApproved         ReviewStatus = "approved"
	ReviewRejected         ReviewStatus = "rejected"
	ReviewChangesRequested ReviewStatus = "changes_requested"
)

// Subcategories are optional 1-5 ratings per aspect.
type Subcategories struct {
	Location  *int `json:"location,omitempty"`
	Condition *int `json:"condition,omitempty"`
	Value     *int `json:"value,omitempty"`
	Service   *int `json:"service,omitempty"`
}

type ReviewImage struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

type HelpfulVote struct {
	UserID  uuid.UUID `json:"user_id"`
	VotedAt time.Time `json:"voted_at"`
}

type Review struct {
	ID            uuid.UUID `json:"id"`
	PropertyID    uuid.UUID `json:"property_id"`
	UserID        uuid.UUID `json:"user_id"`
	AppointmentID uuid.UUID `json:"appointment_id"`

	Rating        int           `json:"rating"`
	Subcategories Subcategories `json:"subcategories"`
	Comment       string        `json:"comment"`
	Images        []ReviewImage `json:"images,omitempty"`

	Status          ReviewStatus `json:"status"`
	ModerationNotes string       `json:"moderation_notes,omitempty"`
	ModeratedBy     *uuid.UUID   `json:"moderated_by,omitempty"`
	ModeratedAt     *time.Time   `json:"moderated_at,omitempty"`

	Featured     bool          `json:"featured"`
	HelpfulVotes []HelpfulVote `json:"helpful_votes,omitempty"`
	HelpfulCount int           `json:"helpful_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasVoted reports whether the user already cast a helpful vote.
func (r *Review) HasVoted(userID uuid.UUID) bool {
	for _, v := range r.HelpfulVotes {
		if v.UserID == userID {
			return true
		}
	}
	return false
}
