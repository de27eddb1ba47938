package models

import (
	"time"

	"github.com/google/uuid"
)

type ProfileImage struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type User struct {
	ID           uuid.UUID    `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	PasswordHash string       `json:"-"`
	RoleID       uuid.UUID    `json:"role_id"`
	ProfileImage ProfileImage `json:"profile_image"`

	IsEmailVerified bool `json:"is_email_verified"`
	IsPhoneVerified bool `json:"is_phone_verified"`

	// Single-use verification code, nil when none pending.
	VerificationCode       *string    `json:"-"`
	VerificationCodeExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsVerified reports whether both contact channels are verified.
func (u *User) IsVerified() bool {
	return u.IsEmailVerified && u.IsPhoneVerified
}
