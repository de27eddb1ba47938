package models

import "github.com/google/uuid"

const (
	RoleUser    = "user"
	RoleCoAdmin = "co-admin"
	RoleAdmin   = "admin"
)

type Role struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// IsStaff reports whether the role bypasses the verification gate.
func IsStaff(roleName string) bool {
	return roleName == RoleAdmin || roleName == RoleCoAdmin
}
