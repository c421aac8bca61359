package models

import "github.com/SantaVM/bank-rest/internal/apperrors"

// Role determines which routes a user may call.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole converts an external string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	}
	return "", apperrors.Newf(apperrors.KindValidation, "unknown role: %q", s)
}

// User represents a user in the system. A user owns zero or more cards; the
// card side holds the reference.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
}
