package auth

import (
	"strings"

	"placement/internal/apperr"
)

// Role is the account type stored on users.role.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a role coming from a form. Empty means student.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleStudent:
		return RoleStudent, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", apperr.New(apperr.CodeValidation, "Invalid role.")
}

func (r Role) String() string { return string(r) }

// Home is the dashboard a role lands on after login.
func (r Role) Home() string {
	if r == RoleAdmin {
		return "/admin_dashboard"
	}
	return "/student_dashboard"
}
