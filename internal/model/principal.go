package model

import "github.com/google/uuid"

type Role string

const (
	RoleFrontDesk Role = "FRONT_DESK"
	RoleManager   Role = "MANAGER"
)

// Principal is the authenticated operator extracted from the bearer token.
type Principal struct {
	UserID uuid.UUID
	Name   string
	Role   Role
}

func (p Principal) IsManager() bool {
	return p.Role == RoleManager
}
