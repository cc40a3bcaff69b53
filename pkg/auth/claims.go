package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

// Claims is the token payload carried on every authenticated request.
type Claims struct {
	UserID       uuid.UUID      `json:"uid"`
	Role         enums.UserRole `json:"role"`
	CustomerName string         `json:"customerName"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token belongs to a warehouse admin.
func (c *Claims) IsAdmin() bool {
	return c.Role == enums.UserRoleAdmin
}
