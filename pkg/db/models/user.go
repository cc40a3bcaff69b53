package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

// User is an authenticated principal. Customers place orders; admins run the
// warehouse and reconciliation workflows.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'" json:"role"`
	CustomerName string         `gorm:"column:customer_name;not null" json:"customerName"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
