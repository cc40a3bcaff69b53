package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

// OrderChangeLog is an append-only diff record for an order. Rows are only
// ever created; review acknowledgement flips the order's pending_review flag
// without touching these rows.
type OrderChangeLog struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index" json:"orderId"`
	Type      enums.ChangeLogType `gorm:"column:type;type:text;not null" json:"type"`
	Detail    json.RawMessage     `gorm:"column:detail;type:jsonb" json:"detail"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	ReadAt    *time.Time          `gorm:"column:read_at" json:"readAt,omitempty"`
}
