package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

// StockMovement records one stock ledger mutation with a back-reference to
// the batch or order that caused it.
type StockMovement struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index" json:"productId"`
	Type      enums.StockMovementType `gorm:"column:type;type:text;not null" json:"type"`
	Quantity  decimal.Decimal         `gorm:"column:quantity;type:numeric(12,3);not null" json:"quantity"`
	RefType   enums.StockMovementRef  `gorm:"column:ref_type;type:text;not null" json:"refType"`
	RefID     uuid.UUID               `gorm:"column:ref_id;type:uuid;not null" json:"refId"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
