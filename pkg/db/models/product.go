package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

// Product is a catalog item. Stock is mutated only through the stock ledger
// (receiving credits, fulfillment debits); order creation never writes it.
type Product struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string                `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Unit      enums.ProductUnit     `gorm:"column:unit;type:text;not null" json:"unit"`
	Category  enums.ProductCategory `gorm:"column:category;type:text;not null" json:"category"`
	Price     decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Available bool                  `gorm:"column:available;not null;default:true" json:"available"`
	Stock     decimal.Decimal       `gorm:"column:stock;type:numeric(12,3);not null;default:0" json:"stock"`
	Aliases   pq.StringArray        `gorm:"column:aliases;type:text[]" json:"aliases,omitempty"`
	Notes     *string               `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
