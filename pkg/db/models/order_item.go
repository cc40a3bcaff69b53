package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

// OrderItem is one product line inside an order. UnitPrice is a snapshot
// taken when the line is created and never recomputed from the live product.
type OrderItem struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index" json:"orderId"`
	ProductID   uuid.UUID             `gorm:"column:product_id;type:uuid;not null" json:"productId"`
	ProductName string                `gorm:"column:product_name;not null" json:"productName"`
	Unit        enums.ProductUnit     `gorm:"column:unit;type:text;not null" json:"unit"`
	QtyOrdered  decimal.Decimal       `gorm:"column:qty_ordered;type:numeric(12,3);not null" json:"qtyOrdered"`
	QtyPicked   decimal.Decimal       `gorm:"column:qty_picked;type:numeric(12,3);not null;default:0" json:"qtyPicked"`
	UnitPrice   decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unitPrice"`
	Picked      bool                  `gorm:"column:picked;not null;default:false" json:"picked"`
	OutOfStock  bool                  `gorm:"column:out_of_stock;not null;default:false" json:"outOfStock"`
	Status      enums.OrderItemStatus `gorm:"column:status;type:text;not null;default:'created'" json:"status"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
