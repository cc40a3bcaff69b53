package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

// Order is the customer-facing aggregate. TotalAmount is derived from the
// current line items and cached; StockDeducted guards the one-shot deduction
// pass on fulfillment transitions.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID     uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index" json:"customerId"`
	DeliveryDate   string            `gorm:"column:delivery_date;type:date;not null" json:"deliveryDate"`
	Status         enums.OrderStatus `gorm:"column:status;type:text;not null;default:'created'" json:"status"`
	TripNumber     *string           `gorm:"column:trip_number" json:"tripNumber,omitempty"`
	TotalAmount    decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null;default:0" json:"totalAmount"`
	StockDeducted  bool              `gorm:"column:stock_deducted;not null;default:false" json:"stockDeducted"`
	PendingReview  bool              `gorm:"column:pending_review;not null;default:false" json:"pendingReview"`
	LastModifiedAt time.Time         `gorm:"column:last_modified_at;not null" json:"lastModifiedAt"`
	LastReviewedAt *time.Time        `gorm:"column:last_reviewed_at" json:"lastReviewedAt,omitempty"`
	Items          []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
