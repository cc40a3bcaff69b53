package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

// SupplierInvoice is an imported invoice compared against receiving batches
// from the same supplier inside the reconciliation period.
type SupplierInvoice struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceNumber *string               `gorm:"column:invoice_number" json:"invoiceNumber,omitempty"`
	SupplierID    uuid.UUID             `gorm:"column:supplier_id;type:uuid;not null;index" json:"supplierId"`
	PeriodStart   *string               `gorm:"column:period_start;type:date" json:"periodStart,omitempty"`
	PeriodEnd     *string               `gorm:"column:period_end;type:date" json:"periodEnd,omitempty"`
	TotalAmount   decimal.Decimal       `gorm:"column:total_amount;type:numeric(12,2);not null;default:0" json:"totalAmount"`
	Status        enums.InvoiceStatus   `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	Items         []SupplierInvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// SupplierInvoiceItem is one invoice row. ProductName is the raw string as
// written on the invoice; ProductID is the resolved catalog product or nil.
type SupplierInvoiceItem struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID        uuid.UUID         `gorm:"column:invoice_id;type:uuid;not null;index" json:"invoiceId"`
	ProductName      string            `gorm:"column:product_name;not null" json:"productName"`
	ProductID        *uuid.UUID        `gorm:"column:product_id;type:uuid" json:"productId,omitempty"`
	Quantity         decimal.Decimal   `gorm:"column:quantity;type:numeric(12,3);not null" json:"quantity"`
	UnitPrice        decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unitPrice"`
	Amount           decimal.Decimal   `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	MatchedQty       *decimal.Decimal  `gorm:"column:matched_qty;type:numeric(12,3)" json:"matchedQty,omitempty"`
	MatchStatus      enums.MatchStatus `gorm:"column:match_status;type:text;not null;default:'unmatched'" json:"matchStatus"`
	DiscrepancyNotes *string           `gorm:"column:discrepancy_notes" json:"discrepancyNotes,omitempty"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
