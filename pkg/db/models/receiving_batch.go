package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

// ReceivingBatch records one supplier delivery. Each item credits the
// product's stock and writes an inbound stock movement.
type ReceivingBatch struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BatchNumber  string               `gorm:"column:batch_number;not null;uniqueIndex" json:"batchNumber"`
	SupplierID   uuid.UUID            `gorm:"column:supplier_id;type:uuid;not null;index" json:"supplierId"`
	ReceivedDate string               `gorm:"column:received_date;type:date;not null" json:"receivedDate"`
	Notes        *string              `gorm:"column:notes" json:"notes,omitempty"`
	Status       enums.BatchStatus    `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	Items        []ReceivingBatchItem `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// ReceivingBatchItem is one delivered product line with a name snapshot.
type ReceivingBatchItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BatchID     uuid.UUID       `gorm:"column:batch_id;type:uuid;not null;index" json:"batchId"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"productId"`
	ProductName string          `gorm:"column:product_name;not null" json:"productName"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null" json:"quantity"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
