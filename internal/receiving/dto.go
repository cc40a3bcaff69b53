package receiving

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

// NewBatchItemInput is one delivered product line.
type NewBatchItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// CreateBatchInput captures a new supplier delivery.
type CreateBatchInput struct {
	SupplierID   uuid.UUID
	ReceivedDate string
	Notes        *string
	Items        []NewBatchItemInput
}

// BatchFilters narrows batch listings.
type BatchFilters struct {
	SupplierID   *uuid.UUID
	ReceivedDate *string
	Status       *enums.BatchStatus
}
