package invoices

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

// InvoiceRow is one parsed line from an uploaded invoice file.
type InvoiceRow struct {
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// ImportInput carries an invoice upload.
type ImportInput struct {
	SupplierID    uuid.UUID
	InvoiceNumber *string
	PeriodStart   *string
	PeriodEnd     *string
	Rows          []InvoiceRow
}

// InvoiceFilters narrows invoice listings.
type InvoiceFilters struct {
	SupplierID *uuid.UUID
	Status     *enums.InvoiceStatus
}

// UpdateItemInput mutates one invoice line during manual review. Nil means
// unchanged.
type UpdateItemInput struct {
	InvoiceID   uuid.UUID
	ItemID      uuid.UUID
	ProductID   *uuid.UUID
	MatchStatus *enums.MatchStatus
	Notes       *string
}

// ReceivedQuantity aggregates what a supplier actually delivered for one
// product inside the reconciliation window.
type ReceivedQuantity struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}
