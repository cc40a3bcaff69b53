package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

// ProductFilters narrows catalog listings.
type ProductFilters struct {
	Category  *enums.ProductCategory
	Available *bool
	Search    string
}

// CreateProductInput carries the fields accepted when registering a product.
type CreateProductInput struct {
	Name     string
	Unit     enums.ProductUnit
	Category enums.ProductCategory
	Price    decimal.Decimal
	Aliases  []string
	Notes    *string
}

// UpdateProductInput carries the mutable product fields. Nil means unchanged.
type UpdateProductInput struct {
	Name      *string
	Price     *decimal.Decimal
	Available *bool
	Aliases   []string
	Notes     *string
}

// StockChange describes one ledger mutation applied to a product.
type StockChange struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	RefType   enums.StockMovementRef
	RefID     uuid.UUID
}
