package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgastelum/supplyline-backend/pkg/db/models"
)

// Repository defines persistence operations for the product catalog and the
// stock ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindProductForUpdate(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindProductByName(ctx context.Context, name string) (*models.Product, error)
	ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, updates map[string]any) error
	CreateStockMovement(ctx context.Context, movement *models.StockMovement) error
	ListStockMovements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error)
}
