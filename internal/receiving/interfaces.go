package receiving

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgastelum/supplyline-backend/pkg/db/models"
)

// Repository defines persistence operations for receiving batches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, batch *models.ReceivingBatch) (*models.ReceivingBatch, error)
	CreateBatchItems(ctx context.Context, items []models.ReceivingBatchItem) error
	FindBatch(ctx context.Context, batchID uuid.UUID) (*models.ReceivingBatch, error)
	ListBatches(ctx context.Context, filters BatchFilters) ([]models.ReceivingBatch, error)
	CountBatchesOnDate(ctx context.Context, receivedDate string) (int64, error)
	UpdateBatch(ctx context.Context, batchID uuid.UUID, updates map[string]any) error
	MarkBatchesReconciled(ctx context.Context, supplierID uuid.UUID, periodStart, periodEnd string) error
	FindSupplier(ctx context.Context, supplierID uuid.UUID) (*models.Supplier, error)
	CreateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error)
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
}
