package receiving

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgastelum/supplyline-backend/pkg/db/models"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a receiving repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBatch(ctx context.Context, batch *models.ReceivingBatch) (*models.ReceivingBatch, error) {
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *repository) CreateBatchItems(ctx context.Context, items []models.ReceivingBatchItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindBatch(ctx context.Context, batchID uuid.UUID) (*models.ReceivingBatch, error) {
	var batch models.ReceivingBatch
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", batchID).
		First(&batch).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *repository) ListBatches(ctx context.Context, filters BatchFilters) ([]models.ReceivingBatch, error) {
	query := r.db.WithContext(ctx).Model(&models.ReceivingBatch{}).Preload("Items")
	if filters.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filters.SupplierID)
	}
	if filters.ReceivedDate != nil {
		query = query.Where("received_date = ?", *filters.ReceivedDate)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var batches []models.ReceivingBatch
	if err := query.Order("created_at DESC").Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *repository) CountBatchesOnDate(ctx context.Context, receivedDate string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReceivingBatch{}).
		Where("received_date = ?", receivedDate).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) UpdateBatch(ctx context.Context, batchID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ReceivingBatch{}).
		Where("id = ?", batchID).
		Updates(updates).Error
}

// MarkBatchesReconciled closes out all pending batches for the supplier that
// fall inside the reconciliation window.
func (r *repository) MarkBatchesReconciled(ctx context.Context, supplierID uuid.UUID, periodStart, periodEnd string) error {
	query := r.db.WithContext(ctx).
		Model(&models.ReceivingBatch{}).
		Where("supplier_id = ? AND status = ?", supplierID, enums.BatchStatusPending)
	if periodStart != "" {
		query = query.Where("received_date >= ?", periodStart)
	}
	if periodEnd != "" {
		query = query.Where("received_date <= ?", periodEnd)
	}
	return query.Update("status", enums.BatchStatusReconciled).Error
}

func (r *repository) FindSupplier(ctx context.Context, supplierID uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.WithContext(ctx).
		Where("id = ?", supplierID).
		First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) CreateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	if err := r.db.WithContext(ctx).Create(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

func (r *repository) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}
