package invoices

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rgastelum/supplyline-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an invoices repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateInvoice(ctx context.Context, invoice *models.SupplierInvoice) (*models.SupplierInvoice, error) {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *repository) CreateInvoiceItems(ctx context.Context, items []models.SupplierInvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.SupplierInvoice, error) {
	var invoice models.SupplierInvoice
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", invoiceID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) FindInvoiceItem(ctx context.Context, invoiceID, itemID uuid.UUID) (*models.SupplierInvoiceItem, error) {
	var item models.SupplierInvoiceItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND invoice_id = ?", itemID, invoiceID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListInvoices(ctx context.Context, filters InvoiceFilters) ([]models.SupplierInvoice, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierInvoice{}).Preload("Items")
	if filters.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filters.SupplierID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var invoices []models.SupplierInvoice
	if err := query.Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repository) UpdateInvoice(ctx context.Context, invoiceID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.SupplierInvoice{}).
		Where("id = ?", invoiceID).
		Updates(updates).Error
}

func (r *repository) UpdateInvoiceItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.SupplierInvoiceItem{}).
		Where("id = ?", itemID).
		Updates(updates).Error
}

// SumReceivedQuantities totals delivered quantities per product for the
// supplier inside the window, across every batch regardless of its
// reconciliation status. Open-ended windows are allowed.
func (r *repository) SumReceivedQuantities(ctx context.Context, supplierID uuid.UUID, periodStart, periodEnd string) (map[uuid.UUID]ReceivedQuantity, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ReceivingBatchItem{}).
		Select("receiving_batch_items.product_id, SUM(receiving_batch_items.quantity) AS quantity").
		Joins("JOIN receiving_batches ON receiving_batches.id = receiving_batch_items.batch_id").
		Where("receiving_batches.supplier_id = ?", supplierID)
	if periodStart != "" {
		query = query.Where("receiving_batches.received_date >= ?", periodStart)
	}
	if periodEnd != "" {
		query = query.Where("receiving_batches.received_date <= ?", periodEnd)
	}

	var rows []struct {
		ProductID uuid.UUID
		Quantity  decimal.Decimal
	}
	if err := query.Group("receiving_batch_items.product_id").Scan(&rows).Error; err != nil {
		return nil, err
	}

	received := make(map[uuid.UUID]ReceivedQuantity, len(rows))
	for _, row := range rows {
		received[row.ProductID] = ReceivedQuantity{ProductID: row.ProductID, Quantity: row.Quantity}
	}
	return received, nil
}
