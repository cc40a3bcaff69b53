package invoices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgastelum/supplyline-backend/pkg/db/models"
)

// Repository defines persistence operations for supplier invoices.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateInvoice(ctx context.Context, invoice *models.SupplierInvoice) (*models.SupplierInvoice, error)
	CreateInvoiceItems(ctx context.Context, items []models.SupplierInvoiceItem) error
	FindInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.SupplierInvoice, error)
	FindInvoiceItem(ctx context.Context, invoiceID, itemID uuid.UUID) (*models.SupplierInvoiceItem, error)
	ListInvoices(ctx context.Context, filters InvoiceFilters) ([]models.SupplierInvoice, error)
	UpdateInvoice(ctx context.Context, invoiceID uuid.UUID, updates map[string]any) error
	UpdateInvoiceItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error
	SumReceivedQuantities(ctx context.Context, supplierID uuid.UUID, periodStart, periodEnd string) (map[uuid.UUID]ReceivedQuantity, error)
}
