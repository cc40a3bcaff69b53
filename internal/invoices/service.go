package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rgastelum/supplyline-backend/internal/catalog"
	"github.com/rgastelum/supplyline-backend/pkg/db/models"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
	pkgerrors "github.com/rgastelum/supplyline-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithWriteTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// BatchCloser marks a supplier's batches reconciled when an invoice confirms.
type BatchCloser interface {
	MarkBatchesReconciled(ctx context.Context, tx *gorm.DB, supplierID uuid.UUID, periodStart, periodEnd string) error
}

// Service defines the invoice reconciliation operations.
type Service interface {
	Import(ctx context.Context, input ImportInput) (*models.SupplierInvoice, error)
	Get(ctx context.Context, invoiceID uuid.UUID) (*models.SupplierInvoice, error)
	List(ctx context.Context, filters InvoiceFilters) ([]models.SupplierInvoice, error)
	Confirm(ctx context.Context, invoiceID uuid.UUID) (*models.SupplierInvoice, error)
	UpdateItem(ctx context.Context, input UpdateItemInput) (*models.SupplierInvoice, error)
}

type service struct {
	repo     Repository
	products catalog.Repository
	batches  BatchCloser
	resolver ProductResolver
	tx       txRunner
}

// NewService builds an invoices service. When resolver is nil the default
// name resolver over the live catalog is used per import.
func NewService(repo Repository, products catalog.Repository, batches BatchCloser, resolver ProductResolver, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if batches == nil {
		return nil, fmt.Errorf("batch closer required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		products: products,
		batches:  batches,
		resolver: resolver,
		tx:       tx,
	}, nil
}

// Import stores the parsed invoice, resolves each line against the catalog
// and classifies it against what the supplier actually delivered.
func (s *service) Import(ctx context.Context, input ImportInput) (*models.SupplierInvoice, error) {
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if len(input.Rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice has no rows")
	}
	for _, bound := range []*string{input.PeriodStart, input.PeriodEnd} {
		if bound == nil {
			continue
		}
		if _, err := time.Parse("2006-01-02", *bound); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "period bounds must be YYYY-MM-DD")
		}
	}

	var created *models.SupplierInvoice
	err := s.tx.WithWriteTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		resolver := s.resolver
		if resolver == nil {
			products, err := s.products.WithTx(tx).ListProducts(ctx, catalog.ProductFilters{})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
			}
			resolver = NewNameResolver(products)
		}

		received, err := repo.SumReceivedQuantities(ctx, input.SupplierID, deref(input.PeriodStart), deref(input.PeriodEnd))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum received quantities")
		}

		total := decimal.Zero
		for _, row := range input.Rows {
			total = total.Add(row.Amount)
		}

		invoice, err := repo.CreateInvoice(ctx, &models.SupplierInvoice{
			InvoiceNumber: input.InvoiceNumber,
			SupplierID:    input.SupplierID,
			PeriodStart:   input.PeriodStart,
			PeriodEnd:     input.PeriodEnd,
			TotalAmount:   total.Round(2),
			Status:        enums.InvoiceStatusPending,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
		}

		items := make([]models.SupplierInvoiceItem, 0, len(input.Rows))
		for _, row := range input.Rows {
			product, err := resolver.Resolve(ctx, row.ProductName)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product")
			}
			status, matchedQty := classify(product, row.Quantity, received)

			item := models.SupplierInvoiceItem{
				InvoiceID:   invoice.ID,
				ProductName: row.ProductName,
				Quantity:    row.Quantity,
				UnitPrice:   row.UnitPrice,
				Amount:      row.Amount,
				MatchStatus: status,
				MatchedQty:  matchedQty,
			}
			if product != nil {
				productID := product.ID
				item.ProductID = &productID
			}
			items = append(items, item)
		}
		if err := repo.CreateInvoiceItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice items")
		}

		reloaded, err := repo.FindInvoice(ctx, invoice.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload invoice")
		}
		created = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, invoiceID uuid.UUID) (*models.SupplierInvoice, error) {
	invoice, err := s.repo.FindInvoice(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return invoice, nil
}

func (s *service) List(ctx context.Context, filters InvoiceFilters) ([]models.SupplierInvoice, error) {
	invoices, err := s.repo.ListInvoices(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	return invoices, nil
}

// Confirm promotes every auto-confirmed and need-review line to manually
// confirmed, settles the invoice and closes out the covered batches. The
// invoice lands on confirmed only when every line is settled; otherwise it
// stays partial.
func (s *service) Confirm(ctx context.Context, invoiceID uuid.UUID) (*models.SupplierInvoice, error) {
	var updated *models.SupplierInvoice
	err := s.tx.WithWriteTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		invoice, err := repo.FindInvoice(ctx, invoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if invoice.Status == enums.InvoiceStatusConfirmed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invoice already confirmed")
		}

		allSettled := true
		for _, item := range invoice.Items {
			switch item.MatchStatus {
			case enums.MatchStatusAutoConfirmed, enums.MatchStatusNeedReview:
				if err := repo.UpdateInvoiceItem(ctx, item.ID, map[string]any{
					"match_status": enums.MatchStatusManualConfirmed,
				}); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invoice item")
				}
			case enums.MatchStatusManualConfirmed, enums.MatchStatusIgnored:
				// already settled
			default:
				allSettled = false
			}
		}

		status := enums.InvoiceStatusPartial
		if allSettled {
			status = enums.InvoiceStatusConfirmed
		}
		if err := repo.UpdateInvoice(ctx, invoice.ID, map[string]any{"status": status}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invoice")
		}

		if allSettled {
			if err := s.batches.MarkBatchesReconciled(ctx, tx, invoice.SupplierID,
				deref(invoice.PeriodStart), deref(invoice.PeriodEnd)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reconcile batches")
			}
		}

		reloaded, err := repo.FindInvoice(ctx, invoice.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload invoice")
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateItem applies a manual review decision to one invoice line.
func (s *service) UpdateItem(ctx context.Context, input UpdateItemInput) (*models.SupplierInvoice, error) {
	var updated *models.SupplierInvoice
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		invoice, err := repo.FindInvoice(ctx, input.InvoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if invoice.Status == enums.InvoiceStatusConfirmed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invoice already confirmed")
		}

		item, err := repo.FindInvoiceItem(ctx, invoice.ID, input.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice item")
		}

		updates := map[string]any{}
		if input.ProductID != nil {
			if _, err := s.products.WithTx(tx).FindProduct(ctx, *input.ProductID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			updates["product_id"] = *input.ProductID
		}
		if input.MatchStatus != nil {
			if !input.MatchStatus.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid match status %q", *input.MatchStatus))
			}
			updates["match_status"] = *input.MatchStatus
		}
		if input.Notes != nil {
			updates["discrepancy_notes"] = *input.Notes
		}
		if len(updates) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
		}

		if err := repo.UpdateInvoiceItem(ctx, item.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invoice item")
		}

		reloaded, err := repo.FindInvoice(ctx, invoice.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload invoice")
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
