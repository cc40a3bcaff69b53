package receiving

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgastelum/supplyline-backend/internal/catalog"
	"github.com/rgastelum/supplyline-backend/internal/orders"
	"github.com/rgastelum/supplyline-backend/pkg/db"
	"github.com/rgastelum/supplyline-backend/pkg/db/models"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
	pkgerrors "github.com/rgastelum/supplyline-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithWriteTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Inventory credits product stock as deliveries land.
type Inventory interface {
	CreditStock(ctx context.Context, tx *gorm.DB, change catalog.StockChange) error
}

// Service defines receiving operations.
type Service interface {
	CreateBatch(ctx context.Context, input CreateBatchInput) (*models.ReceivingBatch, error)
	GetBatch(ctx context.Context, batchID uuid.UUID) (*models.ReceivingBatch, error)
	ListBatches(ctx context.Context, filters BatchFilters) ([]models.ReceivingBatch, error)
	CreateSupplier(ctx context.Context, name string, phone, notes *string) (*models.Supplier, error)
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
}

type service struct {
	repo        Repository
	products    catalog.Repository
	inventory   Inventory
	tx          txRunner
	batchPrefix string
	now         func() time.Time
}

// NewService builds a receiving service with the required dependencies.
func NewService(repo Repository, products catalog.Repository, inventory Inventory, tx txRunner, batchPrefix string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("receiving repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if batchPrefix == "" {
		batchPrefix = "RB"
	}
	return &service{
		repo:        repo,
		products:    products,
		inventory:   inventory,
		tx:          tx,
		batchPrefix: batchPrefix,
		now:         time.Now,
	}, nil
}

// CreateBatch records a supplier delivery, credits each product's stock and
// writes the matching inbound movements atomically.
func (s *service) CreateBatch(ctx context.Context, input CreateBatchInput) (*models.ReceivingBatch, error) {
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if input.ReceivedDate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "received date required")
	}
	if _, err := time.Parse("2006-01-02", input.ReceivedDate); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "received date must be YYYY-MM-DD")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}

	var created *models.ReceivingBatch
	err := s.tx.WithWriteTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		products := s.products.WithTx(tx)

		if _, err := repo.FindSupplier(ctx, input.SupplierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
		}

		number, err := s.nextBatchNumber(ctx, repo, input.ReceivedDate)
		if err != nil {
			return err
		}

		batch, err := repo.CreateBatch(ctx, &models.ReceivingBatch{
			BatchNumber:  number,
			SupplierID:   input.SupplierID,
			ReceivedDate: input.ReceivedDate,
			Notes:        input.Notes,
			Status:       enums.BatchStatusPending,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "receiving_batches_batch_number_key") {
				return pkgerrors.New(pkgerrors.CodeConflict, "batch number already taken, retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create batch")
		}

		items := make([]models.ReceivingBatchItem, 0, len(input.Items))
		for _, in := range input.Items {
			product, err := products.FindProduct(ctx, in.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", in.ProductID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if err := orders.ValidateQuantity(product.Unit, in.Quantity); err != nil {
				return err
			}
			items = append(items, models.ReceivingBatchItem{
				BatchID:     batch.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    in.Quantity,
			})
		}
		if err := repo.CreateBatchItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create batch items")
		}

		for _, item := range items {
			if err := s.inventory.CreditStock(ctx, tx, catalog.StockChange{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				RefType:   enums.StockMovementRefBatch,
				RefID:     batch.ID,
			}); err != nil {
				return err
			}
		}

		reloaded, err := repo.FindBatch(ctx, batch.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload batch")
		}
		created = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) GetBatch(ctx context.Context, batchID uuid.UUID) (*models.ReceivingBatch, error) {
	batch, err := s.repo.FindBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "batch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load batch")
	}
	return batch, nil
}

func (s *service) ListBatches(ctx context.Context, filters BatchFilters) ([]models.ReceivingBatch, error) {
	batches, err := s.repo.ListBatches(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list batches")
	}
	return batches, nil
}

func (s *service) CreateSupplier(ctx context.Context, name string, phone, notes *string) (*models.Supplier, error) {
	if strings.TrimSpace(name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name required")
	}
	supplier, err := s.repo.CreateSupplier(ctx, &models.Supplier{
		Name:  strings.TrimSpace(name),
		Phone: phone,
		Notes: notes,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create supplier")
	}
	return supplier, nil
}

func (s *service) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	suppliers, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}
	return suppliers, nil
}

// nextBatchNumber yields <prefix>-YYYYMMDD-<n> where n counts deliveries on
// the received date. The unique index on batch_number backstops races.
func (s *service) nextBatchNumber(ctx context.Context, repo Repository, receivedDate string) (string, error) {
	count, err := repo.CountBatchesOnDate(ctx, receivedDate)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count batches")
	}
	compact := strings.ReplaceAll(receivedDate, "-", "")
	return fmt.Sprintf("%s-%s-%d", s.batchPrefix, compact, count+1), nil
}
