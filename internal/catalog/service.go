package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rgastelum/supplyline-backend/pkg/db"
	"github.com/rgastelum/supplyline-backend/pkg/db/models"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
	pkgerrors "github.com/rgastelum/supplyline-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithWriteTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines catalog operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error)
	ListStockMovements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error)
	CreditStock(ctx context.Context, tx *gorm.DB, change StockChange) error
	DebitStock(ctx context.Context, tx *gorm.DB, change StockChange) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if !input.Unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid unit %q", input.Unit))
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", input.Category))
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	product := &models.Product{
		Name:      input.Name,
		Unit:      input.Unit,
		Category:  input.Category,
		Price:     input.Price,
		Available: true,
		Stock:     decimal.Zero,
		Aliases:   pq.StringArray(input.Aliases),
		Notes:     input.Notes,
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "products_name_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	updates := map[string]any{}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name must not be empty")
		}
		updates["name"] = *input.Name
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		updates["price"] = *input.Price
	}
	if input.Available != nil {
		updates["available"] = *input.Available
	}
	if input.Aliases != nil {
		updates["aliases"] = pq.StringArray(input.Aliases)
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	var product *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindProduct(ctx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if err := repo.UpdateProduct(ctx, productID, updates); err != nil {
			if db.IsUniqueViolation(err, "products_name_key") {
				return pkgerrors.New(pkgerrors.CodeConflict, "product name already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
		updated, err := repo.FindProduct(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
		}
		product = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

func (s *service) ListStockMovements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	movements, err := s.repo.ListStockMovements(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}
	return movements, nil
}

// CreditStock increases the product's stock inside the caller's transaction
// and records an inbound movement.
func (s *service) CreditStock(ctx context.Context, tx *gorm.DB, change StockChange) error {
	return s.applyChange(ctx, tx, change, enums.StockMovementInbound)
}

// DebitStock decreases the product's stock inside the caller's transaction and
// records an outbound movement. Stock may go negative here; callers that need
// the non-negative guarantee check availability before debiting.
func (s *service) DebitStock(ctx context.Context, tx *gorm.DB, change StockChange) error {
	return s.applyChange(ctx, tx, change, enums.StockMovementOutbound)
}

func (s *service) applyChange(ctx context.Context, tx *gorm.DB, change StockChange, movementType enums.StockMovementType) error {
	if change.Quantity.IsNegative() || change.Quantity.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	repo := s.repo.WithTx(tx)
	product, err := repo.FindProductForUpdate(ctx, change.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock product")
	}

	newStock := product.Stock.Add(change.Quantity)
	if movementType == enums.StockMovementOutbound {
		newStock = product.Stock.Sub(change.Quantity)
	}

	if err := repo.UpdateProduct(ctx, product.ID, map[string]any{"stock": newStock}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}

	movement := &models.StockMovement{
		ProductID: product.ID,
		Type:      movementType,
		Quantity:  change.Quantity,
		RefType:   change.RefType,
		RefID:     change.RefID,
	}
	if err := repo.CreateStockMovement(ctx, movement); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}
	return nil
}
