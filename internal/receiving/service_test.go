package receiving

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rgastelum/supplyline-backend/internal/catalog"
	"github.com/rgastelum/supplyline-backend/pkg/db/models"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
	pkgerrors "github.com/rgastelum/supplyline-backend/pkg/errors"
)

func TestCreateBatchCreditsStock(t *testing.T) {
	t.Parallel()

	supplier := &models.Supplier{ID: uuid.New(), Name: "Fresh Farms"}
	product := &models.Product{
		ID:        uuid.New(),
		Name:      "Cherry Tomatoes",
		Unit:      enums.ProductUnitKg,
		Available: true,
	}
	repo := newStubReceivingRepo(supplier)
	inventory := &stubInventory{}
	svc := newTestReceivingService(t, repo, inventory, product)

	batch, err := svc.CreateBatch(context.Background(), CreateBatchInput{
		SupplierID:   supplier.ID,
		ReceivedDate: "2026-08-30",
		Items: []NewBatchItemInput{
			{ProductID: product.ID, Quantity: decimal.RequireFromString("12.5")},
		},
	})
	if err != nil {
		t.Fatalf("create batch failed: %v", err)
	}
	if batch.BatchNumber != "RB-20260830-1" {
		t.Fatalf("unexpected batch number %q", batch.BatchNumber)
	}
	if batch.Status != enums.BatchStatusPending {
		t.Fatalf("new batch should be pending, got %s", batch.Status)
	}
	if len(batch.Items) != 1 || batch.Items[0].ProductName != "Cherry Tomatoes" {
		t.Fatalf("expected one item with a name snapshot, got %+v", batch.Items)
	}
	if len(inventory.credits) != 1 {
		t.Fatalf("expected one stock credit, got %d", len(inventory.credits))
	}
	credit := inventory.credits[0]
	if credit.ProductID != product.ID || !credit.Quantity.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected credit %+v", credit)
	}
	if credit.RefType != enums.StockMovementRefBatch || credit.RefID != batch.ID {
		t.Fatalf("credit should reference the batch, got %+v", credit)
	}
}

func TestBatchNumbersCountUpPerDay(t *testing.T) {
	t.Parallel()

	supplier := &models.Supplier{ID: uuid.New(), Name: "Dry Goods Co"}
	product := &models.Product{ID: uuid.New(), Name: "Rice", Unit: enums.ProductUnitBag, Available: true}
	repo := newStubReceivingRepo(supplier)
	svc := newTestReceivingService(t, repo, &stubInventory{}, product)

	input := CreateBatchInput{
		SupplierID:   supplier.ID,
		ReceivedDate: "2026-08-30",
		Items:        []NewBatchItemInput{{ProductID: product.ID, Quantity: decimal.New(2, 0)}},
	}
	first, err := svc.CreateBatch(context.Background(), input)
	if err != nil {
		t.Fatalf("first batch failed: %v", err)
	}
	second, err := svc.CreateBatch(context.Background(), input)
	if err != nil {
		t.Fatalf("second batch failed: %v", err)
	}
	if first.BatchNumber != "RB-20260830-1" || second.BatchNumber != "RB-20260830-2" {
		t.Fatalf("expected sequential numbers, got %q and %q", first.BatchNumber, second.BatchNumber)
	}

	other := input
	other.ReceivedDate = "2026-08-31"
	third, err := svc.CreateBatch(context.Background(), other)
	if err != nil {
		t.Fatalf("third batch failed: %v", err)
	}
	if third.BatchNumber != "RB-20260831-1" {
		t.Fatalf("counter should reset per day, got %q", third.BatchNumber)
	}
}

func TestCreateBatchDuplicateNumberConflicts(t *testing.T) {
	t.Parallel()

	supplier := &models.Supplier{ID: uuid.New(), Name: "Dry Goods Co"}
	product := &models.Product{ID: uuid.New(), Name: "Rice", Unit: enums.ProductUnitBag, Available: true}
	repo := newStubReceivingRepo(supplier)
	svc := newTestReceivingService(t, repo, &stubInventory{}, product)

	// a row already holds the number the next create will generate
	taken := &models.ReceivingBatch{
		ID:           uuid.New(),
		BatchNumber:  "RB-20260901-1",
		SupplierID:   supplier.ID,
		ReceivedDate: "2026-09-02",
		Status:       enums.BatchStatusPending,
	}
	repo.batches[taken.ID] = taken

	_, err := svc.CreateBatch(context.Background(), CreateBatchInput{
		SupplierID:   supplier.ID,
		ReceivedDate: "2026-09-01",
		Items:        []NewBatchItemInput{{ProductID: product.ID, Quantity: decimal.New(1, 0)}},
	})
	if err == nil {
		t.Fatal("expected the taken batch number to conflict")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestCreateBatchValidation(t *testing.T) {
	t.Parallel()

	supplier := &models.Supplier{ID: uuid.New(), Name: "Farm"}
	product := &models.Product{ID: uuid.New(), Name: "Boxes", Unit: enums.ProductUnitBox, Available: true}
	repo := newStubReceivingRepo(supplier)
	svc := newTestReceivingService(t, repo, &stubInventory{}, product)

	_, err := svc.CreateBatch(context.Background(), CreateBatchInput{
		SupplierID:   supplier.ID,
		ReceivedDate: "30-08-2026",
		Items:        []NewBatchItemInput{{ProductID: product.ID, Quantity: decimal.New(1, 0)}},
	})
	if err == nil {
		t.Fatal("expected malformed date to be rejected")
	}

	_, err = svc.CreateBatch(context.Background(), CreateBatchInput{
		SupplierID:   supplier.ID,
		ReceivedDate: "2026-08-30",
		Items:        []NewBatchItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1.5")}},
	})
	if err == nil {
		t.Fatal("expected fractional box quantity to be rejected")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error code: %v", err)
	}

	_, err = svc.CreateBatch(context.Background(), CreateBatchInput{
		SupplierID:   uuid.New(),
		ReceivedDate: "2026-08-30",
		Items:        []NewBatchItemInput{{ProductID: product.ID, Quantity: decimal.New(1, 0)}},
	})
	if err == nil {
		t.Fatal("expected unknown supplier to be rejected")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestCreateSupplierTrimsName(t *testing.T) {
	t.Parallel()

	repo := newStubReceivingRepo()
	svc := newTestReceivingService(t, repo, &stubInventory{})

	supplier, err := svc.CreateSupplier(context.Background(), "  Ocean Catch  ", nil, nil)
	if err != nil {
		t.Fatalf("create supplier failed: %v", err)
	}
	if supplier.Name != "Ocean Catch" {
		t.Fatalf("expected trimmed name, got %q", supplier.Name)
	}

	if _, err := svc.CreateSupplier(context.Background(), "   ", nil, nil); err == nil {
		t.Fatal("expected blank name to be rejected")
	}
}

// --- test fixtures ---

func newTestReceivingService(t *testing.T, repo *stubReceivingRepo, inventory *stubInventory, products ...*models.Product) Service {
	t.Helper()
	catalogRepo := &stubCatalogRepo{products: map[uuid.UUID]*models.Product{}}
	for _, p := range products {
		catalogRepo.products[p.ID] = p
	}
	svc, err := NewService(repo, catalogRepo, inventory, stubTxRunner{}, "RB")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (stubTxRunner) WithWriteTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubInventory struct {
	credits []catalog.StockChange
}

func (s *stubInventory) CreditStock(ctx context.Context, tx *gorm.DB, change catalog.StockChange) error {
	s.credits = append(s.credits, change)
	return nil
}

type stubCatalogRepo struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) catalog.Repository { return s }

func (s *stubCatalogRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	return product, nil
}

func (s *stubCatalogRepo) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, ok := s.products[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *product
	return &clone, nil
}

func (s *stubCatalogRepo) FindProductForUpdate(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return s.FindProduct(ctx, productID)
}

func (s *stubCatalogRepo) FindProductByName(ctx context.Context, name string) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) ListProducts(ctx context.Context, filters catalog.ProductFilters) ([]models.Product, error) {
	return nil, nil
}

func (s *stubCatalogRepo) UpdateProduct(ctx context.Context, productID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubCatalogRepo) CreateStockMovement(ctx context.Context, movement *models.StockMovement) error {
	return nil
}

func (s *stubCatalogRepo) ListStockMovements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	return nil, nil
}

type stubReceivingRepo struct {
	suppliers map[uuid.UUID]*models.Supplier
	batches   map[uuid.UUID]*models.ReceivingBatch
	items     map[uuid.UUID][]models.ReceivingBatchItem
}

func newStubReceivingRepo(suppliers ...*models.Supplier) *stubReceivingRepo {
	repo := &stubReceivingRepo{
		suppliers: map[uuid.UUID]*models.Supplier{},
		batches:   map[uuid.UUID]*models.ReceivingBatch{},
		items:     map[uuid.UUID][]models.ReceivingBatchItem{},
	}
	for _, supplier := range suppliers {
		repo.suppliers[supplier.ID] = supplier
	}
	return repo
}

func (s *stubReceivingRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubReceivingRepo) CreateBatch(ctx context.Context, batch *models.ReceivingBatch) (*models.ReceivingBatch, error) {
	for _, existing := range s.batches {
		if existing.BatchNumber == batch.BatchNumber {
			return nil, errors.New(`duplicate key value violates unique constraint "receiving_batches_batch_number_key"`)
		}
	}
	clone := *batch
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	s.batches[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (s *stubReceivingRepo) CreateBatchItems(ctx context.Context, items []models.ReceivingBatchItem) error {
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		s.items[item.BatchID] = append(s.items[item.BatchID], item)
	}
	return nil
}

func (s *stubReceivingRepo) FindBatch(ctx context.Context, batchID uuid.UUID) (*models.ReceivingBatch, error) {
	batch, ok := s.batches[batchID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *batch
	clone.Items = append([]models.ReceivingBatchItem{}, s.items[batchID]...)
	return &clone, nil
}

func (s *stubReceivingRepo) ListBatches(ctx context.Context, filters BatchFilters) ([]models.ReceivingBatch, error) {
	out := []models.ReceivingBatch{}
	for id := range s.batches {
		batch, _ := s.FindBatch(ctx, id)
		out = append(out, *batch)
	}
	return out, nil
}

func (s *stubReceivingRepo) CountBatchesOnDate(ctx context.Context, receivedDate string) (int64, error) {
	var count int64
	for _, batch := range s.batches {
		if batch.ReceivedDate == receivedDate {
			count++
		}
	}
	return count, nil
}

func (s *stubReceivingRepo) UpdateBatch(ctx context.Context, batchID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubReceivingRepo) MarkBatchesReconciled(ctx context.Context, supplierID uuid.UUID, periodStart, periodEnd string) error {
	return nil
}

func (s *stubReceivingRepo) FindSupplier(ctx context.Context, supplierID uuid.UUID) (*models.Supplier, error) {
	supplier, ok := s.suppliers[supplierID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *supplier
	return &clone, nil
}

func (s *stubReceivingRepo) CreateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	clone := *supplier
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	s.suppliers[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (s *stubReceivingRepo) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	out := []models.Supplier{}
	for _, supplier := range s.suppliers {
		out = append(out, *supplier)
	}
	return out, nil
}
