package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rgastelum/supplyline-backend/pkg/db/models"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  delivery_date TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'created',
  trip_number TEXT,
  total_amount TEXT NOT NULL DEFAULT '0',
  stock_deducted INTEGER NOT NULL DEFAULT 0,
  pending_review INTEGER NOT NULL DEFAULT 0,
  last_modified_at DATETIME NOT NULL,
  last_reviewed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  unit TEXT NOT NULL,
  qty_ordered TEXT NOT NULL,
  qty_picked TEXT NOT NULL DEFAULT '0',
  unit_price TEXT NOT NULL,
  picked INTEGER NOT NULL DEFAULT 0,
  out_of_stock INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'created',
  created_at DATETIME,
  updated_at DATETIME
);`
	changeLogs := `
CREATE TABLE IF NOT EXISTS order_change_logs (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  type TEXT NOT NULL,
  detail TEXT,
  created_at DATETIME,
  read_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(changeLogs).Error)
	return db
}

func newOrderRow(t *testing.T, db *gorm.DB, customerID uuid.UUID, deliveryDate string, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:             uuid.New(),
		CustomerID:     customerID,
		DeliveryDate:   deliveryDate,
		Status:         status,
		TotalAmount:    decimal.Zero,
		LastModifiedAt: createdAt,
		CreatedAt:      createdAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func newItemRow(t *testing.T, db *gorm.DB, orderID uuid.UUID, name string, createdAt time.Time) *models.OrderItem {
	t.Helper()

	item := &models.OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   uuid.New(),
		ProductName: name,
		Unit:        enums.ProductUnitKg,
		QtyOrdered:  decimal.New(1, 0),
		QtyPicked:   decimal.New(1, 0),
		UnitPrice:   decimal.New(2, 0),
		Status:      enums.OrderItemStatusCreated,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestFindOpenOrderReturnsOldestMergeable(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customerID := uuid.New()
	base := time.Now().Add(-time.Hour)

	// cancelled orders are not mergeable
	newOrderRow(t, db, customerID, "2026-09-01", enums.OrderStatusCancelled, base)
	older := newOrderRow(t, db, customerID, "2026-09-01", enums.OrderStatusConfirmed, base.Add(time.Minute))
	newOrderRow(t, db, customerID, "2026-09-01", enums.OrderStatusCreated, base.Add(2*time.Minute))
	// other date, other customer
	newOrderRow(t, db, customerID, "2026-09-02", enums.OrderStatusCreated, base)
	newOrderRow(t, db, uuid.New(), "2026-09-01", enums.OrderStatusCreated, base)

	found, err := repo.FindOpenOrder(context.Background(), customerID, "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, older.ID, found.ID)

	_, err = repo.FindOpenOrder(context.Background(), customerID, "2026-12-24")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindOrderItemByID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Now()

	order := newOrderRow(t, db, uuid.New(), "2026-09-01", enums.OrderStatusCreated, now)
	item := newItemRow(t, db, order.ID, "Tomatoes", now)

	found, err := repo.FindOrderItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tomatoes", found.ProductName)
	assert.Equal(t, order.ID, found.OrderID)

	_, err = repo.FindOrderItem(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListPendingReviewFreshestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Now()

	older := newOrderRow(t, db, uuid.New(), "2026-09-01", enums.OrderStatusCreated, now.Add(-time.Hour))
	newer := newOrderRow(t, db, uuid.New(), "2026-09-01", enums.OrderStatusConfirmed, now)
	// already acknowledged, must not surface
	newOrderRow(t, db, uuid.New(), "2026-09-01", enums.OrderStatusCreated, now)
	require.NoError(t, db.Model(&models.Order{}).
		Where("id IN ?", []uuid.UUID{older.ID, newer.ID}).
		Update("pending_review", true).Error)

	pending, err := repo.ListPendingReview(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, newer.ID, pending[0].ID)
	assert.Equal(t, older.ID, pending[1].ID)
}

func TestFindOrderItemsOrderedByCreation(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Now()

	order := newOrderRow(t, db, uuid.New(), "2026-09-01", enums.OrderStatusCreated, now)
	newItemRow(t, db, order.ID, "Second", now.Add(time.Second))
	newItemRow(t, db, order.ID, "First", now)

	items, err := repo.FindOrderItems(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "First", items[0].ProductName)
	assert.Equal(t, "Second", items[1].ProductName)
}

func TestListOrdersFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customerID := uuid.New()
	now := time.Now()

	newOrderRow(t, db, customerID, "2026-09-01", enums.OrderStatusCreated, now)
	newOrderRow(t, db, customerID, "2026-09-01", enums.OrderStatusShipped, now)
	newOrderRow(t, db, uuid.New(), "2026-09-01", enums.OrderStatusCreated, now)

	byCustomer, err := repo.ListOrders(context.Background(), OrderFilters{CustomerID: &customerID})
	require.NoError(t, err)
	assert.Len(t, byCustomer, 2)

	shipped := enums.OrderStatusShipped
	byStatus, err := repo.ListOrders(context.Background(), OrderFilters{CustomerID: &customerID, Status: &shipped})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, enums.OrderStatusShipped, byStatus[0].Status)

	date := "2026-09-01"
	byDate, err := repo.ListOrders(context.Background(), OrderFilters{DeliveryDate: &date})
	require.NoError(t, err)
	assert.Len(t, byDate, 3)
}

func TestDeleteOrderItem(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Now()

	order := newOrderRow(t, db, uuid.New(), "2026-09-01", enums.OrderStatusCreated, now)
	keep := newItemRow(t, db, order.ID, "Keep", now)
	drop := newItemRow(t, db, order.ID, "Drop", now.Add(time.Second))

	require.NoError(t, repo.DeleteOrderItem(context.Background(), drop.ID))

	items, err := repo.FindOrderItems(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ID)
}
