package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgastelum/supplyline-backend/pkg/db/models"
)

// Repository defines persistence operations for orders, order items and
// change logs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOpenOrder(ctx context.Context, customerID uuid.UUID, deliveryDate string) (*models.Order, error)
	FindOrderItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error)
	FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	ListOrders(ctx context.Context, filters OrderFilters) ([]models.Order, error)
	ListPendingReview(ctx context.Context) ([]models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	UpdateOrderItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error
	DeleteOrderItem(ctx context.Context, itemID uuid.UUID) error
	CreateChangeLog(ctx context.Context, log *models.OrderChangeLog) error
	ListChangeLogs(ctx context.Context, orderID uuid.UUID) ([]models.OrderChangeLog, error)
}
