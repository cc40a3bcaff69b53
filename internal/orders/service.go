package orders

import (
	"context"
	"encoding/json"
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

// Inventory is the slice of the catalog the order engine needs beyond reads:
// the stock debit applied on fulfillment.
type Inventory interface {
	DebitStock(ctx context.Context, tx *gorm.DB, change catalog.StockChange) error
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	Get(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) (*models.Order, error)
	List(ctx context.Context, filters OrderFilters, actorID uuid.UUID, role enums.UserRole) ([]models.Order, error)
	AddItem(ctx context.Context, input AddItemInput) (*AddItemResult, error)
	UpdateItem(ctx context.Context, input UpdateItemInput) (*models.Order, error)
	RemoveItem(ctx context.Context, input RemoveItemInput) (*models.Order, error)
	UpdateItemPicking(ctx context.Context, input PickingInput) (*models.OrderItem, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
	UpdateTrip(ctx context.Context, orderID uuid.UUID, tripNumber *string) (*models.Order, error)
	AcknowledgeReview(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListChangeLogs(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) ([]models.OrderChangeLog, error)
	ListPendingChanges(ctx context.Context) ([]PendingOrderChanges, error)
}

type service struct {
	repo      Repository
	products  catalog.Repository
	inventory Inventory
	tx        txRunner
	now       func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, products catalog.Repository, inventory Inventory, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
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
	return &service{
		repo:      repo,
		products:  products,
		inventory: inventory,
		tx:        tx,
		now:       time.Now,
	}, nil
}

// Create validates the requested lines and either opens a new order or merges
// them into the customer's existing open order for the same delivery date.
// Admin-created orders never merge.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	delivery, err := NormalizeDeliveryDate(input.Delivery)
	if err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	if input.ActorRole == enums.UserRoleCustomer && input.ActorID != input.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "customers can only order for themselves")
	}

	result := &CreateOrderResult{}
	err = s.tx.WithWriteTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		products := s.products.WithTx(tx)

		lines, err := s.buildLines(ctx, products, input.Items)
		if err != nil {
			return err
		}

		var target *models.Order
		merged := false
		if input.ActorRole == enums.UserRoleCustomer {
			open, err := repo.FindOpenOrder(ctx, input.CustomerID, delivery)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find open order")
			}
			if err == nil {
				target = open
				merged = true
			}
		}

		if target == nil {
			target, err = repo.CreateOrder(ctx, &models.Order{
				CustomerID:     input.CustomerID,
				DeliveryDate:   delivery,
				Status:         enums.OrderStatusCreated,
				TotalAmount:    decimal.Zero,
				LastModifiedAt: s.now(),
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
			}
		}

		for i := range lines {
			lines[i].OrderID = target.ID
		}
		if err := repo.CreateOrderItems(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}

		// one log row per mutating event; the detail carries every line
		logType := enums.ChangeLogOrderCreated
		if merged {
			logType = enums.ChangeLogMergedOrderUpdate
		}
		if err := s.logChange(ctx, repo, target.ID, logType, changeDetail{
			Items:     changeLines(lines),
			Actor:     input.ActorID,
			ActorRole: input.ActorRole.String(),
		}); err != nil {
			return err
		}

		updates := map[string]any{
			"last_modified_at": s.now(),
			"pending_review":   true,
		}
		if err := s.recomputeTotal(ctx, repo, target.ID, updates); err != nil {
			return err
		}

		reloaded, err := repo.FindOrder(ctx, target.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		result.Order = reloaded
		result.Merged = merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) (*models.Order, error) {
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if err := requireOwnership(order, actorID, role); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filters OrderFilters, actorID uuid.UUID, role enums.UserRole) ([]models.Order, error) {
	if role == enums.UserRoleCustomer {
		filters.CustomerID = &actorID
	}
	orders, err := s.repo.ListOrders(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// AddItem appends a line to the order. Locked orders do not take direct
// edits; the line is redirected into a fresh follow-up order instead.
func (s *service) AddItem(ctx context.Context, input AddItemInput) (*AddItemResult, error) {
	result := &AddItemResult{}
	err := s.tx.WithWriteTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		products := s.products.WithTx(tx)

		order, err := s.loadOrderForUpdate(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := requireOwnership(order, input.ActorID, input.ActorRole); err != nil {
			return err
		}

		lines, err := s.buildLines(ctx, products, []NewOrderItemInput{{ProductID: input.ProductID, Quantity: input.Quantity}})
		if err != nil {
			return err
		}
		line := lines[0]

		if order.Status.IsLocked() {
			followUp, err := repo.CreateOrder(ctx, &models.Order{
				CustomerID:     order.CustomerID,
				DeliveryDate:   order.DeliveryDate,
				Status:         enums.OrderStatusCreated,
				TotalAmount:    decimal.Zero,
				LastModifiedAt: s.now(),
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create follow-up order")
			}
			line.OrderID = followUp.ID
			if err := repo.CreateOrderItems(ctx, []models.OrderItem{line}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create follow-up item")
			}
			sourceID := order.ID
			productID := line.ProductID
			if err := s.logChange(ctx, repo, followUp.ID, enums.ChangeLogOrderCreated, changeDetail{
				ProductID:   &productID,
				ProductName: line.ProductName,
				Quantity:    line.QtyOrdered.String(),
				SourceOrder: &sourceID,
				Actor:       input.ActorID,
				ActorRole:   input.ActorRole.String(),
			}); err != nil {
				return err
			}
			if err := s.recomputeTotal(ctx, repo, followUp.ID, map[string]any{"last_modified_at": s.now()}); err != nil {
				return err
			}
			// the locked order is returned untouched; the caller follows
			// RedirectedOrderID to the new line
			original, err := repo.FindOrder(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
			}
			redirected := followUp.ID
			result.Order = original
			result.RedirectedOrderID = &redirected
			return nil
		}

		line.OrderID = order.ID
		if err := repo.CreateOrderItems(ctx, []models.OrderItem{line}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order item")
		}
		if input.ActorRole == enums.UserRoleCustomer {
			productID := line.ProductID
			if err := s.logChange(ctx, repo, order.ID, enums.ChangeLogItemAdded, changeDetail{
				ProductID:   &productID,
				ProductName: line.ProductName,
				Quantity:    line.QtyOrdered.String(),
				Actor:       input.ActorID,
				ActorRole:   input.ActorRole.String(),
			}); err != nil {
				return err
			}
		}

		updates := map[string]any{"last_modified_at": s.now()}
		if input.ActorRole == enums.UserRoleCustomer && order.Status == enums.OrderStatusConfirmed {
			updates["pending_review"] = true
		}
		if err := s.recomputeTotal(ctx, repo, order.ID, updates); err != nil {
			return err
		}

		reloaded, err := repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		result.Order = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateItem mutates one line on an unlocked order and keeps the cached
// total in sync.
func (s *service) UpdateItem(ctx context.Context, input UpdateItemInput) (*models.Order, error) {
	var updated *models.Order
	err := s.tx.WithWriteTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := s.loadItem(ctx, repo, input.ItemID)
		if err != nil {
			return err
		}
		order, err := s.loadOrderForUpdate(ctx, repo, item.OrderID)
		if err != nil {
			return err
		}
		if err := requireOwnership(order, input.ActorID, input.ActorRole); err != nil {
			return err
		}
		if order.Status.IsLocked() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order in status %s does not accept edits", order.Status))
		}

		updates := map[string]any{}
		detail := changeDetail{
			ProductID:   &item.ProductID,
			ProductName: item.ProductName,
			Actor:       input.ActorID,
			ActorRole:   input.ActorRole.String(),
		}

		if input.QtyOrdered != nil {
			if err := ValidateQuantity(item.Unit, *input.QtyOrdered); err != nil {
				return err
			}
			detail.Field = "qtyOrdered"
			detail.From = item.QtyOrdered.String()
			detail.To = input.QtyOrdered.String()
			updates["qty_ordered"] = *input.QtyOrdered
			if input.QtyPicked == nil && !item.Picked {
				updates["qty_picked"] = *input.QtyOrdered
			}
		}
		if input.QtyPicked != nil {
			if err := ValidateQuantity(item.Unit, *input.QtyPicked); err != nil {
				return err
			}
			updates["qty_picked"] = *input.QtyPicked
		}
		if len(updates) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
		}

		if err := repo.UpdateOrderItem(ctx, item.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order item")
		}

		// Warehouse adjustments during picking are routine and stay out of
		// the customer-facing change feed.
		if input.ActorRole == enums.UserRoleCustomer {
			if err := s.logChange(ctx, repo, order.ID, enums.ChangeLogItemUpdated, detail); err != nil {
				return err
			}
		}

		orderUpdates := map[string]any{"last_modified_at": s.now()}
		if input.ActorRole == enums.UserRoleCustomer && order.Status == enums.OrderStatusConfirmed {
			orderUpdates["pending_review"] = true
		}
		if err := s.recomputeTotal(ctx, repo, order.ID, orderUpdates); err != nil {
			return err
		}

		reloaded, err := repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveItem deletes one line from an unlocked order.
func (s *service) RemoveItem(ctx context.Context, input RemoveItemInput) (*models.Order, error) {
	var updated *models.Order
	err := s.tx.WithWriteTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := s.loadItem(ctx, repo, input.ItemID)
		if err != nil {
			return err
		}
		order, err := s.loadOrderForUpdate(ctx, repo, item.OrderID)
		if err != nil {
			return err
		}
		if err := requireOwnership(order, input.ActorID, input.ActorRole); err != nil {
			return err
		}
		if order.Status.IsLocked() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order in status %s does not accept edits", order.Status))
		}

		if err := repo.DeleteOrderItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order item")
		}

		if input.ActorRole == enums.UserRoleCustomer {
			if err := s.logChange(ctx, repo, order.ID, enums.ChangeLogItemRemoved, changeDetail{
				ProductID:   &item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.QtyOrdered.String(),
				Actor:       input.ActorID,
				ActorRole:   input.ActorRole.String(),
			}); err != nil {
				return err
			}
		}

		orderUpdates := map[string]any{"last_modified_at": s.now()}
		if input.ActorRole == enums.UserRoleCustomer && order.Status == enums.OrderStatusConfirmed {
			orderUpdates["pending_review"] = true
		}
		if err := s.recomputeTotal(ctx, repo, order.ID, orderUpdates); err != nil {
			return err
		}

		reloaded, err := repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateItemPicking flips the warehouse flags on one line. It runs outside
// the lifecycle state machine: locked orders still take picking updates, the
// order total is untouched and only the item row comes back.
func (s *service) UpdateItemPicking(ctx context.Context, input PickingInput) (*models.OrderItem, error) {
	if input.Picked == nil && input.OutOfStock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	var updated *models.OrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := s.loadItem(ctx, repo, input.ItemID)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if input.Picked != nil {
			updates["picked"] = *input.Picked
			if *input.Picked {
				updates["status"] = enums.OrderItemStatusPicked
			}
		}
		if input.OutOfStock != nil {
			updates["out_of_stock"] = *input.OutOfStock
			if *input.OutOfStock {
				updates["status"] = enums.OrderItemStatusOutOfStock
			}
		}
		if err := repo.UpdateOrderItem(ctx, item.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order item")
		}

		reloaded, err := s.loadItem(ctx, repo, item.ID)
		if err != nil {
			return err
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Transition moves the order through its lifecycle. The first transition into
// a fulfillment status deducts stock exactly once; the deduction is all or
// nothing and reports every short line when it fails.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.ActorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins manage order status")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", input.Status))
	}

	var updated *models.Order
	err := s.tx.WithWriteTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOrderForUpdate(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if !enums.CanTransition(order.Status, input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, input.Status))
		}

		updates := map[string]any{
			"status":           input.Status,
			"last_modified_at": s.now(),
		}
		if input.TripNumber != nil {
			updates["trip_number"] = *input.TripNumber
		}

		if input.Status.IsFulfillment() && !order.StockDeducted {
			if err := s.deductStock(ctx, tx, order); err != nil {
				return err
			}
			updates["stock_deducted"] = true
		}

		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		reloaded, err := repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateTrip sets or clears the order's trip label without touching the
// lifecycle status.
func (s *service) UpdateTrip(ctx context.Context, orderID uuid.UUID, tripNumber *string) (*models.Order, error) {
	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"trip_number":      tripNumber,
			"last_modified_at": s.now(),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		reloaded, err := repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AcknowledgeReview clears the pending review flag after an admin has looked
// at the accumulated changes. The change log rows themselves are untouched.
func (s *service) AcknowledgeReview(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"pending_review":   false,
			"last_reviewed_at": s.now(),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		reloaded, err := repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ListChangeLogs(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) ([]models.OrderChangeLog, error) {
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if err := requireOwnership(order, actorID, role); err != nil {
		return nil, err
	}
	logs, err := s.repo.ListChangeLogs(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list change logs")
	}
	return logs, nil
}

// ListPendingChanges returns every order waiting on admin review, freshest
// first, each annotated with its accumulated change log.
func (s *service) ListPendingChanges(ctx context.Context) ([]PendingOrderChanges, error) {
	orders, err := s.repo.ListPendingReview(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending orders")
	}
	out := make([]PendingOrderChanges, 0, len(orders))
	for _, order := range orders {
		logs, err := s.repo.ListChangeLogs(ctx, order.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list change logs")
		}
		out = append(out, PendingOrderChanges{
			Order:       order,
			ChangeCount: len(logs),
			Logs:        logs,
		})
	}
	return out, nil
}

// deductStock debits every line with a positive picked quantity, or none.
// Short lines are enumerated in full so the warehouse can fix them in one
// pass.
func (s *service) deductStock(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	products := s.products.WithTx(tx)

	var insufficient []InsufficientItem
	for _, item := range order.Items {
		if item.OutOfStock || !item.QtyPicked.IsPositive() {
			continue
		}
		qty := item.QtyPicked
		product, err := products.FindProductForUpdate(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("product %s no longer exists", item.ProductName))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock product")
		}
		if product.Stock.LessThan(qty) {
			insufficient = append(insufficient, InsufficientItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   qty,
				Available:   product.Stock,
			})
		}
	}
	if len(insufficient) > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").WithDetails(insufficient)
	}

	for _, item := range order.Items {
		if item.OutOfStock || !item.QtyPicked.IsPositive() {
			continue
		}
		if err := s.inventory.DebitStock(ctx, tx, catalog.StockChange{
			ProductID: item.ProductID,
			Quantity:  item.QtyPicked,
			RefType:   enums.StockMovementRefOrder,
			RefID:     order.ID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) buildLines(ctx context.Context, products catalog.Repository, inputs []NewOrderItemInput) ([]models.OrderItem, error) {
	lines := make([]models.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		if in.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		product, err := products.FindProduct(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", in.ProductID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.Available {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s is not available", product.Name))
		}
		if err := ValidateQuantity(product.Unit, in.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Unit:        product.Unit,
			QtyOrdered:  in.Quantity,
			QtyPicked:   in.Quantity,
			UnitPrice:   product.Price,
			Status:      enums.OrderItemStatusCreated,
		})
	}
	return lines, nil
}

// recomputeTotal rereads the order's lines and writes the derived total in
// the same update as the caller's other order fields.
func (s *service) recomputeTotal(ctx context.Context, repo Repository, orderID uuid.UUID, updates map[string]any) error {
	items, err := repo.FindOrderItems(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.QtyOrdered.Mul(item.UnitPrice))
	}
	updates["total_amount"] = total.Round(2)
	if err := repo.UpdateOrder(ctx, orderID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order total")
	}
	return nil
}

func (s *service) logChange(ctx context.Context, repo Repository, orderID uuid.UUID, logType enums.ChangeLogType, detail changeDetail) error {
	payload, err := json.Marshal(detail)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal change detail")
	}
	if err := repo.CreateChangeLog(ctx, &models.OrderChangeLog{
		OrderID: orderID,
		Type:    logType,
		Detail:  payload,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record change log")
	}
	return nil
}

func (s *service) loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) loadOrderForUpdate(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock order")
	}
	return order, nil
}

func (s *service) loadItem(ctx context.Context, repo Repository, itemID uuid.UUID) (*models.OrderItem, error) {
	item, err := repo.FindOrderItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
	}
	return item, nil
}

// deliveryDateLayouts are accepted on input; everything collapses to the
// plain calendar date in UTC.
var deliveryDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// NormalizeDeliveryDate parses the raw delivery date and truncates it to
// YYYY-MM-DD. Time-of-day and offsets beyond UTC conversion are discarded so
// the merge lookup compares calendar days, never timestamps.
func NormalizeDeliveryDate(raw string) (string, error) {
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "delivery date required")
	}
	for _, layout := range deliveryDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC().Format("2006-01-02"), nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("delivery date %q is not a valid calendar date", raw))
}

func requireOwnership(order *models.Order, actorID uuid.UUID, role enums.UserRole) error {
	if role == enums.UserRoleAdmin {
		return nil
	}
	if order.CustomerID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}
	return nil
}
