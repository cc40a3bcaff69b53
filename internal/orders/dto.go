package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/pkg/db/models"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

// NewOrderItemInput is one requested product line.
type NewOrderItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// CreateOrderInput captures a new order request.
type CreateOrderInput struct {
	CustomerID uuid.UUID
	ActorID    uuid.UUID
	ActorRole  enums.UserRole
	Delivery   string
	Items      []NewOrderItemInput
}

// CreateOrderResult reports what happened to the request: a fresh order or a
// merge into an existing open one.
type CreateOrderResult struct {
	Order  *models.Order
	Merged bool
}

// AddItemInput appends one line to an existing order.
type AddItemInput struct {
	OrderID   uuid.UUID
	ActorID   uuid.UUID
	ActorRole enums.UserRole
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// AddItemResult carries the touched order. When the target order was locked
// the line is redirected into a fresh follow-up order and RedirectedOrderID
// is set.
type AddItemResult struct {
	Order             *models.Order
	RedirectedOrderID *uuid.UUID
}

// UpdateItemInput mutates one order line. Nil means unchanged.
type UpdateItemInput struct {
	ItemID     uuid.UUID
	ActorID    uuid.UUID
	ActorRole  enums.UserRole
	QtyOrdered *decimal.Decimal
	QtyPicked  *decimal.Decimal
}

// RemoveItemInput deletes one order line.
type RemoveItemInput struct {
	ItemID    uuid.UUID
	ActorID   uuid.UUID
	ActorRole enums.UserRole
}

// PickingInput flips the warehouse flags on one order line.
type PickingInput struct {
	ItemID     uuid.UUID
	Picked     *bool
	OutOfStock *bool
}

// TransitionInput moves an order to a new lifecycle status.
type TransitionInput struct {
	OrderID    uuid.UUID
	ActorID    uuid.UUID
	ActorRole  enums.UserRole
	Status     enums.OrderStatus
	TripNumber *string
}

// OrderFilters narrows order listings.
type OrderFilters struct {
	CustomerID   *uuid.UUID
	DeliveryDate *string
	Status       *enums.OrderStatus
}

// PendingOrderChanges is one entry in the pending-review listing: the order,
// how many changes have accumulated and the log rows behind them.
type PendingOrderChanges struct {
	Order       models.Order            `json:"order"`
	ChangeCount int                     `json:"changeCount"`
	Logs        []models.OrderChangeLog `json:"changeLogs"`
}

// InsufficientItem names one line that blocks a fulfillment transition.
type InsufficientItem struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Requested   decimal.Decimal `json:"requested"`
	Available   decimal.Decimal `json:"available"`
}

// changeDetail shapes the jsonb payload on change log rows. Single-line
// events fill the flat fields; create/merge events carry every appended line
// in Items.
type changeDetail struct {
	ProductID   *uuid.UUID   `json:"productId,omitempty"`
	ProductName string       `json:"productName,omitempty"`
	Field       string       `json:"field,omitempty"`
	From        string       `json:"from,omitempty"`
	To          string       `json:"to,omitempty"`
	Quantity    string       `json:"quantity,omitempty"`
	Items       []changeLine `json:"items,omitempty"`
	SourceOrder *uuid.UUID   `json:"sourceOrderId,omitempty"`
	Actor       uuid.UUID    `json:"actorId"`
	ActorRole   string       `json:"actorRole"`
}

type changeLine struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    string    `json:"quantity"`
}

func changeLines(items []models.OrderItem) []changeLine {
	lines := make([]changeLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, changeLine{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.QtyOrdered.String(),
		})
	}
	return lines
}
