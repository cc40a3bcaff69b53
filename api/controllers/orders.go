package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/api/responses"
	"github.com/rgastelum/supplyline-backend/api/validators"
	internalorders "github.com/rgastelum/supplyline-backend/internal/orders"
	"github.com/rgastelum/supplyline-backend/pkg/db/models"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
	pkgerrors "github.com/rgastelum/supplyline-backend/pkg/errors"
	"github.com/rgastelum/supplyline-backend/pkg/logger"
)

type orderItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  string `json:"quantity" validate:"required"`
}

type createOrderRequest struct {
	CustomerID   string             `json:"customerId,omitempty" validate:"omitempty,uuid"`
	DeliveryDate string             `json:"deliveryDate" validate:"required"`
	Items        []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type createOrderResponse struct {
	Order  *models.Order `json:"order"`
	Merged bool          `json:"merged"`
}

type addItemResponse struct {
	Order             *models.Order `json:"order"`
	RedirectedOrderID *uuid.UUID    `json:"redirectedOrderId,omitempty"`
}

type updateItemRequest struct {
	QtyOrdered *string `json:"qtyOrdered,omitempty"`
	QtyPicked  *string `json:"qtyPicked,omitempty"`
}

type pickingRequest struct {
	Picked     *bool `json:"picked,omitempty"`
	OutOfStock *bool `json:"outOfStock,omitempty"`
}

type tripRequest struct {
	TripNumber *string `json:"tripNumber"`
}

type transitionRequest struct {
	Status     string  `json:"status" validate:"required"`
	TripNumber *string `json:"tripNumber,omitempty"`
}

func CreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID := act.ID
		if req.CustomerID != "" {
			parsed, parseErr := uuid.Parse(req.CustomerID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid customerId"))
				return
			}
			customerID = parsed
		}

		items, err := parseItemInputs(req.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), internalorders.CreateOrderInput{
			CustomerID: customerID,
			ActorID:    act.ID,
			ActorRole:  act.Role,
			Delivery:   req.DeliveryDate,
			Items:      items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.Merged {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, createOrderResponse{Order: result.Order, Merged: result.Merged})
	}
}

func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := internalorders.OrderFilters{}
		if raw := strings.TrimSpace(r.URL.Query().Get("deliveryDate")); raw != "" {
			filters.DeliveryDate = &raw
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseOrderStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("customerId")); raw != "" {
			customerID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid customerId"))
				return
			}
			filters.CustomerID = &customerID
		}

		orders, err := svc.List(r.Context(), filters, act.ID, act.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

func GetOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.UUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), orderID, act.ID, act.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func AddOrderItem(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.UUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req orderItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := parseItemInputs([]orderItemRequest{req})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AddItem(r.Context(), internalorders.AddItemInput{
			OrderID:   orderID,
			ActorID:   act.ID,
			ActorRole: act.Role,
			ProductID: items[0].ProductID,
			Quantity:  items[0].Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if result.RedirectedOrderID != nil {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, addItemResponse{
			Order:             result.Order,
			RedirectedOrderID: result.RedirectedOrderID,
		})
	}
}

func UpdateOrderItem(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.UUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.UpdateItemInput{
			ItemID:    itemID,
			ActorID:   act.ID,
			ActorRole: act.Role,
		}
		if req.QtyOrdered != nil {
			qty, parseErr := decimal.NewFromString(*req.QtyOrdered)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "qtyOrdered must be a decimal string"))
				return
			}
			input.QtyOrdered = &qty
		}
		if req.QtyPicked != nil {
			qty, parseErr := decimal.NewFromString(*req.QtyPicked)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "qtyPicked must be a decimal string"))
				return
			}
			input.QtyPicked = &qty
		}

		order, err := svc.UpdateItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func RemoveOrderItem(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.UUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.RemoveItem(r.Context(), internalorders.RemoveItemInput{
			ItemID:    itemID,
			ActorID:   act.ID,
			ActorRole: act.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func UpdateOrderItemPicking(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := validators.UUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req pickingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItemPicking(r.Context(), internalorders.PickingInput{
			ItemID:     itemID,
			Picked:     req.Picked,
			OutOfStock: req.OutOfStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func TransitionOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.UUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req transitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.Transition(r.Context(), internalorders.TransitionInput{
			OrderID:    orderID,
			ActorID:    act.ID,
			ActorRole:  act.Role,
			Status:     status,
			TripNumber: req.TripNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func UpdateOrderTrip(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.UUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req tripRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateTrip(r.Context(), orderID, req.TripNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func ListPendingOrderChanges(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, err := svc.ListPendingChanges(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pending)
	}
}

func AcknowledgeOrderReview(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.UUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.AcknowledgeReview(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func ListOrderChangeLogs(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.UUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logs, err := svc.ListChangeLogs(r.Context(), orderID, act.ID, act.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, logs)
	}
}

func parseItemInputs(items []orderItemRequest) ([]internalorders.NewOrderItemInput, error) {
	parsed := make([]internalorders.NewOrderItemInput, 0, len(items))
	for _, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid productId")
		}
		qty, err := decimal.NewFromString(item.Quantity)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a decimal string")
		}
		parsed = append(parsed, internalorders.NewOrderItemInput{ProductID: productID, Quantity: qty})
	}
	return parsed, nil
}
