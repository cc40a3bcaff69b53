package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/api/responses"
	"github.com/rgastelum/supplyline-backend/api/validators"
	"github.com/rgastelum/supplyline-backend/internal/receiving"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
	pkgerrors "github.com/rgastelum/supplyline-backend/pkg/errors"
	"github.com/rgastelum/supplyline-backend/pkg/logger"
)

type batchItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  string `json:"quantity" validate:"required"`
}

type createBatchRequest struct {
	SupplierID   string             `json:"supplierId" validate:"required,uuid"`
	ReceivedDate string             `json:"receivedDate" validate:"required"`
	Notes        *string            `json:"notes,omitempty"`
	Items        []batchItemRequest `json:"items" validate:"required,min=1,dive"`
}

type createSupplierRequest struct {
	Name  string  `json:"name" validate:"required"`
	Phone *string `json:"phone,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

func CreateReceivingBatch(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBatchRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplierID, err := uuid.Parse(req.SupplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid supplierId"))
			return
		}

		items := make([]receiving.NewBatchItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			productID, parseErr := uuid.Parse(item.ProductID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid productId"))
				return
			}
			qty, parseErr := decimal.NewFromString(item.Quantity)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a decimal string"))
				return
			}
			items = append(items, receiving.NewBatchItemInput{ProductID: productID, Quantity: qty})
		}

		batch, err := svc.CreateBatch(r.Context(), receiving.CreateBatchInput{
			SupplierID:   supplierID,
			ReceivedDate: req.ReceivedDate,
			Notes:        req.Notes,
			Items:        items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, batch)
	}
}

func ListReceivingBatches(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := receiving.BatchFilters{}
		if raw := strings.TrimSpace(r.URL.Query().Get("supplierId")); raw != "" {
			supplierID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid supplierId"))
				return
			}
			filters.SupplierID = &supplierID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("receivedDate")); raw != "" {
			filters.ReceivedDate = &raw
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseBatchStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}

		batches, err := svc.ListBatches(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batches)
	}
}

func GetReceivingBatch(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batchID, err := validators.UUIDParam(r, "batchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		batch, err := svc.GetBatch(r.Context(), batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}

func CreateSupplier(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSupplierRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplier, err := svc.CreateSupplier(r.Context(), req.Name, req.Phone, req.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, supplier)
	}
}

func ListSuppliers(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		suppliers, err := svc.ListSuppliers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, suppliers)
	}
}
