package controllers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/rgastelum/supplyline-backend/api/responses"
	"github.com/rgastelum/supplyline-backend/api/validators"
	"github.com/rgastelum/supplyline-backend/internal/invoices"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
	pkgerrors "github.com/rgastelum/supplyline-backend/pkg/errors"
	"github.com/rgastelum/supplyline-backend/pkg/logger"
)

type updateInvoiceItemRequest struct {
	ProductID   *string `json:"productId,omitempty" validate:"omitempty,uuid"`
	MatchStatus *string `json:"matchStatus,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// ImportInvoice accepts a multipart upload with an xlsx or csv "file" part
// plus supplier and period form fields.
func ImportInvoice(svc invoices.Service, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := int64(maxUploadMB) << 20
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(limit); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse upload"))
			return
		}

		supplierID, err := uuid.Parse(strings.TrimSpace(r.FormValue("supplierId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid supplierId"))
			return
		}

		input := invoices.ImportInput{SupplierID: supplierID}
		if raw := strings.TrimSpace(r.FormValue("invoiceNumber")); raw != "" {
			input.InvoiceNumber = &raw
		}
		if raw := strings.TrimSpace(r.FormValue("periodStart")); raw != "" {
			input.PeriodStart = &raw
		}
		if raw := strings.TrimSpace(r.FormValue("periodEnd")); raw != "" {
			input.PeriodEnd = &raw
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file part required"))
			return
		}
		defer file.Close()

		columns := invoices.DefaultColumnMap()
		var rows []invoices.InvoiceRow
		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".xlsx":
			rows, err = invoices.ParseXLSX(file, columns)
		case ".csv":
			rows, err = invoices.ParseCSV(file, columns)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "file must be .xlsx or .csv")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Rows = rows

		invoice, err := svc.Import(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

func ListInvoices(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := invoices.InvoiceFilters{}
		if raw := strings.TrimSpace(r.URL.Query().Get("supplierId")); raw != "" {
			supplierID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid supplierId"))
				return
			}
			filters.SupplierID = &supplierID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseInvoiceStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}

		list, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := validators.UUIDParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoice, err := svc.Get(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

func ConfirmInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := validators.UUIDParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoice, err := svc.Confirm(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

func UpdateInvoiceItem(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := validators.UUIDParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.UUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateInvoiceItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := invoices.UpdateItemInput{
			InvoiceID: invoiceID,
			ItemID:    itemID,
			Notes:     req.Notes,
		}
		if req.ProductID != nil {
			productID, parseErr := uuid.Parse(*req.ProductID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid productId"))
				return
			}
			input.ProductID = &productID
		}
		if req.MatchStatus != nil {
			status, parseErr := enums.ParseMatchStatus(*req.MatchStatus)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid matchStatus"))
				return
			}
			input.MatchStatus = &status
		}

		invoice, err := svc.UpdateItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}
