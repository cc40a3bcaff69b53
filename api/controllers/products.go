package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/api/responses"
	"github.com/rgastelum/supplyline-backend/api/validators"
	"github.com/rgastelum/supplyline-backend/internal/catalog"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
	pkgerrors "github.com/rgastelum/supplyline-backend/pkg/errors"
	"github.com/rgastelum/supplyline-backend/pkg/logger"
)

type createProductRequest struct {
	Name     string   `json:"name" validate:"required"`
	Unit     string   `json:"unit" validate:"required,oneof=kg box bucket bag"`
	Category string   `json:"category" validate:"required,oneof=dry fresh frozen"`
	Price    string   `json:"price" validate:"required"`
	Aliases  []string `json:"aliases,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

type updateProductRequest struct {
	Name      *string  `json:"name,omitempty"`
	Price     *string  `json:"price,omitempty"`
	Available *bool    `json:"available,omitempty"`
	Aliases   []string `json:"aliases,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := catalog.ProductFilters{
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			category, err := enums.ParseProductCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			filters.Category = &category
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("available")); raw != "" {
			available := raw == "true"
			filters.Available = &available
		}

		products, err := svc.ListProducts(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.UUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(req.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal string"))
			return
		}
		unit, err := enums.ParseProductUnit(req.Unit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit"))
			return
		}
		category, err := enums.ParseProductCategory(req.Category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		product, err := svc.CreateProduct(r.Context(), catalog.CreateProductInput{
			Name:     req.Name,
			Unit:     unit,
			Category: category,
			Price:    price,
			Aliases:  req.Aliases,
			Notes:    req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.UUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.UpdateProductInput{
			Name:      req.Name,
			Available: req.Available,
			Aliases:   req.Aliases,
			Notes:     req.Notes,
		}
		if req.Price != nil {
			price, err := decimal.NewFromString(*req.Price)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal string"))
				return
			}
			input.Price = &price
		}

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ListStockMovements(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.UUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		movements, err := svc.ListStockMovements(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, movements)
	}
}
