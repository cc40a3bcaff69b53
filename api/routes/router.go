package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rgastelum/supplyline-backend/api/controllers"
	"github.com/rgastelum/supplyline-backend/api/middleware"
	internalauth "github.com/rgastelum/supplyline-backend/internal/auth"
	"github.com/rgastelum/supplyline-backend/internal/catalog"
	"github.com/rgastelum/supplyline-backend/internal/invoices"
	"github.com/rgastelum/supplyline-backend/internal/orders"
	"github.com/rgastelum/supplyline-backend/internal/receiving"
	pkgauth "github.com/rgastelum/supplyline-backend/pkg/auth"
	"github.com/rgastelum/supplyline-backend/pkg/config"
	"github.com/rgastelum/supplyline-backend/pkg/db"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
	"github.com/rgastelum/supplyline-backend/pkg/logger"
	"github.com/rgastelum/supplyline-backend/pkg/metrics"
	"github.com/rgastelum/supplyline-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	TokenIssuer *pkgauth.TokenIssuer
	HTTPMetrics *metrics.HTTPMetrics

	AuthService      internalauth.Service
	CatalogService   catalog.Service
	OrdersService    orders.Service
	ReceivingService receiving.Service
	InvoicesService  invoices.Service
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	logg := deps.Logger

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, deps.Redis, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(deps.TokenIssuer, logg),
			middleware.Idempotency(deps.Redis, logg),
		)

		admin := middleware.RequireRole(enums.UserRoleAdmin.String(), logg)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.CatalogService, logg))
			r.Get("/{productId}", controllers.GetProduct(deps.CatalogService, logg))
			r.With(admin).Post("/", controllers.CreateProduct(deps.CatalogService, logg))
			r.With(admin).Patch("/{productId}", controllers.UpdateProduct(deps.CatalogService, logg))
			r.With(admin).Get("/{productId}/stock-movements", controllers.ListStockMovements(deps.CatalogService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(deps.OrdersService, logg))
			r.Get("/", controllers.ListOrders(deps.OrdersService, logg))
			r.With(admin).Get("/pending/changes", controllers.ListPendingOrderChanges(deps.OrdersService, logg))

			r.Route("/items/{itemId}", func(r chi.Router) {
				r.Patch("/", controllers.UpdateOrderItem(deps.OrdersService, logg))
				r.Delete("/", controllers.RemoveOrderItem(deps.OrdersService, logg))
				r.With(admin).Patch("/status", controllers.UpdateOrderItemPicking(deps.OrdersService, logg))
			})

			r.Get("/{orderId}", controllers.GetOrder(deps.OrdersService, logg))
			r.Post("/{orderId}/items", controllers.AddOrderItem(deps.OrdersService, logg))
			r.Get("/{orderId}/change-logs", controllers.ListOrderChangeLogs(deps.OrdersService, logg))
			r.With(admin).Patch("/{orderId}/status", controllers.TransitionOrder(deps.OrdersService, logg))
			r.With(admin).Patch("/{orderId}/trip", controllers.UpdateOrderTrip(deps.OrdersService, logg))
			r.With(admin).Patch("/{orderId}/review", controllers.AcknowledgeOrderReview(deps.OrdersService, logg))
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Use(admin)
			r.Get("/", controllers.ListSuppliers(deps.ReceivingService, logg))
			r.Post("/", controllers.CreateSupplier(deps.ReceivingService, logg))
		})

		r.Route("/receiving-batches", func(r chi.Router) {
			r.Use(admin)
			r.Get("/", controllers.ListReceivingBatches(deps.ReceivingService, logg))
			r.Post("/", controllers.CreateReceivingBatch(deps.ReceivingService, logg))
			r.Get("/{batchId}", controllers.GetReceivingBatch(deps.ReceivingService, logg))
		})

		r.Route("/supplier-invoices", func(r chi.Router) {
			r.Use(admin)
			r.Get("/", controllers.ListInvoices(deps.InvoicesService, logg))
			r.Post("/import", controllers.ImportInvoice(deps.InvoicesService, deps.Config.Invoices.MaxUploadMB, logg))
			r.Get("/{invoiceId}", controllers.GetInvoice(deps.InvoicesService, logg))
			r.Post("/{invoiceId}/confirm", controllers.ConfirmInvoice(deps.InvoicesService, logg))
			r.Patch("/{invoiceId}/items/{itemId}", controllers.UpdateInvoiceItem(deps.InvoicesService, logg))
		})
	})

	return r
}
