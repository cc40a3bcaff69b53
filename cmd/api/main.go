package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rgastelum/supplyline-backend/api/routes"
	internalauth "github.com/rgastelum/supplyline-backend/internal/auth"
	"github.com/rgastelum/supplyline-backend/internal/catalog"
	"github.com/rgastelum/supplyline-backend/internal/invoices"
	"github.com/rgastelum/supplyline-backend/internal/orders"
	"github.com/rgastelum/supplyline-backend/internal/receiving"
	"github.com/rgastelum/supplyline-backend/internal/users"
	pkgauth "github.com/rgastelum/supplyline-backend/pkg/auth"
	"github.com/rgastelum/supplyline-backend/pkg/config"
	"github.com/rgastelum/supplyline-backend/pkg/db"
	"github.com/rgastelum/supplyline-backend/pkg/logger"
	"github.com/rgastelum/supplyline-backend/pkg/metrics"
	"github.com/rgastelum/supplyline-backend/pkg/migrate"
	"github.com/rgastelum/supplyline-backend/pkg/redis"
	"github.com/rgastelum/supplyline-backend/pkg/security"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	issuer := pkgauth.NewTokenIssuer(cfg.JWT)
	hasher := security.NewPasswordHasher(cfg.Password)
	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	usersRepo := users.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	receivingRepo := receiving.NewRepository(dbClient.DB())
	invoicesRepo := invoices.NewRepository(dbClient.DB())

	authService, err := internalauth.NewService(usersRepo, hasher, issuer)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, catalogRepo, catalogService, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	receivingService, err := receiving.NewService(receivingRepo, catalogRepo, catalogService, dbClient, cfg.Receiving.BatchNumberPrefix)
	if err != nil {
		logg.Error(context.Background(), "failed to create receiving service", err)
		os.Exit(1)
	}

	invoicesService, err := invoices.NewService(invoicesRepo, catalogRepo, receiving.NewBatchCloser(receivingRepo), nil, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create invoices service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			TokenIssuer:      issuer,
			HTTPMetrics:      httpMetrics,
			AuthService:      authService,
			CatalogService:   catalogService,
			OrdersService:    ordersService,
			ReceivingService: receivingService,
			InvoicesService:  invoicesService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
