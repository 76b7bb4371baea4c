package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/warehousepos-backend/api/routes"
	"github.com/angelmondragon/warehousepos-backend/internal/auth"
	"github.com/angelmondragon/warehousepos-backend/internal/basket"
	"github.com/angelmondragon/warehousepos-backend/internal/catalog"
	"github.com/angelmondragon/warehousepos-backend/internal/checkout"
	"github.com/angelmondragon/warehousepos-backend/internal/customers"
	"github.com/angelmondragon/warehousepos-backend/internal/orders"
	"github.com/angelmondragon/warehousepos-backend/internal/reports"
	"github.com/angelmondragon/warehousepos-backend/internal/users"
	"github.com/angelmondragon/warehousepos-backend/pkg/auth/session"
	"github.com/angelmondragon/warehousepos-backend/pkg/config"
	"github.com/angelmondragon/warehousepos-backend/pkg/db"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
	"github.com/angelmondragon/warehousepos-backend/pkg/metrics"
	"github.com/angelmondragon/warehousepos-backend/pkg/migrate"
	"github.com/angelmondragon/warehousepos-backend/pkg/redis"
	"github.com/angelmondragon/warehousepos-backend/pkg/security"
)

const shutdownTimeout = 15 * time.Second

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
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]any{"env": cfg.App.Env},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api stopped with error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	services, err := buildServices(ctx, cfg, logg, dbClient, redisClient, sessionManager, registry)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	logCtx := logg.WithFields(ctx, map[string]any{
		"addr":    addr,
		"dialect": dbClient.Dialect(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			registry,
			metrics.NewHTTPMetrics(registry),
			services,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(
	ctx context.Context,
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
	registry prometheus.Registerer,
) (routes.Services, error) {
	var out routes.Services
	hasher := security.NewHasher(cfg.Password)
	userRepo := users.NewRepository(dbClient.DB())

	usersService, err := users.NewService(users.ServiceParams{Repo: userRepo, Hasher: hasher, Logger: logg})
	if err != nil {
		return out, err
	}
	if cfg.Bootstrap.Enabled() {
		if _, err := usersService.EnsureBootstrapAdmin(ctx, cfg.Bootstrap); err != nil {
			return out, err
		}
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return out, err
	}

	customersService, err := customers.NewService(customers.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		return out, err
	}

	basketCache, err := basket.NewCache(redisClient, cfg.Basket.CacheTTL)
	if err != nil {
		return out, err
	}
	basketService, err := basket.NewService(basket.ServiceParams{
		Repo:    basket.NewRepository(dbClient.DB()),
		Cache:   basketCache,
		Catalog: catalogService,
		Logger:  logg,
	})
	if err != nil {
		return out, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		Baskets:        basketService,
		Hasher:         hasher,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		return out, err
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:      orders.NewRepository(dbClient.DB()),
		Tx:        dbClient,
		Catalog:   catalogService,
		Customers: customersService,
		Logger:    logg,
	})
	if err != nil {
		return out, err
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Locker:  redisClient,
		Basket:  basketService,
		Orders:  ordersService,
		Metrics: metrics.NewCheckoutMetrics(registry),
		Logger:  logg,
		LockTTL: cfg.Checkout.LockTTL,
	})
	if err != nil {
		return out, err
	}

	reportsService, err := reports.NewService(reports.NewRepository(dbClient.DB()))
	if err != nil {
		return out, err
	}

	return routes.Services{
		Auth:      authService,
		Users:     usersService,
		Catalog:   catalogService,
		Customers: customersService,
		Basket:    basketService,
		Checkout:  checkoutService,
		Orders:    ordersService,
		Reports:   reportsService,
	}, nil
}
