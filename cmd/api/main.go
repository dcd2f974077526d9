package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/homegoods-vn/homegoods-backend/api/routes"
	"github.com/homegoods-vn/homegoods-backend/internal/auth"
	"github.com/homegoods-vn/homegoods-backend/internal/cart"
	"github.com/homegoods-vn/homegoods-backend/internal/lockout"
	"github.com/homegoods-vn/homegoods-backend/internal/orders"
	"github.com/homegoods-vn/homegoods-backend/internal/products"
	"github.com/homegoods-vn/homegoods-backend/internal/promotions"
	"github.com/homegoods-vn/homegoods-backend/internal/users"
	"github.com/homegoods-vn/homegoods-backend/pkg/auth/legacy"
	"github.com/homegoods-vn/homegoods-backend/pkg/auth/session"
	"github.com/homegoods-vn/homegoods-backend/pkg/cache"
	"github.com/homegoods-vn/homegoods-backend/pkg/config"
	"github.com/homegoods-vn/homegoods-backend/pkg/db"
	"github.com/homegoods-vn/homegoods-backend/pkg/logger"
	"github.com/homegoods-vn/homegoods-backend/pkg/metrics"
	"github.com/homegoods-vn/homegoods-backend/pkg/migrate"
	"github.com/homegoods-vn/homegoods-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	legacyCodec, err := legacy.NewCodec(cfg.Session.Secret, cfg.Session.TTL())
	if err != nil {
		logg.Error(context.Background(), "failed to create legacy session codec", err)
		os.Exit(1)
	}

	tracker, err := lockout.NewTracker(redisClient, cfg.Lockout)
	if err != nil {
		logg.Error(context.Background(), "failed to create lockout tracker", err)
		os.Exit(1)
	}

	cacheStore, err := cache.NewStore(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cache store", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	catalogRepo := products.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	promoRepo := promotions.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)

	userService, err := users.NewService(users.ServiceParams{Repo: userRepo, Tx: dbClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	catalogService, err := products.NewService(products.ServiceParams{
		Repo:   catalogRepo,
		Cache:  cacheStore,
		Config: cfg.Cache,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartRepo, catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	promoService, err := promotions.NewService(promoRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create promotion service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:       orderRepo,
		Carts:      cartRepo,
		Promotions: promoRepo,
		Tx:         dbClient,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Users:    userRepo,
		Tracker:  tracker,
		Sessions: sessionManager,
		Codec:    legacyCodec,
		Config:   cfg,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

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
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Sessions:     sessionManager,
			LegacyCodec:  legacyCodec,
			HTTPMetrics:  httpMetrics,
			AuthService:  authService,
			UserService:  userService,
			Catalog:      catalogService,
			CartService:  cartService,
			OrderService: orderService,
			Promotions:   promoService,
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
