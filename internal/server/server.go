// Package server owns the process lifecycle: configuration, external
// connections, dependency wiring, and the listen/serve loop with
// graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eshop/app/controllers"
	"eshop/app/repositories"
	"eshop/app/routes"
	"eshop/app/services"
	"eshop/config"
	"eshop/pkg/cache"
	"eshop/pkg/database"
	"eshop/pkg/logger"
	"eshop/pkg/metrics"
	"eshop/pkg/middleware"
	"eshop/pkg/reqid"
	"eshop/pkg/router"
	"eshop/pkg/workerpool"
)

// orderPoolSize bounds the concurrency of the order-creation fan-out
// across all in-flight requests.
const orderPoolSize = 16

// Start brings the service up and blocks until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	// The signing secret is loaded once at startup and immutable
	// thereafter. Without it every issued token would be forgeable.
	if config.JWTSecret() == "" {
		return errors.New("server: JWT_SECRET is required")
	}

	if err := database.Connect(); err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = database.Disconnect(ctx)
	}()

	// Redis is best-effort: product reads fall back to Mongo.
	if err := cache.Connect(context.Background()); err != nil {
		logger.Warn("redis unavailable, product cache disabled", "error", err)
	}
	defer cache.Close() //nolint:errcheck

	var mongoSink *logger.MongoHandler
	if config.LogToMongo() {
		mongoSink = logger.NewMongoHandler(database.Collection("logs"))
		logger.SetHandler(logger.NewMultiHandler(logger.Handler(), mongoSink))
		defer mongoSink.Close()
	}

	pool := workerpool.New(orderPoolSize)
	defer pool.Shutdown()

	handler := buildHandler(pool)

	addr := ":" + config.AppPort()
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// buildHandler wires repositories, services, and controllers into the
// router behind the global middleware stack.
func buildHandler(pool *workerpool.Pool) http.Handler {
	db := database.DB()

	productRepo := repositories.NewProductRepository(db)
	itemRepo := repositories.NewItemRepository(db, productRepo)
	orderRepo := repositories.NewOrderRepository(db)
	userRepo := repositories.NewUserRepository(db)

	orderService := services.NewOrderService(orderRepo, itemRepo, pool)
	userService := services.NewUserService(userRepo)

	r := NewRouter(
		controllers.NewOrderController(orderService),
		controllers.NewUserController(userService),
	)
	return r.Handler()
}

// NewRouter builds the routing table with the global middleware stack
// (outermost first): metrics, recovery, request ID, logger, CORS, rate
// limit. Shared with the CLI's route:list command.
func NewRouter(orders *controllers.OrderController, users *controllers.UserController) *router.Router {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))

	r.HandleFunc("/metrics", metrics.Handler())

	routes.RegisterAPI(r, orders, users)
	return r
}
