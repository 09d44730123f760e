// Package cmd wires the application together: configuration, logging,
// upstream clients, the session store, application services and the HTTP
// server.
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"storefront/api"
	apicatalog "storefront/api/catalog"
	apicheckout "storefront/api/checkout"
	"storefront/api/health"
	catalogapp "storefront/application/catalog"
	checkoutapp "storefront/application/checkout"
	"storefront/config"
	"storefront/domain/checkout"
	"storefront/domain/shared"
	"storefront/infrastructure/events"
	"storefront/infrastructure/memory"
	"storefront/infrastructure/upstream"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
)

// App is the assembled application.
type App struct {
	cfg       *config.Config
	server    *http.Server
	publisher shared.EventPublisher
}

// NewApp assembles the application from configuration.
func NewApp(cfg *config.Config) (*App, error) {
	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	// Upstream clients. All durable state lives behind these.
	sessionClient := upstream.NewSessionClient(cfg.Upstream.Session)
	catalogClient := upstream.NewCatalogClient(cfg.Upstream.Catalog, cfg.Checkout.Currency)
	orderClient := upstream.NewOrderClient(cfg.Upstream.Orders)

	var publisher shared.EventPublisher
	if len(cfg.Events.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)
		logger.Info("event publishing to kafka",
			zap.Strings("brokers", cfg.Events.Brokers),
			zap.String("topic", cfg.Events.Topic))
	} else {
		publisher = events.NewLogPublisher()
	}

	serverMetrics := metrics.NewServerMetrics(nil)
	checkoutMetrics := metrics.NewCheckoutMetrics(nil)

	pricing := checkout.Pricing{
		FreeShippingThreshold: *shared.NewMoney(cfg.Checkout.FreeShippingThreshold, cfg.Checkout.Currency),
		ShippingFee:           *shared.NewMoney(cfg.Checkout.ShippingFee, cfg.Checkout.Currency),
		TaxRatePercent:        cfg.Checkout.TaxRatePercent,
	}

	checkoutService := checkoutapp.NewApplicationService(
		memory.NewCheckoutStore(),
		catalogClient,
		sessionClient,
		orderClient,
		publisher,
		checkoutMetrics,
		pricing,
		cfg.Checkout.ConfirmationTTL,
	)
	catalogService := catalogapp.NewApplicationService(catalogClient)

	healthController := health.NewController(cfg, map[string]health.Pinger{
		"session": sessionClient,
		"catalog": catalogClient,
		"orders":  orderClient,
	})
	checkoutController := apicheckout.NewController(checkoutService)
	catalogController := apicatalog.NewController(catalogService)

	router := api.NewRouter(cfg, serverMetrics, healthController, checkoutController, catalogController)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &App{
		cfg:       cfg,
		server:    server,
		publisher: publisher,
	}, nil
}

// Run starts the HTTP server and blocks until shutdown completes.
func (a *App) Run() error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", a.server.Addr),
			zap.String("env", a.cfg.App.Env))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownTimeout := a.cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	if closer, ok := a.publisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("closing event publisher", zap.Error(err))
		}
	}

	logger.Info("server stopped")
	logger.Sync()
	return nil
}
