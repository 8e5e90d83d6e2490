// Package benefitledger собирает основное приложение: хранилище, кеш,
// очередь событий, сервисы и HTTP-сервер.
package benefitledger

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/benefit-ledger/internal/cache"
	"github.com/magabrotheeeer/benefit-ledger/internal/config"
	"github.com/magabrotheeeer/benefit-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-ledger/internal/migrations"
	"github.com/magabrotheeeer/benefit-ledger/internal/paymentprovider"
	"github.com/magabrotheeeer/benefit-ledger/internal/rabbitmq"
	catalogservice "github.com/magabrotheeeer/benefit-ledger/internal/services/catalog"
	checkoutservice "github.com/magabrotheeeer/benefit-ledger/internal/services/checkout"
	entitlementservice "github.com/magabrotheeeer/benefit-ledger/internal/services/entitlement"
	"github.com/magabrotheeeer/benefit-ledger/internal/storage"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	migrationsPath := cfg.MigrationsPath
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err = migrations.Run(db.DB, migrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// Конвейер уведомлений не обязателен: без RabbitMQ сервис просто
	// не публикует события о покупках.
	var events entitlementservice.EventsPublisher
	if cfg.RabbitConnectionString != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitConnectionString, 5, 3*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetBenefitQueues())
		if err != nil {
			return nil, err
		}
		events = rabbitmq.NewPurchasePublisher(ch)
	} else {
		logger.Warn("rabbit connection is not configured, purchase events disabled")
	}

	providerClient := paymentprovider.NewClient(cfg.PaymentProvider)

	entitlementSvc := entitlementservice.New(db, events, logger)
	catalogSvc := catalogservice.NewCatalogService(db, cacheRedis, logger)
	checkoutSvc := checkoutservice.New(db, providerClient, checkoutservice.URLConfig{
		SuccessURL:      cfg.SuccessURL,
		CancelURL:       cfg.CancelURL,
		PortalReturnURL: cfg.PortalReturnURL,
	}, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, entitlementSvc, catalogSvc, checkoutSvc, cfg.WebhookSecret)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close storage", sl.Err(closeErr))
		}
		return err
	}
}
