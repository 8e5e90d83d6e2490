// Package benefitledger предоставляет маршруты для основного приложения.
package benefitledger

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/benefit-ledger/internal/http/handlers/billing/checkoutcreate"
	"github.com/magabrotheeeer/benefit-ledger/internal/http/handlers/billing/portalcreate"
	"github.com/magabrotheeeer/benefit-ledger/internal/http/handlers/billing/webhook"
	"github.com/magabrotheeeer/benefit-ledger/internal/http/handlers/claims/getclaims"
	"github.com/magabrotheeeer/benefit-ledger/internal/http/handlers/claims/redeempoints"
	"github.com/magabrotheeeer/benefit-ledger/internal/http/handlers/claims/useclaim"
	"github.com/magabrotheeeer/benefit-ledger/internal/http/handlers/health"
	planlist "github.com/magabrotheeeer/benefit-ledger/internal/http/handlers/plans/list"
	"github.com/magabrotheeeer/benefit-ledger/internal/http/handlers/subscriber/register"
	"github.com/magabrotheeeer/benefit-ledger/internal/http/middlewarectx"
	catalogservice "github.com/magabrotheeeer/benefit-ledger/internal/services/catalog"
	checkoutservice "github.com/magabrotheeeer/benefit-ledger/internal/services/checkout"
	entitlementservice "github.com/magabrotheeeer/benefit-ledger/internal/services/entitlement"
)

// RegisterRoutes регистрирует все маршруты приложения. Пути эндпоинтов
// зафиксированы контрактом API внешнего приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	entitlementService *entitlementservice.Service,
	catalogService *catalogservice.CatalogService,
	checkoutService *checkoutservice.Service,
	webhookSecret string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Webhook провайдера (аутентификация — подписью тела)
	r.Post("/webhook", webhook.New(logger, entitlementService, webhookSecret).ServeHTTP)

	// Сессии провайдера и каталог
	r.Post("/create-checkout-session", checkoutcreate.New(logger, checkoutService).ServeHTTP)
	r.Post("/create-customer-portal", portalcreate.New(logger, checkoutService).ServeHTTP)
	r.Get("/plans", planlist.New(logger, catalogService).ServeHTTP)
	r.Post("/register", register.New(logger, entitlementService).ServeHTTP)

	// Требования и баллы
	r.Get("/getClaims", getclaims.New(logger, entitlementService).ServeHTTP)
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Post("/useClaim", useclaim.New(logger, entitlementService).ServeHTTP)
		r.Post("/redeemPoints", redeempoints.New(logger, entitlementService).ServeHTTP)
	})

	r.Get("/health", health.New())
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
