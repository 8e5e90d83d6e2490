// Package webhook реализует HTTP-обработчик входящих событий платёжного
// провайдера. Подпись проверяется по сырому телу запроса до любого разбора;
// после успешной проверки событие подтверждается всегда, даже если
// внутренняя обработка не удалась — иначе провайдер устраивает шторм
// повторных доставок.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/benefit-ledger/internal/http/response"
	"github.com/magabrotheeeer/benefit-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-ledger/internal/services/entitlement"
)

// Типы событий провайдера, которые меняют состояние реестра.
const (
	EventCheckoutCompleted  = "checkout.session.completed"
	EventSubscriptionUpdate = "customer.subscription.updated"
	EventSubscriptionDelete = "customer.subscription.deleted"
)

// Service описывает интерфейс бизнес-логики обработки событий.
type Service interface {
	HandleCheckoutCompleted(ctx context.Context, event entitlement.CheckoutCompletedEvent) error
	HandleSubscriptionUpdated(ctx context.Context, event entitlement.SubscriptionEvent) error
	HandleSubscriptionDeleted(ctx context.Context, event entitlement.SubscriptionEvent) error
}

// Handler управляет HTTP-запросами входящих событий провайдера.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string // Секрет для проверки подписи
}

// New создает новый Handler с переданными логгером, сервисом и секретом.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

// Event — конверт события провайдера: тип и непрозрачный payload.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type checkoutObject struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Metadata map[string]string `json:"metadata"`
}

type subscriptionObject struct {
	Customer          string `json:"customer"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}

// Проверка подписи webhook (X-Api-Signature): HMAC-SHA256 сырого тела,
// base64, сравнение без утечки по времени.
func (h *Handler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expectedSig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read body"))
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()

	signature := r.Header.Get("X-Api-Signature")
	if signature == "" || !h.verifySignature(body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	// После проверки подписи событие подтверждается в любом случае:
	// ошибки обработки логируются и не отдаются провайдеру.
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		render.JSON(w, r, map[string]bool{"received": true})
		return
	}

	switch event.Type {
	case EventCheckoutCompleted:
		var object checkoutObject
		if err := json.Unmarshal(event.Data.Object, &object); err != nil {
			log.Error("failed to unmarshal checkout object", sl.Err(err))
			break
		}
		err := h.service.HandleCheckoutCompleted(r.Context(), entitlement.CheckoutCompletedEvent{
			SessionID:   object.ID,
			UserID:      object.Metadata["userId"],
			PlanID:      object.Metadata["planId"],
			CustomerRef: object.Customer,
		})
		if err != nil {
			log.Error("failed to process checkout completion", sl.Err(err))
		}
	case EventSubscriptionUpdate:
		var object subscriptionObject
		if err := json.Unmarshal(event.Data.Object, &object); err != nil {
			log.Error("failed to unmarshal subscription object", sl.Err(err))
			break
		}
		err := h.service.HandleSubscriptionUpdated(r.Context(), entitlement.SubscriptionEvent{
			CustomerRef:       object.Customer,
			CancelAtPeriodEnd: object.CancelAtPeriodEnd,
		})
		if err != nil {
			log.Error("failed to process subscription update", sl.Err(err))
		}
	case EventSubscriptionDelete:
		var object subscriptionObject
		if err := json.Unmarshal(event.Data.Object, &object); err != nil {
			log.Error("failed to unmarshal subscription object", sl.Err(err))
			break
		}
		err := h.service.HandleSubscriptionDeleted(r.Context(), entitlement.SubscriptionEvent{
			CustomerRef: object.Customer,
		})
		if err != nil {
			log.Error("failed to process subscription deletion", sl.Err(err))
		}
	default:
		log.Info("ignored webhook event", slog.String("event", event.Type))
	}

	log.Info("webhook processed", slog.String("event", event.Type), slog.String("event_id", event.ID))
	render.JSON(w, r, map[string]bool{"received": true})
}
