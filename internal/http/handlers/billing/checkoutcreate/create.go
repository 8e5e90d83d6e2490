// Package checkoutcreate реализует HTTP-обработчик создания hosted
// checkout-сессии у платёжного провайдера.
package checkoutcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/benefit-ledger/internal/http/response"
	"github.com/magabrotheeeer/benefit-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-ledger/internal/models"
	"github.com/magabrotheeeer/benefit-ledger/internal/paymentprovider"
	"github.com/magabrotheeeer/benefit-ledger/internal/services/checkout"
)

// Service описывает интерфейс бизнес-логики выпуска checkout-сессии.
type Service interface {
	CreateCheckoutSession(ctx context.Context, planID, userID string) (*paymentprovider.CheckoutSession, error)
}

// Handler обрабатывает запросы на создание checkout-сессии.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать checkout-сессию
// @Description Создает hosted checkout-сессию для оплаты плана. Возвращает id и url сессии.
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body models.DummyCheckoutRequest true "Внешний идентификатор плана и пользователь"
// @Success 200 {object} paymentprovider.CheckoutSession "Созданная сессия"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или неизвестный план"
// @Failure 404 {object} response.ErrorResponse "Подписчик не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /create-checkout-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkoutcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	session, err := h.service.CreateCheckoutSession(r.Context(), req.PlanID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrInvalidArgument):
			log.Error("invalid arguments", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid arguments"))
		case errors.Is(err, checkout.ErrPlanNotFound):
			log.Error("plan not found", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid plan"))
		case errors.Is(err, checkout.ErrSubscriberNotFound):
			log.Error("subscriber not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscriber not found"))
		default:
			log.Error("failed to create checkout session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create checkout session"))
		}
		return
	}

	log.Info("success to create checkout session", slog.String("session_id", session.ID))
	render.JSON(w, r, session)
}
