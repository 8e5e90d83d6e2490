// Package portalcreate реализует HTTP-обработчик создания сессии личного
// кабинета у платёжного провайдера.
package portalcreate

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

// Service описывает интерфейс бизнес-логики выпуска сессии кабинета.
type Service interface {
	CreatePortalSession(ctx context.Context, userID, planID string) (*paymentprovider.PortalSession, error)
}

// Handler обрабатывает запросы на создание сессии личного кабинета.
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
// @Summary Создать сессию личного кабинета
// @Description Создает сессию кабинета провайдера для управления подпиской. Возвращает url.
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body models.DummyPortalRequest true "Пользователь и план"
// @Success 200 {object} paymentprovider.PortalSession "Созданная сессия"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или нет клиента у провайдера"
// @Failure 404 {object} response.ErrorResponse "Подписчик не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /create-customer-portal [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.portalcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPortalRequest
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

	session, err := h.service.CreatePortalSession(r.Context(), req.UserID, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrInvalidArgument):
			log.Error("invalid arguments", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid arguments"))
		case errors.Is(err, checkout.ErrSubscriberNotFound):
			log.Error("subscriber not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscriber not found"))
		case errors.Is(err, checkout.ErrNoCustomerRef):
			log.Error("no customer reference", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("no customer reference"))
		default:
			log.Error("failed to create portal session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create portal session"))
		}
		return
	}

	log.Info("success to create portal session")
	render.JSON(w, r, session)
}
