// Package redeempoints реализует HTTP-обработчик списания баллов подписчика.
//
// Handler принимает JSON-запрос с идентификатором подписчика и количеством
// баллов, валидирует его и вызывает бизнес-логику, которая списывает баллы
// атомарно с проверкой баланса.
package redeempoints

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
	"github.com/magabrotheeeer/benefit-ledger/internal/services/entitlement"
)

// Service описывает интерфейс бизнес-логики списания баллов.
type Service interface {
	RedeemPoints(ctx context.Context, subscriberID string, amount int) (int, error)
}

// Handler обрабатывает запросы на списание баллов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики реестра требований
	validate *validator.Validate // Валидатор структуры входящих данных
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
// @Summary Списать баллы подписчика
// @Description Списывает указанное количество баллов; баланс не может стать отрицательным.
// @Tags Claims
// @Accept json
// @Produce json
// @Param request body models.DummyRedeemRequest true "Идентификатор подписчика и количество баллов"
// @Success 200 {object} map[string]any "Остаток баллов"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или недостаточно баллов"
// @Failure 404 {object} response.ErrorResponse "Подписчик не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /redeemPoints [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.claims.redeempoints"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyRedeemRequest
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

	points, err := h.service.RedeemPoints(r.Context(), req.PatientID, req.PointsToRedeem)
	if err != nil {
		switch {
		case errors.Is(err, entitlement.ErrInvalidArgument):
			log.Error("invalid arguments", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid arguments"))
		case errors.Is(err, entitlement.ErrSubscriberNotFound):
			log.Error("subscriber not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscriber not found"))
		case errors.Is(err, entitlement.ErrInsufficientBalance):
			log.Error("insufficient balance", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("insufficient balance"))
		default:
			log.Error("failed to redeem points", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not redeem points"))
		}
		return
	}

	log.Info("success to redeem points", slog.Int("remaining", points))
	render.JSON(w, r, map[string]any{
		"points": points,
	})
}
