// Package useclaim реализует HTTP-обработчик списания одной единицы услуги.
//
// Handler принимает JSON-запрос с идентификатором подписчика и именем услуги,
// валидирует его и вызывает бизнес-логику, которая выполняет атомарный
// инкремент счётчика с проверкой месячного лимита.
package useclaim

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

// Service описывает интерфейс бизнес-логики списания услуги.
type Service interface {
	UseClaim(ctx context.Context, subscriberID, claimName string) error
}

// Handler обрабатывает запросы на списание одной единицы услуги.
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
// @Summary Списать одну единицу услуги
// @Description Находит покупку с услугой в текущем месяце и увеличивает счётчик использования.
// @Tags Claims
// @Accept json
// @Produce json
// @Param request body models.DummyUseClaimRequest true "Идентификатор подписчика и имя услуги"
// @Success 200 {object} response.Response "Успешное списание"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Лимит исчерпан"
// @Failure 404 {object} response.ErrorResponse "Услуга не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /useClaim [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.claims.useclaim"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyUseClaimRequest
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

	if err := h.service.UseClaim(r.Context(), req.PatientID, req.ClaimName); err != nil {
		switch {
		case errors.Is(err, entitlement.ErrInvalidArgument):
			log.Error("invalid arguments", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid arguments"))
		case errors.Is(err, entitlement.ErrClaimNotFound):
			log.Error("claim not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("claim not found"))
		case errors.Is(err, entitlement.ErrLimitExceeded):
			log.Error("claim limit exceeded", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("claim limit exceeded"))
		default:
			log.Error("failed to use claim", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not use claim"))
		}
		return
	}

	log.Info("success to use claim", slog.String("claim", req.ClaimName))
	render.JSON(w, r, response.OK())
}
