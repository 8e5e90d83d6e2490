// Package getclaims реализует HTTP-обработчик агрегированного чтения
// требований текущего месяца и баланса баллов подписчика.
//
// Handler извлекает идентификатор подписчика из query-параметра, вызывает
// бизнес-логику и возвращает плоский список услуг по всем покупкам вместе
// с баллами. Операция только читает состояние.
package getclaims

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/benefit-ledger/internal/http/response"
	"github.com/magabrotheeeer/benefit-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-ledger/internal/models"
	"github.com/magabrotheeeer/benefit-ledger/internal/services/entitlement"
)

// Service описывает интерфейс бизнес-логики чтения требований.
type Service interface {
	GetClaimsAndPoints(ctx context.Context, subscriberID string) ([]models.ClaimStatus, int, error)
}

// Handler обрабатывает запросы на чтение требований подписчика.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики реестра требований
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить требования и баллы подписчика
// @Description Возвращает услуги текущего месяца по всем покупкам и баланс баллов.
// @Tags Claims
// @Produce json
// @Param patientId query string true "Идентификатор подписчика"
// @Success 200 {object} map[string]any "Список требований и баллы"
// @Failure 400 {object} response.ErrorResponse "Не передан идентификатор"
// @Failure 404 {object} response.ErrorResponse "Подписчик не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /getClaims [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.claims.getclaims"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	patientID := r.URL.Query().Get("patientId")
	if patientID == "" {
		log.Error("missing patientId query parameter")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing patientId"))
		return
	}

	claims, points, err := h.service.GetClaimsAndPoints(r.Context(), patientID)
	if err != nil {
		switch {
		case errors.Is(err, entitlement.ErrInvalidArgument):
			log.Error("invalid subscriber id", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("missing patientId"))
		case errors.Is(err, entitlement.ErrSubscriberNotFound):
			log.Error("subscriber not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscriber not found"))
		default:
			log.Error("failed to read claims", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read claims"))
		}
		return
	}

	log.Info("success to read claims", slog.Int("count", len(claims)))
	render.JSON(w, r, map[string]any{
		"claims": claims,
		"points": points,
	})
}
