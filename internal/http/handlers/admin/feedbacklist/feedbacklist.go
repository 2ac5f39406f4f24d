// Package feedbacklist реализует HTTP-обработчик списка всех отзывов
// для администратора.
package feedbacklist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newsletter-cms/internal/http/response"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter-cms/internal/models"
)

// Handler обрабатывает HTTP-запросы списка отзывов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка отзывов.
type Service interface {
	AdminList(ctx context.Context) ([]*models.Feedback, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Все отзывы системы
// @Description Возвращает отзывы со статьями и именами авторов
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список отзывов"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /admin/feedback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.feedbacklist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	feedback, err := h.service.AdminList(r.Context())
	if err != nil {
		log.Error("failed to list feedback", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.ErrorMessage(err)))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"feedback": feedback,
		"count":    len(feedback),
	}))
}
