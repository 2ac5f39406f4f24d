// Package dashboard реализует HTTP-обработчик сводки
// административной панели.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newsletter-cms/internal/http/response"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/sl"
	stats "github.com/magabrotheeeer/newsletter-cms/internal/services/stats"
)

// Handler обрабатывает HTTP-запросы сводки панели.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики сводки панели.
type Service interface {
	Dashboard(ctx context.Context) (*stats.DashboardStats, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сводка административной панели
// @Description Счетчики пользователей по ролям, статей и выпусков по
// @Description статусам, статистика отзывов и свежие записи
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Сводка"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /admin/dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.dashboard"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	summary, err := h.service.Dashboard(r.Context())
	if err != nil {
		log.Error("failed to collect dashboard stats", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.ErrorMessage(err)))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(summary))
}
