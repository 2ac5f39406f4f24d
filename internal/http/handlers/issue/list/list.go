// Package list реализует HTTP-обработчик списка выпусков с учётом
// видимости по роли принципала.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newsletter-cms/internal/http/middlewarectx"
	"github.com/magabrotheeeer/newsletter-cms/internal/http/response"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter-cms/internal/models"
)

// Handler обрабатывает HTTP-запросы списка выпусков.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка выпусков.
type Service interface {
	ListIssues(ctx context.Context, principal models.Principal, status string) ([]*models.Issue, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список выпусков
// @Description Подписчик видит только опубликованные выпуски; редакция
// @Description видит всё и может фильтровать по ?status=
// @Tags Issues
// @Produce  json
// @Security BearerAuth
// @Param status query string false "Фильтр по статусу (только для редакции)"
// @Success 200 {object} response.Response "Список выпусков"
// @Failure 401 {object} response.ErrorResponse "Токен отсутствует или невалиден"
// @Router /issues [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.issue.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, ok := middlewarectx.PrincipalFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	issues, err := h.service.ListIssues(r.Context(), principal, r.URL.Query().Get("status"))
	if err != nil {
		log.Error("failed to list issues", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.ErrorMessage(err)))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"issues": issues,
		"count":  len(issues),
	}))
}
