// Package read реализует HTTP-обработчик чтения выпуска со статьями.
package read

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newsletter-cms/internal/http/middlewarectx"
	"github.com/magabrotheeeer/newsletter-cms/internal/http/response"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter-cms/internal/models"
	content "github.com/magabrotheeeer/newsletter-cms/internal/services/content"
)

// Handler обрабатывает HTTP-запросы чтения выпуска по идентификатору.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения выпуска.
type Service interface {
	GetIssue(ctx context.Context, id int64, principal models.Principal) (*content.IssueDetails, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Чтение выпуска
// @Description Возвращает выпуск и его статьи. Подписчику доступны
// @Description только опубликованные выпуски и статьи.
// @Tags Issues
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID выпуска"
// @Success 200 {object} response.Response "Выпуск со статьями"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.ErrorResponse "Выпуск недоступен"
// @Failure 404 {object} response.ErrorResponse "Выпуск не найден"
// @Router /issues/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.issue.read"

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

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	details, err := h.service.GetIssue(r.Context(), id, principal)
	if err != nil {
		log.Error("failed to get issue", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.ErrorMessage(err)))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(details))
}
