// Package list реализует HTTP-обработчик списка статей с учётом
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

// Handler обрабатывает HTTP-запросы списка статей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка статей.
type Service interface {
	ListArticles(ctx context.Context, principal models.Principal, status string) ([]*models.Article, error)
	ListArticlesByAuthor(ctx context.Context, authorID int64) ([]*models.Article, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список статей
// @Description Подписчик видит только опубликованные статьи опубликованных
// @Description выпусков; редактор и администратор видят всё и могут
// @Description фильтровать по ?status=
// @Tags Articles
// @Produce  json
// @Security BearerAuth
// @Param status query string false "Фильтр по статусу (только для редакции)"
// @Param author query string false "mine — только статьи текущего автора"
// @Success 200 {object} response.Response "Список статей"
// @Failure 401 {object} response.ErrorResponse "Токен отсутствует или невалиден"
// @Router /articles [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.list"

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

	var articles []*models.Article
	var err error
	if r.URL.Query().Get("author") == "mine" {
		articles, err = h.service.ListArticlesByAuthor(r.Context(), principal.ID)
	} else {
		articles, err = h.service.ListArticles(r.Context(), principal, r.URL.Query().Get("status"))
	}
	if err != nil {
		log.Error("failed to list articles", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.ErrorMessage(err)))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"articles": articles,
		"count":    len(articles),
	}))
}
