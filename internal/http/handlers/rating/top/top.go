// Package top реализует HTTP-обработчик рейтинга лучших статей.
package top

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newsletter-cms/internal/http/response"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter-cms/internal/models"
)

// Handler обрабатывает HTTP-запросы рейтинга статей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики рейтинга статей.
type Service interface {
	TopRated(ctx context.Context, limit int) ([]*models.RatedArticle, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Лучшие статьи по рейтингу
// @Description Опубликованные статьи хотя бы с одним отзывом,
// @Description упорядоченные по среднему рейтингу. Лимит по умолчанию 10.
// @Tags Feedback
// @Produce  json
// @Security BearerAuth
// @Param limit query int false "Размер выборки"
// @Success 200 {object} response.Response "Рейтинг статей"
// @Failure 401 {object} response.ErrorResponse "Токен отсутствует или невалиден"
// @Router /articles/top [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rating.top"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	articles, err := h.service.TopRated(r.Context(), limit)
	if err != nil {
		log.Error("failed to get top rated articles", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.ErrorMessage(err)))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"articles": articles,
		"count":    len(articles),
	}))
}
