// Package preview реализует публичный HTTP-обработчик витрины:
// опубликованные статьи и выпуски плюс тройка лучших по рейтингу.
// Токен не требуется, полный текст статей не отдаётся.
package preview

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newsletter-cms/internal/http/response"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/roles"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter-cms/internal/models"
)

// topCount размер рейтинга на витрине.
const topCount = 3

// Handler обрабатывает HTTP-запросы публичной витрины.
type Handler struct {
	log      *slog.Logger
	content  ContentService
	feedback FeedbackService
}

// ContentService описывает интерфейс бизнес-логики для витрины контента.
type ContentService interface {
	ListArticles(ctx context.Context, principal models.Principal, status string) ([]*models.Article, error)
	ListIssues(ctx context.Context, principal models.Principal, status string) ([]*models.Issue, error)
}

// FeedbackService описывает интерфейс рейтинга для витрины.
type FeedbackService interface {
	TopRated(ctx context.Context, limit int) ([]*models.RatedArticle, error)
}

// New создает новый Handler с переданным логгером и сервисами.
func New(log *slog.Logger, content ContentService, feedback FeedbackService) *Handler {
	return &Handler{
		log:      log,
		content:  content,
		feedback: feedback,
	}
}

// ServeHTTP godoc
// @Summary Публичная витрина
// @Description Опубликованные статьи без полного текста, опубликованные
// @Description выпуски и тройка лучших статей по рейтингу
// @Tags Public
// @Produce  json
// @Success 200 {object} response.Response "Витрина"
// @Router /preview [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.public.preview"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	// Анонимный посетитель видит ровно то же, что подписчик в списках.
	anonymous := models.Principal{Role: roles.Subscriber}

	articles, err := h.content.ListArticles(r.Context(), anonymous, "")
	if err != nil {
		log.Error("failed to list published articles", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.ErrorMessage(err)))
		return
	}
	for _, a := range articles {
		a.Content = ""
	}

	issues, err := h.content.ListIssues(r.Context(), anonymous, "")
	if err != nil {
		log.Error("failed to list published issues", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.ErrorMessage(err)))
		return
	}

	top, err := h.feedback.TopRated(r.Context(), topCount)
	if err != nil {
		log.Error("failed to get top rated articles", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.ErrorMessage(err)))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"articles":  articles,
		"issues":    issues,
		"top_rated": top,
	}))
}
