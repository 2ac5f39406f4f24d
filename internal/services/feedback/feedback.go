// Package services содержит бизнес-логику отзывов и рейтингов статей.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/newsletter-cms/internal/apperror"
	"github.com/magabrotheeeer/newsletter-cms/internal/models"
	"github.com/magabrotheeeer/newsletter-cms/internal/storage/repository"
)

// defaultTopLimit размер выборки топа статей по умолчанию.
const defaultTopLimit = 10

// FeedbackRepository описывает методы хранилища для отзывов.
type FeedbackRepository interface {
	UpsertFeedback(ctx context.Context, f models.Feedback) (int64, error)
	GetFeedbackByUserAndArticle(ctx context.Context, userID, articleID int64) (*models.Feedback, error)
	ListAllFeedback(ctx context.Context) ([]*models.Feedback, error)
	RemoveFeedback(ctx context.Context, id int64) (int, error)
	TopRatedArticles(ctx context.Context, limit int) ([]*models.RatedArticle, error)
}

// ArticleReader проверяет существование статьи перед приёмом отзыва.
type ArticleReader interface {
	GetArticle(ctx context.Context, id int64) (*models.Article, error)
}

// FeedbackService реализует операции над отзывами.
type FeedbackService struct {
	repo     FeedbackRepository
	articles ArticleReader
	log      *slog.Logger
}

// NewFeedbackService создает новый экземпляр FeedbackService.
func NewFeedbackService(repo FeedbackRepository, articles ArticleReader, log *slog.Logger) *FeedbackService {
	return &FeedbackService{
		repo:     repo,
		articles: articles,
		log:      log,
	}
}

// Submit принимает отзыв читателя. Повторный отзыв того же читателя
// на ту же статью перезаписывает предыдущий одной атомарной операцией:
// у пары (пользователь, статья) всегда не больше одной строки.
func (s *FeedbackService) Submit(ctx context.Context, userID, articleID int64, req models.SubmitFeedbackRequest) (*models.Feedback, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperror.Validation("rating", "rating must be between 1 and 5")
	}
	if _, err := s.articles.GetArticle(ctx, articleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("article", articleID)
		}
		return nil, apperror.Store(err)
	}

	feedback := models.Feedback{
		UserID:    userID,
		ArticleID: articleID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	id, err := s.repo.UpsertFeedback(ctx, feedback)
	if err != nil {
		return nil, apperror.Store(err)
	}
	s.log.Info("feedback saved",
		slog.Int64("id", id),
		slog.Int64("user_id", userID),
		slog.Int64("article_id", articleID))

	saved, err := s.repo.GetFeedbackByUserAndArticle(ctx, userID, articleID)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return saved, nil
}

// TopRated возвращает статьи с лучшим средним рейтингом. Участвуют
// только опубликованные статьи хотя бы с одним отзывом; агрегаты
// считаются по живым данным на момент запроса.
func (s *FeedbackService) TopRated(ctx context.Context, limit int) ([]*models.RatedArticle, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	result, err := s.repo.TopRatedArticles(ctx, limit)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return result, nil
}

// AdminList возвращает все отзывы системы для панели администратора.
func (s *FeedbackService) AdminList(ctx context.Context) ([]*models.Feedback, error) {
	result, err := s.repo.ListAllFeedback(ctx)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return result, nil
}

// Remove удаляет отзыв по ID.
func (s *FeedbackService) Remove(ctx context.Context, id int64) error {
	count, err := s.repo.RemoveFeedback(ctx, id)
	if err != nil {
		return apperror.Store(err)
	}
	if count == 0 {
		return apperror.NotFound("feedback", id)
	}
	s.log.Info("feedback removed", slog.Int64("id", id))
	return nil
}
