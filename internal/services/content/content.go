// Package services содержит бизнес-логику работы со статьями и выпусками,
// включая фильтр видимости по роли и назначение номеров выпусков.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/newsletter-cms/internal/apperror"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/roles"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter-cms/internal/models"
	"github.com/magabrotheeeer/newsletter-cms/internal/storage/repository"
)

// publicationDateLayout формат даты публикации в запросах.
const publicationDateLayout = "2006-01-02"

// issueNumberRetries число повторов вставки выпуска при гонке за номер.
const issueNumberRetries = 3

// ContentRepository описывает методы хранилища для статей и выпусков.
type ContentRepository interface {
	CreateArticle(ctx context.Context, a models.Article) (int64, error)
	GetArticle(ctx context.Context, id int64) (*models.Article, error)
	ListArticles(ctx context.Context, status string) ([]*models.Article, error)
	ListPublishedArticles(ctx context.Context) ([]*models.Article, error)
	ListArticlesByAuthor(ctx context.Context, authorID int64) ([]*models.Article, error)
	UpdateArticle(ctx context.Context, id int64, req models.UpdateArticleRequest) (int, error)
	RemoveArticle(ctx context.Context, id int64) (int, error)
	IncrementViewCount(ctx context.Context, id int64) error

	CreateIssue(ctx context.Context, issue models.Issue) (int64, int, error)
	GetIssue(ctx context.Context, id int64) (*models.Issue, error)
	ListIssues(ctx context.Context, status string) ([]*models.Issue, error)
	ListPublishedIssues(ctx context.Context) ([]*models.Issue, error)
	ListIssueArticles(ctx context.Context, issueID int64, status string) ([]*models.Article, error)
	UpdateIssue(ctx context.Context, id int64, req models.UpdateIssueRequest, publicationDate time.Time) (int, error)
	RemoveIssue(ctx context.Context, id int64) (int, error)
}

// FeedbackReader читает отзывы для детальной карточки статьи.
type FeedbackReader interface {
	ListFeedbackByArticle(ctx context.Context, articleID int64) ([]*models.Feedback, error)
	GetFeedbackByUserAndArticle(ctx context.Context, userID, articleID int64) (*models.Feedback, error)
}

// ContentService реализует операции над статьями и выпусками.
type ContentService struct {
	repo     ContentRepository
	feedback FeedbackReader
	log      *slog.Logger
}

// NewContentService создает новый экземпляр ContentService.
func NewContentService(repo ContentRepository, feedback FeedbackReader, log *slog.Logger) *ContentService {
	return &ContentService{
		repo:     repo,
		feedback: feedback,
		log:      log,
	}
}

// articleVisible сообщает, виден ли элемент подписчику: статья
// опубликована и родительский выпуск либо отсутствует, либо опубликован.
func articleVisible(a *models.Article) bool {
	if a.Status != models.StatusPublished {
		return false
	}
	return a.IssueID == nil || a.IssueStatus == models.StatusPublished
}

// ArticleDetails — детальная карточка статьи: сама статья, отзывы о ней
// и отзыв самого читателя, если он есть.
type ArticleDetails struct {
	Article      *models.Article    `json:"article"`
	Feedback     []*models.Feedback `json:"feedback"`
	UserFeedback *models.Feedback   `json:"user_feedback,omitempty"`
}

// GetArticle возвращает детальную карточку статьи, применяя фильтр
// видимости. Недоступная подписчику статья — ошибка авторизации,
// а не "не найдено": эти случаи не смешиваются. Счётчик просмотров
// увеличивается ровно один раз за чтение, кем бы ни был читатель.
func (s *ContentService) GetArticle(ctx context.Context, id int64, principal models.Principal) (*ArticleDetails, error) {
	article, err := s.repo.GetArticle(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("article", id)
		}
		return nil, apperror.Store(err)
	}

	if !principal.Role.CanSeeUnpublished() && !articleVisible(article) {
		return nil, apperror.Forbidden("article not available")
	}

	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		return nil, apperror.Store(err)
	}
	article.ViewCount++

	feedback, err := s.feedback.ListFeedbackByArticle(ctx, id)
	if err != nil {
		return nil, apperror.Store(err)
	}
	userFeedback, err := s.feedback.GetFeedbackByUserAndArticle(ctx, principal.ID, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Store(err)
	}

	return &ArticleDetails{
		Article:      article,
		Feedback:     feedback,
		UserFeedback: userFeedback,
	}, nil
}

// ListArticles возвращает статьи, видимые принципалу. Редакторы и
// администраторы видят всё и могут фильтровать по статусу; для
// подписчика фильтр игнорируется, отдаются только опубликованные.
func (s *ContentService) ListArticles(ctx context.Context, principal models.Principal, status string) ([]*models.Article, error) {
	var result []*models.Article
	var err error
	if principal.Role.CanSeeUnpublished() {
		result, err = s.repo.ListArticles(ctx, status)
	} else {
		result, err = s.repo.ListPublishedArticles(ctx)
	}
	if err != nil {
		return nil, apperror.Store(err)
	}
	return result, nil
}

// ListArticlesByAuthor возвращает статьи автора для редакторской панели.
func (s *ContentService) ListArticlesByAuthor(ctx context.Context, authorID int64) ([]*models.Article, error) {
	result, err := s.repo.ListArticlesByAuthor(ctx, authorID)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return result, nil
}

// CreateArticle создает статью от имени принципала-редактора.
func (s *ContentService) CreateArticle(ctx context.Context, principal models.Principal, req models.CreateArticleRequest) (int64, error) {
	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}
	authorID := principal.ID
	article := models.Article{
		Title:            req.Title,
		Content:          req.Content,
		Summary:          req.Summary,
		AuthorID:         &authorID,
		IssueID:          req.IssueID,
		FeaturedImageURL: req.FeaturedImageURL,
		Status:           status,
	}
	id, err := s.repo.CreateArticle(ctx, article)
	if err != nil {
		return 0, apperror.Store(err)
	}
	s.log.Info("article created", slog.Int64("id", id), slog.Int64("author_id", principal.ID))
	return id, nil
}

// UpdateArticle обновляет статью по ID.
func (s *ContentService) UpdateArticle(ctx context.Context, id int64, req models.UpdateArticleRequest) error {
	count, err := s.repo.UpdateArticle(ctx, id, req)
	if err != nil {
		return apperror.Store(err)
	}
	if count == 0 {
		return apperror.NotFound("article", id)
	}
	return nil
}

// RemoveArticle удаляет статью. Право на удаление есть только у автора
// статьи и администратора; роль Editor сама по себе его не даёт.
func (s *ContentService) RemoveArticle(ctx context.Context, id int64, principal models.Principal) error {
	article, err := s.repo.GetArticle(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("article", id)
		}
		return apperror.Store(err)
	}
	if !roles.CanDeleteArticle(principal.Role, principal.ID, article.AuthorID) {
		return apperror.Forbidden("you can only delete your own articles")
	}
	count, err := s.repo.RemoveArticle(ctx, id)
	if err != nil {
		return apperror.Store(err)
	}
	if count == 0 {
		return apperror.NotFound("article", id)
	}
	s.log.Info("article removed", slog.Int64("id", id), slog.Int64("user_id", principal.ID))
	return nil
}

// IssueDetails — выпуск вместе с его статьями, видимыми принципалу.
type IssueDetails struct {
	Issue    *models.Issue     `json:"issue"`
	Articles []*models.Article `json:"articles"`
}

// GetIssue возвращает выпуск со статьями, применяя фильтр видимости:
// подписчик видит только опубликованный выпуск и только его
// опубликованные статьи.
func (s *ContentService) GetIssue(ctx context.Context, id int64, principal models.Principal) (*IssueDetails, error) {
	issue, err := s.repo.GetIssue(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("issue", id)
		}
		return nil, apperror.Store(err)
	}

	articleStatus := ""
	if !principal.Role.CanSeeUnpublished() {
		if issue.Status != models.StatusPublished {
			return nil, apperror.Forbidden("issue not available")
		}
		articleStatus = models.StatusPublished
	}

	articles, err := s.repo.ListIssueArticles(ctx, id, articleStatus)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return &IssueDetails{
		Issue:    issue,
		Articles: articles,
	}, nil
}

// ListIssues возвращает выпуски, видимые принципалу.
func (s *ContentService) ListIssues(ctx context.Context, principal models.Principal, status string) ([]*models.Issue, error) {
	var result []*models.Issue
	var err error
	if principal.Role.CanSeeUnpublished() {
		result, err = s.repo.ListIssues(ctx, status)
	} else {
		result, err = s.repo.ListPublishedIssues(ctx)
	}
	if err != nil {
		return nil, apperror.Store(err)
	}
	return result, nil
}

// CreateIssue создает выпуск. Номер выпуска назначает система как
// max+1; гонку одновременных созданий разрешает уникальный индекс,
// проигравшая вставка повторяется.
func (s *ContentService) CreateIssue(ctx context.Context, principal models.Principal, req models.CreateIssueRequest) (int64, int, error) {
	publicationDate, err := time.Parse(publicationDateLayout, req.PublicationDate)
	if err != nil {
		return 0, 0, apperror.Validation("publication_date", "publication date must be in format 2006-01-02")
	}
	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}
	createdBy := principal.ID
	issue := models.Issue{
		Title:           req.Title,
		Description:     req.Description,
		PublicationDate: publicationDate,
		CoverImageURL:   req.CoverImageURL,
		Status:          status,
		CreatedBy:       &createdBy,
	}

	var lastErr error
	for range issueNumberRetries {
		id, issueNumber, err := s.repo.CreateIssue(ctx, issue)
		if err == nil {
			s.log.Info("issue created", slog.Int64("id", id), slog.Int("issue_number", issueNumber))
			return id, issueNumber, nil
		}
		if !errors.Is(err, repository.ErrUniqueViolation) {
			return 0, 0, apperror.Store(err)
		}
		s.log.Warn("issue number collision, retrying", sl.Err(err))
		lastErr = err
	}
	return 0, 0, apperror.Store(lastErr)
}

// UpdateIssue обновляет выпуск по ID, номер выпуска неизменен.
func (s *ContentService) UpdateIssue(ctx context.Context, id int64, req models.UpdateIssueRequest) error {
	publicationDate, err := time.Parse(publicationDateLayout, req.PublicationDate)
	if err != nil {
		return apperror.Validation("publication_date", "publication date must be in format 2006-01-02")
	}
	count, err := s.repo.UpdateIssue(ctx, id, req, publicationDate)
	if err != nil {
		return apperror.Store(err)
	}
	if count == 0 {
		return apperror.NotFound("issue", id)
	}
	return nil
}

// RemoveIssue удаляет выпуск; его статьи и их отзывы удаляются каскадом.
func (s *ContentService) RemoveIssue(ctx context.Context, id int64) error {
	count, err := s.repo.RemoveIssue(ctx, id)
	if err != nil {
		return apperror.Store(err)
	}
	if count == 0 {
		return apperror.NotFound("issue", id)
	}
	s.log.Info("issue removed with its articles", slog.Int64("id", id))
	return nil
}
