package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/newsletter-cms/internal/apperror"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/roles"
	"github.com/magabrotheeeer/newsletter-cms/internal/models"
	"github.com/magabrotheeeer/newsletter-cms/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateArticle(ctx context.Context, a models.Article) (int64, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Article), args.Error(1)
}
func (m *RepoMock) ListArticles(ctx context.Context, status string) ([]*models.Article, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}
func (m *RepoMock) ListPublishedArticles(ctx context.Context) ([]*models.Article, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}
func (m *RepoMock) ListArticlesByAuthor(ctx context.Context, authorID int64) ([]*models.Article, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}
func (m *RepoMock) UpdateArticle(ctx context.Context, id int64, req models.UpdateArticleRequest) (int, error) {
	args := m.Called(ctx, id, req)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) RemoveArticle(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) IncrementViewCount(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *RepoMock) CreateIssue(ctx context.Context, issue models.Issue) (int64, int, error) {
	args := m.Called(ctx, issue)
	return args.Get(0).(int64), args.Int(1), args.Error(2)
}
func (m *RepoMock) GetIssue(ctx context.Context, id int64) (*models.Issue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Issue), args.Error(1)
}
func (m *RepoMock) ListIssues(ctx context.Context, status string) ([]*models.Issue, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Issue), args.Error(1)
}
func (m *RepoMock) ListPublishedIssues(ctx context.Context) ([]*models.Issue, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Issue), args.Error(1)
}
func (m *RepoMock) ListIssueArticles(ctx context.Context, issueID int64, status string) ([]*models.Article, error) {
	args := m.Called(ctx, issueID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}
func (m *RepoMock) UpdateIssue(ctx context.Context, id int64, req models.UpdateIssueRequest, publicationDate time.Time) (int, error) {
	args := m.Called(ctx, id, req, publicationDate)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) RemoveIssue(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type FeedbackMock struct{ mock.Mock }

func (m *FeedbackMock) ListFeedbackByArticle(ctx context.Context, articleID int64) ([]*models.Feedback, error) {
	args := m.Called(ctx, articleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Feedback), args.Error(1)
}
func (m *FeedbackMock) GetFeedbackByUserAndArticle(ctx context.Context, userID, articleID int64) (*models.Feedback, error) {
	args := m.Called(ctx, userID, articleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feedback), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var (
	subscriber = models.Principal{ID: 1, Username: "reader", Role: roles.Subscriber}
	editor     = models.Principal{ID: 2, Username: "writer", Role: roles.Editor}
	admin      = models.Principal{ID: 3, Username: "boss", Role: roles.Admin}
)

func TestContentService_GetArticle_Visibility(t *testing.T) {
	issueID := int64(9)

	tests := []struct {
		name      string
		article   *models.Article
		principal models.Principal
		wantErr   error
	}{
		{
			name: "подписчик читает опубликованную статью без выпуска",
			article: &models.Article{
				ID: 1, Status: models.StatusPublished,
			},
			principal: subscriber,
		},
		{
			name: "подписчик читает статью опубликованного выпуска",
			article: &models.Article{
				ID: 1, Status: models.StatusPublished,
				IssueID: &issueID, IssueStatus: models.StatusPublished,
			},
			principal: subscriber,
		},
		{
			name: "черновик для подписчика это запрет, а не отсутствие",
			article: &models.Article{
				ID: 1, Status: models.StatusDraft,
			},
			principal: subscriber,
			wantErr:   apperror.ErrAuthorization,
		},
		{
			name: "опубликованная статья черновика выпуска скрыта от подписчика",
			article: &models.Article{
				ID: 1, Status: models.StatusPublished,
				IssueID: &issueID, IssueStatus: models.StatusDraft,
			},
			principal: subscriber,
			wantErr:   apperror.ErrAuthorization,
		},
		{
			name: "редактор читает черновик",
			article: &models.Article{
				ID: 1, Status: models.StatusDraft,
			},
			principal: editor,
		},
		{
			name: "администратор читает архив",
			article: &models.Article{
				ID: 1, Status: models.StatusArchived,
			},
			principal: admin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			feedback := new(FeedbackMock)
			repo.On("GetArticle", mock.Anything, int64(1)).Return(tt.article, nil).Once()
			if tt.wantErr == nil {
				repo.On("IncrementViewCount", mock.Anything, int64(1)).Return(nil).Once()
				feedback.On("ListFeedbackByArticle", mock.Anything, int64(1)).
					Return([]*models.Feedback{}, nil).Once()
				feedback.On("GetFeedbackByUserAndArticle", mock.Anything, tt.principal.ID, int64(1)).
					Return(nil, repository.ErrNotFound).Once()
			}

			svc := NewContentService(repo, feedback, newNoopLogger())
			details, err := svc.GetArticle(context.Background(), 1, tt.principal)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "article not available", err.Error())
				repo.AssertNotCalled(t, "IncrementViewCount", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, details.Article)
			assert.Nil(t, details.UserFeedback)
			repo.AssertExpectations(t)
			feedback.AssertExpectations(t)
		})
	}
}

func TestContentService_GetArticle_NotFound(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetArticle", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound).Once()

	svc := NewContentService(repo, new(FeedbackMock), newNoopLogger())
	_, err := svc.GetArticle(context.Background(), 404, subscriber)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestContentService_GetArticle_ViewCountBumpedForEveryReader(t *testing.T) {
	article := &models.Article{ID: 1, Status: models.StatusDraft, ViewCount: 5}

	repo := new(RepoMock)
	feedback := new(FeedbackMock)
	repo.On("GetArticle", mock.Anything, int64(1)).Return(article, nil).Once()
	repo.On("IncrementViewCount", mock.Anything, int64(1)).Return(nil).Once()
	feedback.On("ListFeedbackByArticle", mock.Anything, int64(1)).Return([]*models.Feedback{}, nil).Once()
	feedback.On("GetFeedbackByUserAndArticle", mock.Anything, editor.ID, int64(1)).
		Return(nil, repository.ErrNotFound).Once()

	svc := NewContentService(repo, feedback, newNoopLogger())
	details, err := svc.GetArticle(context.Background(), 1, editor)
	require.NoError(t, err)
	// Счетчик растёт и при чтении редактором собственного черновика.
	assert.Equal(t, 6, details.Article.ViewCount)
	repo.AssertExpectations(t)
}

func TestContentService_ListArticles(t *testing.T) {
	t.Run("подписчик получает только опубликованное, фильтр игнорируется", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListPublishedArticles", mock.Anything).Return([]*models.Article{{ID: 1}}, nil).Once()

		svc := NewContentService(repo, new(FeedbackMock), newNoopLogger())
		got, err := svc.ListArticles(context.Background(), subscriber, "draft")
		require.NoError(t, err)
		assert.Len(t, got, 1)
		repo.AssertNotCalled(t, "ListArticles", mock.Anything, mock.Anything)
	})

	t.Run("редактор фильтрует по статусу", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListArticles", mock.Anything, "draft").Return([]*models.Article{{ID: 2}}, nil).Once()

		svc := NewContentService(repo, new(FeedbackMock), newNoopLogger())
		got, err := svc.ListArticles(context.Background(), editor, "draft")
		require.NoError(t, err)
		assert.Len(t, got, 1)
		repo.AssertExpectations(t)
	})
}

func TestContentService_RemoveArticle_Ownership(t *testing.T) {
	authorID := int64(2)
	article := &models.Article{ID: 1, AuthorID: &authorID, Status: models.StatusPublished}

	tests := []struct {
		name      string
		principal models.Principal
		removed   bool
		wantErr   error
	}{
		{name: "автор удаляет свою статью", principal: editor, removed: true},
		{name: "администратор удаляет чужую статью", principal: admin, removed: true},
		{
			name:      "другой редактор получает отказ",
			principal: models.Principal{ID: 77, Username: "other", Role: roles.Editor},
			wantErr:   apperror.ErrAuthorization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("GetArticle", mock.Anything, int64(1)).Return(article, nil).Once()
			if tt.removed {
				repo.On("RemoveArticle", mock.Anything, int64(1)).Return(1, nil).Once()
			}

			svc := NewContentService(repo, new(FeedbackMock), newNoopLogger())
			err := svc.RemoveArticle(context.Background(), 1, tt.principal)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "you can only delete your own articles", err.Error())
				repo.AssertNotCalled(t, "RemoveArticle", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestContentService_CreateIssue(t *testing.T) {
	req := models.CreateIssueRequest{
		Title:           "January digest",
		PublicationDate: "2026-01-15",
		Status:          "draft",
	}

	t.Run("успешное создание", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateIssue", mock.Anything, mock.MatchedBy(func(issue models.Issue) bool {
			return issue.Title == req.Title &&
				issue.CreatedBy != nil && *issue.CreatedBy == editor.ID &&
				issue.PublicationDate.Format("2006-01-02") == req.PublicationDate
		})).Return(int64(3), 12, nil).Once()

		svc := NewContentService(repo, new(FeedbackMock), newNoopLogger())
		id, number, err := svc.CreateIssue(context.Background(), editor, req)
		require.NoError(t, err)
		assert.Equal(t, int64(3), id)
		assert.Equal(t, 12, number)
	})

	t.Run("гонка за номер выпуска повторяется до успеха", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateIssue", mock.Anything, mock.Anything).
			Return(int64(0), 0, repository.ErrUniqueViolation).Twice()
		repo.On("CreateIssue", mock.Anything, mock.Anything).
			Return(int64(4), 13, nil).Once()

		svc := NewContentService(repo, new(FeedbackMock), newNoopLogger())
		id, number, err := svc.CreateIssue(context.Background(), editor, req)
		require.NoError(t, err)
		assert.Equal(t, int64(4), id)
		assert.Equal(t, 13, number)
		repo.AssertExpectations(t)
	})

	t.Run("некорректная дата публикации", func(t *testing.T) {
		svc := NewContentService(new(RepoMock), new(FeedbackMock), newNoopLogger())
		_, _, err := svc.CreateIssue(context.Background(), editor, models.CreateIssueRequest{
			Title:           "Bad date",
			PublicationDate: "15.01.2026",
		})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestContentService_GetIssue_Visibility(t *testing.T) {
	t.Run("подписчик видит только опубликованные статьи выпуска", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetIssue", mock.Anything, int64(5)).
			Return(&models.Issue{ID: 5, Status: models.StatusPublished}, nil).Once()
		repo.On("ListIssueArticles", mock.Anything, int64(5), models.StatusPublished).
			Return([]*models.Article{{ID: 1}}, nil).Once()

		svc := NewContentService(repo, new(FeedbackMock), newNoopLogger())
		details, err := svc.GetIssue(context.Background(), 5, subscriber)
		require.NoError(t, err)
		assert.Len(t, details.Articles, 1)
		repo.AssertExpectations(t)
	})

	t.Run("черновик выпуска недоступен подписчику", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetIssue", mock.Anything, int64(5)).
			Return(&models.Issue{ID: 5, Status: models.StatusDraft}, nil).Once()

		svc := NewContentService(repo, new(FeedbackMock), newNoopLogger())
		_, err := svc.GetIssue(context.Background(), 5, subscriber)
		assert.ErrorIs(t, err, apperror.ErrAuthorization)
		assert.Equal(t, "issue not available", err.Error())
	})

	t.Run("редактор видит все статьи выпуска", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetIssue", mock.Anything, int64(5)).
			Return(&models.Issue{ID: 5, Status: models.StatusDraft}, nil).Once()
		repo.On("ListIssueArticles", mock.Anything, int64(5), "").
			Return([]*models.Article{{ID: 1}, {ID: 2}}, nil).Once()

		svc := NewContentService(repo, new(FeedbackMock), newNoopLogger())
		details, err := svc.GetIssue(context.Background(), 5, editor)
		require.NoError(t, err)
		assert.Len(t, details.Articles, 2)
	})
}

func TestContentService_RemoveIssue_NotFound(t *testing.T) {
	repo := new(RepoMock)
	repo.On("RemoveIssue", mock.Anything, int64(404)).Return(0, nil).Once()

	svc := NewContentService(repo, new(FeedbackMock), newNoopLogger())
	err := svc.RemoveIssue(context.Background(), 404)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
