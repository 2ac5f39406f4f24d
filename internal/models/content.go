package models

import "time"

// Статусы публикации статей и выпусков.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Article представляет статью выпуска.
//
// AuthorID и IssueID могут быть nil: автор обнуляется при удалении
// пользователя, статья без выпуска допустима. AverageRating равен nil,
// пока по статье нет ни одного отзыва — агрегат не выдумывает дефолт.
type Article struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Content          string     `json:"content,omitempty"`
	Summary          string     `json:"summary,omitempty"`
	AuthorID         *int64     `json:"author_id,omitempty"`
	AuthorName       string     `json:"author_name,omitempty"`
	IssueID          *int64     `json:"issue_id,omitempty"`
	IssueTitle       string     `json:"issue_title,omitempty"`
	IssueNumber      *int       `json:"issue_number,omitempty"`
	IssueStatus      string     `json:"-"` // статус родительского выпуска, нужен фильтру видимости
	FeaturedImageURL string     `json:"featured_image_url,omitempty"`
	Status           string     `json:"status"`
	ViewCount        int        `json:"view_count"`
	AverageRating    *float64   `json:"average_rating,omitempty"`
	FeedbackCount    int        `json:"feedback_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Issue представляет периодический выпуск, объединяющий статьи.
type Issue struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	IssueNumber     int       `json:"issue_number"`
	PublicationDate time.Time `json:"publication_date"`
	CoverImageURL   string    `json:"cover_image_url,omitempty"`
	Status          string    `json:"status"`
	CreatedBy       *int64    `json:"created_by,omitempty"`
	CreatorName     string    `json:"creator_name,omitempty"`
	ArticleCount    int       `json:"article_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateArticleRequest данные запроса создания статьи.
type CreateArticleRequest struct {
	Title            string `json:"title" validate:"required,max=200"`
	Content          string `json:"content" validate:"required"`
	Summary          string `json:"summary"`
	IssueID          *int64 `json:"issue_id"`
	FeaturedImageURL string `json:"featured_image_url" validate:"omitempty,url"`
	Status           string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// UpdateArticleRequest данные запроса обновления статьи.
type UpdateArticleRequest struct {
	Title            string `json:"title" validate:"required,max=200"`
	Content          string `json:"content" validate:"required"`
	Summary          string `json:"summary"`
	IssueID          *int64 `json:"issue_id"`
	FeaturedImageURL string `json:"featured_image_url" validate:"omitempty,url"`
	Status           string `json:"status" validate:"required,oneof=draft published archived"`
}

// CreateIssueRequest данные запроса создания выпуска.
// Номер выпуска клиентом не передаётся, его назначает система.
type CreateIssueRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description"`
	PublicationDate string `json:"publication_date" validate:"required,datetime=2006-01-02"`
	CoverImageURL   string `json:"cover_image_url" validate:"omitempty,url"`
	Status          string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// UpdateIssueRequest данные запроса обновления выпуска.
type UpdateIssueRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description"`
	PublicationDate string `json:"publication_date" validate:"required,datetime=2006-01-02"`
	CoverImageURL   string `json:"cover_image_url" validate:"omitempty,url"`
	Status          string `json:"status" validate:"required,oneof=draft published archived"`
}
