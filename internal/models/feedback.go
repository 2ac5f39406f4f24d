package models

import "time"

// Feedback представляет отзыв пользователя о статье.
// На пару (user, article) существует не более одной записи: повторная
// отправка перезаписывает rating, comment и created_at той же строки.
type Feedback struct {
	ID           int64     `json:"id"`
	ArticleID    int64     `json:"article_id"`
	ArticleTitle string    `json:"article_title,omitempty"`
	UserID       int64     `json:"user_id"`
	UserName     string    `json:"user_name,omitempty"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubmitFeedbackRequest данные запроса отправки отзыва.
type SubmitFeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// RatedArticle строка рейтинга «лучшие статьи»: только опубликованные
// статьи хотя бы с одним отзывом, порядок (средний рейтинг DESC, число
// отзывов DESC).
type RatedArticle struct {
	ArticleID     int64   `json:"article_id"`
	Title         string  `json:"title"`
	AverageRating float64 `json:"average_rating"`
	FeedbackCount int     `json:"feedback_count"`
}

// FeedbackStats сводная статистика отзывов для административной панели.
type FeedbackStats struct {
	TotalFeedback  int      `json:"total_feedback"`
	AverageRating  *float64 `json:"average_rating,omitempty"`
	FiveStarCount  int      `json:"five_star_count"`
	FourStarCount  int      `json:"four_star_count"`
	ThreeStarCount int      `json:"three_star_count"`
	TwoStarCount   int      `json:"two_star_count"`
	OneStarCount   int      `json:"one_star_count"`
}
