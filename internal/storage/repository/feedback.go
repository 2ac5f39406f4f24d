package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/newsletter-cms/internal/models"
)

// UpsertFeedback вставляет отзыв либо перезаписывает существующий отзыв
// той же пары (user, article). Атомарность обеспечивает уникальное
// ограничение и ON CONFLICT: две одновременных отправки не создадут
// двух строк. Возвращает ID затронутой строки.
func (s *Storage) UpsertFeedback(ctx context.Context, f models.Feedback) (int64, error) {
	const op = "storage.UpsertFeedback"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO feedback (article_id, user_id, rating, comment)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT ON CONSTRAINT unique_user_article_feedback
			  DO UPDATE SET rating = EXCLUDED.rating,
			                comment = EXCLUDED.comment,
			                created_at = now()
			  RETURNING id`
	var id int64
	err := s.DB.QueryRowContext(ctx, query, f.ArticleID, f.UserID, f.Rating, f.Comment).Scan(&id)
	if err != nil {
		return 0, wrap(op, err)
	}
	return id, nil
}

// GetFeedbackByUserAndArticle возвращает отзыв пользователя о статье.
func (s *Storage) GetFeedbackByUserAndArticle(ctx context.Context, userID, articleID int64) (*models.Feedback, error) {
	const op = "storage.GetFeedbackByUserAndArticle"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, article_id, user_id, rating, comment, created_at
			  FROM feedback
			  WHERE user_id = $1 AND article_id = $2`
	f := &models.Feedback{}
	var comment sql.NullString
	err := s.DB.QueryRowContext(ctx, query, userID, articleID).Scan(
		&f.ID, &f.ArticleID, &f.UserID, &f.Rating, &comment, &f.CreatedAt)
	if err != nil {
		return nil, wrap(op, err)
	}
	f.Comment = comment.String
	return f, nil
}

// ListFeedbackByArticle возвращает отзывы о статье с именами авторов,
// свежие первыми.
func (s *Storage) ListFeedbackByArticle(ctx context.Context, articleID int64) ([]*models.Feedback, error) {
	const op = "storage.ListFeedbackByArticle"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT f.id, f.article_id, f.user_id, u.full_name, f.rating, f.comment, f.created_at
			  FROM feedback f
			  LEFT JOIN users u ON f.user_id = u.id
			  WHERE f.article_id = $1
			  ORDER BY f.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Feedback
	for rows.Next() {
		f := &models.Feedback{}
		var userName, comment sql.NullString
		if err := rows.Scan(&f.ID, &f.ArticleID, &f.UserID, &userName, &f.Rating, &comment, &f.CreatedAt); err != nil {
			return nil, wrap(op, err)
		}
		f.UserName = userName.String
		f.Comment = comment.String
		result = append(result, f)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// ListAllFeedback возвращает все отзывы с именами авторов и заголовками
// статей, свежие первыми.
func (s *Storage) ListAllFeedback(ctx context.Context) ([]*models.Feedback, error) {
	const op = "storage.ListAllFeedback"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT f.id, f.article_id, a.title, f.user_id, u.full_name, f.rating, f.comment, f.created_at
			  FROM feedback f
			  LEFT JOIN users u ON f.user_id = u.id
			  LEFT JOIN articles a ON f.article_id = a.id
			  ORDER BY f.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Feedback
	for rows.Next() {
		f := &models.Feedback{}
		var articleTitle, userName, comment sql.NullString
		if err := rows.Scan(&f.ID, &f.ArticleID, &articleTitle, &f.UserID, &userName,
			&f.Rating, &comment, &f.CreatedAt); err != nil {
			return nil, wrap(op, err)
		}
		f.ArticleTitle = articleTitle.String
		f.UserName = userName.String
		f.Comment = comment.String
		result = append(result, f)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// RemoveFeedback удаляет отзыв по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveFeedback(ctx context.Context, id int64) (int, error) {
	const op = "storage.RemoveFeedback"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM feedback WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, wrap(op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrap(op, err)
	}
	return int(rowsAffected), nil
}

// TopRatedArticles возвращает рейтинг опубликованных статей хотя бы
// с одним отзывом: средний рейтинг по убыванию, при равенстве — число
// отзывов по убыванию, не более limit строк.
func (s *Storage) TopRatedArticles(ctx context.Context, limit int) ([]*models.RatedArticle, error) {
	const op = "storage.TopRatedArticles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT a.id, a.title, AVG(f.rating) AS average_rating, COUNT(f.id) AS feedback_count
			  FROM articles a
			  INNER JOIN feedback f ON a.id = f.article_id
			  WHERE a.status = 'published'
			  GROUP BY a.id, a.title
			  HAVING COUNT(f.id) >= 1
			  ORDER BY average_rating DESC, feedback_count DESC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.RatedArticle
	for rows.Next() {
		var ra models.RatedArticle
		if err := rows.Scan(&ra.ArticleID, &ra.Title, &ra.AverageRating, &ra.FeedbackCount); err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, &ra)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// FeedbackStats возвращает сводную статистику отзывов с распределением
// оценок по звёздам.
func (s *Storage) FeedbackStats(ctx context.Context) (*models.FeedbackStats, error) {
	const op = "storage.FeedbackStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*),
			      AVG(rating),
			      COUNT(*) FILTER (WHERE rating = 5),
			      COUNT(*) FILTER (WHERE rating = 4),
			      COUNT(*) FILTER (WHERE rating = 3),
			      COUNT(*) FILTER (WHERE rating = 2),
			      COUNT(*) FILTER (WHERE rating = 1)
			  FROM feedback`
	stats := &models.FeedbackStats{}
	var avg sql.NullFloat64
	err := s.DB.QueryRowContext(ctx, query).Scan(
		&stats.TotalFeedback, &avg,
		&stats.FiveStarCount, &stats.FourStarCount, &stats.ThreeStarCount,
		&stats.TwoStarCount, &stats.OneStarCount)
	if err != nil {
		return nil, wrap(op, err)
	}
	if avg.Valid {
		stats.AverageRating = &avg.Float64
	}
	return stats, nil
}
