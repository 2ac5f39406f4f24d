package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/newsletter-cms/internal/models"
)

// CreateArticle вставляет новую статью и возвращает её ID.
func (s *Storage) CreateArticle(ctx context.Context, a models.Article) (int64, error) {
	const op = "storage.CreateArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO articles (title, content, summary, author_id, issue_id,
			      featured_image_url, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		a.Title, a.Content, a.Summary, a.AuthorID, a.IssueID,
		a.FeaturedImageURL, a.Status).Scan(&newID)
	if err != nil {
		return 0, wrap(op, err)
	}
	return newID, nil
}

// articleSelect — общая часть выборки статьи с автором, выпуском и
// агрегатами отзывов. Агрегаты пересчитываются на каждом чтении.
const articleSelect = `
	SELECT a.id, a.title, a.content, a.summary, a.author_id, u.full_name,
	       a.issue_id, i.title, i.issue_number, i.status,
	       a.featured_image_url, a.status, a.view_count,
	       AVG(f.rating), COUNT(f.id), a.created_at, a.updated_at
	FROM articles a
	LEFT JOIN users u ON a.author_id = u.id
	LEFT JOIN issues i ON a.issue_id = i.id
	LEFT JOIN feedback f ON a.id = f.article_id`

const articleGroupBy = ` GROUP BY a.id, u.full_name, i.title, i.issue_number, i.status`

func scanArticle(row interface{ Scan(...any) error }) (*models.Article, error) {
	a := &models.Article{}
	var authorID, issueID sql.NullInt64
	var authorName, issueTitle, issueStatus sql.NullString
	var issueNumber sql.NullInt32
	var avg sql.NullFloat64
	if err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Summary, &authorID, &authorName,
		&issueID, &issueTitle, &issueNumber, &issueStatus,
		&a.FeaturedImageURL, &a.Status, &a.ViewCount,
		&avg, &a.FeedbackCount, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if authorID.Valid {
		a.AuthorID = &authorID.Int64
	}
	a.AuthorName = authorName.String
	if issueID.Valid {
		a.IssueID = &issueID.Int64
	}
	a.IssueTitle = issueTitle.String
	if issueNumber.Valid {
		n := int(issueNumber.Int32)
		a.IssueNumber = &n
	}
	a.IssueStatus = issueStatus.String
	if avg.Valid {
		a.AverageRating = &avg.Float64
	}
	return a, nil
}

// GetArticle возвращает статью по ID вместе со средним рейтингом
// и числом отзывов. Средний рейтинг равен nil, если отзывов нет.
func (s *Storage) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	const op = "storage.GetArticle"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := articleSelect + ` WHERE a.id = $1` + articleGroupBy
	a, err := scanArticle(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return a, nil
}

func (s *Storage) listArticles(ctx context.Context, op, query string, args ...any) ([]*models.Article, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, a)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// ListArticles возвращает все статьи, при непустом status — только с этим статусом.
func (s *Storage) ListArticles(ctx context.Context, status string) ([]*models.Article, error) {
	const op = "storage.ListArticles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if status != "" {
		query := articleSelect + ` WHERE a.status = $1` + articleGroupBy + ` ORDER BY a.created_at DESC`
		return s.listArticles(ctx, op, query, status)
	}
	query := articleSelect + articleGroupBy + ` ORDER BY a.created_at DESC`
	return s.listArticles(ctx, op, query)
}

// ListPublishedArticles возвращает статьи, видимые подписчику:
// опубликованные и принадлежащие опубликованному выпуску либо без выпуска.
func (s *Storage) ListPublishedArticles(ctx context.Context) ([]*models.Article, error) {
	const op = "storage.ListPublishedArticles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := articleSelect + `
	WHERE a.status = 'published' AND (i.status = 'published' OR a.issue_id IS NULL)` +
		articleGroupBy + ` ORDER BY a.created_at DESC`
	return s.listArticles(ctx, op, query)
}

// ListArticlesByAuthor возвращает статьи автора, свежие первыми.
func (s *Storage) ListArticlesByAuthor(ctx context.Context, authorID int64) ([]*models.Article, error) {
	const op = "storage.ListArticlesByAuthor"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := articleSelect + ` WHERE a.author_id = $1` + articleGroupBy + ` ORDER BY a.created_at DESC`
	return s.listArticles(ctx, op, query, authorID)
}

// UpdateArticle обновляет статью и возвращает количество изменённых строк.
func (s *Storage) UpdateArticle(ctx context.Context, id int64, req models.UpdateArticleRequest) (int, error) {
	const op = "storage.UpdateArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE articles
			  SET title = $1, content = $2, summary = $3, issue_id = $4,
			      featured_image_url = $5, status = $6, updated_at = now()
			  WHERE id = $7`
	result, err := s.DB.ExecContext(ctx, query,
		req.Title, req.Content, req.Summary, req.IssueID, req.FeaturedImageURL, req.Status, id)
	if err != nil {
		return 0, wrap(op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrap(op, err)
	}
	return int(rowsAffected), nil
}

// RemoveArticle удаляет статью по ID, отзывы удаляются каскадом.
func (s *Storage) RemoveArticle(ctx context.Context, id int64) (int, error) {
	const op = "storage.RemoveArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM articles WHERE id = $1`
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

// IncrementViewCount увеличивает счётчик просмотров статьи на единицу.
func (s *Storage) IncrementViewCount(ctx context.Context, id int64) error {
	const op = "storage.IncrementViewCount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE articles SET view_count = view_count + 1 WHERE id = $1`
	if _, err := s.DB.ExecContext(ctx, query, id); err != nil {
		return wrap(op, err)
	}
	return nil
}

// CountArticlesByStatus возвращает количество статей по каждому статусу.
func (s *Storage) CountArticlesByStatus(ctx context.Context) (map[string]int, error) {
	const op = "storage.CountArticlesByStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT status, COUNT(*) FROM articles GROUP BY status`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var total int
		if err := rows.Scan(&status, &total); err != nil {
			return nil, wrap(op, err)
		}
		counts[status] = total
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return counts, nil
}
