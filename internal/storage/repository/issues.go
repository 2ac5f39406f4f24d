package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/newsletter-cms/internal/models"
)

// CreateIssue вставляет новый выпуск, назначая issue_number атомарно
// как max+1 внутри INSERT. Гонку двух одновременных вставок разрешает
// уникальный индекс: проигравший получает ErrUniqueViolation, и
// сервисный слой повторяет попытку.
func (s *Storage) CreateIssue(ctx context.Context, issue models.Issue) (int64, int, error) {
	const op = "storage.CreateIssue"
	select {
	case <-ctx.Done():
		return 0, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO issues (title, description, issue_number, publication_date,
			      cover_image_url, status, created_by)
			  SELECT $1, $2, COALESCE(MAX(issue_number), 0) + 1, $3, $4, $5, $6
			  FROM issues
			  RETURNING id, issue_number`
	var newID int64
	var issueNumber int
	err := s.DB.QueryRowContext(ctx, query,
		issue.Title, issue.Description, issue.PublicationDate,
		issue.CoverImageURL, issue.Status, issue.CreatedBy).Scan(&newID, &issueNumber)
	if err != nil {
		return 0, 0, wrap(op, err)
	}
	return newID, issueNumber, nil
}

const issueSelect = `
	SELECT i.id, i.title, i.description, i.issue_number, i.publication_date,
	       i.cover_image_url, i.status, i.created_by, u.full_name,
	       COUNT(a.id), i.created_at, i.updated_at
	FROM issues i
	LEFT JOIN users u ON i.created_by = u.id`

const issueGroupBy = ` GROUP BY i.id, u.full_name`

func scanIssue(row interface{ Scan(...any) error }) (*models.Issue, error) {
	i := &models.Issue{}
	var createdBy sql.NullInt64
	var creatorName, coverImage, description sql.NullString
	if err := row.Scan(&i.ID, &i.Title, &description, &i.IssueNumber, &i.PublicationDate,
		&coverImage, &i.Status, &createdBy, &creatorName,
		&i.ArticleCount, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	i.Description = description.String
	i.CoverImageURL = coverImage.String
	if createdBy.Valid {
		i.CreatedBy = &createdBy.Int64
	}
	i.CreatorName = creatorName.String
	return i, nil
}

func (s *Storage) listIssues(ctx context.Context, op, query string, args ...any) ([]*models.Issue, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Issue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, i)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// ListIssues возвращает все выпуски с числом статей, при непустом status —
// только с этим статусом.
func (s *Storage) ListIssues(ctx context.Context, status string) ([]*models.Issue, error) {
	const op = "storage.ListIssues"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if status != "" {
		query := issueSelect + `
	LEFT JOIN articles a ON i.id = a.issue_id
	WHERE i.status = $1` + issueGroupBy + ` ORDER BY i.publication_date DESC`
		return s.listIssues(ctx, op, query, status)
	}
	query := issueSelect + `
	LEFT JOIN articles a ON i.id = a.issue_id` + issueGroupBy + ` ORDER BY i.publication_date DESC`
	return s.listIssues(ctx, op, query)
}

// ListPublishedIssues возвращает опубликованные выпуски; в числе статей
// учитываются только опубликованные.
func (s *Storage) ListPublishedIssues(ctx context.Context) ([]*models.Issue, error) {
	const op = "storage.ListPublishedIssues"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := issueSelect + `
	LEFT JOIN articles a ON i.id = a.issue_id AND a.status = 'published'
	WHERE i.status = 'published'` + issueGroupBy + ` ORDER BY i.publication_date DESC`
	return s.listIssues(ctx, op, query)
}

// GetIssue возвращает выпуск по ID.
func (s *Storage) GetIssue(ctx context.Context, id int64) (*models.Issue, error) {
	const op = "storage.GetIssue"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := issueSelect + `
	LEFT JOIN articles a ON i.id = a.issue_id
	WHERE i.id = $1` + issueGroupBy
	i, err := scanIssue(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return i, nil
}

// ListIssueArticles возвращает статьи выпуска, при непустом status —
// только с этим статусом.
func (s *Storage) ListIssueArticles(ctx context.Context, issueID int64, status string) ([]*models.Article, error) {
	const op = "storage.ListIssueArticles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if status != "" {
		query := articleSelect + ` WHERE a.issue_id = $1 AND a.status = $2` +
			articleGroupBy + ` ORDER BY a.created_at DESC`
		return s.listArticles(ctx, op, query, issueID, status)
	}
	query := articleSelect + ` WHERE a.issue_id = $1` + articleGroupBy + ` ORDER BY a.created_at DESC`
	return s.listArticles(ctx, op, query, issueID)
}

// UpdateIssue обновляет выпуск и возвращает количество изменённых строк.
// issue_number не трогаем: он назначается системой один раз.
func (s *Storage) UpdateIssue(ctx context.Context, id int64, req models.UpdateIssueRequest, publicationDate time.Time) (int, error) {
	const op = "storage.UpdateIssue"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE issues
			  SET title = $1, description = $2, publication_date = $3,
			      cover_image_url = $4, status = $5, updated_at = now()
			  WHERE id = $6`
	result, err := s.DB.ExecContext(ctx, query,
		req.Title, req.Description, publicationDate, req.CoverImageURL, req.Status, id)
	if err != nil {
		return 0, wrap(op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrap(op, err)
	}
	return int(rowsAffected), nil
}

// RemoveIssue удаляет выпуск по ID; статьи выпуска и их отзывы
// удаляются каскадом внешних ключей.
func (s *Storage) RemoveIssue(ctx context.Context, id int64) (int, error) {
	const op = "storage.RemoveIssue"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM issues WHERE id = $1`
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

// CountIssuesByStatus возвращает количество выпусков по каждому статусу.
func (s *Storage) CountIssuesByStatus(ctx context.Context) (map[string]int, error) {
	const op = "storage.CountIssuesByStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT status, COUNT(*) FROM issues GROUP BY status`
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
