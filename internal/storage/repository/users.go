package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/newsletter-cms/internal/models"
)

// CreateUser сохраняет нового пользователя и возвращает его ID.
// Дубликат email или username возвращается как ErrUniqueViolation.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (username, email, password_hash, full_name, role,
			      subscription_status, subscription_end_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.FullName, user.Role,
		user.SubscriptionStatus, user.SubscriptionEndDate).Scan(&newID)
	if err != nil {
		return 0, wrap(op, err)
	}
	return newID, nil
}

const userColumns = `id, username, email, password_hash, full_name, role,
			      subscription_status, subscription_end_date, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var endDate sql.NullTime
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName,
		&u.Role, &u.SubscriptionStatus, &endDate, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if endDate.Valid {
		u.SubscriptionEndDate = &endDate.Time
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по его email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его ID.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// ListUsers возвращает список пользователей с пагинацией, свежие первыми.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// UpdateUser обновляет данные пользователя и возвращает количество изменённых строк.
func (s *Storage) UpdateUser(ctx context.Context, id int64, username, email, fullName, role, subscriptionStatus string) (int, error) {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET username = $1, email = $2, full_name = $3, role = $4,
			      subscription_status = $5, updated_at = now()
			  WHERE id = $6`
	result, err := s.DB.ExecContext(ctx, query, username, email, fullName, role, subscriptionStatus, id)
	if err != nil {
		return 0, wrap(op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrap(op, err)
	}
	return int(rowsAffected), nil
}

// CountUsersByRole возвращает количество пользователей по каждой роли
// и число активных подписок.
func (s *Storage) CountUsersByRole(ctx context.Context) (map[string]int, int, error) {
	const op = "storage.CountUsersByRole"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT role, COUNT(*),
			      COUNT(*) FILTER (WHERE subscription_status = 'active')
			  FROM users
			  GROUP BY role`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, 0, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[string]int)
	var active int
	for rows.Next() {
		var role string
		var total, activeByRole int
		if err := rows.Scan(&role, &total, &activeByRole); err != nil {
			return nil, 0, wrap(op, err)
		}
		counts[role] = total
		active += activeByRole
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrap(op, err)
	}
	return counts, active, nil
}
