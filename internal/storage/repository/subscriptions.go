package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/newsletter-cms/internal/models"
)

// RenewSubscription обновляет живое состояние подписки пользователя и
// дописывает запись в журнал одной транзакцией: при сбое вставки в журнал
// откатывается и обновление пользователя. Возвращает число обновленных
// пользователей; при нуле журнал не пополняется. Журнал неизменяемый,
// операций обновления нет.
func (s *Storage) RenewSubscription(ctx context.Context, userID int64,
	status string, endDate time.Time, entry models.SubscriptionEntry) (int, error) {
	const op = "storage.RenewSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrap(op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	update := `UPDATE users
			   SET subscription_status = $1, subscription_end_date = $2, updated_at = now()
			   WHERE id = $3`
	result, err := tx.ExecContext(ctx, update, status, endDate, userID)
	if err != nil {
		return 0, wrap(op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrap(op, err)
	}
	if rowsAffected == 0 {
		return 0, nil
	}

	insert := `INSERT INTO subscription_entries (uid, user_id, subscription_type,
			       start_date, end_date, amount, status)
			   VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, insert,
		entry.UID, entry.UserID, entry.SubscriptionType,
		entry.StartDate, entry.EndDate, entry.Amount, entry.Status); err != nil {
		return 0, wrap(op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, wrap(op, err)
	}
	return int(rowsAffected), nil
}

// ListSubscriptionEntries возвращает записи журнала пользователя,
// свежие первыми.
func (s *Storage) ListSubscriptionEntries(ctx context.Context, userID int64) ([]*models.SubscriptionEntry, error) {
	const op = "storage.ListSubscriptionEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, uid, user_id, subscription_type, start_date, end_date,
			      amount, status, created_at
			  FROM subscription_entries
			  WHERE user_id = $1
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionEntry
	for rows.Next() {
		var e models.SubscriptionEntry
		if err := rows.Scan(&e.ID, &e.UID, &e.UserID, &e.SubscriptionType,
			&e.StartDate, &e.EndDate, &e.Amount, &e.Status, &e.CreatedAt); err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}
