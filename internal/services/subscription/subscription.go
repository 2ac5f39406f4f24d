// Package services содержит бизнес-логику продления подписки:
// сдвиг срока, журнал платежей и публикацию уведомлений.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/newsletter-cms/internal/apperror"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter-cms/internal/models"
	"github.com/magabrotheeeer/newsletter-cms/internal/storage/repository"
)

// Цены продления подписки.
const (
	monthlyPrice = 9.99
	yearlyPrice  = 99.99
)

// SubscriptionRepository описывает методы хранилища для подписок.
type SubscriptionRepository interface {
	RenewSubscription(ctx context.Context, userID int64, status string, endDate time.Time, entry models.SubscriptionEntry) (int, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListSubscriptionEntries(ctx context.Context, userID int64) ([]*models.SubscriptionEntry, error)
}

// EventPublisher отправляет событие продления во внешнюю очередь.
type EventPublisher interface {
	Publish(message any) error
}

// RenewalEvent — сообщение о продлении для сервиса уведомлений.
type RenewalEvent struct {
	UserID           int64     `json:"user_id"`
	Email            string    `json:"email"`
	SubscriptionType string    `json:"subscription_type"`
	EndDate          time.Time `json:"end_date"`
}

// SubscriptionService реализует продление подписки.
type SubscriptionService struct {
	repo      SubscriptionRepository
	publisher EventPublisher
	log       *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
// Publisher может быть nil, тогда уведомления не отправляются.
func NewSubscriptionService(repo SubscriptionRepository, publisher EventPublisher, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Renew продлевает подписку пользователя: месячная на месяц, годовая
// на год от текущего момента в UTC. Состояние пользователя и запись
// журнала сохраняются одной транзакцией, клиенту возвращается свежий
// снимок пользователя. Сбой публикации уведомления продление не отменяет.
func (s *SubscriptionService) Renew(ctx context.Context, userID int64, req models.RenewSubscriptionRequest) (*models.User, error) {
	now := time.Now().UTC()
	var endDate time.Time
	var amount float64
	switch req.SubscriptionType {
	case models.SubscriptionMonthly:
		endDate = now.AddDate(0, 1, 0)
		amount = monthlyPrice
	case models.SubscriptionYearly:
		endDate = now.AddDate(1, 0, 0)
		amount = yearlyPrice
	default:
		return nil, apperror.Validation("subscription_type", "subscription type must be monthly or yearly")
	}

	entry := models.SubscriptionEntry{
		UID:              uuid.NewString(),
		UserID:           userID,
		SubscriptionType: req.SubscriptionType,
		StartDate:        now,
		EndDate:          endDate,
		Amount:           amount,
		Status:           models.SubscriptionActive,
	}
	// Живое состояние и запись журнала пишутся одной транзакцией,
	// чтобы сбой журнала не оставлял продление без записи.
	count, err := s.repo.RenewSubscription(ctx, userID, models.SubscriptionActive, endDate, entry)
	if err != nil {
		return nil, apperror.Store(err)
	}
	if count == 0 {
		return nil, apperror.NotFound("user", userID)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, apperror.Store(err)
	}

	s.log.Info("subscription renewed",
		slog.Int64("user_id", userID),
		slog.String("subscription_type", req.SubscriptionType),
		slog.Time("end_date", endDate))

	if s.publisher != nil {
		event := RenewalEvent{
			UserID:           userID,
			Email:            user.Email,
			SubscriptionType: req.SubscriptionType,
			EndDate:          endDate,
		}
		if err := s.publisher.Publish(event); err != nil {
			s.log.Error("failed to publish renewal event", sl.Err(err))
		}
	}

	return user, nil
}

// History возвращает журнал подписок пользователя.
func (s *SubscriptionService) History(ctx context.Context, userID int64) ([]*models.SubscriptionEntry, error) {
	result, err := s.repo.ListSubscriptionEntries(ctx, userID)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return result, nil
}
