package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/newsletter-cms/internal/apperror"
	"github.com/magabrotheeeer/newsletter-cms/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) RenewSubscription(ctx context.Context, userID int64, status string,
	endDate time.Time, entry models.SubscriptionEntry) (int, error) {
	args := m.Called(ctx, userID, status, endDate, entry)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) ListSubscriptionEntries(ctx context.Context, userID int64) ([]*models.SubscriptionEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionEntry), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(message any) error {
	return m.Called(message).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSubscriptionService_Renew(t *testing.T) {
	user := &models.User{
		ID:                 1,
		Username:           "reader",
		Email:              "reader@example.com",
		SubscriptionStatus: models.SubscriptionActive,
	}

	tests := []struct {
		name       string
		subType    string
		wantAmount float64
		wantShift  func(now time.Time) time.Time
	}{
		{
			name:       "месячное продление сдвигает срок на месяц",
			subType:    models.SubscriptionMonthly,
			wantAmount: 9.99,
			wantShift:  func(now time.Time) time.Time { return now.AddDate(0, 1, 0) },
		},
		{
			name:       "годовое продление сдвигает срок на год",
			subType:    models.SubscriptionYearly,
			wantAmount: 99.99,
			wantShift:  func(now time.Time) time.Time { return now.AddDate(1, 0, 0) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := time.Now().UTC()
			repo := new(RepoMock)
			publisher := new(PublisherMock)

			repo.On("RenewSubscription", mock.Anything, int64(1), models.SubscriptionActive,
				mock.MatchedBy(func(endDate time.Time) bool {
					// Срок отсчитывается от текущего момента, допускаем дрейф теста.
					return !endDate.Before(tt.wantShift(before)) &&
						!endDate.After(tt.wantShift(before.Add(time.Minute)))
				}),
				mock.MatchedBy(func(entry models.SubscriptionEntry) bool {
					return entry.UID != "" &&
						entry.UserID == 1 &&
						entry.SubscriptionType == tt.subType &&
						entry.Amount == tt.wantAmount &&
						entry.Status == models.SubscriptionActive
				})).Return(1, nil).Once()
			repo.On("GetUser", mock.Anything, int64(1)).Return(user, nil).Once()
			publisher.On("Publish", mock.MatchedBy(func(msg any) bool {
				event, ok := msg.(RenewalEvent)
				return ok && event.UserID == 1 && event.Email == user.Email &&
					event.SubscriptionType == tt.subType
			})).Return(nil).Once()

			svc := NewSubscriptionService(repo, publisher, newNoopLogger())
			got, err := svc.Renew(context.Background(), 1, models.RenewSubscriptionRequest{
				SubscriptionType: tt.subType,
			})
			require.NoError(t, err)
			assert.Equal(t, user.Email, got.Email)
			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_Renew_InvalidType(t *testing.T) {
	svc := NewSubscriptionService(new(RepoMock), nil, newNoopLogger())
	_, err := svc.Renew(context.Background(), 1, models.RenewSubscriptionRequest{
		SubscriptionType: "weekly",
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestSubscriptionService_Renew_UserNotFound(t *testing.T) {
	repo := new(RepoMock)
	repo.On("RenewSubscription", mock.Anything, int64(404), models.SubscriptionActive,
		mock.Anything, mock.Anything).Return(0, nil).Once()

	svc := NewSubscriptionService(repo, nil, newNoopLogger())
	_, err := svc.Renew(context.Background(), 404, models.RenewSubscriptionRequest{
		SubscriptionType: models.SubscriptionMonthly,
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	repo.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestSubscriptionService_Renew_StoreFailure(t *testing.T) {
	repo := new(RepoMock)
	repo.On("RenewSubscription", mock.Anything, int64(1), models.SubscriptionActive,
		mock.Anything, mock.Anything).Return(0, errors.New("connection reset")).Once()

	svc := NewSubscriptionService(repo, nil, newNoopLogger())
	_, err := svc.Renew(context.Background(), 1, models.RenewSubscriptionRequest{
		SubscriptionType: models.SubscriptionMonthly,
	})
	// Обновление и журнал пишутся одним вызовом хранилища, поэтому
	// сбой не оставляет продления без записи в журнале.
	assert.ErrorIs(t, err, apperror.ErrStore)
	repo.AssertNumberOfCalls(t, "RenewSubscription", 1)
	repo.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestSubscriptionService_Renew_PublishFailureDoesNotFail(t *testing.T) {
	repo := new(RepoMock)
	publisher := new(PublisherMock)
	repo.On("RenewSubscription", mock.Anything, int64(1), models.SubscriptionActive,
		mock.Anything, mock.Anything).Return(1, nil).Once()
	repo.On("GetUser", mock.Anything, int64(1)).
		Return(&models.User{ID: 1, Email: "reader@example.com"}, nil).Once()
	publisher.On("Publish", mock.Anything).Return(errors.New("broker unavailable")).Once()

	svc := NewSubscriptionService(repo, publisher, newNoopLogger())
	got, err := svc.Renew(context.Background(), 1, models.RenewSubscriptionRequest{
		SubscriptionType: models.SubscriptionMonthly,
	})
	// Продление состоялось, несмотря на сбой уведомления.
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}

func TestSubscriptionService_Renew_NilPublisher(t *testing.T) {
	repo := new(RepoMock)
	repo.On("RenewSubscription", mock.Anything, int64(1), models.SubscriptionActive,
		mock.Anything, mock.Anything).Return(1, nil).Once()
	repo.On("GetUser", mock.Anything, int64(1)).
		Return(&models.User{ID: 1}, nil).Once()

	svc := NewSubscriptionService(repo, nil, newNoopLogger())
	_, err := svc.Renew(context.Background(), 1, models.RenewSubscriptionRequest{
		SubscriptionType: models.SubscriptionYearly,
	})
	assert.NoError(t, err)
}

func TestSubscriptionService_History(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListSubscriptionEntries", mock.Anything, int64(1)).
		Return([]*models.SubscriptionEntry{
			{ID: 2, UID: "b", SubscriptionType: models.SubscriptionYearly},
			{ID: 1, UID: "a", SubscriptionType: models.SubscriptionMonthly},
		}, nil).Once()

	svc := NewSubscriptionService(repo, nil, newNoopLogger())
	got, err := svc.History(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
