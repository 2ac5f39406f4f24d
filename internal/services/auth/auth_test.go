package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/newsletter-cms/internal/apperror"
	jwtlib "github.com/magabrotheeeer/newsletter-cms/internal/lib/jwt"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/password"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/roles"
	"github.com/magabrotheeeer/newsletter-cms/internal/models"
	"github.com/magabrotheeeer/newsletter-cms/internal/storage/repository"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) CreateUser(ctx context.Context, user models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}
func (m *UsersMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *UsersMock) UpdateUser(ctx context.Context, id int64, username, email, fullName, role, subscriptionStatus string) (int, error) {
	args := m.Called(ctx, id, username, email, fullName, role, subscriptionStatus)
	return args.Int(0), args.Error(1)
}

type RevokerMock struct{ mock.Mock }

func (m *RevokerMock) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return m.Called(ctx, token, ttl).Error(0)
}

func newService(users *UsersMock, revoker *RevokerMock) *AuthService {
	maker := jwtlib.NewJWTMaker("test_secret_key", time.Hour)
	return NewAuthService(users, maker, revoker)
}

func TestAuthService_Register(t *testing.T) {
	req := models.RegisterRequest{
		Username: "reader",
		Email:    "reader@example.com",
		Password: "secret123",
		FullName: "Test Reader",
	}

	tests := []struct {
		name       string
		req        models.RegisterRequest
		setupMocks func(u *UsersMock)
		wantRole   roles.Role
		wantErr    error
	}{
		{
			name: "успешная регистрация с ролью по умолчанию",
			req:  req,
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByEmail", mock.Anything, req.Email).Return(nil, repository.ErrNotFound).Once()
				u.On("GetUserByUsername", mock.Anything, req.Username).Return(nil, repository.ErrNotFound).Once()
				u.On("CreateUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Role == roles.Subscriber &&
						user.SubscriptionStatus == models.SubscriptionActive &&
						user.SubscriptionEndDate != nil &&
						user.PasswordHash != "" &&
						user.PasswordHash != req.Password
				})).Return(int64(7), nil).Once()
			},
			wantRole: roles.Subscriber,
		},
		{
			name: "явная роль editor",
			req: models.RegisterRequest{
				Username: "writer", Email: "writer@example.com",
				Password: "secret123", FullName: "Writer", Role: "editor",
			},
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByEmail", mock.Anything, "writer@example.com").Return(nil, repository.ErrNotFound).Once()
				u.On("GetUserByUsername", mock.Anything, "writer").Return(nil, repository.ErrNotFound).Once()
				u.On("CreateUser", mock.Anything, mock.Anything).Return(int64(8), nil).Once()
			},
			wantRole: roles.Editor,
		},
		{
			name: "неизвестная роль",
			req: models.RegisterRequest{
				Username: "x", Email: "x@example.com",
				Password: "secret123", FullName: "X", Role: "superadmin",
			},
			setupMocks: func(_ *UsersMock) {},
			wantErr:    apperror.ErrValidation,
		},
		{
			name: "почта занята",
			req:  req,
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByEmail", mock.Anything, req.Email).
					Return(&models.User{ID: 1, Email: req.Email}, nil).Once()
			},
			wantErr: apperror.ErrConflict,
		},
		{
			name: "имя пользователя занято",
			req:  req,
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByEmail", mock.Anything, req.Email).Return(nil, repository.ErrNotFound).Once()
				u.On("GetUserByUsername", mock.Anything, req.Username).
					Return(&models.User{ID: 2, Username: req.Username}, nil).Once()
			},
			wantErr: apperror.ErrConflict,
		},
		{
			name: "гонка на вставке разрешается конфликтом",
			req:  req,
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByEmail", mock.Anything, req.Email).Return(nil, repository.ErrNotFound).Once()
				u.On("GetUserByUsername", mock.Anything, req.Username).Return(nil, repository.ErrNotFound).Once()
				u.On("CreateUser", mock.Anything, mock.Anything).
					Return(int64(0), repository.ErrUniqueViolation).Once()
			},
			wantErr: apperror.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			tt.setupMocks(users)
			svc := newService(users, new(RevokerMock))

			user, err := svc.Register(context.Background(), tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantRole, user.Role)
				assert.Empty(t, user.PasswordHash)
				assert.NotZero(t, user.ID)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	stored := &models.User{
		ID:                 5,
		Username:           "reader",
		Email:              "reader@example.com",
		PasswordHash:       hash,
		Role:               roles.Subscriber,
		SubscriptionStatus: models.SubscriptionActive,
	}

	tests := []struct {
		name       string
		email      string
		pass       string
		setupMocks func(u *UsersMock)
		wantErr    error
	}{
		{
			name:  "успешный вход",
			email: "reader@example.com",
			pass:  "secret123",
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByEmail", mock.Anything, "reader@example.com").Return(stored, nil).Once()
			},
		},
		{
			name:  "неизвестная почта",
			email: "ghost@example.com",
			pass:  "secret123",
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByEmail", mock.Anything, "ghost@example.com").
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: apperror.ErrAuthentication,
		},
		{
			name:  "неверный пароль",
			email: "reader@example.com",
			pass:  "wrong",
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByEmail", mock.Anything, "reader@example.com").Return(stored, nil).Once()
			},
			wantErr: apperror.ErrAuthentication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			tt.setupMocks(users)
			svc := newService(users, new(RevokerMock))

			token, user, err := svc.Login(context.Background(), models.LoginRequest{
				Email:    tt.email,
				Password: tt.pass,
			})

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				// Обе причины отказа выглядят для клиента одинаково.
				assert.Equal(t, "invalid credentials", err.Error())
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Empty(t, user.PasswordHash)
			users.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	users := new(UsersMock)
	revoker := new(RevokerMock)
	svc := newService(users, revoker)

	maker := jwtlib.NewJWTMaker("test_secret_key", time.Hour)
	token, err := maker.GenerateToken(5, "reader", "subscriber", "active")
	require.NoError(t, err)

	revoker.On("Revoke", mock.Anything, token, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 50*time.Minute && ttl <= time.Hour
	})).Return(nil).Once()

	require.NoError(t, svc.Logout(context.Background(), token))
	revoker.AssertExpectations(t)

	err = svc.Logout(context.Background(), "garbage-token")
	assert.ErrorIs(t, err, apperror.ErrAuthentication)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	stored := &models.User{
		ID:                 5,
		Username:           "reader",
		Email:              "reader@example.com",
		FullName:           "Old Name",
		Role:               roles.Subscriber,
		SubscriptionStatus: models.SubscriptionActive,
	}

	t.Run("почта и роль сохраняются", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUser", mock.Anything, int64(5)).Return(stored, nil).Once()
		users.On("UpdateUser", mock.Anything, int64(5), "newname", "reader@example.com",
			"New Name", "subscriber", "active").Return(1, nil).Once()
		updated := *stored
		updated.Username = "newname"
		updated.FullName = "New Name"
		users.On("GetUser", mock.Anything, int64(5)).Return(&updated, nil).Once()

		svc := newService(users, new(RevokerMock))
		user, err := svc.UpdateProfile(context.Background(), 5, models.UpdateProfileRequest{
			Username: "newname",
			FullName: "New Name",
		})
		require.NoError(t, err)
		assert.Equal(t, "newname", user.Username)
		assert.Equal(t, "reader@example.com", user.Email)
		users.AssertExpectations(t)
	})

	t.Run("занятое имя пользователя", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUser", mock.Anything, int64(5)).Return(stored, nil).Once()
		users.On("UpdateUser", mock.Anything, int64(5), mock.Anything, mock.Anything,
			mock.Anything, mock.Anything, mock.Anything).
			Return(0, repository.ErrUniqueViolation).Once()

		svc := newService(users, new(RevokerMock))
		_, err := svc.UpdateProfile(context.Background(), 5, models.UpdateProfileRequest{
			Username: "taken",
			FullName: "Name",
		})
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})
}

func TestAuthService_AdminUpdateUser(t *testing.T) {
	t.Run("несуществующий пользователь", func(t *testing.T) {
		users := new(UsersMock)
		users.On("UpdateUser", mock.Anything, int64(99), mock.Anything, mock.Anything,
			mock.Anything, mock.Anything, mock.Anything).Return(0, nil).Once()

		svc := newService(users, new(RevokerMock))
		_, err := svc.AdminUpdateUser(context.Background(), 99, models.AdminUpdateUserRequest{
			Username: "x", Email: "x@example.com", FullName: "X",
			Role: "editor", SubscriptionStatus: "active",
		})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("недопустимая роль", func(t *testing.T) {
		svc := newService(new(UsersMock), new(RevokerMock))
		_, err := svc.AdminUpdateUser(context.Background(), 1, models.AdminUpdateUserRequest{
			Username: "x", Email: "x@example.com", FullName: "X",
			Role: "owner", SubscriptionStatus: "active",
		})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestAuthService_ListUsers_StripsHashes(t *testing.T) {
	users := new(UsersMock)
	users.On("ListUsers", mock.Anything, 100, 0).Return([]*models.User{
		{ID: 1, Username: "a", PasswordHash: "hash-a"},
		{ID: 2, Username: "b", PasswordHash: "hash-b"},
	}, nil).Once()

	svc := newService(users, new(RevokerMock))
	got, err := svc.ListUsers(context.Background(), 0, 0)
	require.NoError(t, err)
	for _, u := range got {
		assert.Empty(t, u.PasswordHash)
	}
	users.AssertExpectations(t)
}

func TestAuthService_Profile_NotFound(t *testing.T) {
	users := new(UsersMock)
	users.On("GetUser", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound).Once()

	svc := newService(users, new(RevokerMock))
	_, err := svc.Profile(context.Background(), 404)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.False(t, errors.Is(err, apperror.ErrAuthorization))
}
