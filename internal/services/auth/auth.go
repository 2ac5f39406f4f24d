// Package services содержит бизнес-логику регистрации, входа, выхода
// и управления учётными записями.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/magabrotheeeer/newsletter-cms/internal/apperror"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/jwt"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/password"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/roles"
	"github.com/magabrotheeeer/newsletter-cms/internal/models"
	"github.com/magabrotheeeer/newsletter-cms/internal/storage/repository"
)

// UserRepository описывает контракт для работы с пользователями в хранилище.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (int64, error)
	// GetUserByEmail возвращает пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByUsername возвращает пользователя по username.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUser возвращает пользователя по ID.
	GetUser(ctx context.Context, id int64) (*models.User, error)
	// ListUsers возвращает список пользователей с пагинацией.
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	// UpdateUser обновляет данные пользователя.
	UpdateUser(ctx context.Context, id int64, username, email, fullName, role, subscriptionStatus string) (int, error)
}

// TokenRevoker описывает чёрный список отозванных токенов.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// AuthService отвечает за регистрацию, авторизацию и отзыв JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	revoker  TokenRevoker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, revoker TokenRevoker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		revoker:  revoker,
	}
}

// Register создает нового пользователя с хэшированием пароля.
// Роль по умолчанию — subscriber; регистрация выдаёт активную подписку
// на год вперёд. Дубликат email или username — ConflictError.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	role := roles.Subscriber
	if req.Role != "" {
		parsed, err := roles.Parse(req.Role)
		if err != nil {
			return nil, apperror.Validation("role", "role must be admin, editor, or subscriber")
		}
		role = parsed
	}

	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Conflict("email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Store(err)
	}
	if _, err := s.users.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, apperror.Conflict("username already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Store(err)
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, apperror.Store(err)
	}

	endDate := time.Now().UTC().AddDate(1, 0, 0)
	user := models.User{
		Username:            req.Username,
		Email:               req.Email,
		PasswordHash:        hashed,
		FullName:            req.FullName,
		Role:                role,
		SubscriptionStatus:  models.SubscriptionActive,
		SubscriptionEndDate: &endDate,
	}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		// Проверки выше не атомарны, гонку разрешает ограничение в базе.
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, apperror.Conflict("account with this email or username already exists")
		}
		return nil, apperror.Store(err)
	}
	user.ID = id
	user.PasswordHash = ""
	return &user, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
// Несуществующий email и неверный пароль неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, apperror.Unauthenticated("invalid credentials")
		}
		return "", nil, apperror.Store(err)
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", nil, apperror.Unauthenticated("invalid credentials")
	}
	token, err := s.jwtMaker.GenerateToken(user.ID, user.Username, string(user.Role), user.SubscriptionStatus)
	if err != nil {
		return "", nil, apperror.Store(err)
	}
	user.PasswordHash = ""
	return token, user, nil
}

// Logout отзывает предъявленный токен до конца его срока жизни.
func (s *AuthService) Logout(ctx context.Context, tokenStr string) error {
	claims, err := s.jwtMaker.ParseToken(tokenStr)
	if err != nil {
		return apperror.Unauthenticated("invalid or expired token")
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revoker.Revoke(ctx, tokenStr, ttl); err != nil {
		return apperror.Store(err)
	}
	return nil
}

// Profile возвращает собственный профиль пользователя без хэша пароля.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, apperror.Store(err)
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile обновляет username и отображаемое имя пользователя;
// почта, роль и статус подписки сохраняются. Возвращает обновлённый
// срез принципала — сессию никто неявно не правит.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, apperror.Store(err)
	}

	count, err := s.users.UpdateUser(ctx, userID, req.Username, user.Email, req.FullName,
		string(user.Role), user.SubscriptionStatus)
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, apperror.Conflict("username already taken")
		}
		return nil, apperror.Store(err)
	}
	if count == 0 {
		return nil, apperror.NotFound("user", userID)
	}
	return s.Profile(ctx, userID)
}

// ListUsers возвращает список пользователей для административной панели.
func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	users, err := s.users.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Store(err)
	}
	for _, u := range users {
		u.PasswordHash = ""
	}
	return users, nil
}

// AdminUpdateUser обновляет пользователя от имени администратора,
// включая роль и статус подписки.
func (s *AuthService) AdminUpdateUser(ctx context.Context, id int64, req models.AdminUpdateUserRequest) (*models.User, error) {
	if _, err := roles.Parse(req.Role); err != nil {
		return nil, apperror.Validation("role", "role must be admin, editor, or subscriber")
	}
	count, err := s.users.UpdateUser(ctx, id, req.Username, req.Email, req.FullName,
		req.Role, req.SubscriptionStatus)
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, apperror.Conflict("email or username already in use")
		}
		return nil, apperror.Store(err)
	}
	if count == 0 {
		return nil, apperror.NotFound("user", id)
	}
	return s.Profile(ctx, id)
}
