// Package models содержит доменные структуры системы: пользователей,
// статьи, выпуски, отзывы и записи журнала подписок, а также
// вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"time"

	"github.com/magabrotheeeer/newsletter-cms/internal/lib/roles"
)

// Статусы подписки пользователя.
const (
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID                  int64      `json:"id"`
	Username            string     `json:"username"`  // Имя пользователя (уникальное)
	Email               string     `json:"email"`     // Электронная почта (уникальная)
	PasswordHash        string     `json:"-"`         // Хэш пароля, наружу не отдаётся
	FullName            string     `json:"full_name"` // Отображаемое имя
	Role                roles.Role `json:"role"`
	SubscriptionStatus  string     `json:"subscription_status"`
	SubscriptionEndDate *time.Time `json:"subscription_end_date,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Principal — аутентифицированная личность запроса, восстановленная из JWT.
type Principal struct {
	ID                 int64      `json:"id"`
	Username           string     `json:"username"`
	Role               roles.Role `json:"role"`
	SubscriptionStatus string     `json:"subscription_status"`
}

// RegisterRequest данные запроса регистрации.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=admin editor subscriber"`
}

// LoginRequest данные запроса входа.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest данные запроса обновления собственного профиля.
// Почта, роль и статус подписки через профиль не меняются.
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	FullName string `json:"full_name" validate:"required,max=100"`
}

// AdminUpdateUserRequest данные запроса административного обновления пользователя.
type AdminUpdateUserRequest struct {
	Username           string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email              string `json:"email" validate:"required,email"`
	FullName           string `json:"full_name" validate:"required,max=100"`
	Role               string `json:"role" validate:"required,oneof=admin editor subscriber"`
	SubscriptionStatus string `json:"subscription_status" validate:"required,oneof=active expired cancelled"`
}
