// Package apperror определяет типизированные ошибки приложения.
//
// Шесть категорий покрывают все исходы операций: ошибки валидации,
// аутентификации, авторизации, отсутствие сущности, конфликт уникальности
// и ошибка хранилища. Обработчики сопоставляют категорию HTTP-статусу;
// детали StoreError наружу не отдаются, только в лог.
package apperror

import (
	"errors"
	"fmt"
)

// Сторожевые ошибки категорий, проверяются через errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication required")
	ErrAuthorization  = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrStore          = errors.New("store error")
)

// AppError ошибка приложения с категорией и человекочитаемым сообщением.
type AppError struct {
	Err     error  // сторожевая ошибка категории либо обёрнутая причина
	Message string // сообщение для клиента
	Field   string // необязательное поле, вызвавшее ошибку
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation возвращает ошибку валидации входных данных.
func Validation(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthenticated возвращает ошибку отсутствия аутентификации.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrAuthentication,
		Message: message,
	}
}

// Forbidden возвращает ошибку недостатка прав или владения.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrAuthorization,
		Message: message,
	}
}

// NotFound возвращает ошибку отсутствия сущности по идентификатору.
func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s with id %d not found", resource, id),
	}
}

// Conflict возвращает ошибку нарушения уникальности.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Store оборачивает ошибку хранилища. Сообщение для клиента всегда
// обезличено, причина сохраняется для errors.Is/As и логов.
func Store(err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrStore, err),
		Message: "internal error",
	}
}
