package models

import "time"

// Типы подписки.
const (
	SubscriptionMonthly = "monthly"
	SubscriptionYearly  = "yearly"
)

// SubscriptionEntry — неизменяемая запись журнала подписок.
// Живое состояние подписки хранится в полях User; журнал только
// дописывается при каждом продлении и никогда не правится.
type SubscriptionEntry struct {
	ID               int64     `json:"id"`
	UID              string    `json:"uid"`
	UserID           int64     `json:"user_id"`
	SubscriptionType string    `json:"subscription_type"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	Amount           float64   `json:"amount"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// RenewSubscriptionRequest данные запроса продления подписки.
type RenewSubscriptionRequest struct {
	SubscriptionType string `json:"subscription_type" validate:"required,oneof=monthly yearly"`
}
