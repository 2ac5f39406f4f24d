// Package cache реализует чёрный список отозванных JWT на Redis.
//
// Logout помещает токен в список с TTL, равным остатку его жизни;
// middleware отклоняет запросы с токеном из списка. Контент и агрегаты
// рейтингов в Redis не кешируются — агрегаты пересчитываются на каждый
// запрос.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/newsletter-cms/internal/config"
)

const denylistPrefix = "revoked_token:"

// TokenDenylist хранит отозванные токены в Redis.
type TokenDenylist struct {
	Db *redis.Client
}

// InitServer подключается к Redis и возвращает готовый TokenDenylist.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*TokenDenylist, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &TokenDenylist{Db: db}, nil
}

// Revoke помещает токен в чёрный список до истечения его срока жизни.
// Неположительный ttl означает уже истёкший токен, писать нечего.
func (c *TokenDenylist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	const op = "cache.Revoke"
	if ttl <= 0 {
		return nil
	}
	if err := c.Db.Set(ctx, denylistPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsRevoked сообщает, находится ли токен в чёрном списке.
func (c *TokenDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	const op = "cache.IsRevoked"
	_, err := c.Db.Get(ctx, denylistPrefix+token).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}
