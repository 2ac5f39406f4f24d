package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/newsletter-cms/internal/config"
)

func setupTestDenylist(t *testing.T) (*TokenDenylist, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		Password:     "",
		DB:           0,
		User:         "",
	}

	denylist, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return denylist, mr
}

func TestRevokeAndIsRevoked(t *testing.T) {
	denylist, _ := setupTestDenylist(t)
	ctx := context.Background()

	err := denylist.Revoke(ctx, "some.jwt.token", time.Minute)
	require.NoError(t, err)

	revoked, err := denylist.IsRevoked(ctx, "some.jwt.token")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestIsRevoked_UnknownToken(t *testing.T) {
	denylist, _ := setupTestDenylist(t)

	revoked, err := denylist.IsRevoked(context.Background(), "never.seen.token")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevoke_ExpiredTTLIsNoop(t *testing.T) {
	denylist, _ := setupTestDenylist(t)
	ctx := context.Background()

	// Токен с истекшим сроком жизни в список не пишется.
	err := denylist.Revoke(ctx, "expired.jwt.token", -time.Second)
	require.NoError(t, err)

	revoked, err := denylist.IsRevoked(ctx, "expired.jwt.token")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevoke_EntryExpiresWithToken(t *testing.T) {
	denylist, mr := setupTestDenylist(t)
	ctx := context.Background()

	err := denylist.Revoke(ctx, "short.jwt.token", time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	revoked, err := denylist.IsRevoked(ctx, "short.jwt.token")
	require.NoError(t, err)
	assert.False(t, revoked)
}
