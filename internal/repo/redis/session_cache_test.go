package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contactbook/internal/domain/model"
)

func newCache(t *testing.T, ttl time.Duration) (*SessionCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionCache(client, ttl, zap.NewNop()), mr
}

func TestPutGetRoundtrip(t *testing.T) {
	cache, _ := newCache(t, time.Hour)
	ctx := context.Background()

	rt := "some-refresh-token"
	user := model.User{
		ID:             7,
		Email:          "a@example.com",
		Username:       "agent007",
		HashedPassword: "$argon2id$...",
		Confirmed:      true,
		Role:           model.RoleAdmin,
		RefreshToken:   &rt,
	}

	require.NoError(t, cache.Put(ctx, user.Username, user))

	got, ok, err := cache.Get(ctx, "agent007")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, user.Email, got.Email)
	require.Equal(t, model.RoleAdmin, got.Role)
	require.True(t, got.Confirmed)
	require.NotNil(t, got.RefreshToken)
	require.Equal(t, rt, *got.RefreshToken)
}

func TestGetMiss(t *testing.T) {
	cache, _ := newCache(t, time.Hour)

	_, ok, err := cache.Get(context.Background(), "nobody")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEntryExpires(t *testing.T) {
	cache, mr := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "agent007", model.User{ID: 1, Username: "agent007"}))

	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "agent007")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPutOverwritesAndResetsTTL(t *testing.T) {
	cache, mr := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "agent007", model.User{ID: 1, Username: "agent007"}))
	mr.FastForward(45 * time.Second)
	require.NoError(t, cache.Put(ctx, "agent007", model.User{ID: 1, Username: "agent007", Confirmed: true}))
	mr.FastForward(45 * time.Second)

	got, ok, err := cache.Get(ctx, "agent007")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, got.Confirmed)
}

func TestCorruptSnapshotReadsAsMiss(t *testing.T) {
	cache, mr := newCache(t, time.Hour)

	mr.Set("session:agent007", "{not json")

	_, ok, err := cache.Get(context.Background(), "agent007")
	require.NoError(t, err)
	require.False(t, ok)
}
