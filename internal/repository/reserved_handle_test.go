package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testReservedKey = "test:reserved_handles"

func newReservedHandles(t *testing.T) (*ReservedHandleRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewReservedHandleRepository(client, testReservedKey), mr
}

func TestReservedHandleRepository_ReserveAndCheck(t *testing.T) {
	t.Parallel()

	repo, mr := newReservedHandles(t)
	ctx := context.Background()

	require.NoError(t, repo.Reserve(ctx, "Admin", " root ", ""))

	members, err := mr.Members(testReservedKey)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"admin", "root"}, members)

	reserved, err := repo.IsReserved(ctx, "ADMIN")
	require.NoError(t, err)
	assert.True(t, reserved)

	reserved, err = repo.IsReserved(ctx, "ada")
	require.NoError(t, err)
	assert.False(t, reserved)
}

func TestReservedHandleRepository_ReserveNothing(t *testing.T) {
	t.Parallel()

	repo, mr := newReservedHandles(t)

	require.NoError(t, repo.Reserve(context.Background()))
	assert.False(t, mr.Exists(testReservedKey))
}

func TestReservedHandleRepository_RedisDown(t *testing.T) {
	t.Parallel()

	repo, mr := newReservedHandles(t)
	mr.Close()

	_, err := repo.IsReserved(context.Background(), "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checking reserved handle")
}
