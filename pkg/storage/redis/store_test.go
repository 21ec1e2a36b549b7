package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaderkill/pkg/storage"
	"leaderkill/pkg/storage/redis"
)

func startRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr
}

func TestOpen_EmptyPrefixIsNoSuchStore(t *testing.T) {
	mr := startRedis(t)

	_, err := storage.NewResolver(storage.Options{}).
		Open(context.Background(), "redis://"+mr.Addr()+"/0?prefix=run1:")
	assert.ErrorIs(t, err, storage.ErrNoSuchStore)
}

func TestOpen_Unreachable(t *testing.T) {
	mr := startRedis(t)
	addr := mr.Addr()
	mr.Close()

	_, err := storage.NewResolver(storage.Options{}).
		Open(context.Background(), "redis://"+addr+"/0")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}

func TestOpen_InvalidLocator(t *testing.T) {
	_, err := storage.NewResolver(storage.Options{}).
		Open(context.Background(), "redis://localhost:6379/notadb")
	assert.ErrorIs(t, err, storage.ErrNoSuchStore)
}

func TestStore_ReadWrite(t *testing.T) {
	mr := startRedis(t)
	require.NoError(t, mr.Set("run1:pid.log", "4242"))

	s, err := storage.NewResolver(storage.Options{}).
		Open(context.Background(), "redis://"+mr.Addr()+"/0?prefix=run1:")
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	pid, err := s.ReadSharedFile(ctx, "pid.log")
	require.NoError(t, err)
	assert.Equal(t, "4242", string(pid))

	_, err = s.ReadSharedFile(ctx, "leader_node_id.log")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.WriteSharedFile(ctx, "_toil_kill_flag", []byte("YES")))
	require.NoError(t, s.WriteSharedFile(ctx, "_toil_kill_flag", []byte("YES")))
	got, err := mr.Get("run1:_toil_kill_flag")
	require.NoError(t, err)
	assert.Equal(t, "YES", got)
	assert.Zero(t, mr.TTL("run1:_toil_kill_flag"))
}

func TestStore_WriteAfterServerLoss(t *testing.T) {
	mr := startRedis(t)
	require.NoError(t, mr.Set(redis.DefaultPrefix+"pid.log", "1"))

	client := backend.NewClient(&backend.Options{Addr: mr.Addr(), MaxRetries: -1})
	s, err := redis.NewFromClient(context.Background(), client, redis.DefaultPrefix)
	require.NoError(t, err)
	defer s.Close()

	mr.Close()
	err = s.WriteSharedFile(context.Background(), "_toil_kill_flag", []byte("YES"))
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}
