package client

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, "test:cli", ttl), mr
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, 0)

	session, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	require.NoError(t, store.Save(ctx, Session{Token: "abc", User: &User{ID: 3, Name: "Sarah Ahmed"}}))
	token, err := mr.Get("test:cli:" + KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
	assert.True(t, mr.Exists("test:cli:"+KeyUser))
	assert.Zero(t, mr.TTL("test:cli:"+KeyToken))

	session, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "abc", session.Token)
	require.NotNil(t, session.User)
	assert.Equal(t, "Sarah Ahmed", session.User.Name)

	require.NoError(t, store.Save(ctx, Session{Token: "def"}))
	assert.False(t, mr.Exists("test:cli:"+KeyUser), "saving without a user drops the stale record")

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists("test:cli:"+KeyToken))
	session, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestRedisStoreKeysExpire(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)

	require.NoError(t, store.Save(ctx, Session{Token: "abc", User: &User{ID: 2}}))
	assert.Equal(t, time.Hour, mr.TTL("test:cli:"+KeyToken))
	assert.Equal(t, time.Hour, mr.TTL("test:cli:"+KeyUser))

	mr.FastForward(time.Hour + time.Second)
	session, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestRedisStoreDefaultNamespace(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, NewRedisStore(rdb, "", 0).Save(context.Background(), Session{Token: "abc"}))
	assert.True(t, mr.Exists("lostfound:session:"+KeyToken))
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	mr.Close()

	_, err := store.Load(context.Background())
	assert.Error(t, err)
	assert.Error(t, store.Save(context.Background(), Session{Token: "abc"}))
}
