package client

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the session in Redis under "<namespace>:auth_token" and
// "<namespace>:user_data". Several processes of one user can share it.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
}

// NewRedisStore creates a store. A zero ttl keeps keys until cleared.
func NewRedisStore(client redis.UniversalClient, namespace string, ttl time.Duration) *RedisStore {
	if namespace == "" {
		namespace = "lostfound:session"
	}
	return &RedisStore{client: client, namespace: namespace, ttl: ttl}
}

func (s *RedisStore) key(name string) string {
	return s.namespace + ":" + name
}

func (s *RedisStore) Load(ctx context.Context) (*Session, error) {
	vals, err := s.client.MGet(ctx, s.key(KeyToken), s.key(KeyUser)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	values := map[string]string{}
	for i, name := range []string{KeyToken, KeyUser} {
		if str, ok := vals[i].(string); ok {
			values[name] = str
		}
	}
	return decodeSession(values), nil
}

func (s *RedisStore) Save(ctx context.Context, session Session) error {
	values, err := encodeSession(session)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(KeyToken), values[KeyToken], s.ttl)
		if user, ok := values[KeyUser]; ok {
			pipe.Set(ctx, s.key(KeyUser), user, s.ttl)
		} else {
			pipe.Del(ctx, s.key(KeyUser))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(KeyToken), s.key(KeyUser)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
