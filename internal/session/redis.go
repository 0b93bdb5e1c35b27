package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"event-portal/internal/model"
)

// RedisStore keeps session pairs in Redis so multiple gateway replicas see
// the same sessions. A zero TTL stores the pair without expiry; token
// lifetime stays entirely upstream-enforced either way.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	return &RedisStore{client: redis.NewClient(opt), ttl: ttl}, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Save(ctx context.Context, sid string, kind model.Kind, token string, principal string) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, tokenKey(sid, kind), token, s.ttl)
	pipe.Set(ctx, dataKey(sid, kind), principal, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Load(ctx context.Context, sid string, kind model.Kind) (Entry, bool, error) {
	values, err := s.client.MGet(ctx, tokenKey(sid, kind), dataKey(sid, kind)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}

	token, tokenOK := values[0].(string)
	data, dataOK := values[1].(string)
	if !tokenOK || !dataOK {
		return Entry{}, false, nil
	}

	return Entry{Token: token, Principal: data}, true, nil
}

func (s *RedisStore) Clear(ctx context.Context, sid string, kind model.Kind) error {
	return s.client.Del(ctx, tokenKey(sid, kind), dataKey(sid, kind)).Err()
}
