package playback

import (
	"context"
	"errors"
	"time"

	"github.com/eleven-am/audiogen/internal/shared"
	"github.com/redis/go-redis/v9"
)

const (
	defaultHandleTTL = time.Hour

	fieldData = "data"
	fieldMIME = "mime_type"
)

// RedisStore keeps handles in Redis so any replica can serve /media/:id.
// Entries expire after the TTL even if never released.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultHandleTTL
	}
	return &RedisStore{redis: redisClient, ttl: ttl}
}

func mediaKey(id string) string {
	return "media:" + id
}

func (s *RedisStore) Create(ctx context.Context, result *shared.AudioResult) (*Handle, error) {
	h := newHandle(result)
	key := mediaKey(h.ID)

	pipe := s.redis.Pipeline()
	pipe.HSet(ctx, key, fieldData, result.Data, fieldMIME, result.MIMEType)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*shared.AudioResult, error) {
	values, err := s.redis.HGetAll(ctx, mediaKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	data, ok := values[fieldData]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &shared.AudioResult{
		Data:     []byte(data),
		MIMEType: values[fieldMIME],
	}, nil
}

func (s *RedisStore) Release(ctx context.Context, id string) error {
	return s.redis.Del(ctx, mediaKey(id)).Err()
}
