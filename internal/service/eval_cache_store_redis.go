package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisEvaluationCacheStore keeps cached payloads under hashed data keys and
// tracks them in an index set so InvalidateAll can delete without SCAN.
type RedisEvaluationCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisEvaluationCacheStore(client redis.UniversalClient, prefix string) *RedisEvaluationCacheStore {
	if prefix == "" {
		prefix = "flag_eval_cache"
	}
	return &RedisEvaluationCacheStore{client: client, prefix: prefix}
}

func (s *RedisEvaluationCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.client == nil {
		return nil, false, nil
	}
	val, err := s.client.Get(ctx, s.dataKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisEvaluationCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	dataKey := s.dataKey(key)
	index := s.indexKey()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, dataKey, value, ttl)
	pipe.SAdd(ctx, index, dataKey)
	pipe.Expire(ctx, index, ttl+time.Minute)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisEvaluationCacheStore) InvalidateAll(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	index := s.indexKey()
	keys, err := s.client.SMembers(ctx, index).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	pipe := s.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, index)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisEvaluationCacheStore) dataKey(cacheKey string) string {
	return fmt.Sprintf("%s:data:%s", s.prefix, hashToken(cacheKey))
}

func (s *RedisEvaluationCacheStore) indexKey() string {
	return fmt.Sprintf("%s:index:all", s.prefix)
}

// hashToken keeps arbitrary user identifiers out of redis key space.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
