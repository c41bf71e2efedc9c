package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"noticeboard-http-service/internal/infrastructure/config"
)

const (
	cacheKeyPrefix = "cache:"
	cacheTagPrefix = "cache-tag:"
)

// RedisService is the shared response cache. Every entry is also recorded in a
// set per tag so a tag can be dropped without scanning the keyspace.
type RedisService struct {
	Client *redis.Client
	logger *zap.Logger
}

// NewRedisClient connects to the configured Redis and verifies it with a ping.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.GetRedisAddr(), err)
	}
	return client, nil
}

// NewRedisService wraps client as an InterfaceCacheService.
func NewRedisService(client *redis.Client, logger *zap.Logger) InterfaceCacheService {
	return &RedisService{
		Client: client,
		logger: logger,
	}
}

// 1 Get returns the cached content for key.
func (s *RedisService) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// 2 Set stores content under key and records it in the tag set. The tag set
// outlives its longest member: its expiry is only ever extended, and an entry
// without a ttl makes the set persistent.
func (s *RedisService) Set(ctx context.Context, tag, key string, content []byte, ttl time.Duration) error {
	tagKey := cacheTagPrefix + tag
	current, err := s.Client.TTL(ctx, tagKey).Result()
	if err != nil {
		return err
	}

	_, err = s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, content, ttl)
		pipe.SAdd(ctx, tagKey, key)
		switch {
		case ttl <= 0:
			pipe.Persist(ctx, tagKey)
		case current == -1:
			// already persistent
		case current < ttl:
			pipe.Expire(ctx, tagKey, ttl)
		}
		return nil
	})
	return err
}

// 3 InvalidateTag deletes every entry recorded under tag.
func (s *RedisService) InvalidateTag(ctx context.Context, tag string) error {
	tagKey := cacheTagPrefix + tag
	keys, err := s.Client.SMembers(ctx, tagKey).Result()
	if err != nil {
		return err
	}

	keys = append(keys, tagKey)
	if err := s.Client.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	s.logger.Debug("cache tag invalidated", zap.String("tag", tag), zap.Int("keys", len(keys)-1))
	return nil
}

// 4 Purge deletes every cache entry and tag set.
func (s *RedisService) Purge(ctx context.Context) error {
	for _, pattern := range []string{cacheKeyPrefix + "*", cacheTagPrefix + "*"} {
		iter := s.Client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := s.Client.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}
