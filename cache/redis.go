package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	cachekey "github.com/always-cache/accelerator/pkg/cache-key"
)

// RedisStorage keeps entries in Redis.
// All variants of a URL live in one hash, keyed by discriminators,
// so a single HGETALL returns them.
type RedisStorage struct {
	client *redis.Client
	keyer  cachekey.Keyer
}

// RedisStorageConfig holds configuration for Redis storage
type RedisStorageConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // Key prefix for all cache entries
}

func NewRedisStorage(cfg RedisStorageConfig) (*RedisStorage, error) {
	if cfg.Prefix == "" {
		cfg.Prefix = "accelerator"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, storageError("redis", "open", fmt.Errorf("failed to connect to Redis: %w", err))
	}

	return &RedisStorage{
		client: client,
		keyer:  cachekey.NewKeyer(cfg.Prefix),
	}, nil
}

func (s *RedisStorage) Fetch(ctx context.Context, url string) ([]Entry, bool, error) {
	variants, err := s.client.HGetAll(ctx, s.keyer.Resource(url)).Result()
	if err != nil {
		return nil, false, storageError("redis", "fetch", err)
	}
	entries := make([]Entry, 0, len(variants))
	for _, v := range variants {
		e, err := decodeEntry([]byte(v))
		if err != nil {
			return nil, false, storageError("redis", "decode", err)
		}
		entries = append(entries, e)
	}
	return entries, len(entries) > 0, nil
}

func (s *RedisStorage) Store(ctx context.Context, e Entry) (ChunkHandler, error) {
	return newBufferedHandler(ctx, e, s.commit), nil
}

// commit is a single HSET, which redis applies atomically.
func (s *RedisStorage) commit(ctx context.Context, e Entry) error {
	b, err := encodeEntry(e)
	if err != nil {
		return storageError("redis", "encode", err)
	}
	err = s.client.HSet(ctx, s.keyer.Resource(e.URL), e.Discriminators.Key(), b).Err()
	return storageError("redis", "commit", err)
}

func (s *RedisStorage) Close() error {
	return storageError("redis", "close", s.client.Close())
}
