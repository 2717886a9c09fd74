package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
)

// KVStore is the durable shared key-value surface consumed by the persisted
// anti-repeat registry. Keys are namespaced so a companion process reading
// the same redis can share the data.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	Del(ctx context.Context, key string) error
	Close() error
}

type kvStore struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewKVStore(log *logger.Logger) (KVStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := strings.TrimSpace(os.Getenv("REDIS_PREFIX"))
	if prefix == "" {
		prefix = "quietwaters"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &kvStore{
		log:    log.With("service", "RedisKVStore"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (s *kvStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s == nil || s.rdb == nil {
		return nil, false, fmt.Errorf("redis kv store not initialized")
	}
	raw, err := s.rdb.Get(ctx, s.prefix+":"+key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *kvStore) Set(ctx context.Context, key string, val []byte) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis kv store not initialized")
	}
	return s.rdb.Set(ctx, s.prefix+":"+key, val, 0).Err()
}

func (s *kvStore) Del(ctx context.Context, key string) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis kv store not initialized")
	}
	return s.rdb.Del(ctx, s.prefix+":"+key).Err()
}

func (s *kvStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
