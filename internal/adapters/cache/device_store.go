package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

var _ domain.DeviceStore = (*RedisDeviceStore)(nil)

// RedisDeviceStore holds small per-user JSON documents that have no table of
// their own, such as meditation stats.
type RedisDeviceStore struct {
	rdb    *redis.Client
	prefix string
	log    *zap.Logger
}

func NewRedisDeviceStore(rdb *redis.Client, log *zap.Logger) *RedisDeviceStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisDeviceStore{rdb: rdb, prefix: "device:", log: log.Named("device-store")}
}

// GetJSON reports false for missing keys and for values that do not decode;
// the latter are deleted.
func (s *RedisDeviceStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("device store: get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		s.log.Warn("corrupted value, cleaning up key", zap.String("key", key), zap.Error(err))
		if delErr := s.rdb.Del(ctx, s.prefix+key).Err(); delErr != nil {
			s.log.Warn("cleanup failed", zap.String("key", key), zap.Error(delErr))
		}
		return false, nil
	}
	return true, nil
}

// SetJSON stores value; a zero ttl keeps it forever.
func (s *RedisDeviceStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("device store: encode %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, s.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("device store: set %s: %w", key, err)
	}
	return nil
}
