package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

var _ domain.SessionRepository = (*CachedSessionRepository)(nil)

const sessionCacheTTL = 30 * time.Minute

// CachedSessionRepository keeps each user's list results in one redis hash,
// one field per limit, and drops the whole hash on any write.
type CachedSessionRepository struct {
	next  domain.SessionRepository
	cache *redis.Client
	log   *zap.Logger
}

func NewCachedSessionRepository(next domain.SessionRepository, cache *redis.Client, log *zap.Logger) *CachedSessionRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedSessionRepository{
		next:  next,
		cache: cache,
		log:   log.Named("session-cache"),
	}
}

func (r *CachedSessionRepository) cacheKey(userID string) string {
	return fmt.Sprintf("sessions:%s", userID)
}

func (r *CachedSessionRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		r.log.Warn("invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (r *CachedSessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.FastingSession, error) {
	if limit < 0 {
		limit = 0
	}
	key := r.cacheKey(userID)
	field := strconv.Itoa(limit)

	val, err := r.cache.HGet(ctx, key, field).Result()
	if err == nil {
		var sessions []*domain.FastingSession
		if err := json.Unmarshal([]byte(val), &sessions); err == nil {
			return sessions, nil
		}

		r.log.Warn("corrupted cache entry, cleaning up key", zap.String("user_id", userID))
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		r.log.Warn("redis read error", zap.Error(err))
	}

	sessions, err := r.next.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(sessions); err == nil {
		pipe := r.cache.TxPipeline()
		pipe.HSet(ctx, key, field, data)
		pipe.Expire(ctx, key, sessionCacheTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			r.log.Warn("redis set error", zap.Error(err))
		}
	}

	return sessions, nil
}

func (r *CachedSessionRepository) GetByID(ctx context.Context, id string) (*domain.FastingSession, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedSessionRepository) GetActive(ctx context.Context, userID string) (*domain.FastingSession, error) {
	return r.next.GetActive(ctx, userID)
}

func (r *CachedSessionRepository) Create(ctx context.Context, s *domain.FastingSession) error {
	if err := r.next.Create(ctx, s); err != nil {
		return err
	}
	r.invalidate(ctx, s.UserID)
	return nil
}

func (r *CachedSessionRepository) Update(ctx context.Context, s *domain.FastingSession) error {
	if err := r.next.Update(ctx, s); err != nil {
		return err
	}
	r.invalidate(ctx, s.UserID)
	return nil
}

func (r *CachedSessionRepository) Delete(ctx context.Context, id string, userID string) error {
	if err := r.next.Delete(ctx, id, userID); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}
