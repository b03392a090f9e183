package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
)

var _ domain.DeviceStore = (*MemoryDeviceStore)(nil)

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryDeviceStore is the process-local fallback used when redis is down.
// Values do not survive a restart.
type MemoryDeviceStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryDeviceStore() *MemoryDeviceStore {
	return &MemoryDeviceStore{
		items: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

func (s *MemoryDeviceStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(e.raw, dest); err != nil {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (s *MemoryDeviceStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("device store: encode %s: %w", key, err)
	}

	e := memoryEntry{raw: raw}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.items[key] = e
	s.mu.Unlock()
	return nil
}
