package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/leadroom/internal/domain"
	"github.com/ignite/leadroom/internal/pkg/logger"
)

const cacheKeyPrefix = "leadroom:settings:"

// negative-cache marker for "client has no override"
const cacheNone = "none"

// DebouncedClientStore is a two-tier ClientStore: saves land in redis
// immediately and flush to the durable store after a quiet period. A
// new save for the same client cancels and reschedules the pending
// flush rather than queueing a second one. Reads prefer the cache and
// fall through to the durable store.
//
// The version compare-and-swap runs synchronously against the freshest
// visible copy, with the whole read-check-commit held under saveMu, so
// two racing saves through the same process cannot both win. Saves
// racing across processes that share the redis cache are caught by the
// same version compare; processes with separate caches resolve
// last-write-wins at flush time. See DESIGN.md.
type DebouncedClientStore struct {
	durable ClientStore
	redis   *redis.Client
	delay   time.Duration
	ttl     time.Duration

	// saveMu serializes Save and Delete end to end. The version check
	// is only a CAS if nothing can commit between the read and the
	// write.
	saveMu sync.Mutex

	mu      sync.Mutex
	pending map[string]*pendingFlush
}

type pendingFlush struct {
	timer    *time.Timer
	settings *domain.ClientSettings
}

// NewDebouncedClientStore wraps a durable store with a redis cache and
// debounced flushing.
func NewDebouncedClientStore(durable ClientStore, rdb *redis.Client, flushDelay, cacheTTL time.Duration) *DebouncedClientStore {
	return &DebouncedClientStore{
		durable: durable,
		redis:   rdb,
		delay:   flushDelay,
		ttl:     cacheTTL,
		pending: make(map[string]*pendingFlush),
	}
}

// GetOverride implements ClientStore. Cache misses and cache errors
// fall through to the durable store.
func (s *DebouncedClientStore) GetOverride(ctx context.Context, clientID string) (*domain.ClientSettings, error) {
	key := cacheKeyPrefix + clientID
	val, err := s.redis.Get(ctx, key).Result()
	if err == nil {
		if val == cacheNone {
			return nil, nil
		}
		var cs domain.ClientSettings
		if err := json.Unmarshal([]byte(val), &cs); err == nil {
			return &cs, nil
		}
		logger.Warn("corrupt settings cache entry, falling through", "client_id", clientID)
	} else if err != redis.Nil {
		logger.Warn("settings cache read failed, falling through", "client_id", clientID, "error", err.Error())
	}

	cs, err := s.durable.GetOverride(ctx, clientID)
	if err != nil {
		return nil, err
	}
	s.populateCache(ctx, clientID, cs)
	return cs, nil
}

// Save implements ClientStore. The version check and cache write are
// synchronous; the durable write is debounced.
func (s *DebouncedClientStore) Save(ctx context.Context, cs *domain.ClientSettings) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	current, err := s.GetOverride(ctx, cs.ClientID)
	if err != nil {
		return err
	}
	if current != nil && current.Version != cs.Version {
		return fmt.Errorf("%w: have %d, want %d", domain.ErrVersionConflict, current.Version, cs.Version)
	}
	if current == nil && cs.Version != 0 {
		return fmt.Errorf("%w: client %s has no override, expected version 0", domain.ErrVersionConflict, cs.ClientID)
	}

	cs.Version++
	cs.UpdatedAt = time.Now().UTC()
	s.populateCache(ctx, cs.ClientID, cs)
	s.schedule(cs)
	return nil
}

// Delete implements ClientStore. Reset is not debounced: the pending
// flush is cancelled and the durable row removed immediately, so no
// partial-reset state can reappear from a late flush.
func (s *DebouncedClientStore) Delete(ctx context.Context, clientID string) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if p, ok := s.pending[clientID]; ok {
		p.timer.Stop()
		delete(s.pending, clientID)
	}
	s.mu.Unlock()

	if err := s.durable.Delete(ctx, clientID); err != nil {
		return err
	}
	if err := s.redis.Set(ctx, cacheKeyPrefix+clientID, cacheNone, s.ttl).Err(); err != nil {
		logger.Warn("settings cache invalidation failed", "client_id", clientID, "error", err.Error())
	}
	return nil
}

// FlushNow forces every pending flush to the durable store.
func (s *DebouncedClientStore) FlushNow(ctx context.Context) error {
	s.mu.Lock()
	batch := make([]*domain.ClientSettings, 0, len(s.pending))
	for id, p := range s.pending {
		p.timer.Stop()
		batch = append(batch, p.settings)
		delete(s.pending, id)
	}
	s.mu.Unlock()

	var firstErr error
	for _, cs := range batch {
		if err := s.flushOne(ctx, cs); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close flushes outstanding work. Call on shutdown.
func (s *DebouncedClientStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.FlushNow(ctx)
}

func (s *DebouncedClientStore) schedule(cs *domain.ClientSettings) {
	cp := cloneSettings(cs)
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pending[cs.ClientID]; ok {
		p.timer.Stop()
	}
	s.pending[cs.ClientID] = &pendingFlush{
		settings: cp,
		timer: time.AfterFunc(s.delay, func() {
			s.fire(cs.ClientID)
		}),
	}
}

func (s *DebouncedClientStore) fire(clientID string) {
	s.mu.Lock()
	p, ok := s.pending[clientID]
	if ok {
		delete(s.pending, clientID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.flushOne(ctx, p.settings); err != nil {
		logger.Error("debounced settings flush failed", "client_id", clientID, "error", err.Error())
	}
}

// flushOne writes one cached override to the durable store. The
// version check already ran at save time, so the flush is a plain
// snapshot write; the durable row ends up at the cached version even
// when several saves debounced into one flush.
func (s *DebouncedClientStore) flushOne(ctx context.Context, cs *domain.ClientSettings) error {
	return s.durable.Put(ctx, cs)
}

func (s *DebouncedClientStore) populateCache(ctx context.Context, clientID string, cs *domain.ClientSettings) {
	key := cacheKeyPrefix + clientID
	var payload string
	if cs == nil {
		payload = cacheNone
	} else {
		data, err := json.Marshal(cs)
		if err != nil {
			logger.Warn("settings cache encode failed", "client_id", clientID, "error", err.Error())
			return
		}
		payload = string(data)
	}
	if err := s.redis.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		logger.Warn("settings cache write failed", "client_id", clientID, "error", err.Error())
	}
}
