package session

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/menu-order/internal/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Registry hands out the single Session of each (session id, restaurant)
// pair, restoring it from the cache the first time it is requested.
// Restores run outside the registry lock, one per key.
type Registry struct {
	store    cache.DraftCache
	log      *zap.Logger
	restores singleflight.Group

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(store cache.DraftCache, log *zap.Logger) *Registry {
	return &Registry{
		store:    store,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Get(ctx context.Context, sessionID, restaurantID string) *Session {
	key := Key(sessionID, restaurantID)

	if s, ok := r.lookup(key); ok {
		return s
	}

	v, _, _ := r.restores.Do(key, func() (any, error) {
		if s, ok := r.lookup(key); ok {
			return s, nil
		}

		res := Restore(ctx, r.store, key, restaurantID, r.log)
		if res.Restored {
			r.log.Debug("session restored", zap.String("session", key), zap.Int("items", len(res.Draft.Items)))
		}
		s := New(key, res.Draft, r.store, r.log)

		r.mu.Lock()
		defer r.mu.Unlock()
		if existing, ok := r.sessions[key]; ok {
			return existing, nil
		}
		r.sessions[key] = s
		return s, nil
	})
	return v.(*Session)
}

func (r *Registry) lookup(key string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle drops sessions untouched for longer than maxIdle. Their drafts
// stay in the cache and are restored on the next request.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	var idle []*Session
	for key, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, key)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Flush()
	}
	return len(idle)
}

// Run evicts idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(maxIdle); n > 0 {
				r.log.Debug("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Flush waits for the pending writes of every live session.
func (r *Registry) Flush() {
	r.mu.Lock()
	live := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		live = append(live, s)
	}
	r.mu.Unlock()

	for _, s := range live {
		s.Flush()
	}
}
