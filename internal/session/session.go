package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/menu-order/internal/cache"
	"github.com/fjod/go_cart/menu-order/internal/domain"
	"go.uber.org/zap"
)

const persistTimeout = 2 * time.Second

// Session owns the order-in-progress of one menu session. The in-memory
// draft is the source of truth; the cache only serves restores.
type Session struct {
	key   string
	store cache.DraftCache
	log   *zap.Logger

	mu         sync.Mutex
	draft      domain.Draft
	version    uint64
	lastAccess time.Time

	persistMu sync.Mutex
	drained   *sync.Cond
	written   uint64
	inflight  int
}

func New(key string, draft domain.Draft, store cache.DraftCache, log *zap.Logger) *Session {
	s := &Session{
		key:        key,
		store:      store,
		log:        log.With(zap.String("session", key)),
		draft:      draft,
		lastAccess: time.Now(),
	}
	s.drained = sync.NewCond(&s.persistMu)
	return s
}

func (s *Session) Key() string {
	return s.key
}

// Mutate applies fn to a copy of the draft and commits it when fn succeeds.
// A committed change is persisted in the background.
func (s *Session) Mutate(fn func(d *domain.Draft) error) error {
	s.mu.Lock()
	next := s.draft.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.draft = next
	s.version++
	s.lastAccess = time.Now()
	snapshot := next.Clone()
	version := s.version
	s.mu.Unlock()

	s.persist(snapshot, version)
	return nil
}

// View runs fn against the current draft without copying it. fn must not
// retain or modify d.
func (s *Session) View(fn func(d *domain.Draft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
	fn(&s.draft)
}

func (s *Session) Snapshot() domain.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// Flush blocks until every scheduled write has finished. Writes scheduled
// while it waits are waited for too.
func (s *Session) Flush() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	for s.inflight > 0 {
		s.drained.Wait()
	}
}

func (s *Session) persist(snapshot domain.Draft, version uint64) {
	s.persistMu.Lock()
	s.inflight++
	s.persistMu.Unlock()

	go func() {
		defer s.done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("persistence skipped", zap.Any("panic", r))
			}
		}()

		s.persistMu.Lock()
		defer s.persistMu.Unlock()
		if version <= s.written {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.store.Set(ctx, s.key, &snapshot); err != nil {
			s.log.Warn("persistence skipped", zap.Uint64("version", version), zap.Error(err))
			return
		}
		s.written = version
	}()
}

func (s *Session) done() {
	s.persistMu.Lock()
	s.inflight--
	if s.inflight == 0 {
		s.drained.Broadcast()
	}
	s.persistMu.Unlock()
}

// Key builds the storage key of a session bound to one restaurant menu.
func Key(sessionID, restaurantID string) string {
	return fmt.Sprintf("%s:%s", sessionID, restaurantID)
}
