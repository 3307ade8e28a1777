package bot

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemorySessionStore keeps sessions in process memory. Expired sessions are
// evicted in the background until Close is called.
type MemorySessionStore struct {
	cache *ttlcache.Cache[int64, Session]
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	cache := ttlcache.New[int64, Session](
		ttlcache.WithTTL[int64, Session](ttl),
		// Reading a session does not extend it; only Save does.
		ttlcache.WithDisableTouchOnHit[int64, Session](),
	)
	go cache.Start()
	return &MemorySessionStore{cache: cache}
}

func (s *MemorySessionStore) Get(_ context.Context, chatID int64) (Session, error) {
	item := s.cache.Get(chatID)
	if item == nil || item.IsExpired() {
		return Session{}, ErrNoSession
	}
	return item.Value(), nil
}

func (s *MemorySessionStore) Save(_ context.Context, chatID int64, session Session) error {
	s.cache.Set(chatID, session, ttlcache.DefaultTTL)
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, chatID int64) error {
	s.cache.Delete(chatID)
	return nil
}

// Len reports how many sessions are held, expired or not.
func (s *MemorySessionStore) Len() int {
	return s.cache.Len()
}

// Close stops the eviction loop.
func (s *MemorySessionStore) Close() {
	s.cache.Stop()
}
