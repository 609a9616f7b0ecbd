package permission

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Registry keeps one Cache per authenticated session.
type Registry struct {
	mu           sync.Mutex
	fetcher      Fetcher
	refreshEvery time.Duration
	sessions     *expirable.LRU[string, *Cache]
}

func NewRegistry(fetcher Fetcher, maxSessions int, sessionTTL, refreshEvery time.Duration) *Registry {
	if maxSessions <= 0 {
		maxSessions = 4096
	}
	return &Registry{
		fetcher:      fetcher,
		refreshEvery: refreshEvery,
		sessions:     expirable.NewLRU[string, *Cache](maxSessions, nil, sessionTTL),
	}
}

// For returns the session's cache, creating an uninitialized one on first use.
func (r *Registry) For(sessionID string, actor Actor) *Cache {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.sessions.Get(sessionID); ok && c.Actor() == actor {
		return c
	}
	c := NewCache(actor, r.fetcher, r.refreshEvery)
	r.sessions.Add(sessionID, c)
	return c
}

// Forget drops a session, e.g. on logout.
func (r *Registry) Forget(sessionID string) {
	r.sessions.Remove(sessionID)
}
