// Package session keeps short-lived conversation history per caller so the
// API can echo recent exchanges back to clients.
package session

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Exchange is one question/answer pair in a conversation.
type Exchange struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Success  bool      `json:"success"`
	AskedAt  time.Time `json:"asked_at"`
}

// Store holds conversation logs keyed by session id. Entries expire after
// the configured TTL of inactivity; appending refreshes the window.
type Store struct {
	mu       sync.Mutex
	cache    *ttlcache.Cache[string, []Exchange]
	maxDepth int
}

func NewStore(ttl time.Duration, maxDepth int) *Store {
	if maxDepth <= 0 {
		maxDepth = 20
	}
	cache := ttlcache.New[string, []Exchange](
		ttlcache.WithTTL[string, []Exchange](ttl),
	)
	go cache.Start()
	return &Store{cache: cache, maxDepth: maxDepth}
}

// Append records an exchange, trimming the oldest entries past the depth cap.
func (s *Store) Append(sessionID string, exchange Exchange) {
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var history []Exchange
	if item := s.cache.Get(sessionID); item != nil {
		history = item.Value()
	}
	history = append(history, exchange)
	if len(history) > s.maxDepth {
		history = history[len(history)-s.maxDepth:]
	}
	s.cache.Set(sessionID, history, ttlcache.DefaultTTL)
}

// History returns the recorded exchanges for a session, oldest first.
func (s *Store) History(sessionID string) []Exchange {
	if sessionID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.cache.Get(sessionID)
	if item == nil {
		return nil
	}
	history := item.Value()
	out := make([]Exchange, len(history))
	copy(out, history)
	return out
}

func (s *Store) Stop() {
	s.cache.Stop()
}
