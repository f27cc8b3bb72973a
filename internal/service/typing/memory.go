package typing

import (
	"sync"
	"time"
)

type entry struct {
	userName string
	at       time.Time
}

// MemoryStore keeps typing presence in process memory. Suitable for a
// single instance; multi-instance deployments should use RedisStore.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go s.sweep(SweepInterval)
	return s
}

// newMemoryStoreAt builds a store with a custom clock and no background
// sweep, for tests.
func newMemoryStoreAt(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     now,
		stop:    make(chan struct{}),
	}
}

func (s *MemoryStore) SetTyping(chatID, userName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[chatID] = entry{userName: userName, at: s.now()}
	return nil
}

func (s *MemoryStore) ClearTyping(chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, chatID)
	return nil
}

// IsTyping treats stale entries as not typing even before the sweep
// removes them.
func (s *MemoryStore) IsTyping(chatID string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[chatID]
	if !ok {
		return Status{}, nil
	}
	if s.now().Sub(e.at) >= Freshness {
		delete(s.entries, chatID)
		return Status{}, nil
	}
	return Status{Typing: true, UserName: e.userName}, nil
}

func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.purge()
		}
	}
}

func (s *MemoryStore) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-Freshness)
	for id, e := range s.entries {
		if !e.at.After(cutoff) {
			delete(s.entries, id)
		}
	}
}
