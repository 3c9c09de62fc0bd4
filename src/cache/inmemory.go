package cache

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/multierr"
)

// InMemoryStore is a thread-safe in-memory implementation of Store.
// Entries are kept encoded so callers never share state with the store.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[key]memEntry
	now     func() time.Time
}

type key struct {
	job   string
	build int
}

type memEntry struct {
	data    []byte
	written time.Time
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[key]memEntry),
		now:     time.Now,
	}
}

func (s *InMemoryStore) Load(job string, build int, v interface{}) error {
	s.mu.RLock()
	e, ok := s.entries[key{job, build}]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound{Job: job, Build: build}
	}
	return json.Unmarshal(e.data, v)
}

func (s *InMemoryStore) Save(job string, build int, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key{job, build}] = memEntry{data: data, written: s.now()}
	return nil
}

func (s *InMemoryStore) SaveAll(entries []Entry) error {
	var err error
	for _, e := range entries {
		err = multierr.Append(err, s.Save(e.Job, e.Build, e.Value))
	}
	return err
}

func (s *InMemoryStore) EvictOlderThan(maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	threshold := s.now().Add(-maxAge)
	removed := 0
	for k, e := range s.entries {
		if e.written.Before(threshold) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of entries.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Put stores raw bytes under a key, bypassing encoding. Useful for
// simulating corrupted entries.
func (s *InMemoryStore) Put(job string, build int, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key{job, build}] = memEntry{data: append([]byte(nil), raw...), written: s.now()}
}
