package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps analyses in memory and expires them after a TTL
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a new memory store. Entries set with a zero TTL
// use defaultTTL.
func NewMemoryStore(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves an analysis. Reads do not extend its expiry.
func (s *MemoryStore) Get(id string) (*Entry, bool) {
	if val, found := s.cache.Get(Key(id)); found {
		return val.(*Entry), true
	}
	return nil, false
}

// Set stores an analysis with the given TTL
func (s *MemoryStore) Set(id string, entry *Entry, ttl time.Duration) {
	s.cache.Set(Key(id), entry, ttl)
}

// Delete removes an analysis
func (s *MemoryStore) Delete(id string) {
	s.cache.Delete(Key(id))
}

// Len returns the number of stored analyses, expired ones included until
// the next cleanup
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}
