package assets

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache keeps recently served rendition bytes in memory so repeat
// fetches skip the disk read. It sits above the cache file existence
// check and never substitutes for it: a path is only consulted here after
// its file has been confirmed on disk.
type MemoryCache struct {
	lru *lru.LRU[string, []byte]
}

// NewMemoryCache creates a byte cache holding up to size entries, each
// for at most ttl.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{lru: lru.NewLRU[string, []byte](size, nil, ttl)}
}

// Get returns the cached bytes for a cache file path.
func (m *MemoryCache) Get(path string) ([]byte, bool) {
	return m.lru.Get(path)
}

// Add stores the bytes served from a cache file path.
func (m *MemoryCache) Add(path string, data []byte) {
	m.lru.Add(path, data)
}

// Remove drops a path, used when the file behind it is deleted.
func (m *MemoryCache) Remove(path string) {
	m.lru.Remove(path)
}
