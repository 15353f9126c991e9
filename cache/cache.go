// Package cache memoizes BAL parses keyed by a content hash of the source.
//
// Editors re-derive graphs on every keystroke settle, and most of those
// derivations see text the process has already parsed. The cache keeps the
// last parses around, bounded by entry count and by age, so repeated
// lookups of identical text return the identical *bal.Program.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/baleybay/gobal/bal"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultCapacity bounds the number of retained parses.
	DefaultCapacity = 100

	// DefaultTTL is how long an entry stays valid after insertion.
	DefaultTTL = 5 * time.Minute
)

// Cache is a bounded, expiring parse cache. It is safe for concurrent use;
// the worst a racing pair of callers can do is parse the same text twice.
type Cache struct {
	lru *expirable.LRU[string, *bal.Program]
}

// New creates a cache holding at most capacity parses, each valid for ttl
// after insertion. Non-positive arguments fall back to the defaults.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{lru: expirable.NewLRU[string, *bal.Program](capacity, nil, ttl)}
}

// GetOrParse returns the cached Program for text, parsing on a miss.
// The key is the SHA-256 of the exact text, so two sources differing by a
// single byte are distinct entries. Parse errors propagate unchanged and
// are never cached.
func (c *Cache) GetOrParse(text string) (*bal.Program, error) {
	key := hashKey(text)
	if prog, ok := c.lru.Get(key); ok {
		return prog, nil
	}

	prog, err := bal.ParseText(text)
	if err != nil {
		return nil, err
	}

	c.lru.Add(key, prog)
	return prog, nil
}

// Clear drops every entry. Subsequent lookups re-parse.
func (c *Cache) Clear() {
	c.lru.Purge()
}

// Len reports how many entries are currently cached.
func (c *Cache) Len() int {
	return c.lru.Len()
}

func hashKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
