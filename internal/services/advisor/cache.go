package advisor

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// answerCache keeps recent answers keyed by normalized question text.
// Portfolio data changes at most daily, so repeat questions within the
// TTL would produce near-identical answers anyway.
type answerCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	answer    *Answer
	createdAt time.Time
}

func newAnswerCache(ttl time.Duration) *answerCache {
	if ttl == 0 {
		ttl = 1 * time.Hour
	}
	return &answerCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

func (c *answerCache) get(question string) *Answer {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[hashQuestion(question)]
	if !ok || time.Since(entry.createdAt) >= c.ttl {
		return nil
	}

	copied := *entry.answer
	return &copied
}

func (c *answerCache) set(question string, answer *Answer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[hashQuestion(question)] = &cacheEntry{
		answer:    answer,
		createdAt: time.Now(),
	}
}

func (c *answerCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

func hashQuestion(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
