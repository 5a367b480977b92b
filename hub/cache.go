// Package hub holds the latest reading and fans new readings out to
// real-time subscribers.
package hub

import (
	"sync"

	"scalebridge/scale"
)

// Cache retains the most recent successfully parsed reading. It starts
// empty, is replaced on every successful parse, and is never cleared.
// One writer (the device session) and any number of concurrent readers.
type Cache struct {
	mu   sync.RWMutex
	last *scale.Reading
}

func NewCache() *Cache {
	return &Cache{}
}

// Set replaces the cached reading.
func (c *Cache) Set(r scale.Reading) {
	c.mu.Lock()
	c.last = &r
	c.mu.Unlock()
}

// Get returns the most recent reading, or false if none has arrived yet.
func (c *Cache) Get() (scale.Reading, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return scale.Reading{}, false
	}
	return *c.last, true
}
