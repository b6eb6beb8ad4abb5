// Package eventcache memoizes events returned by the external source. Entries
// are bounded in number and expire after a fixed TTL; a newer record for the
// same ID replaces the old one.
package eventcache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/machi-events/eventfinder/internal/model"
)

// Cache is safe for concurrent use.
type Cache struct {
	lru *expirable.LRU[string, model.Event]
}

// New creates a cache holding at most size events for ttl each.
// A non-positive ttl disables expiry.
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 1
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{lru: expirable.NewLRU[string, model.Event](size, nil, ttl)}
}

// Get returns a copy of the cached event.
func (c *Cache) Get(id string) (model.Event, bool) {
	return c.lru.Get(id)
}

// Put upserts ev. Events without an ID are ignored.
func (c *Cache) Put(ev model.Event) {
	if ev.ID == "" {
		return
	}
	c.lru.Add(ev.ID, ev)
}

// PutAll upserts every event in order, so later duplicates win.
func (c *Cache) PutAll(events []model.Event) {
	for _, ev := range events {
		c.Put(ev)
	}
}

// Len reports the number of live entries.
func (c *Cache) Len() int { return c.lru.Len() }
