package export

import (
	"errors"
	"sync"
	"time"
)

// ErrCooldown is returned when an export for the same key was triggered too recently.
var ErrCooldown = errors.New("export: already in progress, try again shortly")

// Cooldown is the in-flight guard shared by the open and download deliveries.
// Once a key is acquired, further acquisitions fail until the window elapses
// or the key is released after a failed delivery.
type Cooldown struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	now    func() time.Time
}

func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window: window,
		last:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Acquire marks key as in flight.
func (c *Cooldown) Acquire(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if t, ok := c.last[key]; ok && now.Sub(t) < c.window {
		return ErrCooldown
	}
	c.last[key] = now

	if len(c.last) > 512 {
		for k, t := range c.last {
			if now.Sub(t) >= c.window {
				delete(c.last, k)
			}
		}
	}
	return nil
}

// Release clears key so the user can retry at once.
func (c *Cooldown) Release(key string) {
	c.mu.Lock()
	delete(c.last, key)
	c.mu.Unlock()
}
