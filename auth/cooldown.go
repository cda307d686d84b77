package auth

import (
	"sync"
	"time"
)

// DefaultCooldownSeconds is the lockout applied after a rate-limited login
// attempt when the server does not say how long to wait.
const DefaultCooldownSeconds = 60

// Cooldown is the client-side lockout after a rate-limited login attempt.
// Once started it counts down once per second regardless of further user
// input; login stays disabled until it reaches zero.
type Cooldown struct {
	mu        sync.Mutex
	remaining int
	stop      chan struct{}
	tick      time.Duration
}

// NewCooldown creates an inactive countdown. tick is the decrement interval;
// production callers pass time.Second.
func NewCooldown(tick time.Duration) *Cooldown {
	if tick <= 0 {
		tick = time.Second
	}
	return &Cooldown{tick: tick}
}

// Start begins (or restarts) the countdown at seconds.
func (c *Cooldown) Start(seconds int) {
	if seconds <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
	}
	c.remaining = seconds
	c.stop = make(chan struct{})
	go c.run(c.stop)
}

// Stop halts the countdown and clears the remaining time.
func (c *Cooldown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.remaining = 0
}

// Remaining returns the seconds left, 0 when inactive.
func (c *Cooldown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Active reports whether a countdown is running.
func (c *Cooldown) Active() bool {
	return c.Remaining() > 0
}

func (c *Cooldown) run(stop chan struct{}) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.stop != stop { // superseded by a restart
				c.mu.Unlock()
				return
			}
			c.remaining--
			if c.remaining <= 0 {
				c.remaining = 0
				c.stop = nil
				c.mu.Unlock()
				return
			}
			c.mu.Unlock()
		}
	}
}
