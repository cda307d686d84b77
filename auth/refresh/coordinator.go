// Package refresh schedules access-token refreshes. A single Coordinator is
// the funnel for every refresh trigger in the app: the expiry timer, a
// reactive 401 observed on a protected call, and manual refresh requests all
// converge here, so the in-flight guard lives in exactly one place.
package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ExpiryBuffer is how long before access-token expiry the timer fires, so
// the refresh round trip completes while the old token is still valid.
const ExpiryBuffer = 10 * time.Second

// Func performs one refresh attempt.
type Func func(ctx context.Context) error

// Coordinator owns the single refresh timer and the in-flight guard.
// At most one timer is armed and at most one refresh call is outstanding at
// any time; extra triggers are dropped, not queued.
type Coordinator struct {
	mu       sync.Mutex
	timer    *time.Timer
	inFlight atomic.Bool
	fn       Func
	buffer   time.Duration
	log      zerolog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithExpiryBuffer overrides the pre-expiry buffer (primarily for testing).
func WithExpiryBuffer(buffer time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.buffer = buffer
	}
}

func NewCoordinator(fn Func, log zerolog.Logger, options ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		fn:     fn,
		buffer: ExpiryBuffer,
		log:    log.With().Str("component", "refresh").Logger(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Arm schedules a refresh trigger at expiresIn-ExpiryBuffer from now,
// cancelling any previously armed timer. Non-positive lifetimes are logged
// and not scheduled; the reactive 401 backstop carries the session instead.
func (c *Coordinator) Arm(expiresIn time.Duration) {
	if expiresIn <= 0 {
		c.log.Warn().Dur("expires_in", expiresIn).Msg("invalid token lifetime, refresh timer not armed")
		return
	}

	delay := expiresIn - c.buffer
	if delay < 0 {
		delay = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(delay, func() {
		c.Trigger(context.Background())
	})
	c.log.Debug().Dur("delay", delay).Msg("refresh timer armed")
}

// Disarm cancels the pending timer, if any.
func (c *Coordinator) Disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Trigger runs one refresh attempt. If a refresh is already in flight the
// call is a no-op: the guard enforces mutual exclusion, it never queues.
func (c *Coordinator) Trigger(ctx context.Context) {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.log.Debug().Msg("refresh already in flight, trigger dropped")
		return
	}
	defer c.inFlight.Store(false)

	if err := c.fn(ctx); err != nil {
		c.log.Error().Err(err).Msg("refresh attempt failed")
	}
}

// InFlight reports whether a refresh call is currently outstanding.
func (c *Coordinator) InFlight() bool {
	return c.inFlight.Load()
}
