package clock

import (
	"sync"
	"time"

	"github.com/aatuh/ulid-toolkit/ports"
)

// SystemClock implements ports.Clock using time.Now().
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// NewSystemClock creates a new system clock that implements ports.Clock.
func NewSystemClock() ports.Clock {
	return &SystemClock{}
}

// FixedClock reports a time that only moves when told to. It lets tests hold
// the clock inside one millisecond.
type FixedClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixedClock creates a clock frozen at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t.UTC()}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t.UTC()
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
