package health

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aatuh/ulid-toolkit/ports"
	"github.com/aatuh/ulid-toolkit/ulid"
)

// EntropyChecker verifies the randomness source still produces bytes.
type EntropyChecker struct {
	src ports.Entropy
}

func NewEntropyChecker(src ports.Entropy) ports.HealthChecker {
	return &EntropyChecker{src: src}
}

func (c *EntropyChecker) Name() string {
	return "entropy"
}

func (c *EntropyChecker) Check(ctx context.Context) ports.HealthResult {
	var a, b [10]byte
	if _, err := c.src.Read(a[:]); err != nil {
		return unhealthy(fmt.Sprintf("Entropy read failed: %v", err))
	}
	if _, err := c.src.Read(b[:]); err != nil {
		return unhealthy(fmt.Sprintf("Entropy read failed: %v", err))
	}
	// Two identical draws of 80 bits mean the source is stuck.
	if bytes.Equal(a[:], b[:]) {
		return ports.HealthResult{
			Status:    ports.HealthStatusDegraded,
			Message:   "Entropy source returned identical draws",
			Timestamp: time.Now(),
		}
	}
	return ports.HealthResult{
		Status:    ports.HealthStatusHealthy,
		Message:   "Entropy source readable",
		Timestamp: time.Now(),
	}
}

// ClockChecker verifies the clock fits in a 48-bit millisecond timestamp.
type ClockChecker struct {
	clock ports.Clock
}

func NewClockChecker(c ports.Clock) ports.HealthChecker {
	return &ClockChecker{clock: c}
}

func (c *ClockChecker) Name() string {
	return "clock"
}

func (c *ClockChecker) Check(ctx context.Context) ports.HealthResult {
	now := c.clock.Now()
	details := map[string]any{"now": now.Format(time.RFC3339Nano)}

	ms := now.UnixMilli()
	switch {
	case ms < 0:
		return ports.HealthResult{
			Status:    ports.HealthStatusDegraded,
			Message:   "Clock is before the Unix epoch; timestamps clamp to zero",
			Details:   details,
			Timestamp: time.Now(),
		}
	case uint64(ms) > ulid.MaxTime:
		return ports.HealthResult{
			Status:    ports.HealthStatusUnhealthy,
			Message:   "Clock is beyond the 48-bit timestamp range",
			Details:   details,
			Timestamp: time.Now(),
		}
	}
	details["timestamp_ms"] = ms
	return ports.HealthResult{
		Status:    ports.HealthStatusHealthy,
		Message:   "Clock within range",
		Details:   details,
		Timestamp: time.Now(),
	}
}

// CodecChecker generates one identifier and parses it back.
type CodecChecker struct {
	gen func() (ulid.ID, error)
}

func NewCodecChecker(gen func() (ulid.ID, error)) ports.HealthChecker {
	return &CodecChecker{gen: gen}
}

func (c *CodecChecker) Name() string {
	return "codec"
}

func (c *CodecChecker) Check(ctx context.Context) ports.HealthResult {
	id, err := c.gen()
	if err != nil {
		return unhealthy(fmt.Sprintf("Generation failed: %v", err))
	}
	back, err := ulid.Parse(id.String())
	if err != nil {
		return unhealthy(fmt.Sprintf("Parse failed: %v", err))
	}
	if back != id {
		return unhealthy(fmt.Sprintf("Round trip mismatch: %s != %s", back, id))
	}
	return ports.HealthResult{
		Status:    ports.HealthStatusHealthy,
		Message:   "Round trip ok",
		Details:   map[string]any{"sample": id.String()},
		Timestamp: time.Now(),
	}
}

func unhealthy(msg string) ports.HealthResult {
	return ports.HealthResult{
		Status:    ports.HealthStatusUnhealthy,
		Message:   msg,
		Timestamp: time.Now(),
	}
}
