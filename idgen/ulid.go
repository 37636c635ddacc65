package idgen

import (
	"errors"

	"github.com/aatuh/ulid-toolkit/clock"
	"github.com/aatuh/ulid-toolkit/entropy"
	"github.com/aatuh/ulid-toolkit/logzap"
	"github.com/aatuh/ulid-toolkit/metrics"
	"github.com/aatuh/ulid-toolkit/ports"
	"github.com/aatuh/ulid-toolkit/ulid"
)

// Request selects what Generate produces.
type Request struct {
	// Nil asks for the all-zero identifier; everything else is ignored.
	Nil bool
	// TimeMs pins the timestamp. When nil the generator's clock is used.
	TimeMs *uint64
}

// At is shorthand for a random identifier stamped at ms.
func At(ms uint64) Request { return Request{TimeMs: &ms} }

// Generator is the ULID engine. Its only mutable state is the optional
// monotonic holder, which guards itself.
type Generator struct {
	clock   ports.Clock
	entropy ports.Entropy
	mono    *ulid.Monotonic
	log     ports.Logger
	metrics ports.MetricsRecorder
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the system clock.
func WithClock(c ports.Clock) Option { return func(g *Generator) { g.clock = c } }

// WithEntropy replaces the crypto/rand source.
func WithEntropy(e ports.Entropy) Option { return func(g *Generator) { g.entropy = e } }

// WithMonotonic makes same-millisecond identifiers strictly increasing.
func WithMonotonic() Option { return func(g *Generator) { g.mono = ulid.NewMonotonic() } }

// WithLogger attaches a logger.
func WithLogger(l ports.Logger) Option { return func(g *Generator) { g.log = l } }

// WithMetrics attaches a metrics recorder.
func WithMetrics(m ports.MetricsRecorder) Option { return func(g *Generator) { g.metrics = m } }

// NewGenerator builds a generator backed by the system clock and crypto/rand
// unless options say otherwise.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		clock:   clock.NewSystemClock(),
		entropy: entropy.NewCryptoSource(),
		log:     logzap.NewNop(),
		metrics: metrics.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewULIDGen creates a new ULID generator that implements ports.IDGen.
func NewULIDGen() ports.IDGen {
	return NewGenerator()
}

// Monotonic reports whether the generator runs in monotonic mode.
func (g *Generator) Monotonic() bool { return g.mono != nil }

// Generate produces the nil identifier or a fresh one. Errors are returned
// as is; waiting for the clock after ulid.ErrMonotonicOverflow is up to the
// caller.
func (g *Generator) Generate(req Request) (ulid.ID, error) {
	if req.Nil {
		g.metrics.IncCounter(metrics.Generated, ports.Labels{"kind": "nil"})
		return ulid.Nil(), nil
	}

	ms := ulid.Timestamp(g.clock.Now())
	if req.TimeMs != nil {
		ms = *req.TimeMs
	}

	var (
		id   ulid.ID
		err  error
		kind = "random"
	)
	if g.mono != nil {
		kind = "monotonic"
		id, err = g.mono.Next(ms, g.entropy)
	} else {
		id, err = ulid.New(ms, g.entropy)
	}
	if err != nil {
		g.recordFailure(ms, err)
		return ulid.Nil(), err
	}

	g.metrics.IncCounter(metrics.Generated, ports.Labels{"kind": kind})
	return id, nil
}

// New returns a fresh identifier string. It satisfies ports.IDGen and
// panics on any error Generate reports: unavailable randomness, a clock
// beyond ulid.MaxTime, or a monotonic generator exhausted within the current
// millisecond. Callers that need to wait out overflow use Generate.
func (g *Generator) New() string {
	id, err := g.Generate(Request{})
	if err != nil {
		panic(err)
	}
	return id.String()
}

func (g *Generator) recordFailure(ms uint64, err error) {
	var reason string
	switch {
	case errors.Is(err, ulid.ErrMonotonicOverflow):
		reason = "monotonic_overflow"
		g.log.Debug("monotonic randomness exhausted", "timestamp_ms", ms)
	case errors.Is(err, ulid.ErrTimestampOverflow):
		reason = "timestamp_overflow"
		g.log.Warn("timestamp out of range", "timestamp_ms", ms)
	case errors.Is(err, ulid.ErrRandomnessUnavailable):
		reason = "randomness_unavailable"
		g.log.Error("entropy source failed", "err", err)
	default:
		reason = "unknown"
		g.log.Error("generation failed", "err", err)
	}
	g.metrics.IncCounter(metrics.GenerationErrors, ports.Labels{"reason": reason})
}
