package idgen

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aatuh/ulid-toolkit/clock"
	"github.com/aatuh/ulid-toolkit/entropy"
	"github.com/aatuh/ulid-toolkit/logzap"
	"github.com/aatuh/ulid-toolkit/metrics"
	"github.com/aatuh/ulid-toolkit/ulid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func TestGenerateNil(t *testing.T) {
	g := NewGenerator(WithEntropy(entropy.NewFailingSource(nil)))

	id, err := g.Generate(Request{Nil: true})
	require.NoError(t, err)
	assert.True(t, id.IsNil())
	assert.Equal(t, "00000000000000000000000000", id.String())

	// TimeMs is ignored for nil requests.
	ms := uint64(99)
	id, err = g.Generate(Request{Nil: true, TimeMs: &ms})
	require.NoError(t, err)
	assert.True(t, id.IsNil())
}

func TestGenerateUsesClock(t *testing.T) {
	g := NewGenerator(WithClock(clock.NewFixedClock(epoch)))

	id, err := g.Generate(Request{})
	require.NoError(t, err)
	assert.Equal(t, uint64(epoch.UnixMilli()), id.Time())
	assert.False(t, id.IsNil())
}

func TestGenerateExplicitTime(t *testing.T) {
	g := NewGenerator(WithClock(clock.NewFixedClock(epoch)))

	id, err := g.Generate(At(12345))
	require.NoError(t, err)
	assert.Equal(t, uint64(12345), id.Time())

	_, err = g.Generate(At(ulid.MaxTime + 1))
	assert.ErrorIs(t, err, ulid.ErrTimestampOverflow)
}

func TestGenerateEntropyFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)

	g := NewGenerator(
		WithEntropy(entropy.NewFailingSource(nil)),
		WithLogger(logzap.New(zap.New(core))),
		WithMetrics(rec),
	)

	_, err := g.Generate(Request{})
	require.ErrorIs(t, err, ulid.ErrRandomnessUnavailable)
	assert.ErrorIs(t, err, entropy.ErrExhausted)
	assert.Equal(t, 1, logs.FilterMessage("entropy source failed").Len())

	n, err := testutil.GatherAndCount(reg, metrics.GenerationErrors)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMonotonicWithFrozenClock(t *testing.T) {
	c := clock.NewFixedClock(epoch)
	g := NewGenerator(WithClock(c), WithMonotonic())
	require.True(t, g.Monotonic())

	prev, err := g.Generate(Request{})
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		next, err := g.Generate(Request{})
		require.NoError(t, err)
		require.Equal(t, 1, next.Compare(prev))
		prev = next
	}

	c.Advance(time.Millisecond)
	later, err := g.Generate(Request{})
	require.NoError(t, err)
	assert.Equal(t, prev.Time()+1, later.Time())
}

func TestMonotonicOverflowIsSurfaced(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := NewGenerator(
		WithClock(clock.NewFixedClock(epoch)),
		WithEntropy(entropy.NewFixedSource(0xFF)),
		WithMonotonic(),
		WithMetrics(metrics.NewPrometheusRecorder(reg)),
	)

	_, err := g.Generate(Request{})
	require.NoError(t, err)
	_, err = g.Generate(Request{})
	assert.ErrorIs(t, err, ulid.ErrMonotonicOverflow)

	assert.Equal(t, 1.0, counterValue(t, reg, metrics.Generated, "monotonic"))
	assert.Equal(t, 1.0, counterValue(t, reg, metrics.GenerationErrors, "monotonic_overflow"))
}

func TestNewImplementsIDGen(t *testing.T) {
	gen := NewULIDGen()
	s := gen.New()
	require.Len(t, s, ulid.EncodedSize)
	_, err := ulid.Parse(s)
	assert.NoError(t, err)

	failing := NewGenerator(WithEntropy(entropy.NewFailingSource(nil)))
	assert.Panics(t, func() { failing.New() })
}

func TestConcurrentMonotonicGeneration(t *testing.T) {
	g := NewGenerator(WithClock(clock.NewFixedClock(epoch)), WithMonotonic())

	const workers, perWorker = 4, 200
	var (
		mu   sync.Mutex
		seen = make(map[ulid.ID]struct{})
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var prev ulid.ID
			for i := 0; i < perWorker; i++ {
				id, err := g.Generate(Request{})
				if err != nil {
					t.Error(err)
					return
				}
				if prev.Compare(id) >= 0 {
					t.Errorf("%s not after %s", id, prev)
				}
				prev = id
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s{%s} not found", name, label)
	return 0
}
