package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatuh/ulid-toolkit/clock"
	"github.com/aatuh/ulid-toolkit/entropy"
	"github.com/aatuh/ulid-toolkit/envvar"
	"github.com/aatuh/ulid-toolkit/ports"
	"github.com/aatuh/ulid-toolkit/ulid"
)

var epoch = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// fakeSleeper records requested delays and advances the clock instead of
// blocking.
type fakeSleeper struct {
	mu    sync.Mutex
	clock *clock.FixedClock
	slept []time.Duration
}

func (f *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slept = append(f.slept, d)
	f.clock.Advance(d)
	return nil
}

func testDeps(src ports.Entropy) (Deps, *fakeSleeper) {
	c := clock.NewFixedClock(epoch)
	s := &fakeSleeper{clock: c}
	return Deps{
		Clock:   c,
		Entropy: src,
		Sleep:   s.Sleep,
		Env:     envvar.New(),
	}, s
}

func execute(t *testing.T, d Deps, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootWithDeps(d)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDefaultTextOutput(t *testing.T) {
	d, s := testDeps(entropy.NewCryptoSource())
	out, err := execute(t, d)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Generated ULIDs:", lines[0])
	assert.Equal(t, strings.Repeat("─", 50), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], " 1) "))
	assert.Equal(t, strings.Repeat("─", 50), lines[3])

	id, err := ulid.Parse(strings.TrimPrefix(lines[2], " 1) "))
	require.NoError(t, err)
	assert.Equal(t, uint64(epoch.UnixMilli()), id.Time())
	assert.Empty(t, s.slept)
}

func TestCountAndInterval(t *testing.T) {
	d, s := testDeps(entropy.NewCryptoSource())
	out, err := execute(t, d, "-C", "3", "-I", "50")
	require.NoError(t, err)

	assert.Contains(t, out, " 1) ")
	assert.Contains(t, out, " 2) ")
	assert.Contains(t, out, " 3) ")
	assert.NotContains(t, out, " 4) ")
	// No delay after the last identifier.
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 50 * time.Millisecond}, s.slept)
}

func TestNilPlainOutput(t *testing.T) {
	d, _ := testDeps(entropy.NewFailingSource(nil))
	out, err := execute(t, d, "--nil", "--count", "2", "--format", "plain")
	require.NoError(t, err)
	assert.Equal(t, "00000000000000000000000000\n00000000000000000000000000\n", out)
}

func TestJSONOutput(t *testing.T) {
	d, _ := testDeps(entropy.NewCryptoSource())
	out, err := execute(t, d, "-C", "2", "-I", "1", "-f", "json")
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	for i := 1; i <= 2; i++ {
		var line jsonLine
		require.NoError(t, dec.Decode(&line))
		assert.Equal(t, i, line.Index)
		assert.Equal(t, line.ULID.Time(), line.TimestampMs)
	}
	assert.False(t, dec.More())
}

func TestCountZeroIsRejected(t *testing.T) {
	d, _ := testDeps(entropy.NewCryptoSource())
	out, err := execute(t, d, "-C", "0", "-f", "plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count")
	assert.NotContains(t, out, "0000")
}

func TestInvalidFormatIsRejected(t *testing.T) {
	d, _ := testDeps(entropy.NewCryptoSource())
	_, err := execute(t, d, "-f", "yaml")
	assert.ErrorContains(t, err, "format")
}

func TestMonotonicWaitsOutOverflow(t *testing.T) {
	// All-ones randomness overflows on the second call in a millisecond.
	d, s := testDeps(entropy.NewFixedSource(0xFF))
	out, err := execute(t, d, "-C", "3", "-I", "0", "-m", "-f", "plain")
	require.NoError(t, err)

	lines := strings.Fields(out)
	require.Len(t, lines, 3)
	for i := 1; i < len(lines); i++ {
		assert.Less(t, lines[i-1], lines[i])
	}
	assert.Equal(t, []time.Duration{0, overflowBackoff, 0, overflowBackoff}, s.slept)
}

func TestMonotonicSameMillisecond(t *testing.T) {
	d, _ := testDeps(entropy.NewCryptoSource())
	out, err := execute(t, d, "-C", "50", "-I", "0", "--monotonic", "-f", "plain")
	require.NoError(t, err)

	lines := strings.Fields(out)
	require.Len(t, lines, 50)
	for i := 1; i < len(lines); i++ {
		require.Less(t, lines[i-1], lines[i])
		require.Equal(t, lines[0][:10], lines[i][:10])
	}
}

func TestMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ulidgen.prom")
	d, _ := testDeps(entropy.NewCryptoSource())
	_, err := execute(t, d, "-C", "2", "-I", "0", "-f", "plain", "--metrics-file", path)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `ulid_generated_total{kind="random"} 2`)
}

func TestEnvironmentDefaults(t *testing.T) {
	t.Setenv("ULIDGEN_COUNT", "2")
	t.Setenv("ULIDGEN_FORMAT", "plain")
	t.Setenv("ULIDGEN_NIL", "true")

	d, _ := testDeps(entropy.NewCryptoSource())
	out, err := execute(t, d)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "00000000000000000000000000"))

	// Flags win over the environment.
	out, err = execute(t, d, "-C", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "00000000000000000000000000"))
}

func TestLogLevelIsCaseInsensitive(t *testing.T) {
	t.Setenv("LOG_LEVEL", "INFO")

	d, _ := testDeps(entropy.NewCryptoSource())
	out, err := execute(t, d, "-f", "plain")
	require.NoError(t, err)
	_, err = ulid.Parse(strings.TrimSpace(out))
	require.NoError(t, err)

	_, err = execute(t, d, "-f", "plain", "--log-level", "warning")
	require.NoError(t, err)

	_, err = execute(t, d, "--log-level", "loud")
	assert.ErrorContains(t, err, "log-level")
}

func TestInvalidEnvironmentNumberIsRejected(t *testing.T) {
	t.Setenv("ULIDGEN_COUNT", "five")

	d, _ := testDeps(entropy.NewCryptoSource())
	out, err := execute(t, d, "-f", "plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count")
	assert.Contains(t, err.Error(), "ULIDGEN_COUNT")
	assert.NotRegexp(t, `[0-9A-HJKMNP-TV-Z]{26}`, out)
}

func TestCanceledContextStopsBetweenIdentifiers(t *testing.T) {
	d := DefaultDeps()
	d.EnvFiles = nil
	cmd := NewRootWithDeps(d)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"-C", "3", "-I", "10000"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := cmd.ExecuteContext(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRejectsPositionalArgs(t *testing.T) {
	d, _ := testDeps(entropy.NewCryptoSource())
	_, err := execute(t, d, "extra")
	assert.Error(t, err)
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))
	require.NoError(t, sleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
