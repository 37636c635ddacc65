package ulid

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/aatuh/ulid-toolkit/ports"
)

// Monotonic retains the last emitted (timestamp, randomness) pair so that IDs
// issued within the same millisecond are strictly increasing. It is safe for
// concurrent use; the zero value is ready to use.
type Monotonic struct {
	mu  sync.Mutex
	set bool
	ms  uint64
	hi  uint16 // top 16 bits of the randomness
	lo  uint64 // low 64 bits of the randomness
}

// NewMonotonic creates an empty holder. The first call to Next always draws
// fresh randomness.
func NewMonotonic() *Monotonic { return &Monotonic{} }

// Next returns the next ID for ms. When ms equals the retained timestamp the
// retained randomness is incremented by one; otherwise fresh randomness is
// read from src and becomes the new retained state. Incrementing past 2^80-1
// fails with ErrMonotonicOverflow and leaves the state untouched, so the
// caller may wait for the clock to advance and retry.
func (m *Monotonic) Next(ms uint64, src ports.Entropy) (ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.set && ms == m.ms {
		if m.hi == math.MaxUint16 && m.lo == math.MaxUint64 {
			return zero, ErrMonotonicOverflow
		}
		m.lo++
		if m.lo == 0 {
			m.hi++
		}
		return FromParts(ms, m.randomness())
	}

	id, err := New(ms, src)
	if err != nil {
		return zero, err
	}
	e := id.Entropy()
	m.hi = binary.BigEndian.Uint16(e[:2])
	m.lo = binary.BigEndian.Uint64(e[2:])
	m.ms = ms
	m.set = true
	return id, nil
}

// Reset forgets the retained state.
func (m *Monotonic) Reset() {
	m.mu.Lock()
	m.set, m.ms, m.hi, m.lo = false, 0, 0, 0
	m.mu.Unlock()
}

func (m *Monotonic) randomness() [entropyLen]byte {
	var e [entropyLen]byte
	binary.BigEndian.PutUint16(e[:2], m.hi)
	binary.BigEndian.PutUint64(e[2:], m.lo)
	return e
}
