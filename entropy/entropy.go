package entropy

import (
	"crypto/rand"
	"errors"
	"io"
	"sync"

	"github.com/aatuh/ulid-toolkit/ports"
)

// CryptoSource reads from the operating system CSPRNG.
type CryptoSource struct{}

func (CryptoSource) Read(p []byte) (int, error) { return rand.Read(p) }

// NewCryptoSource creates the default entropy source that implements ports.Entropy.
func NewCryptoSource() ports.Entropy {
	return CryptoSource{}
}

// ReaderSource serializes access to an arbitrary reader, e.g. a seeded
// math/rand generator that is not safe for concurrent use.
type ReaderSource struct {
	mu sync.Mutex
	r  io.Reader
}

// NewReaderSource wraps r so every Read fills the buffer completely.
func NewReaderSource(r io.Reader) ports.Entropy {
	return &ReaderSource{r: r}
}

func (s *ReaderSource) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return io.ReadFull(s.r, p)
}

// FixedSource repeats a byte pattern forever. Tests use it to pin randomness.
type FixedSource struct {
	mu      sync.Mutex
	pattern []byte
	off     int
}

// NewFixedSource returns a deterministic source cycling over pattern. An empty
// pattern yields zero bytes.
func NewFixedSource(pattern ...byte) ports.Entropy {
	if len(pattern) == 0 {
		pattern = []byte{0}
	}
	return &FixedSource{pattern: append([]byte(nil), pattern...)}
}

func (s *FixedSource) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range p {
		p[i] = s.pattern[s.off]
		s.off = (s.off + 1) % len(s.pattern)
	}
	return len(p), nil
}

// ErrExhausted is what a FailingSource returns when none was supplied.
var ErrExhausted = errors.New("entropy source exhausted")

// FailingSource always fails; it stands in for an exhausted platform RNG.
type FailingSource struct{ Err error }

// NewFailingSource returns a source whose reads fail with err.
func NewFailingSource(err error) ports.Entropy {
	if err == nil {
		err = ErrExhausted
	}
	return FailingSource{Err: err}
}

func (s FailingSource) Read(_ []byte) (int, error) { return 0, s.Err }
