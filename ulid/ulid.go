// Package ulid implements Universally Unique Lexicographically Sortable
// Identifiers.
//
// An ID is 16 bytes big-endian: a 48-bit millisecond timestamp followed by 80
// bits of randomness. Byte-wise comparison therefore orders IDs by creation
// time, and the 26-character Crockford Base32 string form preserves that
// order lexicographically.
//
//	id, err := ulid.New(ulid.Now(), entropy.NewCryptoSource())
//	s := id.String()          // 01ARZ3NDEKTSV4RRFFQ69G5FAV
//	back, err := ulid.Parse(s) // back == id
//
// Same-millisecond ordering is only guaranteed through a Monotonic holder.
package ulid

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/aatuh/ulid-toolkit/ports"
)

const (
	// Size is the length of an ID in bytes.
	Size = 16
	// EncodedSize is the length of the canonical string form.
	EncodedSize = 26
	// MaxTime is the largest timestamp an ID can carry (year 10889).
	MaxTime uint64 = 1<<48 - 1

	timeLen    = 6
	entropyLen = Size - timeLen
)

// ID is a 128-bit identifier: [6 bytes ms timestamp][10 bytes randomness].
// The zero value is the nil ID.
type ID [Size]byte

var zero ID

// Nil returns the all-zero ID.
func Nil() ID { return zero }

// New builds an ID stamped at ms with 80 bits read from src. A nil src falls
// back to crypto/rand.
func New(ms uint64, src ports.Entropy) (ID, error) {
	var id ID
	if err := id.setTime(ms); err != nil {
		return zero, err
	}
	if src == nil {
		src = rand.Reader
	}
	if _, err := io.ReadFull(src, id[timeLen:]); err != nil {
		return zero, fmt.Errorf("%w: %w", ErrRandomnessUnavailable, err)
	}
	return id, nil
}

// FromParts builds an ID from an explicit timestamp and randomness.
func FromParts(ms uint64, randomness [entropyLen]byte) (ID, error) {
	var id ID
	if err := id.setTime(ms); err != nil {
		return zero, err
	}
	copy(id[timeLen:], randomness[:])
	return id, nil
}

func (id *ID) setTime(ms uint64) error {
	if ms > MaxTime {
		return fmt.Errorf("%w: %d", ErrTimestampOverflow, ms)
	}
	id[0] = byte(ms >> 40)
	id[1] = byte(ms >> 32)
	id[2] = byte(ms >> 24)
	id[3] = byte(ms >> 16)
	id[4] = byte(ms >> 8)
	id[5] = byte(ms)
	return nil
}

// Time returns the timestamp in milliseconds since the Unix epoch.
func (id ID) Time() uint64 {
	var b [8]byte
	copy(b[2:], id[:timeLen])
	return binary.BigEndian.Uint64(b[:])
}

// Timestamp returns the embedded time as a time.Time in UTC.
func (id ID) Timestamp() time.Time { return Time(id.Time()) }

// Entropy returns the 80 randomness bits.
func (id ID) Entropy() [entropyLen]byte {
	var e [entropyLen]byte
	copy(e[:], id[timeLen:])
	return e
}

// Bytes returns a copy of the raw 16-byte representation.
func (id ID) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, id[:])
	return b
}

// IsNil reports whether id is the all-zero ID.
func (id ID) IsNil() bool { return id == zero }

// Compare returns -1, 0 or 1 ordering by the raw 128-bit value.
func (id ID) Compare(other ID) int { return bytes.Compare(id[:], other[:]) }

// String returns the canonical 26-character encoding.
func (id ID) String() string { return Encode(id) }

// Timestamp converts t to milliseconds since the Unix epoch. Times before the
// epoch clamp to zero.
func Timestamp(t time.Time) uint64 {
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}

// Time converts milliseconds since the Unix epoch to a UTC time.Time.
func Time(ms uint64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

// Now returns the current wall-clock time in milliseconds.
func Now() uint64 { return Timestamp(time.Now()) }
