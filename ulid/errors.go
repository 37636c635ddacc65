package ulid

import (
	"errors"
	"fmt"
)

var (
	// ErrRandomnessUnavailable is returned when the entropy source fails.
	ErrRandomnessUnavailable = errors.New("ulid: randomness unavailable")
	// ErrTimestampOverflow is returned for timestamps above MaxTime.
	ErrTimestampOverflow = errors.New("ulid: timestamp overflow")
	// ErrInvalidLength is returned when parsing input that is not 26 characters.
	ErrInvalidLength = errors.New("ulid: invalid length")
	// ErrInvalidCharacter is returned when parsing input outside the Crockford alphabet.
	ErrInvalidCharacter = errors.New("ulid: invalid character")
	// ErrOverflow is returned when a parsed value does not fit in 128 bits.
	ErrOverflow = errors.New("ulid: value overflows 128 bits")
	// ErrMonotonicOverflow is returned when the randomness of a monotonic
	// sequence cannot be incremented within the current millisecond.
	ErrMonotonicOverflow = errors.New("ulid: monotonic randomness overflow")
)

// ParseError describes why a string could not be decoded.
type ParseError struct {
	Input string
	// Pos is the offending byte offset, or -1 when the error is not positional.
	Pos int
	Err error
}

func (e *ParseError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("%v: %q", e.Err, e.Input)
	}
	return fmt.Sprintf("%v: %q at position %d", e.Err, e.Input, e.Pos)
}

func (e *ParseError) Unwrap() error { return e.Err }
