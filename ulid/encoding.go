package ulid

import "fmt"

// Alphabet is the Crockford Base32 symbol set.
const Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const invalid = 0xFF

// dec maps an input byte to its 5-bit value; both cases are accepted.
var dec = func() (t [256]byte) {
	for i := range t {
		t[i] = invalid
	}
	for i := 0; i < len(Alphabet); i++ {
		c := Alphabet[i]
		t[c] = byte(i)
		if c >= 'A' && c <= 'Z' {
			t[c+'a'-'A'] = byte(i)
		}
	}
	return t
}()

// Encode returns the 26-character Crockford Base32 form of id. The 128-bit
// value is emitted as 26 groups of 5 bits, most significant first; the top 2
// of the 130 bits are always zero.
func Encode(id ID) string {
	var out [EncodedSize]byte
	encodeTo(out[:], id)
	return string(out[:])
}

func encodeTo(dst []byte, id ID) {
	hi, lo := id.words()
	for i := EncodedSize - 1; i >= 0; i-- {
		dst[i] = Alphabet[lo&0x1F]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
}

// Parse decodes the canonical string form. Lowercase input is accepted.
func Parse(s string) (ID, error) {
	if len(s) != EncodedSize {
		return zero, &ParseError{Input: s, Pos: -1, Err: ErrInvalidLength}
	}
	for i := 0; i < len(s); i++ {
		if dec[s[i]] == invalid {
			return zero, &ParseError{Input: s, Pos: i, Err: ErrInvalidCharacter}
		}
	}
	// The leading symbol carries bits 129..125; anything above 7 sets one
	// of the two bits beyond 128.
	if dec[s[0]] > 7 {
		return zero, &ParseError{Input: s, Pos: 0, Err: ErrOverflow}
	}

	var hi, lo uint64
	for i := 0; i < len(s); i++ {
		hi = hi<<5 | lo>>59
		lo = lo<<5 | uint64(dec[s[i]])
	}
	return fromWords(hi, lo), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	out := make([]byte, EncodedSize)
	encodeTo(out, id)
	return out, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (id ID) MarshalBinary() ([]byte, error) { return id.Bytes(), nil }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (id *ID) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(data), Size)
	}
	copy(id[:], data)
	return nil
}

func (id ID) words() (hi, lo uint64) {
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(id[i])
		lo = lo<<8 | uint64(id[i+8])
	}
	return hi, lo
}

func fromWords(hi, lo uint64) ID {
	var id ID
	for i := 7; i >= 0; i-- {
		id[i] = byte(hi)
		id[i+8] = byte(lo)
		hi >>= 8
		lo >>= 8
	}
	return id
}
