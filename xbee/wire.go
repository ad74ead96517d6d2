package xbee

import (
	"bufio"
	"bytes"
	"io"
)

const frameDelimiter byte = 0x7E

// EscapeMode selects between the unescaped (API-1) and escaped (API-2)
// wire encodings (spec.md §4.2).
type EscapeMode int

const (
	Unescaped EscapeMode = iota
	Escaped
)

const (
	escByte   byte = 0x7D
	escXOR    byte = 0x20
	xonByte   byte = 0x11
	xoffByte  byte = 0x13
)

func isSpecialByte(b byte) bool {
	return b == frameDelimiter || b == escByte || b == xonByte || b == xoffByte
}

// escapeInto appends b to out, byte-stuffing it if mode is Escaped and b is
// one of the four reserved bytes (spec.md §4.2, §6).
func escapeInto(out []byte, b byte, mode EscapeMode) []byte {
	if mode == Escaped && isSpecialByte(b) {
		return append(out, escByte, b^escXOR)
	}
	return append(out, b)
}

// checksum computes 0xFF - (sum(payload) mod 256) (spec.md §4.2).
func checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return 0xFF - sum
}

// Wrap frames payload with the start delimiter, big-endian length, and
// trailing checksum, escaping length/payload/checksum bytes when mode is
// Escaped. The leading delimiter is never escaped (spec.md §4.2).
func Wrap(payload []byte, mode EscapeMode) []byte {
	n := len(payload)
	cs := checksum(payload)

	out := make([]byte, 0, n+4+4) // headroom for escaping
	out = append(out, frameDelimiter)
	out = escapeInto(out, byte(n>>8), mode)
	out = escapeInto(out, byte(n), mode)
	for _, b := range payload {
		out = escapeInto(out, b, mode)
	}
	out = escapeInto(out, cs, mode)
	return out
}

// Unwrapper incrementally de-escapes and frames a byte stream into payload
// slices, tolerating a split read that ends on an escape byte (spec.md §9
// design note).
type Unwrapper struct {
	r    *bufio.Reader
	mode EscapeMode
}

// NewUnwrapper wraps r for framed reads in the given escape mode.
func NewUnwrapper(r io.Reader, mode EscapeMode) *Unwrapper {
	return &Unwrapper{r: bufio.NewReader(r), mode: mode}
}

// readByte reads one de-escaped byte, transparently consuming an escape
// pair when mode is Escaped.
func (u *Unwrapper) readByte() (byte, error) {
	b, err := u.r.ReadByte()
	if err != nil {
		return 0, err
	}
	if u.mode == Escaped && b == escByte {
		next, err := u.r.ReadByte()
		if err != nil {
			return 0, err
		}
		return next ^ escXOR, nil
	}
	return b, nil
}

// Next locates the next start delimiter, reads the length and payload, and
// verifies the checksum. On ChecksumMismatch/TruncatedFrame it has already
// consumed the malformed frame, so the stream resynchronizes to the next
// delimiter on the following call; on SyncLost (io.EOF after one or more
// non-delimiter bytes) those bytes are discarded. A stream that ends with
// no bytes left returns io.EOF itself (spec.md §4.2, §7).
func (u *Unwrapper) Next() ([]byte, error) {
	skipped := 0
	for {
		b, err := u.r.ReadByte()
		if err != nil {
			if skipped > 0 {
				return nil, ErrSyncLost
			}
			return nil, err
		}
		if b == frameDelimiter {
			break
		}
		skipped++
	}

	hi, err := u.readByte()
	if err != nil {
		return nil, ErrTruncatedFrame
	}
	lo, err := u.readByte()
	if err != nil {
		return nil, ErrTruncatedFrame
	}
	length := int(hi)<<8 | int(lo)

	payload := make([]byte, length)
	for i := 0; i < length; i++ {
		pb, err := u.readByte()
		if err != nil {
			return nil, ErrTruncatedFrame
		}
		payload[i] = pb
	}

	cs, err := u.readByte()
	if err != nil {
		return nil, ErrTruncatedFrame
	}

	if sumAll(payload)+cs != 0xFF {
		return nil, ErrChecksumMismatch
	}
	return payload, nil
}

func sumAll(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return sum
}

// Unwrap is a one-shot convenience wrapper around Unwrapper for callers
// that already hold a full framed buffer (primarily tests).
func Unwrap(stream []byte, mode EscapeMode) ([]byte, error) {
	u := NewUnwrapper(bytes.NewReader(stream), mode)
	return u.Next()
}
