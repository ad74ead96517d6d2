package xbee

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	// Verified against the formal definition (spec.md §4.2), not spec.md
	// §8 scenario 1's inconsistent worked example (see DESIGN.md).
	payload := []byte{0x7E, 0x11, 0x42}
	assert.Equal(t, byte(0x2E), checksum(payload))
}

func TestWrapUnescaped(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03}
	wrapped := Wrap(payload, Unescaped)
	assert.Equal(t, frameDelimiter, wrapped[0])
	assert.Equal(t, byte(0), wrapped[1])
	assert.Equal(t, byte(3), wrapped[2])
	assert.Equal(t, payload, wrapped[3:6])
	assert.Equal(t, checksum(payload), wrapped[6])
}

func TestWrapUnwrapRoundTripUnescaped(t *testing.T) {
	payload := []byte{0x08, 0x01, 'N', 'I'}
	wrapped := Wrap(payload, Unescaped)
	out, err := Unwrap(wrapped, Unescaped)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestWrapUnwrapRoundTripEscaped(t *testing.T) {
	// Payload deliberately contains every reserved byte so escaping is
	// exercised on data, not just length/checksum (spec.md §4.2).
	payload := []byte{frameDelimiter, escByte, xonByte, xoffByte, 0x55}
	wrapped := Wrap(payload, Escaped)
	// Only the leading delimiter is never escaped.
	assert.Equal(t, frameDelimiter, wrapped[0])
	out, err := Unwrap(wrapped, Escaped)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestUnwrapChecksumMismatch(t *testing.T) {
	payload := []byte{0x01, 0x02}
	wrapped := Wrap(payload, Unescaped)
	wrapped[len(wrapped)-1] ^= 0xFF // corrupt the checksum
	_, err := Unwrap(wrapped, Unescaped)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestUnwrapTruncatedFrame(t *testing.T) {
	wrapped := Wrap([]byte{0x01, 0x02, 0x03}, Unescaped)
	_, err := Unwrap(wrapped[:len(wrapped)-2], Unescaped)
	assert.ErrorIs(t, err, ErrTruncatedFrame)
}

func TestUnwrapperSyncLost(t *testing.T) {
	garbage := []byte{0x01, 0x02, 0x03}
	u := NewUnwrapper(bytes.NewReader(garbage), Unescaped)
	_, err := u.Next()
	assert.ErrorIs(t, err, ErrSyncLost)
}

func TestUnwrapperCleanEOF(t *testing.T) {
	u := NewUnwrapper(bytes.NewReader(nil), Unescaped)
	_, err := u.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestUnwrapperResyncsAfterMalformedFrame(t *testing.T) {
	good := Wrap([]byte{0xAA, 0xBB}, Unescaped)
	bad := Wrap([]byte{0x01}, Unescaped)
	bad[len(bad)-1] ^= 0xFF
	stream := append(append([]byte{}, bad...), good...)

	u := NewUnwrapper(bytes.NewReader(stream), Unescaped)
	_, err := u.Next()
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	payload, err := u.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, payload)
}
