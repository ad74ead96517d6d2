package xbee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress64String(t *testing.T) {
	assert.Equal(t, "000000000000FFFF", AddressBroadcast64.String())
	assert.Equal(t, "0000000000000000", AddressCoordinator.String())
}

func TestAddress64RoundTrip(t *testing.T) {
	a := Address64(0x0013A20012345678)
	b := a.bytes()
	assert.Equal(t, a, parseAddress64(b[:]))
}

func TestAddress16RoundTrip(t *testing.T) {
	a := Address16(0x1234)
	b := a.bytes()
	assert.Equal(t, a, parseAddress16(b[:]))
}

func TestNewIMEI(t *testing.T) {
	imei, err := NewIMEI([]byte{0x01, 0x02, 0x03})
	require.NoError(t, err)
	assert.Equal(t, IMEI{0, 0, 0, 0, 0, 0x01, 0x02, 0x03}, imei)

	_, err = NewIMEI(make([]byte, 9))
	assert.ErrorIs(t, err, ErrInvalidFieldLength)
}
