package xbee

import (
	"encoding/binary"
	"fmt"
)

// Address64 is a module's 64-bit IEEE address, always encoded MSB-first on
// the wire.
type Address64 uint64

const (
	// AddressCoordinator is the reserved 64-bit destination address that
	// routes a transmission to the coordinator.
	AddressCoordinator Address64 = 0x0000000000000000
	// AddressBroadcast64 is the reserved 64-bit broadcast destination.
	AddressBroadcast64 Address64 = 0x000000000000FFFF
)

func (a Address64) String() string {
	return fmt.Sprintf("%016X", uint64(a))
}

func (a Address64) bytes() [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(a))
	return b
}

func parseAddress64(b []byte) Address64 {
	return Address64(binary.BigEndian.Uint64(b[:8]))
}

// Address16 is a module's 16-bit network address. Address16Unknown marks an
// address that has not been resolved; Address16Broadcast is the reserved
// broadcast short address.
type Address16 uint16

const (
	Address16Unknown   Address16 = 0xFFFE
	Address16Broadcast Address16 = 0xFFFF
)

func (a Address16) String() string {
	return fmt.Sprintf("%04X", uint16(a))
}

func (a Address16) bytes() [2]byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(a))
	return b
}

func parseAddress16(b []byte) Address16 {
	return Address16(binary.BigEndian.Uint16(b[:2]))
}

// RemoteAddress identifies a device by whichever addresses a frame carries,
// used by the packet queue's address-match predicate (spec.md §4.3).
type RemoteAddress struct {
	Addr64 Address64
	Addr16 Address16
}

// IMEI is an up-to-8-byte, left-zero-padded device identifier used by
// cellular XBee variants.
type IMEI [8]byte

func NewIMEI(digits []byte) (IMEI, error) {
	if len(digits) > 8 {
		return IMEI{}, fmt.Errorf("xbee: %w: imei longer than 8 bytes (%d)", ErrInvalidFieldLength, len(digits))
	}
	var out IMEI
	copy(out[8-len(digits):], digits)
	return out, nil
}

// ClusterID and ProfileID are the 2-byte application-layer identifiers
// carried by explicit-addressing frames.
type ClusterID uint16
type ProfileID uint16

func (c ClusterID) bytes() [2]byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(c))
	return b
}

func (p ProfileID) bytes() [2]byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(p))
	return b
}
