package xbee

// Frame-type identifiers (spec.md §6). Stable; the leading byte of every
// frame payload.
const (
	FrameTypeATCommand                 byte = 0x08
	FrameTypeATCommandQueued           byte = 0x09
	FrameTypeTransmitRequest           byte = 0x10
	FrameTypeExplicitAddressingRequest byte = 0x11
	FrameTypeRemoteATCommand           byte = 0x17
	FrameTypeTXSMS                     byte = 0x1F
	FrameTypeBluetoothUnlock           byte = 0x2C
	FrameTypeUserDataRelayInput        byte = 0x2D
	FrameTypeATCommandResponse         byte = 0x88
	FrameTypeModemStatus               byte = 0x8A
	FrameTypeTransmitStatus            byte = 0x8B
	FrameTypeReceiveIndicator          byte = 0x90
	FrameTypeExplicitRXIndicator       byte = 0x91
	FrameTypeIODataSampleRXIndicator   byte = 0x92
	FrameTypeRemoteATCommandResponse   byte = 0x97
	FrameTypeRXSMS                     byte = 0x9F
	FrameTypeBluetoothUnlockResponse   byte = 0xAC
	FrameTypeUserDataRelayOutput       byte = 0xAD

	// Legacy 16/64-bit receive frames, parsed for completeness: the wire
	// taxonomy these unlock and GPM sequencers build on descends from a
	// family that also carries the older non-ZigBee receive frames
	// referenced by C3's address-match predicate (spec.md §4.3).
	FrameTypeRX64   byte = 0x80
	FrameTypeRX16   byte = 0x81
	FrameTypeRX64IO byte = 0x82
	FrameTypeRX16IO byte = 0x83

	FrameTypeTXIPv4 byte = 0x20
	FrameTypeRXIPv4 byte = 0xB0
)

// Frame is the discriminated-union wire object (spec.md §3). Every variant
// implements it with per-variant functions rather than virtual dispatch
// (spec.md §9).
type Frame interface {
	// FrameType returns this variant's frame-type identifier.
	FrameType() byte
	// HasFrameID reports whether this variant carries a correlated
	// frame-ID byte.
	HasFrameID() bool
	// ID returns the frame-ID byte; 0 when HasFrameID is false or the
	// response correlation is disabled.
	ID() byte
	// IsBroadcast reports whether this frame targets/represents a
	// broadcast transmission.
	IsBroadcast() bool
	// Serialize produces the payload: frame-type byte followed by the
	// variant's fields in declared order. Never includes the delimiter,
	// length prefix, or checksum.
	Serialize() []byte
}

// frameParser parses a payload (leading frame-type byte already consumed by
// the caller to select the parser) into a concrete Frame.
type frameParser func(body []byte) (Frame, error)

var frameParsers = map[byte]frameParser{
	FrameTypeATCommand:                 parseATCommand,
	FrameTypeATCommandQueued:           parseATCommandQueued,
	FrameTypeTransmitRequest:           parseTransmitRequest,
	FrameTypeExplicitAddressingRequest: parseExplicitAddressingRequest,
	FrameTypeRemoteATCommand:           parseRemoteATCommand,
	FrameTypeTXSMS:                     parseTXSMS,
	FrameTypeBluetoothUnlock:           parseBluetoothUnlock,
	FrameTypeUserDataRelayInput:        parseUserDataRelayInput,
	FrameTypeATCommandResponse:         parseATCommandResponse,
	FrameTypeModemStatus:               parseModemStatusFrame,
	FrameTypeTransmitStatus:            parseTransmitStatus,
	FrameTypeReceiveIndicator:          parseReceiveIndicator,
	FrameTypeExplicitRXIndicator:       parseExplicitRXIndicator,
	FrameTypeIODataSampleRXIndicator:   parseIODataSampleIndicator,
	FrameTypeRemoteATCommandResponse:   parseRemoteATCommandResponse,
	FrameTypeRXSMS:                     parseRXSMS,
	FrameTypeBluetoothUnlockResponse:   parseBluetoothUnlockResponse,
	FrameTypeUserDataRelayOutput:       parseUserDataRelayOutput,
	FrameTypeRX64:                      parseRX64,
	FrameTypeRX16:                      parseRX16,
	FrameTypeRX64IO:                    parseRX64IO,
	FrameTypeRX16IO:                    parseRX16IO,
	FrameTypeTXIPv4:                    parseTXIPv4,
	FrameTypeRXIPv4:                    parseRXIPv4,
}

// ParseFrame dispatches on the leading frame-type byte (spec.md §4.1).
func ParseFrame(payload []byte) (Frame, error) {
	if len(payload) < 1 {
		return nil, ErrIncompletePayload
	}
	parser, ok := frameParsers[payload[0]]
	if !ok {
		return nil, &UnknownFrameTypeError{FrameType: payload[0]}
	}
	return parser(payload[1:])
}

// requireLen returns ErrIncompletePayload if body is shorter than min.
func requireLen(body []byte, min int) error {
	if len(body) < min {
		return ErrIncompletePayload
	}
	return nil
}

// isDataFrame reports whether f belongs to the receive-indicator family
// used by PacketQueue.PopFirstData (spec.md §4.3: {Receive, RX16, RX64}).
func isDataFrame(f Frame) bool {
	switch f.(type) {
	case *ReceiveIndicator, *RX16Indicator, *RX64Indicator:
		return true
	}
	return false
}
