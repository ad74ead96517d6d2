package xbee

import "fmt"

// TransmitOption is the 1-byte option bitfield accompanying a transmit
// request.
type TransmitOption byte

const (
	TODisableRetriesAndRouteRepair TransmitOption = 0x01
	TOEnableAPSEncryption          TransmitOption = 0x20
	TOExtendedTxTimeout            TransmitOption = 0x40
)

// TransmitRequest addresses a payload to a remote 64-bit (and, if known,
// 16-bit) destination (spec.md §3, "Transmit request").
type TransmitRequest struct {
	FrameID         byte
	Destination64   Address64
	Destination16   Address16
	BroadcastRadius byte
	Options         TransmitOption
	Data            []byte
}

func (f *TransmitRequest) FrameType() byte  { return FrameTypeTransmitRequest }
func (f *TransmitRequest) HasFrameID() bool { return true }
func (f *TransmitRequest) ID() byte         { return f.FrameID }
func (f *TransmitRequest) IsBroadcast() bool {
	return f.Destination64 == AddressBroadcast64 || f.Destination16 == Address16Broadcast
}

func (f *TransmitRequest) Serialize() []byte {
	dst := f.Destination64.bytes()
	dst16 := f.Destination16.bytes()
	out := make([]byte, 0, 14+len(f.Data))
	out = append(out, FrameTypeTransmitRequest, f.FrameID)
	out = append(out, dst[:]...)
	out = append(out, dst16[:]...)
	out = append(out, f.BroadcastRadius, byte(f.Options))
	out = append(out, f.Data...)
	return out
}

func parseTransmitRequest(body []byte) (Frame, error) {
	if err := requireLen(body, 13); err != nil {
		return nil, err
	}
	return &TransmitRequest{
		FrameID:         body[0],
		Destination64:   parseAddress64(body[1:9]),
		Destination16:   parseAddress16(body[9:11]),
		BroadcastRadius: body[11],
		Options:         TransmitOption(body[12]),
		Data:            append([]byte(nil), body[13:]...),
	}, nil
}

// DeliveryStatus is the transmit-status delivery outcome enumeration.
// Unknown codes are kept as received and render as "Unknown(0x..)" through
// String (never rejects parse).
type DeliveryStatus byte

const (
	DeliverySuccess                         DeliveryStatus = 0x00
	DeliveryMACACKFailure                   DeliveryStatus = 0x01
	DeliveryCCAFailure                      DeliveryStatus = 0x02
	DeliveryInvalidDestinationEndpoint      DeliveryStatus = 0x15
	DeliveryNetworkACKFailure               DeliveryStatus = 0x21
	DeliveryNotJoinedToNetwork              DeliveryStatus = 0x22
	DeliverySelfAddressed                   DeliveryStatus = 0x23
	DeliveryAddressNotFound                 DeliveryStatus = 0x24
	DeliveryRouteNotFound                   DeliveryStatus = 0x25
	DeliveryBroadcastFail                   DeliveryStatus = 0x26
	DeliveryInvalidBindingTableIndex        DeliveryStatus = 0x2B
	DeliveryResourceError                   DeliveryStatus = 0x2C
	DeliveryAttemptedBroadcastWithAPS       DeliveryStatus = 0x2D
	DeliveryAttemptedUnicastWithAPS         DeliveryStatus = 0x2E
	DeliveryResourceError2                  DeliveryStatus = 0x32
	DeliveryPayloadTooLarge                 DeliveryStatus = 0x74
)

func (d DeliveryStatus) String() string {
	switch d {
	case DeliverySuccess:
		return "Success"
	case DeliveryMACACKFailure:
		return "MACACKFailure"
	case DeliveryCCAFailure:
		return "CCAFailure"
	case DeliveryInvalidDestinationEndpoint:
		return "InvalidDestinationEndpoint"
	case DeliveryNetworkACKFailure:
		return "NetworkACKFailure"
	case DeliveryNotJoinedToNetwork:
		return "NotJoinedToNetwork"
	case DeliverySelfAddressed:
		return "SelfAddressed"
	case DeliveryAddressNotFound:
		return "AddressNotFound"
	case DeliveryRouteNotFound:
		return "RouteNotFound"
	case DeliveryBroadcastFail:
		return "BroadcastFail"
	case DeliveryInvalidBindingTableIndex:
		return "InvalidBindingTableIndex"
	case DeliveryResourceError, DeliveryResourceError2:
		return "ResourceError"
	case DeliveryAttemptedBroadcastWithAPS:
		return "AttemptedBroadcastWithAPSTransmission"
	case DeliveryAttemptedUnicastWithAPS:
		return "AttemptedUnicastWithAPSTransmission"
	case DeliveryPayloadTooLarge:
		return "DataPayloadTooLarge"
	}
	return fmt.Sprintf("Unknown(0x%02x)", byte(d))
}

// DiscoveryStatus is the transmit-status route/address discovery outcome
// enumeration. Unknown codes map to the Unknown string form.
type DiscoveryStatus byte

const (
	DiscoveryNoOverhead      DiscoveryStatus = 0x00
	DiscoveryAddress         DiscoveryStatus = 0x01
	DiscoveryRoute           DiscoveryStatus = 0x02
	DiscoveryAddressAndRoute DiscoveryStatus = 0x03
	DiscoveryExtendedTimeout DiscoveryStatus = 0x40
)

func (d DiscoveryStatus) String() string {
	switch d {
	case DiscoveryNoOverhead:
		return "NoDiscoveryOverhead"
	case DiscoveryAddress:
		return "AddressDiscovery"
	case DiscoveryRoute:
		return "RouteDiscovery"
	case DiscoveryAddressAndRoute:
		return "AddressAndRoute"
	case DiscoveryExtendedTimeout:
		return "ExtendedTimeoutDiscovery"
	}
	return fmt.Sprintf("Unknown(0x%02x)", byte(d))
}

// TransmitStatus correlates back to a TransmitRequest by frame ID (spec.md
// §3, "Transmit status").
type TransmitStatus struct {
	FrameID         byte
	Destination16   Address16
	RetryCount      byte
	DeliveryStatus  DeliveryStatus
	DiscoveryStatus DiscoveryStatus
}

func (f *TransmitStatus) FrameType() byte   { return FrameTypeTransmitStatus }
func (f *TransmitStatus) HasFrameID() bool  { return true }
func (f *TransmitStatus) ID() byte          { return f.FrameID }
func (f *TransmitStatus) IsBroadcast() bool { return f.Destination16 == Address16Broadcast }

func (f *TransmitStatus) Serialize() []byte {
	dst := f.Destination16.bytes()
	return []byte{
		FrameTypeTransmitStatus, f.FrameID, dst[0], dst[1],
		f.RetryCount, byte(f.DeliveryStatus), byte(f.DiscoveryStatus),
	}
}

func parseTransmitStatus(body []byte) (Frame, error) {
	if err := requireLen(body, 6); err != nil {
		return nil, err
	}
	return &TransmitStatus{
		FrameID:         body[0],
		Destination16:   parseAddress16(body[1:3]),
		RetryCount:      body[3],
		DeliveryStatus:  DeliveryStatus(body[4]),
		DiscoveryStatus: DiscoveryStatus(body[5]),
	}, nil
}

// ReceiveOption is the 1-byte bitfield on a receive indicator; bit 0x02
// flags the packet as a broadcast (spec.md §3 "determined ... by a bit in
// the receive-options field").
type ReceiveOption byte

const (
	ROAcknowledged  ReceiveOption = 0x01
	ROBroadcast     ReceiveOption = 0x02
	ROEncrypted     ReceiveOption = 0x20
	ROFromEndDevice ReceiveOption = 0x40
)

func (o ReceiveOption) Has(opt ReceiveOption) bool { return o&opt != 0 }

// ReceiveIndicator is the ZigBee receive-packet indication (spec.md §3,
// "Receive indicator").
type ReceiveIndicator struct {
	Source64 Address64
	Source16 Address16
	Options  ReceiveOption
	Data     []byte
}

func (f *ReceiveIndicator) FrameType() byte   { return FrameTypeReceiveIndicator }
func (f *ReceiveIndicator) HasFrameID() bool  { return false }
func (f *ReceiveIndicator) ID() byte          { return 0 }
func (f *ReceiveIndicator) IsBroadcast() bool { return f.Options.Has(ROBroadcast) }

func (f *ReceiveIndicator) Serialize() []byte {
	src := f.Source64.bytes()
	src16 := f.Source16.bytes()
	out := make([]byte, 0, 12+len(f.Data))
	out = append(out, FrameTypeReceiveIndicator)
	out = append(out, src[:]...)
	out = append(out, src16[:]...)
	out = append(out, byte(f.Options))
	out = append(out, f.Data...)
	return out
}

func parseReceiveIndicator(body []byte) (Frame, error) {
	if err := requireLen(body, 11); err != nil {
		return nil, err
	}
	return &ReceiveIndicator{
		Source64: parseAddress64(body[0:8]),
		Source16: parseAddress16(body[8:10]),
		Options:  ReceiveOption(body[10]),
		Data:     append([]byte(nil), body[11:]...),
	}, nil
}

// RX64Indicator / RX16Indicator are the legacy (pre-ZigBee-API) receive
// frames referenced by the packet queue's address-match predicate (spec.md
// §4.3: "For legacy 64-bit frames (RX64, RX64IO): match on 64-bit source
// only").
type RX64Indicator struct {
	Source64 Address64
	RSSI     byte
	Options  ReceiveOption
	Data     []byte
}

func (f *RX64Indicator) FrameType() byte   { return FrameTypeRX64 }
func (f *RX64Indicator) HasFrameID() bool  { return false }
func (f *RX64Indicator) ID() byte          { return 0 }
func (f *RX64Indicator) IsBroadcast() bool { return f.Options.Has(ROBroadcast) }

func (f *RX64Indicator) Serialize() []byte {
	src := f.Source64.bytes()
	out := make([]byte, 0, 11+len(f.Data))
	out = append(out, FrameTypeRX64)
	out = append(out, src[:]...)
	out = append(out, f.RSSI, byte(f.Options))
	out = append(out, f.Data...)
	return out
}

func parseRX64(body []byte) (Frame, error) {
	if err := requireLen(body, 10); err != nil {
		return nil, err
	}
	return &RX64Indicator{
		Source64: parseAddress64(body[0:8]),
		RSSI:     body[8],
		Options:  ReceiveOption(body[9]),
		Data:     append([]byte(nil), body[10:]...),
	}, nil
}

type RX16Indicator struct {
	Source16 Address16
	RSSI     byte
	Options  ReceiveOption
	Data     []byte
}

func (f *RX16Indicator) FrameType() byte   { return FrameTypeRX16 }
func (f *RX16Indicator) HasFrameID() bool  { return false }
func (f *RX16Indicator) ID() byte          { return 0 }
func (f *RX16Indicator) IsBroadcast() bool { return f.Options.Has(ROBroadcast) }

func (f *RX16Indicator) Serialize() []byte {
	src := f.Source16.bytes()
	out := make([]byte, 0, 5+len(f.Data))
	out = append(out, FrameTypeRX16, src[0], src[1], f.RSSI, byte(f.Options))
	out = append(out, f.Data...)
	return out
}

func parseRX16(body []byte) (Frame, error) {
	if err := requireLen(body, 4); err != nil {
		return nil, err
	}
	return &RX16Indicator{
		Source16: parseAddress16(body[0:2]),
		RSSI:     body[2],
		Options:  ReceiveOption(body[3]),
		Data:     append([]byte(nil), body[4:]...),
	}, nil
}

// RX64IOIndicator / RX16IOIndicator are the legacy IO-sample variants of
// the frames above; the payload after the common header is an IO sample
// (spec.md §4.1 "IO data sample").
type RX64IOIndicator struct {
	Source64 Address64
	RSSI     byte
	Options  ReceiveOption
	Sample   *IOSample
	Raw      []byte
}

func (f *RX64IOIndicator) FrameType() byte   { return FrameTypeRX64IO }
func (f *RX64IOIndicator) HasFrameID() bool  { return false }
func (f *RX64IOIndicator) ID() byte          { return 0 }
func (f *RX64IOIndicator) IsBroadcast() bool { return f.Options.Has(ROBroadcast) }

func (f *RX64IOIndicator) Serialize() []byte {
	src := f.Source64.bytes()
	out := make([]byte, 0, 11+len(f.Raw))
	out = append(out, FrameTypeRX64IO)
	out = append(out, src[:]...)
	out = append(out, f.RSSI, byte(f.Options))
	out = append(out, f.Raw...)
	return out
}

func parseRX64IO(body []byte) (Frame, error) {
	if err := requireLen(body, 10); err != nil {
		return nil, err
	}
	raw := body[10:]
	return &RX64IOIndicator{
		Source64: parseAddress64(body[0:8]),
		RSSI:     body[8],
		Options:  ReceiveOption(body[9]),
		Sample:   tryParseIOSample(raw),
		Raw:      append([]byte(nil), raw...),
	}, nil
}

type RX16IOIndicator struct {
	Source16 Address16
	RSSI     byte
	Options  ReceiveOption
	Sample   *IOSample
	Raw      []byte
}

func (f *RX16IOIndicator) FrameType() byte   { return FrameTypeRX16IO }
func (f *RX16IOIndicator) HasFrameID() bool  { return false }
func (f *RX16IOIndicator) ID() byte          { return 0 }
func (f *RX16IOIndicator) IsBroadcast() bool { return f.Options.Has(ROBroadcast) }

func (f *RX16IOIndicator) Serialize() []byte {
	src := f.Source16.bytes()
	out := make([]byte, 0, 5+len(f.Raw))
	out = append(out, FrameTypeRX16IO, src[0], src[1], f.RSSI, byte(f.Options))
	out = append(out, f.Raw...)
	return out
}

func parseRX16IO(body []byte) (Frame, error) {
	if err := requireLen(body, 4); err != nil {
		return nil, err
	}
	raw := body[4:]
	return &RX16IOIndicator{
		Source16: parseAddress16(body[0:2]),
		RSSI:     body[2],
		Options:  ReceiveOption(body[3]),
		Sample:   tryParseIOSample(raw),
		Raw:      append([]byte(nil), raw...),
	}, nil
}
