package xbee

import (
	"encoding/binary"
	"fmt"
	"net"
)

// IPProtocol enumerates the IP-bearing frames' transport-protocol byte.
type IPProtocol byte

const (
	IPProtocolUDP  IPProtocol = 0x00
	IPProtocolTCP  IPProtocol = 0x01
	IPProtocolSSL  IPProtocol = 0x04
	IPProtocolTCPS IPProtocol = 0x10
)

func (p IPProtocol) String() string {
	switch p {
	case IPProtocolUDP:
		return "UDP"
	case IPProtocolTCP:
		return "TCP"
	case IPProtocolSSL:
		return "SSL"
	case IPProtocolTCPS:
		return "TCPS"
	}
	return fmt.Sprintf("Unknown(0x%02x)", byte(p))
}

func encodeIPv4(ip net.IP) [4]byte {
	var out [4]byte
	v4 := ip.To4()
	if v4 != nil {
		copy(out[:], v4)
	}
	return out
}

// TXIPv4 requests an IPv4 transmission (spec.md §3, "TX IPv4").
type TXIPv4 struct {
	FrameID      byte
	Destination  net.IP
	DestPort     uint16
	SourcePort   uint16
	Protocol     IPProtocol
	Options      byte
	Data         []byte
}

func (f *TXIPv4) FrameType() byte   { return FrameTypeTXIPv4 }
func (f *TXIPv4) HasFrameID() bool  { return true }
func (f *TXIPv4) ID() byte          { return f.FrameID }
func (f *TXIPv4) IsBroadcast() bool { return false }

func (f *TXIPv4) Serialize() []byte {
	ip := encodeIPv4(f.Destination)
	out := make([]byte, 0, 10+len(f.Data))
	out = append(out, FrameTypeTXIPv4, f.FrameID)
	out = append(out, ip[:]...)
	out = appendUint16(out, f.DestPort)
	out = appendUint16(out, f.SourcePort)
	out = append(out, byte(f.Protocol), f.Options)
	out = append(out, f.Data...)
	return out
}

func parseTXIPv4(body []byte) (Frame, error) {
	if err := requireLen(body, 11); err != nil {
		return nil, err
	}
	return &TXIPv4{
		FrameID:     body[0],
		Destination: net.IPv4(body[1], body[2], body[3], body[4]),
		DestPort:    binary.BigEndian.Uint16(body[5:7]),
		SourcePort:  binary.BigEndian.Uint16(body[7:9]),
		Protocol:    IPProtocol(body[9]),
		Options:     body[10],
		Data:        append([]byte(nil), body[11:]...),
	}, nil
}

// RXIPv4 is an inbound IPv4 indication (spec.md §3, "RX IPv4").
type RXIPv4 struct {
	Source     net.IP
	DestPort   uint16
	SourcePort uint16
	Protocol   IPProtocol
	Data       []byte
}

func (f *RXIPv4) FrameType() byte   { return FrameTypeRXIPv4 }
func (f *RXIPv4) HasFrameID() bool  { return false }
func (f *RXIPv4) ID() byte          { return 0 }
func (f *RXIPv4) IsBroadcast() bool { return false }

func (f *RXIPv4) Serialize() []byte {
	ip := encodeIPv4(f.Source)
	out := make([]byte, 0, 9+len(f.Data))
	out = append(out, FrameTypeRXIPv4)
	out = append(out, ip[:]...)
	out = appendUint16(out, f.DestPort)
	out = appendUint16(out, f.SourcePort)
	out = append(out, byte(f.Protocol))
	out = append(out, f.Data...)
	return out
}

func parseRXIPv4(body []byte) (Frame, error) {
	if err := requireLen(body, 9); err != nil {
		return nil, err
	}
	return &RXIPv4{
		Source:     net.IPv4(body[0], body[1], body[2], body[3]),
		DestPort:   binary.BigEndian.Uint16(body[4:6]),
		SourcePort: binary.BigEndian.Uint16(body[6:8]),
		Protocol:   IPProtocol(body[8]),
		Data:       append([]byte(nil), body[9:]...),
	}, nil
}

func appendUint16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}
