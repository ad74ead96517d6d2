package xbee

import "fmt"

// SRPPhase identifies one of the four messages in the Secure Remote
// Password exchange carried over the Bluetooth unlock frame pair (spec.md
// §4.4).
type SRPPhase byte

const (
	SRPPhase1 SRPPhase = 0x01
	SRPPhase2 SRPPhase = 0x02
	SRPPhase3 SRPPhase = 0x03
	SRPPhase4 SRPPhase = 0x04
)

func (p SRPPhase) String() string {
	switch p {
	case SRPPhase1:
		return "Phase1"
	case SRPPhase2:
		return "Phase2"
	case SRPPhase3:
		return "Phase3"
	case SRPPhase4:
		return "Phase4"
	}
	return fmt.Sprintf("Phase(0x%02x)", byte(p))
}

// srpErrorFillerByte is the single payload byte written after the error
// code when an error response is serialized: parse reads an unrecognized
// phase byte followed by exactly one byte as an SRPError whose code is the
// phase byte itself.
const srpErrorFillerByte = 0x00

func isKnownSRPPhase(b byte) bool {
	switch SRPPhase(b) {
	case SRPPhase1, SRPPhase2, SRPPhase3, SRPPhase4:
		return true
	}
	return false
}

// BluetoothUnlockRequest is the single payload carrying one phase of the
// client's side of the SRP handshake (spec.md §4.4).
type BluetoothUnlockRequest struct {
	FrameID byte
	Phase   SRPPhase
	Payload []byte
}

func (f *BluetoothUnlockRequest) FrameType() byte   { return FrameTypeBluetoothUnlock }
func (f *BluetoothUnlockRequest) HasFrameID() bool  { return true }
func (f *BluetoothUnlockRequest) ID() byte          { return f.FrameID }
func (f *BluetoothUnlockRequest) IsBroadcast() bool { return false }

func (f *BluetoothUnlockRequest) Serialize() []byte {
	out := make([]byte, 0, 3+len(f.Payload))
	out = append(out, FrameTypeBluetoothUnlock, f.FrameID, byte(f.Phase))
	out = append(out, f.Payload...)
	return out
}

func parseBluetoothUnlock(body []byte) (Frame, error) {
	if err := requireLen(body, 2); err != nil {
		return nil, err
	}
	return &BluetoothUnlockRequest{
		FrameID: body[0],
		Phase:   SRPPhase(body[1]),
		Payload: append([]byte(nil), body[2:]...),
	}, nil
}

// BluetoothUnlockResponse either carries the matching phase's payload, or
// — when the phase byte is unrecognized and exactly one payload byte
// follows it — an SRPError, whose code is that unrecognized phase byte.
type BluetoothUnlockResponse struct {
	FrameID   byte
	Phase     SRPPhase
	Payload   []byte
	IsError   bool
	ErrorCode SRPError
}

func (f *BluetoothUnlockResponse) FrameType() byte   { return FrameTypeBluetoothUnlockResponse }
func (f *BluetoothUnlockResponse) HasFrameID() bool  { return true }
func (f *BluetoothUnlockResponse) ID() byte          { return f.FrameID }
func (f *BluetoothUnlockResponse) IsBroadcast() bool { return false }

func (f *BluetoothUnlockResponse) Serialize() []byte {
	if f.IsError {
		return []byte{FrameTypeBluetoothUnlockResponse, f.FrameID, byte(f.ErrorCode), srpErrorFillerByte}
	}
	out := make([]byte, 0, 3+len(f.Payload))
	out = append(out, FrameTypeBluetoothUnlockResponse, f.FrameID, byte(f.Phase))
	out = append(out, f.Payload...)
	return out
}

func parseBluetoothUnlockResponse(body []byte) (Frame, error) {
	if err := requireLen(body, 2); err != nil {
		return nil, err
	}
	frameID, phaseByte, rest := body[0], body[1], body[2:]
	if !isKnownSRPPhase(phaseByte) && len(rest) == 1 {
		return &BluetoothUnlockResponse{
			FrameID:   frameID,
			IsError:   true,
			ErrorCode: SRPError(phaseByte),
		}, nil
	}
	return &BluetoothUnlockResponse{
		FrameID: frameID,
		Phase:   SRPPhase(phaseByte),
		Payload: append([]byte(nil), rest...),
	}, nil
}
