package xbee

import "fmt"

// LocalInterface enumerates the local interfaces a user-data-relay frame
// can address or report (spec.md §3, "User-data-relay").
type LocalInterface byte

const (
	LocalInterfaceSerial     LocalInterface = 0x00
	LocalInterfaceBluetooth  LocalInterface = 0x01
	LocalInterfaceMicroPython LocalInterface = 0x02
	LocalInterfaceUnknown    LocalInterface = 0xFF
)

func (i LocalInterface) String() string {
	switch i {
	case LocalInterfaceSerial:
		return "Serial"
	case LocalInterfaceBluetooth:
		return "Bluetooth"
	case LocalInterfaceMicroPython:
		return "MicroPython"
	}
	return fmt.Sprintf("Unknown(0x%02x)", byte(i))
}

// UserDataRelayInput forwards an opaque payload to another local interface
// (spec.md §3, "User-data-relay input").
type UserDataRelayInput struct {
	FrameID   byte
	Interface LocalInterface
	Data      []byte
}

func (f *UserDataRelayInput) FrameType() byte   { return FrameTypeUserDataRelayInput }
func (f *UserDataRelayInput) HasFrameID() bool  { return true }
func (f *UserDataRelayInput) ID() byte          { return f.FrameID }
func (f *UserDataRelayInput) IsBroadcast() bool { return false }

func (f *UserDataRelayInput) Serialize() []byte {
	out := make([]byte, 0, 3+len(f.Data))
	out = append(out, FrameTypeUserDataRelayInput, f.FrameID, byte(f.Interface))
	out = append(out, f.Data...)
	return out
}

func parseUserDataRelayInput(body []byte) (Frame, error) {
	if err := requireLen(body, 2); err != nil {
		return nil, err
	}
	return &UserDataRelayInput{
		FrameID:   body[0],
		Interface: LocalInterface(body[1]),
		Data:      append([]byte(nil), body[2:]...),
	}, nil
}

// UserDataRelayOutput reports a payload relayed from another local
// interface (spec.md §3, "User-data-relay output").
type UserDataRelayOutput struct {
	Interface LocalInterface
	Data      []byte
}

func (f *UserDataRelayOutput) FrameType() byte   { return FrameTypeUserDataRelayOutput }
func (f *UserDataRelayOutput) HasFrameID() bool  { return false }
func (f *UserDataRelayOutput) ID() byte          { return 0 }
func (f *UserDataRelayOutput) IsBroadcast() bool { return false }

func (f *UserDataRelayOutput) Serialize() []byte {
	out := make([]byte, 0, 2+len(f.Data))
	out = append(out, FrameTypeUserDataRelayOutput, byte(f.Interface))
	out = append(out, f.Data...)
	return out
}

func parseUserDataRelayOutput(body []byte) (Frame, error) {
	if err := requireLen(body, 1); err != nil {
		return nil, err
	}
	return &UserDataRelayOutput{
		Interface: LocalInterface(body[0]),
		Data:      append([]byte(nil), body[1:]...),
	}, nil
}
