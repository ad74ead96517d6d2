package xbee

import "bytes"

const phoneNumberFieldLen = 20

// encodePhoneNumber right-pads number to the fixed 20-byte wire field with
// 0x00 (spec.md §4 "Phone number (SMS)").
func encodePhoneNumber(number string) ([phoneNumberFieldLen]byte, error) {
	var out [phoneNumberFieldLen]byte
	if len(number) > phoneNumberFieldLen {
		return out, ErrInvalidPhoneNumber
	}
	copy(out[:], number)
	return out, nil
}

// decodePhoneNumber trims trailing NULs for callers while the wire field
// stays zero-padded (spec.md §4.1 "SMS").
func decodePhoneNumber(b []byte) string {
	return string(bytes.TrimRight(b, "\x00"))
}

// TXSMS requests an SMS transmission through a cellular XBee (spec.md §3,
// "TX SMS").
type TXSMS struct {
	FrameID     byte
	PhoneNumber string
	Message     string
}

func (f *TXSMS) FrameType() byte   { return FrameTypeTXSMS }
func (f *TXSMS) HasFrameID() bool  { return true }
func (f *TXSMS) ID() byte          { return f.FrameID }
func (f *TXSMS) IsBroadcast() bool { return false }

func (f *TXSMS) Serialize() []byte {
	phone, err := encodePhoneNumber(f.PhoneNumber)
	if err != nil {
		// Constructional errors are rejected before a frame is built;
		// Serialize itself is documented infallible given a validly
		// constructed value (spec.md §4.1).
		phone = [phoneNumberFieldLen]byte{}
	}
	out := make([]byte, 0, 2+phoneNumberFieldLen+len(f.Message))
	out = append(out, FrameTypeTXSMS, f.FrameID)
	out = append(out, phone[:]...)
	out = append(out, []byte(f.Message)...)
	return out
}

func parseTXSMS(body []byte) (Frame, error) {
	if err := requireLen(body, 1+phoneNumberFieldLen); err != nil {
		return nil, err
	}
	return &TXSMS{
		FrameID:     body[0],
		PhoneNumber: decodePhoneNumber(body[1 : 1+phoneNumberFieldLen]),
		Message:     string(body[1+phoneNumberFieldLen:]),
	}, nil
}

// RXSMS is an inbound SMS indication (spec.md §3, "RX SMS").
type RXSMS struct {
	PhoneNumber string
	Message     string
}

func (f *RXSMS) FrameType() byte   { return FrameTypeRXSMS }
func (f *RXSMS) HasFrameID() bool  { return false }
func (f *RXSMS) ID() byte          { return 0 }
func (f *RXSMS) IsBroadcast() bool { return false }

func (f *RXSMS) Serialize() []byte {
	phone, err := encodePhoneNumber(f.PhoneNumber)
	if err != nil {
		phone = [phoneNumberFieldLen]byte{}
	}
	out := make([]byte, 0, 1+phoneNumberFieldLen+len(f.Message))
	out = append(out, FrameTypeRXSMS)
	out = append(out, phone[:]...)
	out = append(out, []byte(f.Message)...)
	return out
}

func parseRXSMS(body []byte) (Frame, error) {
	if err := requireLen(body, phoneNumberFieldLen); err != nil {
		return nil, err
	}
	return &RXSMS{
		PhoneNumber: decodePhoneNumber(body[0:phoneNumberFieldLen]),
		Message:     string(body[phoneNumberFieldLen:]),
	}, nil
}

// NewTXSMS validates the arguments (not yet-assigned struct fields) before
// constructing the frame (spec.md §9, resolving the source's constructor
// bug: "the checks always compare against null properties rather than the
// arguments; treat the intended behavior as validating the arguments").
func NewTXSMS(frameID byte, phoneNumber, message string) (*TXSMS, error) {
	if len(phoneNumber) > phoneNumberFieldLen {
		return nil, ErrInvalidPhoneNumber
	}
	return &TXSMS{FrameID: frameID, PhoneNumber: phoneNumber, Message: message}, nil
}
