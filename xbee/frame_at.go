package xbee

import "fmt"

// ATCommand is a 2-ASCII-byte mnemonic addressing a device parameter
// (spec.md GLOSSARY).
type ATCommand [2]byte

func (c ATCommand) String() string { return string(c[0]) + string(c[1]) }

// CommandStatus is the AT-command-response result code.
type CommandStatus byte

const (
	CommandStatusOK               CommandStatus = 0x00
	CommandStatusError            CommandStatus = 0x01
	CommandStatusInvalidCommand   CommandStatus = 0x02
	CommandStatusInvalidParameter CommandStatus = 0x03
	CommandStatusTxFailure        CommandStatus = 0x04
)

func (s CommandStatus) String() string {
	switch s {
	case CommandStatusOK:
		return "OK"
	case CommandStatusError:
		return "Error"
	case CommandStatusInvalidCommand:
		return "InvalidCommand"
	case CommandStatusInvalidParameter:
		return "InvalidParameter"
	case CommandStatusTxFailure:
		return "TxFailure"
	}
	return fmt.Sprintf("Unknown(0x%02x)", byte(s))
}

// ATCommandFrame requests a local parameter read or write (spec.md §3,
// "AT-command request/response (local, queued-local, remote)").
type ATCommandFrame struct {
	FrameID byte
	Command ATCommand
	Value   []byte
	queued  bool
}

func (f *ATCommandFrame) FrameType() byte {
	if f.queued {
		return FrameTypeATCommandQueued
	}
	return FrameTypeATCommand
}
func (f *ATCommandFrame) HasFrameID() bool  { return true }
func (f *ATCommandFrame) ID() byte          { return f.FrameID }
func (f *ATCommandFrame) IsBroadcast() bool { return false }

func (f *ATCommandFrame) Serialize() []byte {
	out := make([]byte, 0, 4+len(f.Value))
	out = append(out, f.FrameType(), f.FrameID, f.Command[0], f.Command[1])
	out = append(out, f.Value...)
	return out
}

func parseATCommand(body []byte) (Frame, error) {
	return parseATCommandFrame(body, false)
}

func parseATCommandQueued(body []byte) (Frame, error) {
	return parseATCommandFrame(body, true)
}

func parseATCommandFrame(body []byte, queued bool) (Frame, error) {
	if err := requireLen(body, 3); err != nil {
		return nil, err
	}
	return &ATCommandFrame{
		FrameID: body[0],
		Command: ATCommand{body[1], body[2]},
		Value:   append([]byte(nil), body[3:]...),
		queued:  queued,
	}, nil
}

// ATCommandResponse carries the result of a local AT command. Data is nil
// when CommandStatus != OK (spec.md §4.1: "the response value may be
// absent (when status ≠ OK)").
type ATCommandResponse struct {
	FrameID byte
	Command ATCommand
	Status  CommandStatus
	Data    []byte
}

func (f *ATCommandResponse) FrameType() byte   { return FrameTypeATCommandResponse }
func (f *ATCommandResponse) HasFrameID() bool  { return true }
func (f *ATCommandResponse) ID() byte          { return f.FrameID }
func (f *ATCommandResponse) IsBroadcast() bool { return false }

func (f *ATCommandResponse) Serialize() []byte {
	out := make([]byte, 0, 5+len(f.Data))
	out = append(out, FrameTypeATCommandResponse, f.FrameID, f.Command[0], f.Command[1], byte(f.Status))
	out = append(out, f.Data...)
	return out
}

func parseATCommandResponse(body []byte) (Frame, error) {
	if err := requireLen(body, 4); err != nil {
		return nil, err
	}
	r := &ATCommandResponse{
		FrameID: body[0],
		Command: ATCommand{body[1], body[2]},
		Status:  CommandStatus(body[3]),
	}
	if r.Status == CommandStatusOK && len(body) > 4 {
		r.Data = append([]byte(nil), body[4:]...)
	}
	return r, nil
}

// RemoteATCommandOption is the 1-byte option bitfield on a remote AT
// command request.
type RemoteATCommandOption byte

const (
	RemoteApplyChanges RemoteATCommandOption = 0x02
)

// RemoteATCommandFrame is an AT command framed for a remote 64-/16-bit
// destination (spec.md §3, "AT-command request/response (... remote)").
type RemoteATCommandFrame struct {
	FrameID       byte
	Destination64 Address64
	Destination16 Address16
	Options       RemoteATCommandOption
	Command       ATCommand
	Value         []byte
}

func (f *RemoteATCommandFrame) FrameType() byte  { return FrameTypeRemoteATCommand }
func (f *RemoteATCommandFrame) HasFrameID() bool { return true }
func (f *RemoteATCommandFrame) ID() byte         { return f.FrameID }
func (f *RemoteATCommandFrame) IsBroadcast() bool {
	return f.Destination64 == AddressBroadcast64 || f.Destination16 == Address16Broadcast
}

func (f *RemoteATCommandFrame) Serialize() []byte {
	dst := f.Destination64.bytes()
	dst16 := f.Destination16.bytes()
	out := make([]byte, 0, 15+len(f.Value))
	out = append(out, FrameTypeRemoteATCommand, f.FrameID)
	out = append(out, dst[:]...)
	out = append(out, dst16[:]...)
	out = append(out, byte(f.Options), f.Command[0], f.Command[1])
	out = append(out, f.Value...)
	return out
}

func parseRemoteATCommand(body []byte) (Frame, error) {
	if err := requireLen(body, 14); err != nil {
		return nil, err
	}
	return &RemoteATCommandFrame{
		FrameID:       body[0],
		Destination64: parseAddress64(body[1:9]),
		Destination16: parseAddress16(body[9:11]),
		Options:       RemoteATCommandOption(body[11]),
		Command:       ATCommand{body[12], body[13]},
		Value:         append([]byte(nil), body[14:]...),
	}, nil
}

// RemoteATCommandResponse is the response to a RemoteATCommandFrame,
// additionally reporting the responding device's addresses.
type RemoteATCommandResponse struct {
	FrameID  byte
	Source64 Address64
	Source16 Address16
	Command  ATCommand
	Status   CommandStatus
	Data     []byte
}

func (f *RemoteATCommandResponse) FrameType() byte   { return FrameTypeRemoteATCommandResponse }
func (f *RemoteATCommandResponse) HasFrameID() bool  { return true }
func (f *RemoteATCommandResponse) ID() byte          { return f.FrameID }
func (f *RemoteATCommandResponse) IsBroadcast() bool { return false }

func (f *RemoteATCommandResponse) Serialize() []byte {
	src := f.Source64.bytes()
	src16 := f.Source16.bytes()
	out := make([]byte, 0, 15+len(f.Data))
	out = append(out, FrameTypeRemoteATCommandResponse, f.FrameID)
	out = append(out, src[:]...)
	out = append(out, src16[:]...)
	out = append(out, f.Command[0], f.Command[1], byte(f.Status))
	out = append(out, f.Data...)
	return out
}

func parseRemoteATCommandResponse(body []byte) (Frame, error) {
	if err := requireLen(body, 14); err != nil {
		return nil, err
	}
	r := &RemoteATCommandResponse{
		FrameID:  body[0],
		Source64: parseAddress64(body[1:9]),
		Source16: parseAddress16(body[9:11]),
		Command:  ATCommand{body[11], body[12]},
		Status:   CommandStatus(body[13]),
	}
	if r.Status == CommandStatusOK && len(body) > 14 {
		r.Data = append([]byte(nil), body[14:]...)
	}
	return r, nil
}
