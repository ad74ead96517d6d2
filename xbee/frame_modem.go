package xbee

import "fmt"

// ModemStatusCode is the one-byte event code carried by a Modem Status
// frame. Codes outside the known set are kept as received (never rejected)
// and render as "Unknown(0x..)" through String.
type ModemStatusCode byte

const (
	ModemStatusHardwareReset          ModemStatusCode = 0x00
	ModemStatusWatchdogTimerReset     ModemStatusCode = 0x01
	ModemStatusJoinedNetwork          ModemStatusCode = 0x02
	ModemStatusDisassociated          ModemStatusCode = 0x03
	ModemStatusCoordinatorStarted     ModemStatusCode = 0x06
	ModemStatusNetworkKeyUpdated      ModemStatusCode = 0x07
	ModemStatusVoltageSupplyExceeded  ModemStatusCode = 0x0D
	ModemStatusConfigChangeDuringJoin ModemStatusCode = 0x11
	ModemStatusUnknown                ModemStatusCode = 0xFF
)

func (m ModemStatusCode) String() string {
	switch m {
	case ModemStatusHardwareReset:
		return "HardwareReset"
	case ModemStatusWatchdogTimerReset:
		return "WatchdogTimerReset"
	case ModemStatusJoinedNetwork:
		return "JoinedNetwork"
	case ModemStatusDisassociated:
		return "Disassociated"
	case ModemStatusCoordinatorStarted:
		return "CoordinatorStarted"
	case ModemStatusNetworkKeyUpdated:
		return "NetworkKeyUpdated"
	case ModemStatusVoltageSupplyExceeded:
		return "VoltageSupplyLimitExceeded"
	case ModemStatusConfigChangeDuringJoin:
		return "ConfigChangeDuringJoin"
	}
	return fmt.Sprintf("Unknown(0x%02x)", byte(m))
}

// ModemStatusFrame is an unsolicited device-level event notification
// (spec.md §3, "Modem-status notification").
type ModemStatusFrame struct {
	Status ModemStatusCode
}

func (f *ModemStatusFrame) FrameType() byte   { return FrameTypeModemStatus }
func (f *ModemStatusFrame) HasFrameID() bool  { return false }
func (f *ModemStatusFrame) ID() byte          { return 0 }
func (f *ModemStatusFrame) IsBroadcast() bool { return false }

func (f *ModemStatusFrame) Serialize() []byte {
	return []byte{FrameTypeModemStatus, byte(f.Status)}
}

func parseModemStatusFrame(body []byte) (Frame, error) {
	if err := requireLen(body, 1); err != nil {
		return nil, err
	}
	return &ModemStatusFrame{Status: ModemStatusCode(body[0])}, nil
}
