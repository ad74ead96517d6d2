package xbee

import (
	"errors"
	"fmt"
)

// Constructional errors — rejected at the boundary, never produce a
// malformed outbound frame (spec.md §7).
var (
	ErrInvalidFieldLength = errors.New("xbee: invalid field length")
	ErrInvalidAddress     = errors.New("xbee: invalid address")
	ErrInvalidPhoneNumber = errors.New("xbee: invalid phone number")
	ErrUnknownEnumerator  = errors.New("xbee: unknown enumerator")
)

// Wire errors — surfaced from ParseFrame/Unwrap; a single corrupt frame
// never poisons the stream.
var (
	ErrIncompletePayload = errors.New("xbee: incomplete payload")
	ErrSyncLost          = errors.New("xbee: sync lost")
	ErrTruncatedFrame    = errors.New("xbee: truncated frame")
	ErrChecksumMismatch  = errors.New("xbee: checksum mismatch")
)

// UnknownFrameTypeError reports a frame-type byte with no registered
// variant (spec.md §4.1).
type UnknownFrameTypeError struct {
	FrameType byte
}

func (e *UnknownFrameTypeError) Error() string {
	return fmt.Sprintf("xbee: unknown frame type 0x%02x", e.FrameType)
}

// FieldConstraintError reports a violated field-level invariant while
// parsing a specific, otherwise-recognized frame variant.
type FieldConstraintError struct {
	Field  string
	Reason string
}

func (e *FieldConstraintError) Error() string {
	return fmt.Sprintf("xbee: field constraint violated on %s: %s", e.Field, e.Reason)
}

// Queue errors.
var (
	ErrQueueEmpty   = errors.New("xbee: queue empty")
	ErrQueueTimeout = errors.New("xbee: timed out waiting for matching frame")
)

// ErrResponse reports a non-OK AT command status (spec.md §4.1).
var ErrResponse = errors.New("xbee: command response status not OK")

// SRPError is the device-reported unlock rejection code carried in a
// BluetoothUnlockResponse whose phase byte is not a recognized phase
// (spec.md §4.4).
type SRPError byte

const (
	SRPErrorUnableToOfferB       SRPError = 0x80
	SRPErrorIncorrectPayloadLen  SRPError = 0x81
	SRPErrorBadProofKey          SRPError = 0x82
	SRPErrorResourceAllocation   SRPError = 0x83
	SRPErrorOutOfSequence        SRPError = 0x84
	SRPErrorUnknownError         SRPError = 0xFF
)

func (e SRPError) String() string {
	switch e {
	case SRPErrorUnableToOfferB:
		return "UnableToOfferB"
	case SRPErrorIncorrectPayloadLen:
		return "IncorrectPayloadLength"
	case SRPErrorBadProofKey:
		return "BadProofKey"
	case SRPErrorResourceAllocation:
		return "ResourceAllocation"
	case SRPErrorOutOfSequence:
		return "OutOfSequence"
	}
	return fmt.Sprintf("SRPError(0x%02x)", byte(e))
}

// ErrPhaseTimeout reports the SRP phase that failed to produce a matching
// response within its configured timeout.
type ErrPhaseTimeout struct {
	Phase SRPPhase
}

func (e *ErrPhaseTimeout) Error() string {
	return fmt.Sprintf("xbee: srp phase %s timed out", e.Phase)
}

// ErrDeviceRejected wraps a device-reported SRPError.
type ErrDeviceRejected struct {
	Code SRPError
}

func (e *ErrDeviceRejected) Error() string {
	return fmt.Sprintf("xbee: srp device rejected: %s", e.Code)
}

var ErrSRPOutOfSequence = errors.New("xbee: srp response out of sequence")

// GPM errors (spec.md §4.5, §7).
var (
	ErrTxStatusAbsent        = errors.New("xbee: gpm: no successful transmit-status frame observed")
	ErrRxTimeout             = errors.New("xbee: gpm: no matching response frame observed")
	ErrMalformedResponse     = errors.New("xbee: gpm: malformed response payload")
	ErrWriteRetriesExhausted = errors.New("xbee: gpm: write retries exhausted")
	ErrNoModemReset          = errors.New("xbee: gpm: reboot not observed")
)

// ErrDeviceError wraps the GPM step whose response status bit signalled
// failure.
type ErrDeviceError struct {
	Step string
}

func (e *ErrDeviceError) Error() string {
	return fmt.Sprintf("xbee: gpm: device reported error during %s", e.Step)
}
