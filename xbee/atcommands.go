package xbee

// AT command mnemonics exercised by Session, xbeectl, and the GPM
// sequencer (spec.md §4.5 step 1: "NP — Maximum RF Payload Bytes").
// Device-façade conveniences beyond these (node discovery, active scan,
// encryption key management, ...) are out of scope (spec.md §1).
var (
	// ATSerialNumberHigh/Low. Read the upper/lower 32 bits of the
	// factory-set, globally unique 64-bit device address.
	// Parameter Range: 0 - 0xFFFFFFFF [read-only]
	ATSerialNumberHigh = ATCommand([2]byte{'S', 'H'})
	ATSerialNumberLow  = ATCommand([2]byte{'S', 'L'})

	// ATNodeIdentifier. A user-settable, up-to-20-character ASCII label.
	ATNodeIdentifier = ATCommand([2]byte{'N', 'I'})

	// AT16BitNetworkAddress. 0xFFFE means the module has not joined a
	// network.
	// Parameter Range: 0 - 0xFFFE [read-only]
	AT16BitNetworkAddress = ATCommand([2]byte{'M', 'Y'})

	// ATMaximumRFPayloadBytes. The largest payload the radio will
	// accept in one GPM Write; used to size page writes (spec.md §4.5).
	ATMaximumRFPayloadBytes = ATCommand([2]byte{'N', 'P'})

	// ATFirmwareVersion/ATHardwareVersion.
	ATFirmwareVersion = ATCommand([2]byte{'V', 'R'})
	ATHardwareVersion = ATCommand([2]byte{'H', 'V'})

	// ATSoftwareReset. Issues a local software reset; used by xbeectl's
	// reset command. The GPM sequencer does not send it: after install it
	// waits for the device's own HardwareReset modem status.
	ATSoftwareReset = ATCommand([2]byte{'F', 'R'})
)
