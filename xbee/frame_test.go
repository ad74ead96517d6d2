package xbee

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip serializes f, parses the result, and asserts the reparsed
// frame serializes identically — spec.md §8 invariant 1.
func roundTrip(t *testing.T, f Frame) Frame {
	t.Helper()
	wire := f.Serialize()
	parsed, err := ParseFrame(wire)
	require.NoError(t, err)
	assert.Equal(t, wire, parsed.Serialize())
	return parsed
}

func TestATCommandFrameRoundTrip(t *testing.T) {
	f := &ATCommandFrame{FrameID: 0x01, Command: ATCommand{'N', 'I'}, Value: []byte("node")}
	parsed := roundTrip(t, f)
	assert.Equal(t, byte(FrameTypeATCommand), parsed.FrameType())
	assert.True(t, parsed.HasFrameID())
	assert.Equal(t, byte(0x01), parsed.ID())
}

func TestATCommandQueuedUsesDistinctFrameType(t *testing.T) {
	f := &ATCommandFrame{FrameID: 0x02, Command: ATCommand{'N', 'I'}, queued: true}
	assert.Equal(t, byte(FrameTypeATCommandQueued), f.FrameType())
	roundTrip(t, f)
}

func TestATCommandResponseDataAbsentWhenNotOK(t *testing.T) {
	body := []byte{0x01, 'N', 'I', byte(CommandStatusError)}
	f, err := parseATCommandResponse(body)
	require.NoError(t, err)
	resp := f.(*ATCommandResponse)
	assert.Nil(t, resp.Data)
}

func TestTransmitRequestRoundTrip(t *testing.T) {
	f := &TransmitRequest{
		FrameID:       0x05,
		Destination64: AddressCoordinator,
		Destination16: Address16Unknown,
		Options:       TODisableRetriesAndRouteRepair,
		Data:          []byte("payload"),
	}
	roundTrip(t, f)
}

func TestTransmitStatusRoundTrip(t *testing.T) {
	f := &TransmitStatus{
		FrameID:         0x05,
		Destination16:   Address16Broadcast,
		DeliveryStatus:  DeliverySuccess,
		DiscoveryStatus: DiscoveryNoOverhead,
	}
	parsed := roundTrip(t, f)
	assert.True(t, parsed.IsBroadcast())
}

func TestExplicitAddressingRoundTrip(t *testing.T) {
	f := &ExplicitAddressingRequest{
		FrameID:        0x09,
		Destination64:  Address64(0x0013A20012345678),
		Destination16:  Address16Unknown,
		SourceEndpoint: 0xE6,
		DestEndpoint:   0xE6,
		ClusterID:      ClusterID(0x0023),
		ProfileID:      ProfileID(0xC105),
		Data:           []byte{0x00},
	}
	roundTrip(t, f)
}

func TestExplicitRXIndicatorRoundTrip(t *testing.T) {
	f := &ExplicitRXIndicator{
		Source64:       Address64(0x1),
		Source16:       Address16(0x2),
		SourceEndpoint: 0xE6,
		DestEndpoint:   0xE6,
		ClusterID:      ClusterID(0x0023),
		ProfileID:      ProfileID(0xC105),
		Data:           []byte{0x80, 0x00},
	}
	roundTrip(t, f)
}

func TestIODataSampleIndicatorPreservesRawOnRoundTrip(t *testing.T) {
	raw := []byte{0x01, 0x00, 0x0C, 0x01, 0x03, 0xE8}
	body := append([]byte{0, 0, 0, 0, 0, 0, 0, 1, 0xFF, 0xFE, 0x02}, raw...)
	f, err := parseIODataSampleIndicator(body)
	require.NoError(t, err)
	ind := f.(*IODataSampleIndicator)
	require.NotNil(t, ind.Sample)
	assert.Equal(t, raw, ind.Serialize()[11:])
}

func TestIODataSampleIndicatorTooShortLeavesSampleNil(t *testing.T) {
	body := append([]byte{0, 0, 0, 0, 0, 0, 0, 1, 0xFF, 0xFE, 0x02}, 0x01, 0x00)
	f, err := parseIODataSampleIndicator(body)
	require.NoError(t, err)
	ind := f.(*IODataSampleIndicator)
	assert.Nil(t, ind.Sample)
}

func TestBluetoothUnlockRoundTrip(t *testing.T) {
	f := &BluetoothUnlockRequest{FrameID: 0x01, Phase: SRPPhase1, Payload: []byte{0x01, 0x02}}
	roundTrip(t, f)
}

func TestBluetoothUnlockResponseUnknownPhaseIsError(t *testing.T) {
	body := []byte{0x01, 0x82, 0xAA}
	f, err := parseBluetoothUnlockResponse(body)
	require.NoError(t, err)
	resp := f.(*BluetoothUnlockResponse)
	assert.True(t, resp.IsError)
	assert.Equal(t, SRPErrorBadProofKey, resp.ErrorCode)
}

func TestBluetoothUnlockResponseErrorRoundTrip(t *testing.T) {
	f := &BluetoothUnlockResponse{FrameID: 0x01, IsError: true, ErrorCode: SRPErrorUnableToOfferB}
	parsed := roundTrip(t, f)
	resp := parsed.(*BluetoothUnlockResponse)
	assert.True(t, resp.IsError)
	assert.Equal(t, SRPErrorUnableToOfferB, resp.ErrorCode)
}

func TestBluetoothUnlockResponseKnownPhase(t *testing.T) {
	body := []byte{0x01, 0x02, 0xAA, 0xBB}
	f, err := parseBluetoothUnlockResponse(body)
	require.NoError(t, err)
	resp := f.(*BluetoothUnlockResponse)
	assert.False(t, resp.IsError)
	assert.Equal(t, SRPPhase2, resp.Phase)
	roundTrip(t, resp)
}

func TestTXSMSRoundTrip(t *testing.T) {
	f, err := NewTXSMS(0x01, "+15551234567", "hello")
	require.NoError(t, err)
	parsed := roundTrip(t, f)
	sms := parsed.(*TXSMS)
	assert.Equal(t, "+15551234567", sms.PhoneNumber)
	assert.Equal(t, "hello", sms.Message)
}

func TestNewTXSMSRejectsOverlongNumber(t *testing.T) {
	_, err := NewTXSMS(0x01, "123456789012345678901", "hi")
	assert.ErrorIs(t, err, ErrInvalidPhoneNumber)
}

func TestTXIPv4RoundTrip(t *testing.T) {
	f := &TXIPv4{
		FrameID:     0x01,
		Destination: net.IPv4(10, 0, 0, 1),
		DestPort:    80,
		SourcePort:  1234,
		Protocol:    IPProtocolTCP,
		Data:        []byte("GET / HTTP/1.1"),
	}
	parsed := roundTrip(t, f)
	rx := parsed.(*TXIPv4)
	assert.True(t, rx.Destination.Equal(net.IPv4(10, 0, 0, 1)))
}

func TestUserDataRelayRoundTrip(t *testing.T) {
	f := &UserDataRelayInput{FrameID: 0x01, Interface: LocalInterfaceBluetooth, Data: []byte("hi")}
	roundTrip(t, f)
}

func TestModemStatusUnknownCodeRoundTrips(t *testing.T) {
	f := &ModemStatusFrame{Status: ModemStatusCode(0x42)}
	roundTrip(t, f)
	assert.Contains(t, f.Status.String(), "Unknown")
}

func TestParseFrameUnknownType(t *testing.T) {
	_, err := ParseFrame([]byte{0xFE})
	var unknown *UnknownFrameTypeError
	assert.ErrorAs(t, err, &unknown)
}

func TestParseFrameEmptyPayload(t *testing.T) {
	_, err := ParseFrame(nil)
	assert.ErrorIs(t, err, ErrIncompletePayload)
}
