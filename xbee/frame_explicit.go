package xbee

// ExplicitAddressingRequest carries application-layer endpoints, cluster
// ID and profile ID in addition to the radio addresses (spec.md §3,
// "Explicit addressing request").
type ExplicitAddressingRequest struct {
	FrameID         byte
	Destination64   Address64
	Destination16   Address16
	SourceEndpoint  byte
	DestEndpoint    byte
	ClusterID       ClusterID
	ProfileID       ProfileID
	BroadcastRadius byte
	Options         TransmitOption
	Data            []byte
}

func (f *ExplicitAddressingRequest) FrameType() byte  { return FrameTypeExplicitAddressingRequest }
func (f *ExplicitAddressingRequest) HasFrameID() bool { return true }
func (f *ExplicitAddressingRequest) ID() byte         { return f.FrameID }
func (f *ExplicitAddressingRequest) IsBroadcast() bool {
	return f.Destination64 == AddressBroadcast64 || f.Destination16 == Address16Broadcast
}

func (f *ExplicitAddressingRequest) Serialize() []byte {
	dst := f.Destination64.bytes()
	dst16 := f.Destination16.bytes()
	cl := f.ClusterID.bytes()
	pr := f.ProfileID.bytes()
	out := make([]byte, 0, 19+len(f.Data))
	out = append(out, FrameTypeExplicitAddressingRequest, f.FrameID)
	out = append(out, dst[:]...)
	out = append(out, dst16[:]...)
	out = append(out, f.SourceEndpoint, f.DestEndpoint)
	out = append(out, cl[:]...)
	out = append(out, pr[:]...)
	out = append(out, f.BroadcastRadius, byte(f.Options))
	out = append(out, f.Data...)
	return out
}

func parseExplicitAddressingRequest(body []byte) (Frame, error) {
	if err := requireLen(body, 19); err != nil {
		return nil, err
	}
	return &ExplicitAddressingRequest{
		FrameID:         body[0],
		Destination64:   parseAddress64(body[1:9]),
		Destination16:   parseAddress16(body[9:11]),
		SourceEndpoint:  body[11],
		DestEndpoint:    body[12],
		ClusterID:       ClusterID(parseAddress16(body[13:15])),
		ProfileID:       ProfileID(parseAddress16(body[15:17])),
		BroadcastRadius: body[17],
		Options:         TransmitOption(body[18]),
		Data:            append([]byte(nil), body[19:]...),
	}, nil
}

// ExplicitRXIndicator is the explicit-addressing counterpart of
// ReceiveIndicator, used by the GPM sequencer's correlation model (spec.md
// §4.5).
type ExplicitRXIndicator struct {
	Source64       Address64
	Source16       Address16
	SourceEndpoint byte
	DestEndpoint   byte
	ClusterID      ClusterID
	ProfileID      ProfileID
	Options        ReceiveOption
	Data           []byte
}

func (f *ExplicitRXIndicator) FrameType() byte   { return FrameTypeExplicitRXIndicator }
func (f *ExplicitRXIndicator) HasFrameID() bool  { return false }
func (f *ExplicitRXIndicator) ID() byte          { return 0 }
func (f *ExplicitRXIndicator) IsBroadcast() bool { return f.Options.Has(ROBroadcast) }

func (f *ExplicitRXIndicator) Serialize() []byte {
	src := f.Source64.bytes()
	src16 := f.Source16.bytes()
	cl := f.ClusterID.bytes()
	pr := f.ProfileID.bytes()
	out := make([]byte, 0, 17+len(f.Data))
	out = append(out, FrameTypeExplicitRXIndicator)
	out = append(out, src[:]...)
	out = append(out, src16[:]...)
	out = append(out, f.SourceEndpoint, f.DestEndpoint)
	out = append(out, cl[:]...)
	out = append(out, pr[:]...)
	out = append(out, byte(f.Options))
	out = append(out, f.Data...)
	return out
}

func parseExplicitRXIndicator(body []byte) (Frame, error) {
	if err := requireLen(body, 17); err != nil {
		return nil, err
	}
	return &ExplicitRXIndicator{
		Source64:       parseAddress64(body[0:8]),
		Source16:       parseAddress16(body[8:10]),
		SourceEndpoint: body[10],
		DestEndpoint:   body[11],
		ClusterID:      ClusterID(parseAddress16(body[12:14])),
		ProfileID:      ProfileID(parseAddress16(body[14:16])),
		Options:        ReceiveOption(body[16]),
		Data:           append([]byte(nil), body[17:]...),
	}, nil
}
