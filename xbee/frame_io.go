package xbee

import "encoding/binary"

// IOSample is the decoded substructure of an IO data-sample payload: a
// digital-channel mask, an analog-channel mask, and the per-channel values
// present when their mask bit is set (spec.md §4.1 "IO data sample").
type IOSample struct {
	SampleCount   byte
	DigitalMask   uint16
	AnalogMask    byte
	DigitalValues uint16 // valid only when DigitalMask != 0
	AnalogValues  []uint16
}

// tryParseIOSample attempts to decode raw as an IOSample. It returns nil
// (exposing only raw bytes to the caller) when fewer than 5 bytes remain.
// Channel readings that the masks announce but raw does not contain are
// left unset in the returned sample.
func tryParseIOSample(raw []byte) *IOSample {
	if len(raw) < 5 {
		return nil
	}
	s := &IOSample{
		SampleCount: raw[0],
		DigitalMask: binary.BigEndian.Uint16(raw[1:3]),
		AnalogMask:  raw[3],
	}
	off := 4
	if s.DigitalMask != 0 {
		if len(raw) < off+2 {
			return s
		}
		s.DigitalValues = binary.BigEndian.Uint16(raw[off : off+2])
		off += 2
	}
	for ch := 0; ch < 8; ch++ {
		if s.AnalogMask&(1<<uint(ch)) == 0 {
			continue
		}
		if len(raw) < off+2 {
			return s
		}
		s.AnalogValues = append(s.AnalogValues, binary.BigEndian.Uint16(raw[off:off+2]))
		off += 2
	}
	return s
}

func (s *IOSample) serialize() []byte {
	out := make([]byte, 0, 4+2+2*len(s.AnalogValues))
	out = append(out, s.SampleCount, byte(s.DigitalMask>>8), byte(s.DigitalMask))
	out = append(out, s.AnalogMask)
	if s.DigitalMask != 0 {
		out = append(out, byte(s.DigitalValues>>8), byte(s.DigitalValues))
	}
	for _, v := range s.AnalogValues {
		out = append(out, byte(v>>8), byte(v))
	}
	return out
}

// IODataSampleIndicator reports a remote module's configured digital and
// analog channel readings (spec.md §3, "IO data-sample indicator").
type IODataSampleIndicator struct {
	Source64 Address64
	Source16 Address16
	Options  ReceiveOption
	Sample   *IOSample
	Raw      []byte
}

func (f *IODataSampleIndicator) FrameType() byte   { return FrameTypeIODataSampleRXIndicator }
func (f *IODataSampleIndicator) HasFrameID() bool  { return false }
func (f *IODataSampleIndicator) ID() byte          { return 0 }
func (f *IODataSampleIndicator) IsBroadcast() bool { return f.Options.Has(ROBroadcast) }

func (f *IODataSampleIndicator) Serialize() []byte {
	src := f.Source64.bytes()
	src16 := f.Source16.bytes()
	out := make([]byte, 0, 12+len(f.Raw))
	out = append(out, FrameTypeIODataSampleRXIndicator)
	out = append(out, src[:]...)
	out = append(out, src16[:]...)
	out = append(out, byte(f.Options))
	if f.Raw != nil {
		out = append(out, f.Raw...)
	} else if f.Sample != nil {
		out = append(out, f.Sample.serialize()...)
	}
	return out
}

func parseIODataSampleIndicator(body []byte) (Frame, error) {
	if err := requireLen(body, 11); err != nil {
		return nil, err
	}
	raw := body[11:]
	return &IODataSampleIndicator{
		Source64: parseAddress64(body[0:8]),
		Source16: parseAddress16(body[8:10]),
		Options:  ReceiveOption(body[10]),
		Sample:   tryParseIOSample(raw),
		Raw:      append([]byte(nil), raw...),
	}, nil
}
