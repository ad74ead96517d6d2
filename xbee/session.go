package xbee

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/samuel/go-xbee/internal/xbeelog"
)

// SessionOption configures a Session at Open time.
type SessionOption func(*Session)

// WithSessionConfig overrides the default SessionConfig.
func WithSessionConfig(cfg SessionConfig) SessionOption {
	return func(s *Session) { s.cfg = cfg }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l *xbeelog.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// WithEscapeMode selects API-1 (Unescaped) or API-2 (Escaped) framing.
// Unescaped is the default.
func WithEscapeMode(mode EscapeMode) SessionOption {
	return func(s *Session) { s.mode = mode }
}

// Session is the half-duplex, frame-ID-correlated link to a single local
// XBee module (spec.md §6: Open/Send/SendAndAwait/SubscribePacket/
// SubscribeModemStatus). It generalizes the teacher's atCommand/
// registerListener/readLoop correlation mechanism from AT commands alone
// to every frame variant that carries a frame ID.
type Session struct {
	channel io.ReadWriter
	cfg     SessionConfig
	log     *xbeelog.Logger
	mode    EscapeMode

	queue *PacketQueue

	mu       sync.Mutex
	frameID  byte
	pending  map[byte]chan Frame
	modemSubs []chan ModemStatusCode
	closed   chan struct{}
	readErr  error
}

// Open starts the read loop over channel (typically an open serial port)
// and returns a ready Session. The caller owns channel's lifetime; Close
// only stops the Session's own goroutine.
func Open(channel io.ReadWriter, opts ...SessionOption) (*Session, error) {
	s := &Session{
		channel: channel,
		cfg:     DefaultSessionConfig(),
		log:     xbeelog.Nop(),
		mode:    Unescaped,
		pending: make(map[byte]chan Frame),
		closed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = NewPacketQueue(s.cfg.QueueCapacity)

	go s.readLoop()
	return s, nil
}

// Close signals the read loop to stop (it exits before reading its next
// frame) and makes pending SendAndAwait calls return io.ErrClosedPipe. It
// does not close the channel.
func (s *Session) Close() {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
}

// nextFrameID cycles 1..255, skipping 0 (spec.md §9: frame ID 0 disables
// response correlation and is never assigned by Session).
func (s *Session) nextFrameID() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameID++
	if s.frameID == 0 {
		s.frameID = 1
	}
	return s.frameID
}

// AssignFrameID sets f's frame-ID field to a freshly allocated, non-zero
// ID if f carries one, and returns it (0 for frame types without
// correlation).
func (s *Session) AssignFrameID(f Frame) byte {
	if !f.HasFrameID() {
		return 0
	}
	id := s.nextFrameID()
	switch v := f.(type) {
	case *ATCommandFrame:
		v.FrameID = id
	case *TransmitRequest:
		v.FrameID = id
	case *ExplicitAddressingRequest:
		v.FrameID = id
	case *RemoteATCommandFrame:
		v.FrameID = id
	case *BluetoothUnlockRequest:
		v.FrameID = id
	case *UserDataRelayInput:
		v.FrameID = id
	case *TXSMS:
		v.FrameID = id
	case *TXIPv4:
		v.FrameID = id
	}
	return id
}

// Send writes f's wire encoding to the channel without waiting for a
// response.
func (s *Session) Send(f Frame) error {
	out := Wrap(f.Serialize(), s.mode)
	if _, err := s.channel.Write(out); err != nil {
		return fmt.Errorf("xbee: write: %w", err)
	}
	return nil
}

// registerCorrelation opens a one-shot channel that the read loop will
// deliver the next frame carrying id to, and returns it along with a
// cleanup func the caller must defer.
func (s *Session) registerCorrelation(id byte) (<-chan Frame, func()) {
	ch := make(chan Frame, 1)
	s.mu.Lock()
	s.pending[id] = ch
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}
}

// SendAndAwait assigns f a fresh frame ID (if it carries one), sends it,
// and blocks until a frame with the matching ID arrives or ctx is done.
// Frames with HasFrameID()==false cannot be correlated this way; use
// SubscribePacket or the PacketQueue instead.
func (s *Session) SendAndAwait(ctx context.Context, f Frame) (Frame, error) {
	if !f.HasFrameID() {
		return nil, fmt.Errorf("xbee: frame type %T does not carry a frame ID", f)
	}
	id := s.AssignFrameID(f)

	ch, cleanup := s.registerCorrelation(id)
	defer cleanup()

	if err := s.Send(f); err != nil {
		return nil, err
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.closed:
		return nil, io.ErrClosedPipe
	}
}

// SubscribePacket returns the session's shared PacketQueue for
// typed/addressed retrieval of frames that were not claimed by a pending
// SendAndAwait correlation (spec.md §4.3).
func (s *Session) SubscribePacket() *PacketQueue {
	return s.queue
}

// SubscribeModemStatus registers a channel that receives every unsolicited
// ModemStatusFrame observed on the link. The returned channel is buffered;
// a slow consumer only misses status events, never blocks the read loop.
func (s *Session) SubscribeModemStatus() <-chan ModemStatusCode {
	ch := make(chan ModemStatusCode, 8)
	s.mu.Lock()
	s.modemSubs = append(s.modemSubs, ch)
	s.mu.Unlock()
	return ch
}

// ATParameter reads a local AT parameter, used by GPM's NP (maximum RF
// payload bytes) lookup (spec.md §4.5 step 1).
func (s *Session) ATParameter(ctx context.Context, cmd ATCommand) ([]byte, error) {
	req := &ATCommandFrame{Command: cmd}
	resp, err := s.SendAndAwait(ctx, req)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ATCommandResponse)
	if !ok {
		return nil, fmt.Errorf("xbee: expected ATCommandResponse, got %T", resp)
	}
	if r.Status != CommandStatusOK {
		return nil, fmt.Errorf("xbee: at command %s: %w (%s)", cmd, ErrResponse, r.Status)
	}
	return r.Data, nil
}

// SetATParameter writes a local AT parameter and waits for OK.
func (s *Session) SetATParameter(ctx context.Context, cmd ATCommand, value []byte) error {
	req := &ATCommandFrame{Command: cmd, Value: value}
	resp, err := s.SendAndAwait(ctx, req)
	if err != nil {
		return err
	}
	r, ok := resp.(*ATCommandResponse)
	if !ok {
		return fmt.Errorf("xbee: expected ATCommandResponse, got %T", resp)
	}
	if r.Status != CommandStatusOK {
		return fmt.Errorf("xbee: at command %s: %w (%s)", cmd, ErrResponse, r.Status)
	}
	return nil
}

// readLoop unwraps frames off the channel and dispatches each to the
// pending correlation channel for its frame ID, to modem-status
// subscribers, or to the shared packet queue. Generalizes the teacher's
// readLoop in the now-removed xbee.go.
func (s *Session) readLoop() {
	u := NewUnwrapper(s.channel, s.mode)
	for {
		select {
		case <-s.closed:
			return
		default:
		}

		payload, err := u.Next()
		if err != nil {
			switch err {
			case ErrChecksumMismatch, ErrTruncatedFrame, ErrSyncLost:
				s.log.Warn(fmt.Sprintf("xbee: dropping corrupt frame: %s", err))
				continue
			}
			s.mu.Lock()
			s.readErr = err
			s.mu.Unlock()
			s.log.Error("xbee: read loop terminated", err)
			return
		}

		frame, err := ParseFrame(payload)
		if err != nil {
			s.log.Warn(fmt.Sprintf("xbee: dropping unparseable frame: %s", err))
			continue
		}

		if ms, ok := frame.(*ModemStatusFrame); ok {
			s.mu.Lock()
			subs := append([]chan ModemStatusCode(nil), s.modemSubs...)
			s.mu.Unlock()
			for _, ch := range subs {
				select {
				case ch <- ms.Status:
				default:
				}
			}
			continue
		}

		if frame.HasFrameID() && frame.ID() != 0 {
			s.mu.Lock()
			ch, ok := s.pending[frame.ID()]
			s.mu.Unlock()
			if ok {
				select {
				case ch <- frame:
				default:
				}
				continue
			}
		}

		s.queue.Push(frame)
	}
}

// Err returns the error that terminated the read loop, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readErr
}

// defaultSendTimeout returns cfg's configured send timeout, or a sane
// fallback if unset.
func defaultSendTimeout(cfg SessionConfig) time.Duration {
	if cfg.DefaultSendTimeout <= 0 {
		return 5 * time.Second
	}
	return cfg.DefaultSendTimeout
}
