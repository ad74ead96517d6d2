package xbee

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadImage(t *testing.T) {
	assert.Equal(t, []byte{1, 2, 3, 0xFF}, padImage([]byte{1, 2, 3}, 4))
	aligned := []byte{1, 2, 3, 4}
	assert.Equal(t, aligned, padImage(aligned, 4))
}

// TestWriteImageNeverStraddlesBlockBoundary exercises spec.md §8 scenario 6
// directly against writeImage's chunking arithmetic, bypassing the network
// by injecting a recording writePageFn.
func TestWriteImageNeverStraddlesBlockBoundary(t *testing.T) {
	type write struct{ block, offset, n int }
	var writes []write

	r := &gpmRun{blocks: 10, bytesPerBlock: 100}
	r.writePageFn = func(ctx context.Context, timeout time.Duration, block, offset int, data []byte) error {
		if offset+len(data) > r.bytesPerBlock {
			t.Fatalf("write at block %d offset %d len %d straddles the %d-byte block", block, offset, len(data), r.bytesPerBlock)
		}
		writes = append(writes, write{block, offset, len(data)})
		return nil
	}

	image := bytes.Repeat([]byte{0x42}, 200)
	require.NoError(t, r.writeImage(context.Background(), time.Second, image, 64, nil))

	require.NotEmpty(t, writes)
	assert.Equal(t, write{0, 0, 64}, writes[0])

	total := 0
	for _, w := range writes {
		total += w.n
	}
	assert.Equal(t, 256, total) // 200 bytes padded up to a multiple of the 64-byte page size
}

// TestWriteImageBlockAlignedPageSplit reproduces spec.md §8 scenario 6's
// first worked example (bytes_per_block=256, page_size=64): a full block
// is filled exactly by four pages before advancing.
func TestWriteImageBlockAlignedPageSplit(t *testing.T) {
	type write struct{ block, offset, n int }
	var writes []write

	r := &gpmRun{blocks: 4, bytesPerBlock: 256}
	r.writePageFn = func(ctx context.Context, timeout time.Duration, block, offset int, data []byte) error {
		writes = append(writes, write{block, offset, len(data)})
		return nil
	}

	image := bytes.Repeat([]byte{0x01}, 320) // 5 pages of 64 bytes
	require.NoError(t, r.writeImage(context.Background(), time.Second, image, 64, nil))

	require.Len(t, writes, 5)
	for i := 0; i < 4; i++ {
		assert.Equal(t, write{0, i * 64, 64}, writes[i])
	}
	assert.Equal(t, write{1, 0, 64}, writes[4])
}

func TestWriteImageExceedingDeviceCapacityFails(t *testing.T) {
	r := &gpmRun{blocks: 1, bytesPerBlock: 64}
	r.writePageFn = func(ctx context.Context, timeout time.Duration, block, offset int, data []byte) error {
		return nil
	}
	err := r.writeImage(context.Background(), time.Second, bytes.Repeat([]byte{0x01}, 200), 64, nil)
	assert.Error(t, err)
}

// fakeGPMDevice plays the target device's side of the GPM correlation
// protocol (spec.md §4.5): it acknowledges every ExplicitAddressingRequest
// with both a TransmitStatus and a matching ExplicitRXIndicator, and emits
// a HardwareReset modem-status event once the install step completes.
func fakeGPMDevice(t *testing.T, conn io.ReadWriter, blocks, bytesPerBlock int) {
	t.Helper()
	u := NewUnwrapper(conn, Unescaped)
	write := func(f Frame) {
		if _, err := conn.Write(Wrap(f.Serialize(), Unescaped)); err != nil {
			return
		}
	}

	for {
		payload, err := u.Next()
		if err != nil {
			return
		}
		frame, err := ParseFrame(payload)
		if err != nil {
			continue
		}

		switch f := frame.(type) {
		case *ATCommandFrame:
			np := make([]byte, 2)
			binary.BigEndian.PutUint16(np, 72) // NP=72, pageSize=72-8=64
			write(&ATCommandResponse{FrameID: f.FrameID, Command: f.Command, Status: CommandStatusOK, Data: np})

		case *ExplicitAddressingRequest:
			write(&TransmitStatus{
				FrameID:         f.FrameID,
				Destination16:   f.Destination16,
				DeliveryStatus:  DeliverySuccess,
				DiscoveryStatus: DiscoveryNoOverhead,
			})

			cmd := f.Data[0]
			var resp []byte
			if cmd == gpmCmdInfo {
				resp = make([]byte, 10)
				resp[0] = cmd + 0x80
				binary.BigEndian.PutUint32(resp[2:6], uint32(blocks))
				binary.BigEndian.PutUint32(resp[6:10], uint32(bytesPerBlock))
			} else {
				resp = []byte{cmd + 0x80, 0x00}
			}

			write(&ExplicitRXIndicator{
				Source64:       f.Destination64,
				Source16:       f.Destination16,
				SourceEndpoint: f.DestEndpoint,
				DestEndpoint:   f.SourceEndpoint,
				ClusterID:      f.ClusterID,
				ProfileID:      f.ProfileID,
				Data:           resp,
			})

			if cmd == gpmCmdVerifyInstall {
				for i := 0; i < 25; i++ {
					write(&ModemStatusFrame{Status: ModemStatusHardwareReset})
					time.Sleep(20 * time.Millisecond)
				}
				return
			}
		}
	}
}

func TestUpdateFirmwareEndToEnd(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	addr := RemoteAddress{Addr64: Address64(0x0013A200DEADBEEF), Addr16: Address16Unknown}

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		fakeGPMDevice(t, serverConn, 4, 256)
	}()

	sess, err := Open(clientConn)
	require.NoError(t, err)
	defer sess.Close()

	cfg := DefaultSessionConfig()
	cfg.GPMRequestTimeout = 2 * time.Second
	cfg.GPMRebootTimeout = 2 * time.Second

	image := bytes.Repeat([]byte{0xAB}, 300) // spans a block boundary at bytesPerBlock=256
	err = sess.UpdateFirmware(context.Background(), addr, image, cfg, nil)
	require.NoError(t, err)

	<-serverDone
}

func TestUpdateFirmwareDeviceErrorSurfaces(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	addr := RemoteAddress{Addr64: Address64(0x1), Addr16: Address16Unknown}

	go func() {
		u := NewUnwrapper(serverConn, Unescaped)
		for {
			payload, err := u.Next()
			if err != nil {
				return
			}
			frame, err := ParseFrame(payload)
			if err != nil {
				continue
			}
			switch f := frame.(type) {
			case *ATCommandFrame:
				np := make([]byte, 2)
				binary.BigEndian.PutUint16(np, 72)
				resp := &ATCommandResponse{FrameID: f.FrameID, Command: f.Command, Status: CommandStatusOK, Data: np}
				serverConn.Write(Wrap(resp.Serialize(), Unescaped))
			case *ExplicitAddressingRequest:
				status := &TransmitStatus{FrameID: f.FrameID, Destination16: f.Destination16, DeliveryStatus: DeliverySuccess}
				serverConn.Write(Wrap(status.Serialize(), Unescaped))
				cmd := f.Data[0]
				// Info step reports a device error (status low bit set).
				rx := &ExplicitRXIndicator{
					Source64: f.Destination64, Source16: f.Destination16,
					SourceEndpoint: f.DestEndpoint, DestEndpoint: f.SourceEndpoint,
					ClusterID: f.ClusterID, ProfileID: f.ProfileID,
					Data: []byte{cmd + 0x80, 0x01, 0, 0, 0, 0, 0, 0, 0, 0},
				}
				serverConn.Write(Wrap(rx.Serialize(), Unescaped))
			}
		}
	}()

	sess, err := Open(clientConn)
	require.NoError(t, err)
	defer sess.Close()

	cfg := DefaultSessionConfig()
	cfg.GPMRequestTimeout = 2 * time.Second

	err = sess.UpdateFirmware(context.Background(), addr, []byte{0x01}, cfg, nil)
	var deviceErr *ErrDeviceError
	require.ErrorAs(t, err, &deviceErr)
	assert.Equal(t, "info", deviceErr.Step)
}

// TestWritePageExhaustsRetries drives writePage directly against a fake
// device that reports a write failure on every attempt, and asserts the
// sequencer surfaces ErrWriteRetriesExhausted once the configured attempt
// count is used up (spec.md §8 invariant 6).
func TestWritePageExhaustsRetries(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	addr := RemoteAddress{Addr64: Address64(0x1), Addr16: Address16Unknown}
	attempts := 0

	go func() {
		u := NewUnwrapper(serverConn, Unescaped)
		for {
			payload, err := u.Next()
			if err != nil {
				return
			}
			frame, err := ParseFrame(payload)
			if err != nil {
				continue
			}
			req, ok := frame.(*ExplicitAddressingRequest)
			if !ok {
				continue
			}
			attempts++
			status := &TransmitStatus{FrameID: req.FrameID, Destination16: req.Destination16, DeliveryStatus: DeliverySuccess}
			serverConn.Write(Wrap(status.Serialize(), Unescaped))

			cmd := req.Data[0]
			rx := &ExplicitRXIndicator{
				Source64: req.Destination64, Source16: req.Destination16,
				SourceEndpoint: req.DestEndpoint, DestEndpoint: req.SourceEndpoint,
				ClusterID: req.ClusterID, ProfileID: req.ProfileID,
				Data: []byte{cmd + 0x80, 0x01},
			}
			serverConn.Write(Wrap(rx.Serialize(), Unescaped))
		}
	}()

	sess, err := Open(clientConn)
	require.NoError(t, err)
	defer sess.Close()

	cfg := DefaultSessionConfig()
	cfg.GPMRequestTimeout = 2 * time.Second
	cfg.GPMWriteRetries = 3

	r := &gpmRun{sess: sess, addr: addr, cfg: cfg}
	writeErr := r.writePage(context.Background(), cfg.GPMRequestTimeout, 0, 0, []byte{0xAB})
	require.Error(t, writeErr)
	assert.True(t, errors.Is(writeErr, ErrWriteRetriesExhausted))
	assert.Equal(t, 3, attempts)
}
