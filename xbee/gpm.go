package xbee

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// GPM endpoints, cluster, and profile are fixed by the reservation this
// sequencer targets (spec.md §4.5): "source/destination endpoint = 0xE6,
// cluster = 0x0023, profile = 0xC105".
const (
	gpmEndpoint = 0xE6
	gpmCluster  = ClusterID(0x0023)
	gpmProfile  = ProfileID(0xC105)

	gpmHeaderOverhead = 8 // bytes of header the device's NP already reserves
)

// GPM command IDs (spec.md §4.5 command taxonomy table).
const (
	gpmCmdInfo           byte = 0x00
	gpmCmdErase          byte = 0x01
	gpmCmdWrite          byte = 0x02
	gpmCmdVerify         byte = 0x05
	gpmCmdVerifyInstall  byte = 0x06
	gpmRespInfo          byte = 0x80
	gpmRespErase         byte = 0x81
	gpmRespWrite         byte = 0x82
	gpmRespVerify        byte = 0x85
	gpmRespVerifyInstall byte = 0x86
)

// UpdateProgress is emitted to the subscriber channel passed to
// UpdateFirmware at each phase and per page (spec.md §4.5: "emits progress
// events (message, percent)").
type UpdateProgress struct {
	Message string
	Percent int
}

func emitProgress(progress chan<- UpdateProgress, message string, percent int) {
	if progress == nil {
		return
	}
	select {
	case progress <- UpdateProgress{Message: message, Percent: percent}:
	default:
	}
}

// gpmRun is the per-update correlation state, labelled with a UUID for log
// correlation only (spec.md §9 ambient stack).
type gpmRun struct {
	id            uuid.UUID
	sess          *Session
	addr          RemoteAddress
	cfg           SessionConfig
	blocks        int
	bytesPerBlock int

	// writePageFn performs one retried GPM Write cycle; overridable in
	// tests to exercise writeImage's block-splitting arithmetic (spec.md
	// §8 scenario 6) without a live session.
	writePageFn func(ctx context.Context, timeout time.Duration, block, offset int, data []byte) error
}

// UpdateFirmware pages image into the target device's GPM flash region and
// reboots it into the new firmware (spec.md §4.5 "Update procedure").
// progress may be nil.
func (s *Session) UpdateFirmware(ctx context.Context, addr RemoteAddress, image []byte, cfg SessionConfig, progress chan<- UpdateProgress) error {
	r := &gpmRun{id: uuid.New(), sess: s, addr: addr, cfg: cfg}
	r.writePageFn = r.writePage
	s.log.Info(fmt.Sprintf("gpm %s: starting update for %s (%d bytes)", r.id, addr.Addr64, len(image)))

	requestTimeout := cfg.GPMRequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 90 * time.Second
	}
	rebootTimeout := cfg.GPMRebootTimeout
	if rebootTimeout <= 0 {
		rebootTimeout = 90 * time.Second
	}

	emitProgress(progress, "reading maximum RF payload size", 0)
	np, err := s.ATParameter(ctx, ATMaximumRFPayloadBytes)
	if err != nil {
		return fmt.Errorf("xbee: gpm %s: reading NP: %w", r.id, err)
	}
	maxPayload := decodeNP(np)
	pageSize := maxPayload - gpmHeaderOverhead
	if pageSize <= 0 {
		return fmt.Errorf("xbee: gpm %s: NP too small for GPM header overhead", r.id)
	}

	emitProgress(progress, "querying platform info", 2)
	infoResp, err := r.request(ctx, requestTimeout, gpmCmdInfo, nil)
	if err != nil {
		return err
	}
	if err := requireLen(infoResp, 8); err != nil {
		return ErrMalformedResponse
	}
	r.blocks = int(beUint32(infoResp[0:4]))
	r.bytesPerBlock = int(beUint32(infoResp[4:8]))

	emitProgress(progress, "erasing flash", 5)
	if _, err := r.request(ctx, requestTimeout, gpmCmdErase, []byte{0x01}); err != nil {
		return err
	}

	if err := r.writeImage(ctx, requestTimeout, image, pageSize, progress); err != nil {
		return err
	}

	emitProgress(progress, "verifying image", 90)
	if _, err := r.request(ctx, requestTimeout, gpmCmdVerify, nil); err != nil {
		return err
	}

	emitProgress(progress, "verifying and installing image", 95)
	if _, err := r.request(ctx, requestTimeout, gpmCmdVerifyInstall, nil); err != nil {
		return err
	}

	emitProgress(progress, "waiting for device reboot", 98)
	if err := r.awaitReboot(ctx, rebootTimeout); err != nil {
		return err
	}

	emitProgress(progress, "update complete", 100)
	s.log.Info(fmt.Sprintf("gpm %s: update complete", r.id))
	return nil
}

// writeImage partitions image into pageSize pages, right-padded with
// 0xFF, and writes them across block boundaries without ever issuing a
// write that straddles one (spec.md §4.5 step 4, §8 scenario 6).
func (r *gpmRun) writeImage(ctx context.Context, timeout time.Duration, image []byte, pageSize int, progress chan<- UpdateProgress) error {
	padded := padImage(image, pageSize)

	block, offset := 0, 0
	written := 0
	total := len(padded)
	for written < total {
		if block >= r.blocks {
			return fmt.Errorf("xbee: gpm %s: image exceeds device capacity (%d blocks of %d bytes)", r.id, r.blocks, r.bytesPerBlock)
		}

		remainingInBlock := r.bytesPerBlock - offset
		chunk := pageSize
		remainingImage := total - written
		if chunk > remainingImage {
			chunk = remainingImage
		}
		if chunk > remainingInBlock {
			chunk = remainingInBlock
		}

		data := padded[written : written+chunk]
		if err := r.writePageFn(ctx, timeout, block, offset, data); err != nil {
			return err
		}

		written += chunk
		offset += chunk
		if offset >= r.bytesPerBlock {
			block++
			offset = 0
		}

		percent := 5 + int(float64(written)/float64(total)*80)
		emitProgress(progress, fmt.Sprintf("writing page at block %d offset %d", block, offset), percent)
	}
	return nil
}

// padImage right-pads image with 0xFF to a multiple of pageSize (spec.md
// §4.5 step 4).
func padImage(image []byte, pageSize int) []byte {
	rem := len(image) % pageSize
	if rem == 0 {
		return image
	}
	padded := make([]byte, len(image)+(pageSize-rem))
	copy(padded, image)
	for i := len(image); i < len(padded); i++ {
		padded[i] = 0xFF
	}
	return padded
}

// writePage issues one GPM Write request, retrying up to 3 total attempts
// on transport failure or non-success status (spec.md §4.5 step 5, §8
// invariant 6), using a constant backoff of zero delay between attempts.
func (r *gpmRun) writePage(ctx context.Context, timeout time.Duration, block, offset int, data []byte) error {
	retries := r.cfg.GPMWriteRetries
	if retries < 1 {
		retries = 3
	}

	body := make([]byte, 0, 6+len(data))
	body = append(body, byte(block>>8), byte(block), byte(offset>>8), byte(offset))
	body = append(body, byte(len(data)>>8), byte(len(data)))
	body = append(body, data...)

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(0), uint64(retries-1))
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		_, err := r.request(ctx, timeout, gpmCmdWrite, body)
		if err != nil {
			r.sess.log.Warn(fmt.Sprintf("gpm %s: write attempt %d at (%d,%d) failed: %s", r.id, attempt, block, offset, err))
			return err
		}
		return nil
	}, policy)
	if err != nil {
		return fmt.Errorf("xbee: gpm %s: %w: %w", r.id, ErrWriteRetriesExhausted, err)
	}
	return nil
}

// request performs one GPM request/response cycle: send an
// ExplicitAddressingRequest, then await both a successful transmit-status
// and the matching explicit-receive-indicator, in either order (spec.md
// §4.5 "Correlation model").
func (r *gpmRun) request(ctx context.Context, timeout time.Duration, cmd byte, arg []byte) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload := append([]byte{cmd}, arg...)
	req := &ExplicitAddressingRequest{
		Destination64:  r.addr.Addr64,
		Destination16:  r.addr.Addr16,
		SourceEndpoint: gpmEndpoint,
		DestEndpoint:   gpmEndpoint,
		ClusterID:      gpmCluster,
		ProfileID:      gpmProfile,
		Data:           payload,
	}
	id := r.sess.AssignFrameID(req)
	txCh, cleanup := r.sess.registerCorrelation(id)
	defer cleanup()

	if err := r.sess.Send(req); err != nil {
		return nil, err
	}

	rendez := newTxRxRendezvous()

	go func() {
		select {
		case frame := <-txCh:
			status, ok := frame.(*TransmitStatus)
			if !ok {
				rendez.Poison()
				return
			}
			if status.DeliveryStatus == DeliverySuccess || status.DeliveryStatus == DeliverySelfAddressed {
				rendez.SawTx()
			} else {
				rendez.Poison()
			}
		case <-reqCtx.Done():
		}
	}()

	go func() {
		f := r.sess.SubscribePacket().PopFirstExplicitFromCtx(reqCtx, r.addr)
		if f == nil {
			return
		}
		rx := f.(*ExplicitRXIndicator)
		rendez.SawRx(rx.Data)
	}()

	payloadOut, complete := rendez.wait(reqCtx.Done())
	if !complete {
		// A non-nil payload means the response arrived and only the
		// successful transmit status is missing.
		if reqCtx.Err() != nil && payloadOut == nil {
			return nil, ErrRxTimeout
		}
		return nil, ErrTxStatusAbsent
	}
	if len(payloadOut) < 2 || payloadOut[0] != cmd+0x80 {
		return nil, ErrMalformedResponse
	}
	if payloadOut[1]&0x01 != 0 {
		return nil, &ErrDeviceError{Step: gpmStepName(cmd)}
	}
	return payloadOut[2:], nil
}

func gpmStepName(cmd byte) string {
	switch cmd {
	case gpmCmdInfo:
		return "info"
	case gpmCmdErase:
		return "erase"
	case gpmCmdWrite:
		return "write"
	case gpmCmdVerify:
		return "verify"
	case gpmCmdVerifyInstall:
		return "verify-install"
	}
	return fmt.Sprintf("command(0x%02x)", cmd)
}

// awaitReboot subscribes to modem-status events and waits up to timeout
// for a HardwareReset (spec.md §4.5 step 7).
func (r *gpmRun) awaitReboot(ctx context.Context, timeout time.Duration) error {
	ch := r.sess.SubscribeModemStatus()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case status := <-ch:
			if status == ModemStatusHardwareReset {
				return nil
			}
		case <-deadline.C:
			return ErrNoModemReset
		case <-ctx.Done():
			return ErrNoModemReset
		}
	}
}

func decodeNP(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	var v int
	for _, x := range b {
		v = (v << 8) | int(x)
	}
	return v
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
