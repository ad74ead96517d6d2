package xbee

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

// fakeSRPDevice plays the device side of the four-phase exchange (spec.md
// §4.4) using the same SRP-6a group parameters and hash as the client, so
// a correct password produces a matching session key end to end.
func fakeSRPDevice(conn io.ReadWriter, password string) error {
	u := NewUnwrapper(conn, Unescaped)
	write := func(f Frame) error {
		_, err := conn.Write(Wrap(f.Serialize(), Unescaped))
		return err
	}
	nLen := len(srpN.Bytes())
	k := srpH(srpN.Bytes(), padTo(srpG.Bytes(), nLen))

	payload, err := u.Next()
	if err != nil {
		return err
	}
	frame, err := ParseFrame(payload)
	if err != nil {
		return err
	}
	req1, ok := frame.(*BluetoothUnlockRequest)
	if !ok || req1.Phase != SRPPhase1 {
		return fmt.Errorf("expected phase1 request, got %T", frame)
	}
	A := new(big.Int).SetBytes(req1.Payload)

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	x := new(big.Int).SetBytes(pbkdf2.Key([]byte(password), salt, 4096, 32, sha256.New))
	v := new(big.Int).Exp(srpG, x, srpN)
	b := mustRandomExponent()
	bPub := new(big.Int).Mod(new(big.Int).Add(new(big.Int).Mul(k, v), new(big.Int).Exp(srpG, b, srpN)), srpN)

	resp1 := append(append([]byte{}, salt...), padTo(bPub.Bytes(), nLen)...)
	if err := write(&BluetoothUnlockResponse{FrameID: req1.FrameID, Phase: SRPPhase1, Payload: resp1}); err != nil {
		return err
	}

	u1 := srpH(padTo(A.Bytes(), nLen), padTo(bPub.Bytes(), nLen))
	vu := new(big.Int).Exp(v, u1, srpN)
	base := new(big.Int).Mod(new(big.Int).Mul(A, vu), srpN)
	shared := new(big.Int).Exp(base, b, srpN)

	m1Expected := srpH(A.Bytes(), bPub.Bytes(), shared.Bytes()).Bytes()
	m2 := srpH(A.Bytes(), m1Expected, shared.Bytes()).Bytes()

	payload, err = u.Next()
	if err != nil {
		return err
	}
	frame, err = ParseFrame(payload)
	if err != nil {
		return err
	}
	req2, ok := frame.(*BluetoothUnlockRequest)
	if !ok || req2.Phase != SRPPhase2 {
		return fmt.Errorf("expected phase2 request, got %T", frame)
	}
	if !bytesEqual(req2.Payload, m1Expected) {
		return fmt.Errorf("client proof M1 did not match the device's expectation")
	}
	if err := write(&BluetoothUnlockResponse{FrameID: req2.FrameID, Phase: SRPPhase2, Payload: m2}); err != nil {
		return err
	}

	payload, err = u.Next()
	if err != nil {
		return err
	}
	frame, err = ParseFrame(payload)
	if err != nil {
		return err
	}
	req3, ok := frame.(*BluetoothUnlockRequest)
	if !ok || req3.Phase != SRPPhase3 {
		return fmt.Errorf("expected phase3 request, got %T", frame)
	}
	return write(&BluetoothUnlockResponse{FrameID: req3.FrameID, Phase: SRPPhase4, Payload: req3.Payload})
}

func TestUnlockBluetoothEndToEnd(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	password := "correct horse battery staple"
	serverDone := make(chan error, 1)
	go func() { serverDone <- fakeSRPDevice(serverConn, password) }()

	sess, err := Open(clientConn)
	require.NoError(t, err)
	defer sess.Close()

	cfg := DefaultSessionConfig()
	cfg.SRPPhaseTimeout = 2 * time.Second

	result, err := sess.UnlockBluetooth(context.Background(), RemoteAddress{Addr64: Address64(1)}, password, cfg)
	require.NoError(t, err)
	assert.Len(t, result.SessionKey, 32)
	require.NoError(t, <-serverDone)
}

func TestUnlockBluetoothWrongPasswordFailsProof(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	serverDone := make(chan error, 1)
	go func() { serverDone <- fakeSRPDevice(serverConn, "the-real-password") }()

	sess, err := Open(clientConn)
	require.NoError(t, err)
	defer sess.Close()

	cfg := DefaultSessionConfig()
	cfg.SRPPhaseTimeout = 2 * time.Second

	_, err = sess.UnlockBluetooth(context.Background(), RemoteAddress{Addr64: Address64(1)}, "a-wrong-guess", cfg)
	require.Error(t, err)
	<-serverDone
}

func TestUnlockBluetoothDeviceRejectsAtPhase1(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go func() {
		u := NewUnwrapper(serverConn, Unescaped)
		payload, err := u.Next()
		if err != nil {
			return
		}
		frame, err := ParseFrame(payload)
		if err != nil {
			return
		}
		req := frame.(*BluetoothUnlockRequest)
		resp := &BluetoothUnlockResponse{FrameID: req.FrameID, IsError: true, ErrorCode: SRPErrorUnableToOfferB}
		serverConn.Write(Wrap(resp.Serialize(), Unescaped))
	}()

	sess, err := Open(clientConn)
	require.NoError(t, err)
	defer sess.Close()

	cfg := DefaultSessionConfig()
	cfg.SRPPhaseTimeout = 2 * time.Second

	_, err = sess.UnlockBluetooth(context.Background(), RemoteAddress{Addr64: Address64(1)}, "pw", cfg)
	var rejected *ErrDeviceRejected
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, SRPErrorUnableToOfferB, rejected.Code)
}

// TestUnlockBluetoothPhaseTimeout covers spec.md §4.4's "timeout ...
// transitions to Failed" path: the device never answers phase 1.
func TestUnlockBluetoothPhaseTimeout(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()
	go io.Copy(io.Discard, serverConn)

	sess, err := Open(clientConn)
	require.NoError(t, err)
	defer sess.Close()

	cfg := DefaultSessionConfig()
	cfg.SRPPhaseTimeout = 100 * time.Millisecond

	_, err = sess.UnlockBluetooth(context.Background(), RemoteAddress{Addr64: Address64(1)}, "pw", cfg)
	var to *ErrPhaseTimeout
	require.ErrorAs(t, err, &to)
	assert.Equal(t, SRPPhase1, to.Phase)
}
