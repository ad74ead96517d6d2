package xbee

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

// srpState names the four-phase client state machine of spec.md §4.4.
type srpState int

const (
	srpStart srpState = iota
	srpWaitB
	srpSendM1
	srpWaitM2
	srpVerify
	srpWaitAck
	srpUnlocked
)

// SRP-6a 2048-bit group parameters (RFC 5054 group 5). The crypto
// parameters themselves are left "opaque" by spec.md §3; using the
// standard RFC 5054 group is this repository's Open-Question resolution
// (see DESIGN.md).
var (
	srpN, _ = new(big.Int).SetString(
		"AC6BDB41324A9A9BF166DE5E1389582FAF72B6651987EE07FC3192943DB56050A37329CBB4A099ED8193E0757767A13DD52312AB4B03310DCD7F48A9DA04FD50E8083969EDB767B0CF6095179A163AB3661A05FBD5FAAAE82918A9962F0B93B855F97993EC975EEAA80D740ADBF4FF747359D041D5C33EA71D281E446B14773BCA97B43A23FB801676BD207A436C6481F1D2B9078717461A5B9D32E688F87748544523B524B0D57D5EA77A2775D2ECFA032CFBDBF52FB3786160279004E57AE6AF874E7303CE53299CCC041C7BC308D82A5698F3A8D0C38271AE35F8E9DBFBB694B5C803D89F7AE435DE236D525F54759B65E372FCD68EF20FA7111F9E4AFF73",
		16)
	srpG = big.NewInt(2)
)

func srpH(parts ...[]byte) *big.Int {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return new(big.Int).SetBytes(h.Sum(nil))
}

func padTo(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	out := make([]byte, n-len(b))
	return append(out, b...)
}

// UnlockResult is returned on a successful SRP exchange.
type UnlockResult struct {
	SessionKey []byte
}

// unlockRun is the per-attempt correlation state for one SRP client run,
// labelled with a UUID purely for log correlation (spec.md §9 ambient
// stack: "not part of the wire protocol").
type unlockRun struct {
	id       uuid.UUID
	sess     *Session
	addr     RemoteAddress
	password string
	cfg      SessionConfig

	a *big.Int // client private ephemeral
	A *big.Int // client public ephemeral
	x *big.Int // derived private key
	k *big.Int // multiplier
}

// UnlockBluetooth drives the client side of the four-phase SRP exchange
// against addr over s, returning the negotiated session key on success
// (spec.md §4.4).
func (s *Session) UnlockBluetooth(ctx context.Context, addr RemoteAddress, password string, cfg SessionConfig) (*UnlockResult, error) {
	r := &unlockRun{id: uuid.New(), sess: s, addr: addr, password: password, cfg: cfg}
	s.log.Info(fmt.Sprintf("srp %s: starting unlock for %s", r.id, addr.Addr64))

	phaseTimeout := cfg.SRPPhaseTimeout
	if phaseTimeout <= 0 {
		phaseTimeout = 10 * time.Second
	}

	salt, bPub, err := r.phase1(ctx, phaseTimeout)
	if err != nil {
		return nil, err
	}

	m1, m2Expected, sessionKey, err := r.computeM1M2(salt, bPub)
	if err != nil {
		return nil, err
	}

	m2Actual, err := r.phase2(ctx, phaseTimeout, m1)
	if err != nil {
		return nil, err
	}
	if !bytesEqual(m2Actual, m2Expected) {
		return nil, &ErrDeviceRejected{Code: SRPErrorBadProofKey}
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("xbee: srp %s: generating nonce: %w", r.id, err)
	}
	if err := r.phase3(ctx, phaseTimeout, nonce); err != nil {
		return nil, err
	}

	s.log.Info(fmt.Sprintf("srp %s: unlocked", r.id))
	return &UnlockResult{SessionKey: sessionKey}, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// phase1 sends the client ephemeral A and awaits the device's salt|B
// (state Start -> WaitB -> SendM1 in spec.md §4.4's machine, minus the
// client-side computation which the caller performs next).
func (r *unlockRun) phase1(ctx context.Context, timeout time.Duration) (salt, bPub []byte, err error) {
	r.a = mustRandomExponent()
	r.A = new(big.Int).Exp(srpG, r.a, srpN)
	r.k = srpH(srpN.Bytes(), padTo(srpG.Bytes(), len(srpN.Bytes())))

	req := &BluetoothUnlockRequest{Phase: SRPPhase1, Payload: r.A.Bytes()}
	resp, err := r.awaitPhase(ctx, timeout, req, SRPPhase1)
	if err != nil {
		return nil, nil, err
	}
	if len(resp.Payload) < 1 {
		return nil, nil, &ErrDeviceRejected{Code: SRPErrorIncorrectPayloadLen}
	}
	// salt is variable-length, B is the trailing 256 bytes (|N|).
	nLen := len(srpN.Bytes())
	if len(resp.Payload) <= nLen {
		return nil, nil, &ErrDeviceRejected{Code: SRPErrorIncorrectPayloadLen}
	}
	split := len(resp.Payload) - nLen
	return resp.Payload[:split], resp.Payload[split:], nil
}

// computeM1M2 derives x, u, the shared secret S, the session key, and the
// client/server proof values from salt and the device's public B.
func (r *unlockRun) computeM1M2(salt, bPubBytes []byte) (m1, m2Expected, sessionKey []byte, err error) {
	bPub := new(big.Int).SetBytes(bPubBytes)
	if new(big.Int).Mod(bPub, srpN).Sign() == 0 {
		return nil, nil, nil, &ErrDeviceRejected{Code: SRPErrorUnableToOfferB}
	}

	r.x = new(big.Int).SetBytes(pbkdf2.Key([]byte(r.password), salt, 4096, 32, sha256.New))

	u := srpH(padTo(r.A.Bytes(), len(srpN.Bytes())), padTo(bPub.Bytes(), len(srpN.Bytes())))
	if u.Sign() == 0 {
		return nil, nil, nil, &ErrDeviceRejected{Code: SRPErrorBadProofKey}
	}

	// S = (B - k*g^x)^(a + u*x) mod N
	gx := new(big.Int).Exp(srpG, r.x, srpN)
	kgx := new(big.Int).Mod(new(big.Int).Mul(r.k, gx), srpN)
	base := new(big.Int).Mod(new(big.Int).Sub(bPub, kgx), srpN)
	exp := new(big.Int).Add(r.a, new(big.Int).Mul(u, r.x))
	shared := new(big.Int).Exp(base, exp, srpN)

	sessionKey = padTo(srpH(shared.Bytes()).Bytes(), sha256.Size)
	m1 = srpH(r.A.Bytes(), bPub.Bytes(), shared.Bytes()).Bytes()
	m2Expected = srpH(r.A.Bytes(), m1, shared.Bytes()).Bytes()
	return m1, m2Expected, sessionKey, nil
}

// phase2 sends M1 and awaits the device's M2 proof (SendM1 -> WaitM2 ->
// Verify).
func (r *unlockRun) phase2(ctx context.Context, timeout time.Duration, m1 []byte) ([]byte, error) {
	req := &BluetoothUnlockRequest{Phase: SRPPhase2, Payload: m1}
	resp, err := r.awaitPhase(ctx, timeout, req, SRPPhase2)
	if err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

// phase3 sends the client nonce/IV and awaits the device's ack (Verify ->
// WaitAck -> Unlocked).
func (r *unlockRun) phase3(ctx context.Context, timeout time.Duration, nonce []byte) error {
	req := &BluetoothUnlockRequest{Phase: SRPPhase3, Payload: nonce}
	_, err := r.awaitPhase(ctx, timeout, req, SRPPhase4)
	return err
}

// awaitPhase sends req and waits for a BluetoothUnlockResponse, treating
// an unknown-phase 1-byte error payload as a device rejection (spec.md
// §4.1, §4.4's "Any state" transition) and anything else mismatching
// wantPhase as out-of-sequence.
func (r *unlockRun) awaitPhase(ctx context.Context, timeout time.Duration, req *BluetoothUnlockRequest, wantPhase SRPPhase) (*BluetoothUnlockResponse, error) {
	phaseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	frame, err := r.sess.SendAndAwait(phaseCtx, req)
	if err != nil {
		return nil, &ErrPhaseTimeout{Phase: wantPhase}
	}
	resp, ok := frame.(*BluetoothUnlockResponse)
	if !ok {
		return nil, fmt.Errorf("xbee: srp: expected BluetoothUnlockResponse, got %T", frame)
	}
	if resp.IsError {
		return nil, &ErrDeviceRejected{Code: resp.ErrorCode}
	}
	if resp.Phase != wantPhase {
		return nil, ErrSRPOutOfSequence
	}
	return resp, nil
}

func mustRandomExponent() *big.Int {
	// 256 bits of entropy for the client ephemeral private exponent.
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("xbee: srp: reading random exponent: %v", err))
	}
	return new(big.Int).SetBytes(buf)
}
