package xbee

import "sync"

// rendezvousState is the state of a single GPM request/response cycle:
// both a transmit-status success and the matching explicit-receive
// indicator must arrive, in either order, before the cycle completes
// (spec.md §4.5, §9 design note: "a single rendezvous object that
// transitions Waiting → SawTx | SawRx → Complete(payload) under one lock").
type rendezvousState int

const (
	rendezvousWaiting rendezvousState = iota
	rendezvousSawTx
	rendezvousSawRx
	rendezvousComplete
	rendezvousPoisoned
)

// txRxRendezvous coordinates the two independently-arriving events of a
// GPM request/response cycle without separate locks-plus-flags (spec.md
// §9).
type txRxRendezvous struct {
	mu      sync.Mutex
	cond    *sync.Cond
	state   rendezvousState
	payload []byte
}

func newTxRxRendezvous() *txRxRendezvous {
	r := &txRxRendezvous{state: rendezvousWaiting}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// SawTx records that a successful transmit-status arrived.
func (r *txRxRendezvous) SawTx() {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case rendezvousWaiting:
		r.state = rendezvousSawTx
	case rendezvousSawRx:
		r.state = rendezvousComplete
	}
	r.cond.Broadcast()
}

// SawRx records that the matching explicit-receive indicator arrived,
// carrying its payload.
func (r *txRxRendezvous) SawRx(payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payload = payload
	switch r.state {
	case rendezvousWaiting:
		r.state = rendezvousSawRx
	case rendezvousSawTx:
		r.state = rendezvousComplete
	}
	r.cond.Broadcast()
}

// Poison unblocks any waiter with a cancellation outcome, e.g. on
// sequencer teardown.
func (r *txRxRendezvous) Poison() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != rendezvousComplete {
		r.state = rendezvousPoisoned
	}
	r.cond.Broadcast()
}

// wait blocks until the rendezvous completes or is poisoned; a helper
// goroutine poisons it when done is closed.
func (r *txRxRendezvous) wait(done <-chan struct{}) (payload []byte, complete bool) {
	finished := make(chan struct{})
	go func() {
		select {
		case <-done:
			r.Poison()
		case <-finished:
		}
	}()
	defer close(finished)

	r.mu.Lock()
	defer r.mu.Unlock()
	for r.state != rendezvousComplete && r.state != rendezvousPoisoned {
		r.cond.Wait()
	}
	return r.payload, r.state == rendezvousComplete
}
