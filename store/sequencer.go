package store

import "sync"

// sequencer hands out tickets in commit order and runs the notification of
// each ticket only after every earlier ticket has finished. Tickets must be
// taken while QueueStore.mu is held so ticket order matches mutation order.
type sequencer struct {
	mu      sync.Mutex
	cond    *sync.Cond
	next    uint64
	serving uint64
}

func newSequencer() *sequencer {
	sq := &sequencer{}
	sq.cond = sync.NewCond(&sq.mu)
	return sq
}

func (sq *sequencer) ticket() uint64 {
	sq.mu.Lock()
	defer sq.mu.Unlock()
	t := sq.next
	sq.next++
	return t
}

// run waits for turn t, calls fn, then passes the turn on even if fn panics.
func (sq *sequencer) run(t uint64, fn func()) {
	sq.mu.Lock()
	for sq.serving != t {
		sq.cond.Wait()
	}
	sq.mu.Unlock()

	defer func() {
		sq.mu.Lock()
		sq.serving++
		sq.cond.Broadcast()
		sq.mu.Unlock()
	}()
	fn()
}
