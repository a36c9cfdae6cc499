// Package bus implements the per-job progress publish/subscribe channel:
// best-effort delivery, at-least-once for terminal transitions, lossy for
// intermediate progress updates, never blocking a publisher on a slow
// subscriber.
package bus

import (
	"sync"
	"time"

	"github.com/reelmark/reelmark/internal/job"
)

// Event is one progress update published for a job.
type Event struct {
	JobID     string
	Status    job.Status
	Progress  int
	Message   string
	Timestamp time.Time
}

// terminal reports whether status ends a job's lifecycle.
func (e Event) terminal() bool {
	return e.Status == job.StatusCompleted || e.Status == job.StatusError
}

// subscriberMailbox is lossy for intermediate events (buffer size 1, newest
// wins); a terminal event evicts any pending update so at-least-once
// delivery holds for the final transition. Delivery never waits on the
// subscriber.
type subscriberMailbox struct {
	ch     chan Event
	mu     sync.Mutex
	closed bool
}

func newMailbox() *subscriberMailbox {
	return &subscriberMailbox{ch: make(chan Event, 1)}
}

func (m *subscriberMailbox) deliver(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	if e.terminal() {
		// At-least-once: if the mailbox is full, evict the stale pending
		// update so the terminal event always fits.
		select {
		case m.ch <- e:
		default:
			select {
			case <-m.ch:
			default:
			}
			m.ch <- e
		}
		return
	}

	// Lossy: if the subscriber hasn't drained yet, replace the pending
	// older event with this newer one.
	select {
	case m.ch <- e:
	default:
		select {
		case <-m.ch:
			m.ch <- e
		default:
		}
	}
}

func (m *subscriberMailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.ch)
}

// Bus fans out per-job progress events to zero or more subscribers.
// Independent of any job-table lock: publishing never blocks on it.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]*subscriberMailbox
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]*subscriberMailbox)}
}

// Subscribe returns a channel of Events for jobID. The channel is closed
// when Unsubscribe is called or after a terminal event is delivered and
// drained; callers should range over it until it closes.
func (b *Bus) Subscribe(jobID string) (<-chan Event, func()) {
	mbox := newMailbox()
	b.mu.Lock()
	b.subs[jobID] = append(b.subs[jobID], mbox)
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[jobID]
		for i, m := range list {
			if m == mbox {
				b.subs[jobID] = append(list[:i], list[i+1:]...)
				break
			}
		}
		mbox.close()
	}
	return mbox.ch, unsubscribe
}

// Publish delivers e to every current subscriber of e.JobID without
// blocking on any of them. Terminal events automatically close and remove
// every subscriber mailbox for the job once delivered.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	subs := append([]*subscriberMailbox(nil), b.subs[e.JobID]...)
	if e.terminal() {
		delete(b.subs, e.JobID)
	}
	b.mu.Unlock()

	for _, m := range subs {
		m.deliver(e)
		if e.terminal() {
			m.close()
		}
	}
}

// Shutdown closes every subscriber mailbox for every job, used when the
// worker pool stops so no subscriber blocks forever waiting on a job that
// will never finish.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, subs := range b.subs {
		for _, m := range subs {
			m.close()
		}
		delete(b.subs, id)
	}
}
