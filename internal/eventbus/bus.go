package eventbus

import (
	"sync"

	"github.com/google/uuid"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Priority is a totally ordered event priority: High > Normal > Low.
type Priority uint8

const (
	Low Priority = iota
	Normal
	High
)

// Filter is a pure predicate over Event; nil matches everything.
type Filter func(Event) bool

// SubscriberID identifies a bus subscriber.
type SubscriberID string

// subscriber owns an unbounded channel fed by a background goroutine so
// that a slow consumer never blocks the bus (spec.md §4.2/§5).
type subscriber struct {
	id     SubscriberID
	filter Filter
	in     chan Event // internal unbounded buffer feed
	out    chan Event // what the caller reads from
	done   chan struct{}
}

func newSubscriber(id SubscriberID, filter Filter) *subscriber {
	s := &subscriber{
		id:     id,
		filter: filter,
		in:     make(chan Event, 1),
		out:    make(chan Event),
		done:   make(chan struct{}),
	}
	go s.pump()
	return s
}

// pump drains an internal growable queue into out, so sends into `in`
// never block regardless of whether anyone is reading `out`.
func (s *subscriber) pump() {
	var queue []Event
	for {
		if len(queue) == 0 {
			select {
			case e, ok := <-s.in:
				if !ok {
					close(s.out)
					return
				}
				queue = append(queue, e)
			case <-s.done:
				close(s.out)
				return
			}
			continue
		}
		select {
		case e, ok := <-s.in:
			if !ok {
				close(s.out)
				return
			}
			queue = append(queue, e)
		case s.out <- queue[0]:
			queue = queue[1:]
		case <-s.done:
			close(s.out)
			return
		}
	}
}

func (s *subscriber) deliver(e Event) {
	if s.filter != nil && !s.filter(e) {
		return
	}
	select {
	case s.in <- e:
	case <-s.done:
	}
}

// Bus is a priority-queue event broker with per-subscriber channels.
type Bus struct {
	mu          sync.Mutex
	subscribers map[SubscriberID]*subscriber

	qmu   sync.Mutex
	lanes [3][]Event // indexed by Priority
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subscribers: make(map[SubscriberID]*subscriber)}
}

// Subscribe registers a new subscriber and returns its id and receive
// channel. The subscriber sees every Broadcast made after Subscribe
// returns, including events that were Emitted earlier but are still
// queued when Process delivers them; only events already delivered
// before it subscribed are missed.
func (b *Bus) Subscribe(filter Filter) (SubscriberID, <-chan Event) {
	id := SubscriberID(uuid.NewString())
	s := newSubscriber(id, filter)

	b.mu.Lock()
	b.subscribers[id] = s
	b.mu.Unlock()

	return id, s.out
}

// Unsubscribe stops delivery to the given subscriber and closes its
// channel once its pump observes shutdown.
func (b *Bus) Unsubscribe(id SubscriberID) {
	b.mu.Lock()
	s, ok := b.subscribers[id]
	delete(b.subscribers, id)
	b.mu.Unlock()
	if ok {
		close(s.done)
	}
}

// Emit pushes an event into the given priority lane's FIFO; it is
// delivered only when Process drains the queue.
func (b *Bus) Emit(e Event, p Priority) {
	b.qmu.Lock()
	b.lanes[p] = append(b.lanes[p], e)
	b.qmu.Unlock()
}

// Broadcast delivers immediately to every matching subscriber, bypassing
// the priority queue entirely. Subscribers are visited in sorted id
// order rather than map iteration order, so repeated broadcasts within a
// run visit the same subscriber set in the same order. Ids are random
// UUIDs, so that order differs from one run to the next.
func (b *Bus) Broadcast(e Event) {
	b.mu.Lock()
	ids := maps.Keys(b.subscribers)
	slices.Sort(ids)
	subs := make([]*subscriber, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, b.subscribers[id])
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.deliver(e)
	}
}

// pop drains High, then Normal, then Low; returns ok=false when empty.
func (b *Bus) pop() (Event, bool) {
	b.qmu.Lock()
	defer b.qmu.Unlock()
	for p := High; ; p-- {
		if len(b.lanes[p]) > 0 {
			e := b.lanes[p][0]
			b.lanes[p] = b.lanes[p][1:]
			return e, true
		}
		if p == Low {
			break
		}
	}
	return Event{}, false
}

// Process drains the queue by repeatedly popping and broadcasting until
// empty, returning every popped event in order. Broadcasting still fans
// each event out to subscriber channels for general consumers, but the
// return value lets a safety-critical caller (the engine's own decision
// drain) consume the same events synchronously in this call stack,
// rather than round-tripping through a subscriber's async pump
// goroutine — which has no ordering guarantee relative to a
// non-blocking read performed in the same tick (spec.md §8/§9 require
// that not to matter).
func (b *Bus) Process() []Event {
	var drained []Event
	for {
		e, ok := b.pop()
		if !ok {
			return drained
		}
		b.Broadcast(e)
		drained = append(drained, e)
	}
}

// Shutdown closes every subscriber's pump goroutine; callers already
// holding a receive channel will observe it close. Mirrors the engine's
// System(EngineStopped) broadcast plus cooperative drain (spec.md §5):
// consumers should select on both the channel and their own done signal
// via channerics.OrDone rather than a bare range.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	subs := make([]*subscriber, 0, len(b.subscribers))
	for _, s := range b.subscribers {
		subs = append(subs, s)
	}
	b.subscribers = make(map[SubscriberID]*subscriber)
	b.mu.Unlock()

	for _, s := range subs {
		close(s.done)
	}
}

// WithShutdown wraps a subscriber's receive channel so a consumer select
// exits either on a received event or on the provided done signal,
// matching the teacher's channerics.OrDone idiom (niceyeti-tabular).
func WithShutdown(done <-chan struct{}, events <-chan Event) <-chan Event {
	return channerics.OrDone(done, events)
}
