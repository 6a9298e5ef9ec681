package ingress

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/swarmreport/swarmreport/pkg/types"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 100

// Item is one decoded report awaiting aggregation. ReceivedAt is the
// sentinel's own receipt time, never a reporter-asserted one.
type Item struct {
	Identity   string
	Report     types.SystemReport
	ReceivedAt time.Time
}

// Queue is a fixed-capacity FIFO ring. Many goroutines may Publish; one
// goroutine (the aggregator) is expected to Drain.
type Queue struct {
	mu    sync.Mutex
	buf   []Item
	head  int // index of the oldest item
	count int

	dropped atomic.Uint64
	onDrop  func(Item)
}

// New creates a Queue holding at most capacity items.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{buf: make([]Item, capacity)}
}

// OnDrop registers fn to be called (outside the queue lock) with every item
// discarded by the drop-oldest policy. Must be set before publishing starts.
func (q *Queue) OnDrop(fn func(Item)) {
	q.onDrop = fn
}

// Publish appends it. If the queue is full the oldest buffered item is
// discarded to make room.
func (q *Queue) Publish(it Item) {
	var (
		evicted Item
		didDrop bool
	)

	q.mu.Lock()
	if q.count == len(q.buf) {
		evicted = q.buf[q.head]
		q.buf[q.head] = Item{}
		q.head = (q.head + 1) % len(q.buf)
		q.count--
		didDrop = true
	}
	q.buf[(q.head+q.count)%len(q.buf)] = it
	q.count++
	q.mu.Unlock()

	if didDrop {
		q.dropped.Add(1)
		if q.onDrop != nil {
			q.onDrop(evicted)
		}
	}
}

// Drain removes and returns every buffered item, oldest first. It returns nil
// immediately when the queue is empty.
func (q *Queue) Drain() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return nil
	}
	out := make([]Item, q.count)
	for i := range out {
		idx := (q.head + i) % len(q.buf)
		out[i] = q.buf[idx]
		q.buf[idx] = Item{}
	}
	q.head = 0
	q.count = 0
	return out
}

// Len returns the number of buffered items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return len(q.buf) }

// Dropped returns how many items have been discarded since creation.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }
