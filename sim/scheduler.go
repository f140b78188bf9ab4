package sim

import (
	"container/heap"
	"fmt"
)

// scheduledEvent pairs an event with its insertion sequence number.
type scheduledEvent struct {
	ev  Event
	seq uint64
}

// eventHeap implements heap.Interface with deterministic ordering.
// Order by: timestamp → insertion sequence.
type eventHeap []scheduledEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	ti, tj := h[i].ev.Timestamp(), h[j].ev.Timestamp()
	if ti != tj {
		return ti < tj
	}
	// Equal timestamps: first scheduled, first dispatched.
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(scheduledEvent))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// EventScheduler owns the pending events of a run and the simulation clock.
// The clock equals the timestamp of the most recently popped event and never
// decreases. Events later than the horizon are never dispatched.
type EventScheduler struct {
	events  eventHeap
	clock   float64
	horizon float64
	nextSeq uint64
}

// NewEventScheduler creates an empty scheduler with the clock at zero.
func NewEventScheduler(horizon float64) *EventScheduler {
	s := &EventScheduler{
		events:  make(eventHeap, 0),
		horizon: horizon,
	}
	heap.Init(&s.events)
	return s
}

// Schedule inserts an event keyed by its timestamp. Scheduling strictly
// before the current clock is a programming error and panics.
func (s *EventScheduler) Schedule(ev Event) {
	if ev == nil {
		panic("Schedule: event must not be nil")
	}
	if ev.Timestamp() < s.clock {
		panic(fmt.Sprintf("Schedule: %s event at %v is before clock %v", ev.Kind(), ev.Timestamp(), s.clock))
	}
	heap.Push(&s.events, scheduledEvent{ev: ev, seq: s.nextSeq})
	s.nextSeq++
}

// PopNext removes and returns the earliest event and advances the clock to it.
// It returns ErrEmptySchedule when nothing is pending or when the earliest
// event lies beyond the horizon; in the latter case the remaining events are
// discarded.
func (s *EventScheduler) PopNext() (Event, error) {
	if s.events.Len() == 0 {
		return nil, ErrEmptySchedule
	}
	if s.events[0].ev.Timestamp() > s.horizon {
		s.events = s.events[:0]
		return nil, ErrEmptySchedule
	}
	next := heap.Pop(&s.events).(scheduledEvent)
	s.clock = next.ev.Timestamp()
	return next.ev, nil
}

// Len returns the number of pending events.
func (s *EventScheduler) Len() int {
	return s.events.Len()
}

// Clock returns the current simulation time.
func (s *EventScheduler) Clock() float64 {
	return s.clock
}

// Horizon returns the configured end of simulated time.
func (s *EventScheduler) Horizon() float64 {
	return s.horizon
}
