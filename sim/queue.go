// Implements the QueueState of the single server: who holds the server and
// the FIFO line of admitted customers behind it.

package sim

import (
	"fmt"
	"strings"
)

// WaitQueue represents a FIFO line of admitted customers waiting for the server.
type WaitQueue struct {
	queue []*Customer
}

// Enqueue adds a customer to the back of the line.
func (wq *WaitQueue) Enqueue(c *Customer) {
	if c == nil {
		panic("Enqueue: customer must not be nil")
	}
	wq.queue = append(wq.queue, c)
}

func (wq *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, c := range wq.queue {
		sb.WriteString(fmt.Sprint(c.ID))
		if i < len(wq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of waiting customers.
func (wq *WaitQueue) Len() int {
	return len(wq.queue)
}

// Dequeue removes and returns the head of the line, or nil if it is empty.
func (wq *WaitQueue) Dequeue() *Customer {
	if len(wq.queue) == 0 {
		return nil
	}
	head := wq.queue[0]
	wq.queue[0] = nil
	wq.queue = wq.queue[1:]
	return head
}

// Items returns a copy of the line in FIFO order.
func (wq *WaitQueue) Items() []*Customer {
	out := make([]*Customer, len(wq.queue))
	copy(out, wq.queue)
	return out
}

// Occupancy is the headcount of the system per strategy at one instant.
type Occupancy struct {
	InSystem [2]int // indexed by Strategy
	InQueue  [2]int
}

// NumInSystem returns the total number of customers waiting or in service.
func (o Occupancy) NumInSystem() int {
	return o.InSystem[StrategySelfish] + o.InSystem[StrategyOptimal]
}

// NumInQueue returns the total number of customers waiting.
func (o Occupancy) NumInQueue() int {
	return o.InQueue[StrategySelfish] + o.InQueue[StrategyOptimal]
}

// QueueState tracks the number in system, server occupancy and the FIFO line.
// It owns the live customers until they depart.
//
// Invariant, checked after every mutation: numInSystem == busy + len(line) ≥ 0,
// and the per-strategy counts add up to numInSystem.
// Violations are programming errors and panic.
type QueueState struct {
	waiting     WaitQueue
	inService   *Customer
	numInSystem int
	byStrategy  [2]int

	policy    AdmissionPolicy
	scheduler *EventScheduler
	variates  *VariateSource
}

// NewQueueState creates an empty system. Departures are scheduled on
// scheduler with service times drawn from variates.
func NewQueueState(policy AdmissionPolicy, scheduler *EventScheduler, variates *VariateSource) *QueueState {
	return &QueueState{
		policy:    policy,
		scheduler: scheduler,
		variates:  variates,
	}
}

// Arrive applies the admission policy to c using the pre-arrival count.
// A joining customer takes the server if it is idle (its Departure is
// scheduled) and otherwise enters the back of the line. A balking customer
// never enters the system.
func (q *QueueState) Arrive(c *Customer) Decision {
	decision := q.policy.Decide(c, q.numInSystem)
	if decision == DecisionBalk {
		c.State = StateBalked
		return decision
	}
	q.numInSystem++
	q.byStrategy[c.Strategy]++
	if q.inService == nil {
		q.startService(c)
	} else {
		c.State = StateWaiting
		q.waiting.Enqueue(c)
	}
	q.checkInvariants()
	return decision
}

// Depart completes service of c, which must hold the server, and promotes the
// head of the line. It returns the departed customer.
func (q *QueueState) Depart(c *Customer) *Customer {
	if q.inService == nil {
		panic(fmt.Sprintf("Depart: customer %d departing from an idle server", c.ID))
	}
	if q.inService != c {
		panic(fmt.Sprintf("Depart: customer %d departing while customer %d holds the server", c.ID, q.inService.ID))
	}
	c.DepartureTime = q.scheduler.Clock()
	c.State = StateDeparted
	q.inService = nil
	q.numInSystem--
	q.byStrategy[c.Strategy]--
	if next := q.waiting.Dequeue(); next != nil {
		q.startService(next)
	}
	q.checkInvariants()
	return c
}

func (q *QueueState) startService(c *Customer) {
	now := q.scheduler.Clock()
	c.State = StateInService
	c.ServiceStartTime = now
	q.inService = c
	q.scheduler.Schedule(NewDepartureEvent(now+q.variates.NextServiceTime(), c))
}

func (q *QueueState) checkInvariants() {
	busy := 0
	if q.inService != nil {
		busy = 1
	}
	if q.numInSystem < 0 {
		panic(fmt.Sprintf("QueueState: negative number in system %d", q.numInSystem))
	}
	if q.numInSystem != busy+q.waiting.Len() {
		panic(fmt.Sprintf("QueueState: number in system %d != busy %d + waiting %d", q.numInSystem, busy, q.waiting.Len()))
	}
	if q.byStrategy[StrategySelfish] < 0 || q.byStrategy[StrategyOptimal] < 0 ||
		q.byStrategy[StrategySelfish]+q.byStrategy[StrategyOptimal] != q.numInSystem {
		panic(fmt.Sprintf("QueueState: strategy counts %v do not add up to %d", q.byStrategy, q.numInSystem))
	}
}

// NumInSystem returns the number of customers waiting or in service.
func (q *QueueState) NumInSystem() int {
	return q.numInSystem
}

// NumInQueue returns the number of customers waiting, excluding the one in service.
func (q *QueueState) NumInQueue() int {
	return q.waiting.Len()
}

// Occupancy returns the per-strategy headcount, in system and waiting.
func (q *QueueState) Occupancy() Occupancy {
	o := Occupancy{InSystem: q.byStrategy, InQueue: q.byStrategy}
	if q.inService != nil {
		o.InQueue[q.inService.Strategy]--
	}
	return o
}

// ServerBusy reports whether a customer holds the server.
func (q *QueueState) ServerBusy() bool {
	return q.inService != nil
}

// InService returns the customer holding the server, or nil.
func (q *QueueState) InService() *Customer {
	return q.inService
}

// Waiting returns the waiting customers in FIFO order.
func (q *QueueState) Waiting() []*Customer {
	return q.waiting.Items()
}

// Remaining returns every customer still in system, server first.
func (q *QueueState) Remaining() []*Customer {
	out := make([]*Customer, 0, q.numInSystem)
	if q.inService != nil {
		out = append(out, q.inService)
	}
	return append(out, q.waiting.queue...)
}
