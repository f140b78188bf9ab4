// Defines the Customer struct that models one arrival in the queue, from its
// join/balk decision through service to departure.

package sim

import (
	"fmt"
)

// Strategy is the decision rule a customer follows. It is assigned once at
// creation and never re-sampled.
type Strategy int

const (
	StrategySelfish Strategy = iota // joins while its own expected sojourn is within the toll
	StrategyOptimal                 // joins while the socially optimal limit allows it
)

// Strategies lists every strategy in report order.
var Strategies = []Strategy{StrategySelfish, StrategyOptimal}

func (s Strategy) String() string {
	switch s {
	case StrategySelfish:
		return "selfish"
	case StrategyOptimal:
		return "optimal"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// MarshalText renders the strategy by name in JSON and YAML output.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Threshold returns the admission limit this strategy obeys: join iff the
// number already in system is at most the returned value.
func (s Strategy) Threshold(th Thresholds) int {
	switch s {
	case StrategySelfish:
		return th.Selfish
	case StrategyOptimal:
		return th.Optimal
	default:
		panic(fmt.Sprintf("Threshold: unknown strategy %d", int(s)))
	}
}

// CustomerState represents the lifecycle state of a customer.
type CustomerState string

const (
	StateArrived   CustomerState = "arrived"    // created, decision pending
	StateWaiting   CustomerState = "waiting"    // admitted, in the FIFO line
	StateInService CustomerState = "in-service" // admitted, holding the server
	StateDeparted  CustomerState = "departed"   // service completed
	StateBalked    CustomerState = "balked"     // refused to join
)

// Customer is a live arrival owned by QueueState while it is in the system.
// ServiceStartTime is meaningful from StateInService on, DepartureTime only in
// StateDeparted.
type Customer struct {
	ID               int64
	Strategy         Strategy
	State            CustomerState
	ArrivalTime      float64
	ServiceStartTime float64
	DepartureTime    float64
	Admitted         bool
}

// NewCustomer creates a customer in StateArrived.
func NewCustomer(id int64, arrival float64, strategy Strategy) *Customer {
	return &Customer{
		ID:          id,
		Strategy:    strategy,
		State:       StateArrived,
		ArrivalTime: arrival,
	}
}

func (c Customer) String() string {
	return fmt.Sprintf("Customer: (ID: %d, Strategy: %s, State: %s, ArrivalTime: %.4f)", c.ID, c.Strategy, c.State, c.ArrivalTime)
}

// CustomerRecord is the finalized outcome of a customer, retained after the
// live Customer leaves the system. Balking customers have zero service and
// departure times and Cost equal to the toll.
type CustomerRecord struct {
	ID               int64    `json:"id"`
	Strategy         Strategy `json:"strategy"`
	Admitted         bool     `json:"admitted"`
	ArrivalTime      float64  `json:"arrival_time"`
	ServiceStartTime float64  `json:"service_start_time"`
	DepartureTime    float64  `json:"departure_time"`
	Cost             float64  `json:"cost"`
}

// WaitingTime is the time spent in line before service; zero for balkers.
func (r CustomerRecord) WaitingTime() float64 {
	if !r.Admitted {
		return 0
	}
	return r.ServiceStartTime - r.ArrivalTime
}

// ServiceTime is the realised service duration; zero for balkers.
func (r CustomerRecord) ServiceTime() float64 {
	if !r.Admitted {
		return 0
	}
	return r.DepartureTime - r.ServiceStartTime
}

// SystemTime is the realised sojourn time; zero for balkers.
func (r CustomerRecord) SystemTime() float64 {
	if !r.Admitted {
		return 0
	}
	return r.DepartureTime - r.ArrivalTime
}

// finalize converts a departed or balked customer into its outcome record.
func (c *Customer) finalize(toll float64) CustomerRecord {
	rec := CustomerRecord{
		ID:          c.ID,
		Strategy:    c.Strategy,
		Admitted:    c.Admitted,
		ArrivalTime: c.ArrivalTime,
	}
	switch c.State {
	case StateBalked:
		rec.Cost = toll
	case StateDeparted:
		rec.ServiceStartTime = c.ServiceStartTime
		rec.DepartureTime = c.DepartureTime
		rec.Cost = c.DepartureTime - c.ArrivalTime
	default:
		panic(fmt.Sprintf("finalize: customer %d in state %s has no outcome", c.ID, c.State))
	}
	return rec
}
