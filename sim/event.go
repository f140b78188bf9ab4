package sim

import "github.com/sirupsen/logrus"

// EventKind identifies the type of a simulation event.
type EventKind string

const (
	EventKindArrival   EventKind = "Arrival"
	EventKindDeparture EventKind = "Departure"
)

// Event defines the interface for all simulation events.
// Each event has a Timestamp (simulated time), a Kind, the Customer it
// concerns, and an Execute method that advances simulation state when invoked.
type Event interface {
	Timestamp() float64
	Kind() EventKind
	Subject() *Customer
	Execute(*Simulator)
}

// ArrivalEvent represents a customer reaching the queue and making its
// join/balk decision.
type ArrivalEvent struct {
	time     float64   // Simulation time of arrival
	Customer *Customer // The arriving customer
}

// NewArrivalEvent creates an ArrivalEvent for c at its arrival time.
func NewArrivalEvent(c *Customer) *ArrivalEvent {
	return &ArrivalEvent{time: c.ArrivalTime, Customer: c}
}

// Timestamp returns the scheduled time of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() float64 { return e.time }

// Kind returns EventKindArrival.
func (e *ArrivalEvent) Kind() EventKind { return EventKindArrival }

// Subject returns the arriving customer.
func (e *ArrivalEvent) Subject() *Customer { return e.Customer }

// Execute hands the customer to QueueState and schedules the next arrival.
func (e *ArrivalEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< Arrival: customer %d (%s) at %.4f", e.Customer.ID, e.Customer.Strategy, e.time)
	sim.handleArrival(e.Customer)
}

// DepartureEvent represents the end of service for the customer holding the server.
type DepartureEvent struct {
	time     float64
	Customer *Customer
}

// NewDepartureEvent creates a DepartureEvent for c at time t.
func NewDepartureEvent(t float64, c *Customer) *DepartureEvent {
	return &DepartureEvent{time: t, Customer: c}
}

// Timestamp returns the scheduled time of the DepartureEvent.
func (e *DepartureEvent) Timestamp() float64 { return e.time }

// Kind returns EventKindDeparture.
func (e *DepartureEvent) Kind() EventKind { return EventKindDeparture }

// Subject returns the departing customer.
func (e *DepartureEvent) Subject() *Customer { return e.Customer }

// Execute frees the server and finalizes the departing customer.
func (e *DepartureEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< Departure: customer %d at %.4f", e.Customer.ID, e.time)
	sim.handleDeparture(e.Customer)
}
