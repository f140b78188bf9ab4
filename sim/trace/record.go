// Package trace provides decision-trace recording for admission analysis.
// The package has no dependencies on sim/; it stores pure data types.
package trace

// AdmissionRecord captures a single join/balk decision.
type AdmissionRecord struct {
	CustomerID  int64
	Clock       float64
	Strategy    string
	NumInSystem int // pre-arrival count the decision was based on
	Threshold   int // limit applied for the customer's strategy
	Admitted    bool
	Reason      string
}

// DepartureRecord captures a completed service.
type DepartureRecord struct {
	CustomerID  int64
	Clock       float64
	WaitingTime float64
	SystemTime  float64
	NumInSystem int // count left behind after the departure
}
