package sim

import "errors"

// Configuration errors are fatal: NewSimulator refuses to build an engine when
// Config.Validate returns one of them. Callers match with errors.Is.
var (
	ErrInvalidRate       = errors.New("invalid rate")
	ErrInvalidProportion = errors.New("invalid selfish proportion")
	ErrInvalidHorizon    = errors.New("invalid horizon")
	ErrInvalidWarmUp     = errors.New("invalid warm-up")
	ErrInvalidToll       = errors.New("invalid toll")
	ErrInvalidTraceLevel = errors.New("invalid trace level")
)

// ErrEmptySchedule is returned by EventScheduler.PopNext when no event remains
// at or before the horizon. The run loop treats it as normal termination.
var ErrEmptySchedule = errors.New("empty schedule")

// ErrDegenerateOptimum marks a socially-optimal threshold search that cannot
// stabilise (λ ≥ μ with an unbounded selfish threshold). It is never returned
// from a run; the calculator falls back to the selfish threshold and the
// simulator reports it as a warning.
var ErrDegenerateOptimum = errors.New("degenerate optimum")
