package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arrivalAt(id int64, t float64) *ArrivalEvent {
	return NewArrivalEvent(NewCustomer(id, t, StrategyOptimal))
}

func TestEventScheduler_PopsInTimestampOrder(t *testing.T) {
	// GIVEN events scheduled out of order
	s := NewEventScheduler(100)
	for i, ts := range []float64{5, 1, 3, 2, 4} {
		s.Schedule(arrivalAt(int64(i), ts))
	}

	// WHEN all events are popped
	var got []float64
	for {
		ev, err := s.PopNext()
		if errors.Is(err, ErrEmptySchedule) {
			break
		}
		got = append(got, ev.Timestamp())
		// THEN the clock follows each dispatched event
		assert.Equal(t, ev.Timestamp(), s.Clock())
	}

	assert.Equal(t, []float64{1, 2, 3, 4, 5}, got)
}

func TestEventScheduler_EqualTimestamps_FIFO(t *testing.T) {
	// GIVEN a departure then an arrival at the same instant
	s := NewEventScheduler(10)
	dep := NewDepartureEvent(2, NewCustomer(0, 1, StrategyOptimal))
	arr := arrivalAt(1, 2)
	s.Schedule(dep)
	s.Schedule(arr)

	// WHEN popped
	first, err := s.PopNext()
	require.NoError(t, err)
	second, err := s.PopNext()
	require.NoError(t, err)

	// THEN insertion order breaks the tie
	assert.Equal(t, EventKindDeparture, first.Kind())
	assert.Equal(t, EventKindArrival, second.Kind())
}

func TestEventScheduler_Empty_ReturnsErrEmptySchedule(t *testing.T) {
	s := NewEventScheduler(10)

	ev, err := s.PopNext()

	assert.Nil(t, ev)
	assert.ErrorIs(t, err, ErrEmptySchedule)
}

func TestEventScheduler_BeyondHorizon_Discarded(t *testing.T) {
	// GIVEN one event inside the horizon and two beyond it
	s := NewEventScheduler(10)
	s.Schedule(arrivalAt(0, 9))
	s.Schedule(arrivalAt(1, 11))
	s.Schedule(arrivalAt(2, 12))

	// WHEN popping past the in-horizon event
	ev, err := s.PopNext()
	require.NoError(t, err)
	assert.Equal(t, 9.0, ev.Timestamp())
	_, err = s.PopNext()

	// THEN the run is over and the late events are gone
	assert.ErrorIs(t, err, ErrEmptySchedule)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 9.0, s.Clock())
}

func TestEventScheduler_EventAtHorizon_Dispatched(t *testing.T) {
	s := NewEventScheduler(10)
	s.Schedule(arrivalAt(0, 10))

	ev, err := s.PopNext()

	require.NoError(t, err)
	assert.Equal(t, 10.0, ev.Timestamp())
}

func TestEventScheduler_ScheduleInPast_Panics(t *testing.T) {
	// GIVEN a clock advanced to 5
	s := NewEventScheduler(10)
	s.Schedule(arrivalAt(0, 5))
	_, err := s.PopNext()
	require.NoError(t, err)

	// WHEN an event is scheduled at 4, THEN it panics
	assert.Panics(t, func() { s.Schedule(arrivalAt(1, 4)) })
	// AND scheduling at the current clock is allowed
	assert.NotPanics(t, func() { s.Schedule(arrivalAt(2, 5)) })
}

func TestEventScheduler_NilEvent_Panics(t *testing.T) {
	s := NewEventScheduler(10)
	assert.Panics(t, func() { s.Schedule(nil) })
}

func TestEventScheduler_ScheduleDoesNotAdvanceClock(t *testing.T) {
	s := NewEventScheduler(10)
	s.Schedule(arrivalAt(0, 3))
	s.Schedule(arrivalAt(1, 1))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 10.0, s.Horizon())
	assert.Equal(t, 0.0, s.Clock())
}
