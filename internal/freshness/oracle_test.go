package freshness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource returns queued answers and counts calls.
type countingSource struct {
	calls  int
	states []State
	errs   []error
}

func (s *countingSource) CurrentState(context.Context) (State, error) {
	i := s.calls
	s.calls++
	if i >= len(s.states) {
		i = len(s.states) - 1
	}
	return s.states[i], s.errs[i]
}

func TestOracleCachesWithinMaxAge(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{
		states: []State{{Season: "2025", Week: 3}},
		errs:   []error{nil},
	}
	oracle := NewOracle(source)

	for n := 0; n < 5; n++ {
		state, ok := oracle.CurrentState(ctx)
		require.True(t, ok)
		assert.Equal(t, State{Season: "2025", Week: 3}, state)
	}
	assert.Equal(t, 1, source.calls)
}

func TestOracleRefreshesAfterMaxAge(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{
		states: []State{{Season: "2025", Week: 3}, {Season: "2025", Week: 4}},
		errs:   []error{nil, nil},
	}
	oracle := NewOracle(source, WithMaxAge(10*time.Millisecond))

	state, ok := oracle.CurrentState(ctx)
	require.True(t, ok)
	assert.Equal(t, 3, state.Week)

	time.Sleep(20 * time.Millisecond)

	state, ok = oracle.CurrentState(ctx)
	require.True(t, ok)
	assert.Equal(t, 4, state.Week)
	assert.Equal(t, 2, source.calls)
}

func TestOracleDegradesToLastKnown(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{
		states: []State{{Season: "2025", Week: 3}, {}},
		errs:   []error{nil, errors.New("upstream down")},
	}
	oracle := NewOracle(source, WithMaxAge(time.Nanosecond))

	state, ok := oracle.CurrentState(ctx)
	require.True(t, ok)
	assert.Equal(t, State{Season: "2025", Week: 3}, state)

	// The refresh fails; the oracle serves the last successful answer.
	state, ok = oracle.CurrentState(ctx)
	assert.True(t, ok)
	assert.Equal(t, State{Season: "2025", Week: 3}, state)
}

func TestOracleUnknownWhenNeverFetched(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{
		states: []State{{}},
		errs:   []error{errors.New("upstream down")},
	}
	oracle := NewOracle(source)

	_, ok := oracle.CurrentState(ctx)
	assert.False(t, ok)
}
