// Package freshness tracks the current real-world fantasy period (season
// and week). The historical cache asks it whether a period has concluded;
// the oracle answers from a short-lived internal cache, refreshing from an
// upstream state source and degrading to its last-known answer when that
// source fails.
package freshness

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaxAge is how long a fetched state is served before the oracle
// asks the source again.
const DefaultMaxAge = time.Hour

// State is the oracle's knowledge of the live period. It is refreshed
// opportunistically and never required to be strictly up to date.
type State struct {
	Season string
	Week   int
}

// Source is the upstream "what season and week is it" call.
type Source interface {
	CurrentState(ctx context.Context) (State, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (State, error)

// CurrentState implements Source.
func (f SourceFunc) CurrentState(ctx context.Context) (State, error) {
	return f(ctx)
}

// Oracle caches the source's answer for a bounded time and falls back to
// the last successful answer when the source fails. Only when it has never
// succeeded does it report the state as unknown, and callers must then
// treat data as live rather than risk caching volatile data permanently.
type Oracle struct {
	source Source
	maxAge time.Duration
	logger zerolog.Logger

	mu        sync.Mutex
	state     *State
	fetchedAt time.Time
}

// Option configures an Oracle at construction.
type Option func(*Oracle)

// WithMaxAge sets how long a fetched state is reused before refreshing.
func WithMaxAge(d time.Duration) Option {
	return func(o *Oracle) {
		if d > 0 {
			o.maxAge = d
		}
	}
}

// WithLogger sets the oracle's logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Oracle) {
		o.logger = logger
	}
}

// NewOracle creates an oracle over the given source.
func NewOracle(source Source, opts ...Option) *Oracle {
	o := &Oracle{
		source: source,
		maxAge: DefaultMaxAge,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CurrentState returns the oracle's best knowledge of the live period. The
// second return is false only when the source has never succeeded.
func (o *Oracle) CurrentState(ctx context.Context) (State, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != nil && time.Since(o.fetchedAt) < o.maxAge {
		return *o.state, true
	}

	state, err := o.source.CurrentState(ctx)
	if err != nil {
		if o.state != nil {
			o.logger.Warn().Err(err).
				Str("season", o.state.Season).
				Int("week", o.state.Week).
				Msg("state refresh failed; serving last-known state")
			return *o.state, true
		}
		o.logger.Warn().Err(err).Msg("state fetch failed with no last-known state")
		return State{}, false
	}

	o.state = &state
	o.fetchedAt = time.Now()
	return state, true
}
