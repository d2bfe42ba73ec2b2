package media

import "time"

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithPollInterval sets how often the session is re-read from scratch.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.pollInterval = d
		}
	}
}

// WithRepublishInterval sets how often the interpolated position is pushed while playing.
func WithRepublishInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.republishInterval = d
		}
	}
}

// WithSeekTolerance sets how far an authoritative position may drift from the estimate
// before the correction is published as a change.
func WithSeekTolerance(d time.Duration) Option {
	return func(e *Engine) {
		e.seekTolerance = d
	}
}
