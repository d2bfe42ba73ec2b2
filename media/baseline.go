package media

import (
	"time"

	"github.com/Ducheved/sharpmote/util"
)

// Baseline is the last authoritative position read, used to estimate the position between reads.
type Baseline struct {
	PositionMs int64
	DurationMs int64
	At         time.Time
	Playing    bool
}

// Estimate returns the position at now. It extrapolates only while playing with a known duration
// and never leaves [0, DurationMs].
func (b Baseline) Estimate(now time.Time) int64 {
	pos := b.PositionMs
	if b.Playing && b.DurationMs > 0 {
		if elapsed := now.Sub(b.At).Milliseconds(); elapsed > 0 {
			pos += elapsed
		}
		pos = util.Min(b.DurationMs, pos)
	}

	if b.DurationMs > 0 {
		return util.Clamp(pos, 0, b.DurationMs)
	}
	return util.Max(pos, 0)
}

// reading is one authoritative read of a session.
type reading struct {
	status     PlaybackStatus
	app        string
	properties Properties
	timeline   Timeline
}

func (r reading) state() State {
	return State{
		Status:     r.status,
		App:        r.app,
		Title:      r.properties.Title,
		Artist:     r.properties.Artist,
		Album:      r.properties.Album,
		DurationMs: util.Max(r.timeline.Length(), 0),
	}
}

// rebase derives the next baseline from the previous snapshot and a fresh read.
//
// A new track snaps to the reported position (or 0). On the same track a positive
// report always wins; a zero report keeps the running estimate unless playback stopped.
func rebase(prev cell, r reading, now time.Time) Baseline {
	next := Baseline{
		DurationMs: util.Max(r.timeline.Length(), 0),
		At:         now,
		Playing:    r.status == Playing,
	}

	reported := util.Max(r.timeline.PositionMs, 0)

	switch {
	case !prev.present || prev.meta.Identity() != r.state().Identity():
		next.PositionMs = reported
	case reported > 0:
		next.PositionMs = reported
	case r.status == Stopped:
		next.PositionMs = 0
	default:
		next.PositionMs = prev.baseline.Estimate(now)
	}

	if next.DurationMs > 0 {
		next.PositionMs = util.Clamp(next.PositionMs, 0, next.DurationMs)
	}
	return next
}

// cell holds the current metadata together with its interpolation baseline.
type cell struct {
	present  bool
	meta     State
	baseline Baseline
}

func (c cell) at(now time.Time) State {
	st := c.meta
	st.PositionMs = c.baseline.Estimate(now)
	return st
}
