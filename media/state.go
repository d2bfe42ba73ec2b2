// Package media reconciles the host media session into a single interpolated snapshot
// and executes transport commands against it.
package media

import "errors"

// ErrNoSession is returned by session-scoped operations when no media session is active.
var ErrNoSession = errors.New("no active media session")

// PlaybackStatus is the transport state reported by a media source.
type PlaybackStatus string

const (
	Unknown  PlaybackStatus = "Unknown"
	Playing  PlaybackStatus = "Playing"
	Paused   PlaybackStatus = "Paused"
	Stopped  PlaybackStatus = "Stopped"
	Changing PlaybackStatus = "Changing"
)

// TrackIdentity detects a change of the current item independent of session lifecycle events.
type TrackIdentity struct {
	App    string
	Title  string
	Artist string
	Album  string
}

// State is an immutable snapshot of the media session.
// PositionMs never exceeds DurationMs when DurationMs is positive.
type State struct {
	Status     PlaybackStatus
	App        string
	Title      string
	Artist     string
	Album      string
	PositionMs int64
	DurationMs int64
}

// Identity returns the track identity of the snapshot.
func (s State) Identity() TrackIdentity {
	return TrackIdentity{App: s.App, Title: s.Title, Artist: s.Artist, Album: s.Album}
}

// Timeline is the raw timeline of a session in milliseconds.
type Timeline struct {
	PositionMs int64
	DurationMs int64
	StartMs    int64
	EndMs      int64
}

// Length returns the track duration, derived from the start/end range when no explicit duration is reported.
func (t Timeline) Length() int64 {
	if t.DurationMs > 0 {
		return t.DurationMs
	}
	if t.EndMs > t.StartMs {
		return t.EndMs - t.StartMs
	}
	return 0
}

// Properties holds the descriptive metadata of the current track.
type Properties struct {
	Title  string
	Artist string
	Album  string
}

// Artwork is an immutable image buffer with its content type.
type Artwork struct {
	Data        []byte
	ContentType string
}
