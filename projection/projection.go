// Package projection maps engine snapshots onto the public JSON shapes shared by
// the REST API, the event stream and the connectors.
package projection

import (
	"time"

	"github.com/Ducheved/sharpmote/media"
	"github.com/Ducheved/sharpmote/volume"
)

// State is the payload of the state event and of GET /api/v1/state.
type State struct {
	Playback   string    `json:"playback"`
	App        string    `json:"app"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album"`
	PositionMs int64     `json:"position_ms"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
	Volume     *float64  `json:"volume,omitempty"`
	Mute       *bool     `json:"mute,omitempty"`
}

// Track is the payload of the track event.
type Track struct {
	Playback   string    `json:"playback"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album"`
	App        string    `json:"app"`
	PositionMs int64     `json:"position_ms"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Volume is the payload of the volume event.
type Volume struct {
	Volume    float64   `json:"volume"`
	Mute      bool      `json:"mute"`
	Timestamp time.Time `json:"timestamp"`
}

// Ping is sent first on every new subscription.
type Ping struct {
	Timestamp time.Time `json:"timestamp"`
}

// OK acknowledges a fire-and-forget command.
type OK struct {
	OK bool `json:"ok"`
}

// Acknowledged is the only OK value ever sent.
var Acknowledged = OK{OK: true}

// NewState projects a media snapshot taken at ts.
func NewState(st media.State, ts time.Time) State {
	return State{
		Playback:   string(st.Status),
		App:        st.App,
		Title:      st.Title,
		Artist:     st.Artist,
		Album:      st.Album,
		PositionMs: st.PositionMs,
		DurationMs: st.DurationMs,
		Timestamp:  ts,
	}
}

// WithVolume attaches the volume fields.
func (s State) WithVolume(v volume.State) State {
	level, muted := v.Level, v.Muted
	s.Volume = &level
	s.Mute = &muted
	return s
}

// NewTrack projects the track facet of a media snapshot.
func NewTrack(st media.State, ts time.Time) Track {
	return Track{
		Playback:   string(st.Status),
		Title:      st.Title,
		Artist:     st.Artist,
		Album:      st.Album,
		App:        st.App,
		PositionMs: st.PositionMs,
		DurationMs: st.DurationMs,
		Timestamp:  ts,
	}
}

// NewVolume projects a volume snapshot.
func NewVolume(v volume.State, ts time.Time) Volume {
	return Volume{Volume: v.Level, Mute: v.Muted, Timestamp: ts}
}
