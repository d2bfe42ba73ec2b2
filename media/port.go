package media

import "context"

// Command is a transport action.
type Command int

const (
	Play Command = iota
	Pause
	Toggle
	Next
	Previous
	Stop
)

func (c Command) String() string {
	switch c {
	case Play:
		return "play"
	case Pause:
		return "pause"
	case Toggle:
		return "toggle"
	case Next:
		return "next"
	case Previous:
		return "previous"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// EventKind classifies what changed in the source.
type EventKind int

const (
	// SessionChanged means the current session appeared, disappeared or was replaced.
	SessionChanged EventKind = iota
	// PropertiesChanged means the track metadata changed.
	PropertiesChanged
	// PlaybackChanged means the playback status or timeline changed.
	PlaybackChanged
)

// SourceEvent is emitted by a Source on an arbitrary goroutine.
type SourceEvent struct {
	Kind EventKind
}

// Source abstracts the OS media-session provider.
type Source interface {
	// Session returns the current session, or false when there is none.
	Session(ctx context.Context) (Session, bool, error)
	// Events delivers change notifications. It may return nil for poll-only sources.
	Events() <-chan SourceEvent
}

// Session is a handle to one media session.
type Session interface {
	App() string
	Playback(ctx context.Context) (PlaybackStatus, error)
	Timeline(ctx context.Context) (Timeline, error)
	Properties(ctx context.Context) (Properties, error)
	// Artwork returns false when the session has no art.
	Artwork(ctx context.Context) (Artwork, bool, error)
	Command(ctx context.Context, cmd Command) error
}

// Injector simulates hardware media keys.
type Injector interface {
	Press(ctx context.Context, cmd Command) error
}

// Publisher receives snapshots in the order the engine writes them.
type Publisher interface {
	Publish(event string, st State)
}
