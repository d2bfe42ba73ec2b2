package constant

// Broadcast event names pushed to subscribers.
const (
	EventPing   = "ping"
	EventState  = "state"
	EventTrack  = "track"
	EventVolume = "volume"
)
