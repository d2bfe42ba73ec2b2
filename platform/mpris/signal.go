package mpris

import (
	"strings"

	"github.com/Ducheved/sharpmote/media"
	"github.com/godbus/dbus/v5"
)

const (
	busPrefix  = "org.mpris.MediaPlayer2."
	objectPath = dbus.ObjectPath("/org/mpris/MediaPlayer2")

	propsMatch  = "type='signal',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged',path_namespace='/org/mpris/MediaPlayer2'"
	seekedMatch = "type='signal',interface='org.mpris.MediaPlayer2.Player',member='Seeked',path_namespace='/org/mpris/MediaPlayer2'"
	nameMatch   = "type='signal',interface='org.freedesktop.DBus',member='NameOwnerChanged'"
)

// classify maps a bus signal to a source event. It reports false for unrelated signals.
func classify(sig *dbus.Signal) (media.SourceEvent, bool) {
	if sig == nil {
		return media.SourceEvent{}, false
	}

	switch sig.Name {
	case "org.freedesktop.DBus.NameOwnerChanged":
		if len(sig.Body) >= 1 {
			if name, ok := sig.Body[0].(string); ok && strings.HasPrefix(name, busPrefix) {
				return media.SourceEvent{Kind: media.SessionChanged}, true
			}
		}
		return media.SourceEvent{}, false

	case "org.mpris.MediaPlayer2.Player.Seeked":
		return media.SourceEvent{Kind: media.PlaybackChanged}, true

	case "org.freedesktop.DBus.Properties.PropertiesChanged":
		if !strings.HasPrefix(string(sig.Path), string(objectPath)) || len(sig.Body) < 2 {
			return media.SourceEvent{}, false
		}

		changed, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			return media.SourceEvent{}, false
		}
		if _, ok := changed["Metadata"]; ok {
			return media.SourceEvent{Kind: media.PropertiesChanged}, true
		}
		for _, name := range []string{"PlaybackStatus", "Position", "Rate"} {
			if _, ok := changed[name]; ok {
				return media.SourceEvent{Kind: media.PlaybackChanged}, true
			}
		}
		return media.SourceEvent{}, false
	}

	return media.SourceEvent{}, false
}
