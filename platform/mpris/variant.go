package mpris

import (
	"github.com/Ducheved/sharpmote/media"
	"github.com/godbus/dbus/v5"
)

func asString(v dbus.Variant) string {
	if s, ok := v.Value().(string); ok {
		return s
	}
	if p, ok := v.Value().(dbus.ObjectPath); ok {
		return string(p)
	}
	return ""
}

func asInt64(v dbus.Variant) int64 {
	switch val := v.Value().(type) {
	case int64:
		return val
	case int32:
		return int64(val)
	case uint64:
		return int64(val)
	case uint32:
		return int64(val)
	default:
		return 0
	}
}

func firstString(v dbus.Variant) string {
	switch val := v.Value().(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
	case []interface{}:
		for _, item := range val {
			if s, ok := item.(string); ok {
				return s
			}
		}
	}
	return ""
}

// metadata is the subset of the MPRIS Metadata map the service needs.
type metadata struct {
	properties media.Properties
	lengthMs   int64
	artURL     string
}

func parseMetadata(v dbus.Variant) metadata {
	var m metadata

	raw, ok := v.Value().(map[string]dbus.Variant)
	if !ok {
		return m
	}

	if title, ok := raw["xesam:title"]; ok {
		m.properties.Title = asString(title)
	}
	if artist, ok := raw["xesam:artist"]; ok {
		m.properties.Artist = firstString(artist)
	}
	if album, ok := raw["xesam:album"]; ok {
		m.properties.Album = asString(album)
	}
	if length, ok := raw["mpris:length"]; ok {
		m.lengthMs = asInt64(length) / 1000
	}
	if art, ok := raw["mpris:artUrl"]; ok {
		m.artURL = asString(art)
	}

	return m
}

func parseStatus(s string) media.PlaybackStatus {
	switch s {
	case "Playing":
		return media.Playing
	case "Paused":
		return media.Paused
	case "Stopped":
		return media.Stopped
	default:
		return media.Unknown
	}
}
