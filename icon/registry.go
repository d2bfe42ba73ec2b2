package icon

import "strings"

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Warn
	Info
	Playing
	Paused
	Stopped
	Volume
	Muted
	Key
	Link
)

var icons = map[Icon]*iconDef{
	Success: {emoji: "🎉", nerd: "", plain: "✓", kaomoji: "(ᵔ◡ᵔ)", squares: "🟩"},
	Fail:    {emoji: "👹", nerd: "", plain: "✗", kaomoji: "(×_×)", squares: "🟥"},
	Warn:    {emoji: "⚠️", nerd: "", plain: "!", kaomoji: "(・_・;)", squares: "🟨"},
	Info:    {emoji: "💡", nerd: "", plain: "i", kaomoji: "(・∀・)", squares: "🟦"},
	Playing: {emoji: "▶️", nerd: "", plain: ">", kaomoji: "♪(´▽｀)", squares: "🟩"},
	Paused:  {emoji: "⏸️", nerd: "", plain: "||", kaomoji: "(－_－)", squares: "🟨"},
	Stopped: {emoji: "⏹️", nerd: "", plain: "[]", kaomoji: "(￣ー￣)", squares: "⬛"},
	Volume:  {emoji: "🔊", nerd: "", plain: "vol", kaomoji: "ヽ(°〇°)ﾉ", squares: "🟪"},
	Muted:   {emoji: "🔇", nerd: "", plain: "mute", kaomoji: "(´-ω-`)", squares: "⬜"},
	Key:     {emoji: "🔑", nerd: "", plain: "key", kaomoji: "(๑•̀ㅂ•́)و", squares: "🟧"},
	Link:    {emoji: "🔗", nerd: "", plain: "->", kaomoji: "(っ˘ω˘ς)", squares: "🟫"},
}

// ForPlayback maps a playback status word to its icon.
func ForPlayback(status string) Icon {
	switch strings.ToLower(status) {
	case "playing":
		return Playing
	case "paused":
		return Paused
	default:
		return Stopped
	}
}
