package telegram

import (
	"strconv"
	"strings"

	"github.com/Ducheved/sharpmote/util"
	"github.com/samber/mo"
)

// Kind is the action a chat command asks for.
type Kind int

const (
	Unknown Kind = iota
	Play
	Pause
	Toggle
	Next
	Prev
	Stop
	VolUp
	VolDown
	VolSet
	Mute
	State
)

func (k Kind) String() string {
	switch k {
	case Play:
		return "play"
	case Pause:
		return "pause"
	case Toggle:
		return "toggle"
	case Next:
		return "next"
	case Prev:
		return "prev"
	case Stop:
		return "stop"
	case VolUp:
		return "volup"
	case VolDown:
		return "voldown"
	case VolSet:
		return "vol"
	case Mute:
		return "mute"
	case State:
		return "state"
	default:
		return "unknown"
	}
}

// Command is a parsed chat message. Percent is only present for VolSet.
type Command struct {
	Kind    Kind
	Percent mo.Option[int]
}

// prefixes are matched in order, so "/volup" and "/voldown" must precede "/vol".
var prefixes = []struct {
	prefix string
	kind   Kind
}{
	{"/play", Play},
	{"/pause", Pause},
	{"/toggle", Toggle},
	{"/next", Next},
	{"/prev", Prev},
	{"/stop", Stop},
	{"/volup", VolUp},
	{"/voldown", VolDown},
	{"/mute", Mute},
	{"/state", State},
}

// Parse maps chat text onto a command. Matching is by prefix, so "/play@bot" is Play.
// "/vol N" sets the volume to N percent clamped to 0..100; "/vol" with anything else is a VolSet without a value.
func Parse(text string) Command {
	t := strings.TrimSpace(text)
	if t == "" {
		return Command{Kind: Unknown}
	}

	for _, p := range prefixes {
		if strings.HasPrefix(t, p.prefix) {
			return Command{Kind: p.kind}
		}
	}

	if strings.HasPrefix(t, "/vol") {
		parts := strings.Fields(t)
		if len(parts) == 2 {
			if n, err := strconv.Atoi(parts[1]); err == nil {
				return Command{Kind: VolSet, Percent: mo.Some(util.Clamp(n, 0, 100))}
			}
		}
		return Command{Kind: VolSet}
	}

	return Command{Kind: Unknown}
}
