// Package keys simulates hardware media keys when a session rejects a transport command.
package keys

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Ducheved/sharpmote/media"
)

type runner func(ctx context.Context, name string, args ...string) error

func runCmd(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %v: %v (%s)", name, args, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Injector tries playerctl, which talks to any MPRIS player, then X11 media keys through xdotool.
type Injector struct {
	run runner
}

// New returns an injector backed by the host tools.
func New() *Injector {
	return &Injector{run: runCmd}
}

var (
	playerctl = map[media.Command]string{
		media.Play:     "play",
		media.Pause:    "pause",
		media.Toggle:   "play-pause",
		media.Next:     "next",
		media.Previous: "previous",
		media.Stop:     "stop",
	}

	// X11 has a single play key, so play and pause both toggle.
	xkeys = map[media.Command]string{
		media.Play:     "XF86AudioPlay",
		media.Pause:    "XF86AudioPlay",
		media.Toggle:   "XF86AudioPlay",
		media.Next:     "XF86AudioNext",
		media.Previous: "XF86AudioPrev",
		media.Stop:     "XF86AudioStop",
	}
)

// Press implements media.Injector.
func (i *Injector) Press(ctx context.Context, cmd media.Command) error {
	action, ok := playerctl[cmd]
	if !ok {
		return fmt.Errorf("unsupported command %s", cmd)
	}

	first := i.run(ctx, "playerctl", action)
	if first == nil {
		return nil
	}

	second := i.run(ctx, "xdotool", "key", xkeys[cmd])
	if second == nil {
		return nil
	}

	return errors.Join(first, second)
}
