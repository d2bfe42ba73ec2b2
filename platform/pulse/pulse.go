// Package pulse implements the audio endpoint on Linux through the PipeWire (wpctl)
// or PulseAudio (pactl) command line tools.
package pulse

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/util"
	"github.com/Ducheved/sharpmote/volume"
)

const (
	wpctlSink = "@DEFAULT_AUDIO_SINK@"
	pactlSink = "@DEFAULT_SINK@"
)

type runner func(ctx context.Context, name string, args ...string) (string, error)

func runCmd(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s %v: %v (%s)", name, args, err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

// Device is the default output sink.
type Device struct {
	run     runner
	backend string
	changes chan volume.Notification
}

// Open probes wpctl, then pactl, and starts polling for external changes every interval until ctx is done.
func Open(ctx context.Context, interval time.Duration) (*Device, error) {
	return open(ctx, runCmd, interval)
}

func open(ctx context.Context, run runner, interval time.Duration) (*Device, error) {
	d := &Device{run: run, changes: make(chan volume.Notification, 8)}

	for _, backend := range []string{"wpctl", "pactl"} {
		d.backend = backend
		if _, err := d.Level(ctx); err == nil {
			log.WithFields(log.Fields{"module": "pulse", "backend": backend}).Info("audio endpoint acquired")
			last, err := d.read(ctx)
			go d.poll(ctx, interval, last, err == nil)
			return d, nil
		}
	}

	return nil, fmt.Errorf("no usable audio backend: %w", volume.ErrNoDevice)
}

// Backend names the command line tool in use.
func (d *Device) Backend() string {
	return d.backend
}

// Level implements volume.Device.
func (d *Device) Level(ctx context.Context) (float64, error) {
	switch d.backend {
	case "wpctl":
		out, err := d.run(ctx, "wpctl", "get-volume", wpctlSink)
		if err != nil {
			return 0, err
		}
		level, _, err := parseWPCTLVolume(out)
		return util.Clamp(level, 0, 1), err
	default:
		out, err := d.run(ctx, "pactl", "get-sink-volume", pactlSink)
		if err != nil {
			return 0, err
		}
		level, err := parsePACTLVolume(out)
		return util.Clamp(level, 0, 1), err
	}
}

// SetLevel implements volume.Device.
func (d *Device) SetLevel(ctx context.Context, level float64) error {
	level = util.Clamp(level, 0, 1)

	var err error
	switch d.backend {
	case "wpctl":
		_, err = d.run(ctx, "wpctl", "set-volume", wpctlSink, strconv.FormatFloat(level, 'f', 3, 64))
	default:
		_, err = d.run(ctx, "pactl", "set-sink-volume", pactlSink, fmt.Sprintf("%d%%", util.Percent(level)))
	}
	return err
}

// Muted implements volume.Device.
func (d *Device) Muted(ctx context.Context) (bool, error) {
	switch d.backend {
	case "wpctl":
		out, err := d.run(ctx, "wpctl", "get-volume", wpctlSink)
		if err != nil {
			return false, err
		}
		_, muted, err := parseWPCTLVolume(out)
		return muted, err
	default:
		out, err := d.run(ctx, "pactl", "get-sink-mute", pactlSink)
		if err != nil {
			return false, err
		}
		return strings.Contains(strings.ToLower(out), "yes"), nil
	}
}

// SetMuted implements volume.Device.
func (d *Device) SetMuted(ctx context.Context, muted bool) error {
	val := "0"
	if muted {
		val = "1"
	}

	var err error
	switch d.backend {
	case "wpctl":
		_, err = d.run(ctx, "wpctl", "set-mute", wpctlSink, val)
	default:
		_, err = d.run(ctx, "pactl", "set-sink-mute", pactlSink, val)
	}
	return err
}

// Changes implements volume.Device.
func (d *Device) Changes() <-chan volume.Notification {
	return d.changes
}

func (d *Device) read(ctx context.Context) (volume.State, error) {
	level, err := d.Level(ctx)
	if err != nil {
		return volume.State{}, err
	}
	muted, err := d.Muted(ctx)
	if err != nil {
		return volume.State{}, err
	}
	return volume.State{Level: level, Muted: muted}, nil
}

// poll emits a notification whenever level or mute differ from the previous poll.
func (d *Device) poll(ctx context.Context, interval time.Duration, last volume.State, known bool) {
	defer close(d.changes)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		current, err := d.read(ctx)
		if err != nil {
			log.WithFields(log.Fields{"module": "pulse", "action": "poll"}).WithError(err).Debug("volume read failed")
			continue
		}

		if known && current == last {
			continue
		}
		last, known = current, true

		select {
		case d.changes <- current:
		default:
		}
	}
}

func parseWPCTLVolume(out string) (float64, bool, error) {
	// "Volume: 0.38 [MUTED]" or "Volume: 1.04"
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return 0, false, fmt.Errorf("unexpected wpctl output: %q", out)
	}
	val, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse volume: %w", err)
	}
	muted := strings.Contains(strings.ToUpper(out), "MUTED")
	return val, muted, nil
}

func parsePACTLVolume(out string) (float64, error) {
	// "Volume: front-left: 65536 / 100% / 0.00 dB,   front-right: 65536 / 100% / 0.00 dB"
	idx := strings.Index(out, "/")
	if idx == -1 {
		return 0, fmt.Errorf("unexpected pactl output: %q", out)
	}
	rest := out[idx+1:]
	end := strings.Index(rest, "%")
	if end == -1 {
		return 0, fmt.Errorf("unexpected pactl output: %q", out)
	}
	percent, err := strconv.Atoi(strings.TrimSpace(rest[:end]))
	if err != nil {
		return 0, fmt.Errorf("parse pactl percent: %w", err)
	}
	return float64(percent) / 100.0, nil
}
