// Package volume bridges the OS audio endpoint: pass-through reads, clamped writes
// and republishing of external volume changes.
package volume

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/util"
)

// ErrNoDevice is returned when the audio endpoint was never acquired.
var ErrNoDevice = errors.New("no audio device")

// State is the volume of the default output.
type State struct {
	Level float64
	Muted bool
}

// Notification is an external change reported by the audio endpoint.
type Notification = State

// Device abstracts the OS audio endpoint. Levels are scalars in [0,1].
type Device interface {
	Level(ctx context.Context) (float64, error)
	SetLevel(ctx context.Context, level float64) error
	Muted(ctx context.Context) (bool, error)
	SetMuted(ctx context.Context, muted bool) error
	// Changes delivers external changes. It may return nil when the device cannot observe them.
	Changes() <-chan Notification
}

// Publisher receives every observed change.
type Publisher interface {
	Publish(st State)
}

// Engine is the single entry point for volume reads and writes.
type Engine struct {
	device    Device
	publisher Publisher

	// mu serializes read-modify-write sequences issued through this engine.
	// External changes can still interleave; the last writer wins.
	mu sync.Mutex
}

// NewEngine wraps device, which may be nil when no endpoint could be acquired.
func NewEngine(device Device, publisher Publisher) *Engine {
	return &Engine{device: device, publisher: publisher}
}

// Available reports whether an audio endpoint was acquired.
func (e *Engine) Available() bool {
	return e.device != nil
}

// Start republishes device notifications until ctx is done. Every notification is
// published, including ones equal to the previous value.
func (e *Engine) Start(ctx context.Context) {
	if e.device == nil {
		log.WithFields(log.Fields{"module": "volume", "action": "start"}).Warn("no audio device, volume control disabled")
		return
	}

	changes := e.device.Changes()
	if changes == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-changes:
			if !ok {
				return
			}
			e.emit(n)
		}
	}
}

// Volume reads the current level.
func (e *Engine) Volume(ctx context.Context) (float64, error) {
	if e.device == nil {
		return 0, ErrNoDevice
	}
	return e.device.Level(ctx)
}

// Mute reads the current mute flag.
func (e *Engine) Mute(ctx context.Context) (bool, error) {
	if e.device == nil {
		return false, ErrNoDevice
	}
	return e.device.Muted(ctx)
}

// Snapshot reads level and mute together.
func (e *Engine) Snapshot(ctx context.Context) (State, error) {
	level, err := e.Volume(ctx)
	if err != nil {
		return State{}, err
	}

	muted, err := e.Mute(ctx)
	if err != nil {
		return State{}, err
	}

	return State{Level: level, Muted: muted}, nil
}

// Set writes level clamped to [0,1].
func (e *Engine) Set(ctx context.Context, level float64) error {
	if e.device == nil {
		return ErrNoDevice
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.set(ctx, level)
}

func (e *Engine) set(ctx context.Context, level float64) error {
	if err := e.device.SetLevel(ctx, util.Clamp(level, 0, 1)); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	return nil
}

// Step adds delta to the current level, clamping the result to [0,1].
func (e *Engine) Step(ctx context.Context, delta float64) error {
	if e.device == nil {
		return ErrNoDevice
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.device.Level(ctx)
	if err != nil {
		return fmt.Errorf("read volume: %w", err)
	}
	return e.set(ctx, current+delta)
}

// ToggleMute flips the mute flag.
func (e *Engine) ToggleMute(ctx context.Context) error {
	if e.device == nil {
		return ErrNoDevice
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	muted, err := e.device.Muted(ctx)
	if err != nil {
		return fmt.Errorf("read mute: %w", err)
	}
	if err := e.device.SetMuted(ctx, !muted); err != nil {
		return fmt.Errorf("set mute: %w", err)
	}
	return nil
}

func (e *Engine) emit(st State) {
	if e.publisher != nil {
		e.publisher.Publish(st)
	}
}
