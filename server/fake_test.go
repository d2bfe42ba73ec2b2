package server

import (
	"context"
	"io"
	"sync"

	"github.com/Ducheved/sharpmote/filesystem"
	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/media"
	"github.com/Ducheved/sharpmote/volume"
	"github.com/samber/mo"
)

func init() {
	filesystem.SetMemMapFs()
	log.SetOutput(io.Discard)
}

type fakeMedia struct {
	mu    sync.Mutex
	state mo.Option[media.State]
	art   mo.Option[media.Artwork]
	calls []string
}

func (m *fakeMedia) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *fakeMedia) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *fakeMedia) State() mo.Option[media.State] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *fakeMedia) Play(context.Context)     { m.record("play") }
func (m *fakeMedia) Pause(context.Context)    { m.record("pause") }
func (m *fakeMedia) Toggle(context.Context)   { m.record("toggle") }
func (m *fakeMedia) Next(context.Context)     { m.record("next") }
func (m *fakeMedia) Previous(context.Context) { m.record("previous") }
func (m *fakeMedia) Stop(context.Context)     { m.record("stop") }

func (m *fakeMedia) AlbumArt(context.Context) (media.Artwork, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.art.Get()
}

type fakeVolume struct {
	mu      sync.Mutex
	absent  bool
	state   volume.State
	err     error
	stepped []float64
}

func (v *fakeVolume) Available() bool { return !v.absent }

func (v *fakeVolume) Snapshot(context.Context) (volume.State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.absent {
		return volume.State{}, volume.ErrNoDevice
	}
	return v.state, v.err
}

func (v *fakeVolume) Set(_ context.Context, level float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.absent {
		return volume.ErrNoDevice
	}
	v.state.Level = min(max(level, 0), 1)
	return v.err
}

func (v *fakeVolume) Step(_ context.Context, delta float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.absent {
		return volume.ErrNoDevice
	}
	v.stepped = append(v.stepped, delta)
	v.state.Level = min(max(v.state.Level+delta, 0), 1)
	return v.err
}

func (v *fakeVolume) ToggleMute(context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.absent {
		return volume.ErrNoDevice
	}
	v.state.Muted = !v.state.Muted
	return v.err
}

type fakeWebhook struct {
	secret string
	mu     sync.Mutex
	bodies []string
	err    error
}

func (f *fakeWebhook) Secret() string { return f.secret }

func (f *fakeWebhook) HandleUpdate(_ context.Context, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies = append(f.bodies, string(body))
	return f.err
}
