package media

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeSource is both the Source and its single Session.
type fakeSource struct {
	mu         sync.Mutex
	active     bool
	app        string
	status     PlaybackStatus
	props      Properties
	timeline   Timeline
	art        *Artwork
	artGate    chan struct{}
	commandErr error
	commands   []Command
	calls      map[string]int
	events     chan SourceEvent
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		app:    "org.mpris.MediaPlayer2.spotify",
		status: Stopped,
		calls:  make(map[string]int),
		events: make(chan SourceEvent, 8),
	}
}

func (s *fakeSource) set(f func(s *fakeSource)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s)
}

func (s *fakeSource) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *fakeSource) Session(context.Context) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return nil, false, nil
	}
	return s, true, nil
}

func (s *fakeSource) Events() <-chan SourceEvent { return s.events }

func (s *fakeSource) App() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.app
}

func (s *fakeSource) Playback(context.Context) (PlaybackStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["playback"]++
	return s.status, nil
}

func (s *fakeSource) Timeline(context.Context) (Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["timeline"]++
	return s.timeline, nil
}

func (s *fakeSource) Properties(context.Context) (Properties, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["properties"]++
	return s.props, nil
}

func (s *fakeSource) Artwork(ctx context.Context) (Artwork, bool, error) {
	s.mu.Lock()
	s.calls["artwork"]++
	gate := s.artGate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Artwork{}, false, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.art == nil {
		return Artwork{}, false, nil
	}
	return *s.art, true, nil
}

func (s *fakeSource) Command(_ context.Context, cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commandErr != nil {
		return s.commandErr
	}
	s.commands = append(s.commands, cmd)
	switch cmd {
	case Play:
		s.status = Playing
	case Pause:
		s.status = Paused
	case Stop:
		s.status = Stopped
	}
	return nil
}

type fakeInjector struct {
	mu      sync.Mutex
	pressed []Command
	err     error
}

func (i *fakeInjector) Press(_ context.Context, cmd Command) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.pressed = append(i.pressed, cmd)
	return i.err
}

func (i *fakeInjector) Pressed() []Command {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Command(nil), i.pressed...)
}

type published struct {
	event string
	state State
}

type recorder struct {
	mu     sync.Mutex
	events []published
}

func (r *recorder) Publish(event string, st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{event, st})
}

func (r *recorder) Events() []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]published(nil), r.events...)
}

func (r *recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

var errRejected = errors.New("rejected")
