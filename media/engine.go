package media

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ducheved/sharpmote/constant"
	"github.com/Ducheved/sharpmote/log"
	"github.com/samber/mo"
)

type facet uint8

const (
	facetPlayback facet = 1 << iota
	facetTimeline
	facetProperties

	facetAll = facetPlayback | facetTimeline | facetProperties
)

// Engine owns the canonical media snapshot.
type Engine struct {
	source    Source
	injector  Injector
	publisher Publisher

	now               func() time.Time
	pollInterval      time.Duration
	republishInterval time.Duration
	seekTolerance     time.Duration

	// refresh serializes authoritative reads so an older read never overwrites a newer one.
	refresh sync.Mutex
	// publish keeps published events in write order.
	publish sync.Mutex

	mu      sync.RWMutex
	current cell

	// artGen is bumped by the event loop on metadata changes; it never waits on a download.
	artGen atomic.Uint64

	// artMu serializes AlbumArt callers.
	artMu     sync.Mutex
	art       mo.Option[Artwork]
	artFor    TrackIdentity
	artAt     uint64
	artLoaded bool
}

// NewEngine creates an engine. A nil injector disables the key fallback, a nil publisher disables publishing.
func NewEngine(source Source, injector Injector, publisher Publisher, opts ...Option) *Engine {
	e := &Engine{
		source:            source,
		injector:          injector,
		publisher:         publisher,
		now:               time.Now,
		pollInterval:      time.Second,
		republishInterval: 500 * time.Millisecond,
		seekTolerance:     1500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Start runs the event loop, the reconcile ticker and the republish ticker. It blocks until ctx is done.
func (e *Engine) Start(ctx context.Context) {
	e.Reconcile(ctx)

	poll := time.NewTicker(e.pollInterval)
	defer poll.Stop()

	republish := time.NewTicker(e.republishInterval)
	defer republish.Stop()

	events := e.source.Events()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			e.handle(ctx, ev)
		case <-poll.C:
			e.Reconcile(ctx)
		case <-republish.C:
			e.Republish()
		}
	}
}

func (e *Engine) handle(ctx context.Context, ev SourceEvent) {
	switch ev.Kind {
	case SessionChanged:
		e.refreshFacets(ctx, facetAll)
	case PropertiesChanged:
		e.markArtStale()
		e.refreshFacets(ctx, facetProperties|facetTimeline)
	case PlaybackChanged:
		e.refreshFacets(ctx, facetPlayback|facetTimeline)
	}
}

// State returns the interpolated snapshot, or None when there is no session.
func (e *Engine) State() mo.Option[State] {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.current.present {
		return mo.None[State]()
	}
	return mo.Some(e.current.at(e.now()))
}

// Reconcile re-reads the whole session and publishes the result when it changed.
func (e *Engine) Reconcile(ctx context.Context) {
	e.refreshFacets(ctx, facetAll)
}

// Republish pushes the interpolated position while playing.
func (e *Engine) Republish() {
	e.publish.Lock()
	defer e.publish.Unlock()

	st := e.State()
	if st.IsAbsent() || st.MustGet().Status != Playing {
		return
	}
	e.emit(constant.EventState, st.MustGet())
}

func (e *Engine) refreshFacets(ctx context.Context, facets facet) {
	e.refresh.Lock()
	defer e.refresh.Unlock()

	r, present, err := e.read(ctx, facets)
	if err != nil {
		log.WithFields(log.Fields{"module": "media", "action": "reconcile"}).WithError(err).Debug("session read failed")
		return
	}

	e.publish.Lock()
	defer e.publish.Unlock()

	now := e.now()

	e.mu.Lock()
	prev := e.current
	var next cell
	if present {
		next = cell{present: true, meta: r.state(), baseline: rebase(prev, r, now)}
	}
	e.current = next
	e.mu.Unlock()

	switch {
	case !next.present && prev.present:
		e.emit(constant.EventState, State{Status: Unknown})
	case next.present && e.changed(prev, next, now):
		st := next.at(now)
		e.emit(constant.EventState, st)
		e.emit(constant.EventTrack, st)
	}
}

// read queries the requested facets and fills the others from the current snapshot.
func (e *Engine) read(ctx context.Context, facets facet) (reading, bool, error) {
	session, ok, err := e.source.Session(ctx)
	if err != nil {
		return reading{}, false, err
	}
	if !ok {
		return reading{}, false, nil
	}

	e.mu.RLock()
	prev := e.current
	e.mu.RUnlock()

	if !prev.present || prev.meta.App != session.App() {
		facets = facetAll
	}

	r := reading{
		app:      session.App(),
		status:   prev.meta.Status,
		timeline: Timeline{PositionMs: prev.baseline.PositionMs, DurationMs: prev.meta.DurationMs},
		properties: Properties{
			Title:  prev.meta.Title,
			Artist: prev.meta.Artist,
			Album:  prev.meta.Album,
		},
	}

	if facets&facetPlayback != 0 {
		if r.status, err = session.Playback(ctx); err != nil {
			return reading{}, false, fmt.Errorf("playback: %w", err)
		}
	}

	if facets&facetProperties != 0 {
		if r.properties, err = session.Properties(ctx); err != nil {
			return reading{}, false, fmt.Errorf("properties: %w", err)
		}
	}

	if facets&facetTimeline != 0 {
		if r.timeline, err = session.Timeline(ctx); err != nil {
			return reading{}, false, fmt.Errorf("timeline: %w", err)
		}
	} else {
		// Without a fresh timeline, carry the running estimate instead of the stale base.
		r.timeline.PositionMs = prev.baseline.Estimate(e.now())
	}

	if r.status == "" {
		r.status = Unknown
	}

	return r, true, nil
}

// changed reports whether next differs materially from prev: another track, status or
// duration, or a position correction larger than the seek tolerance.
func (e *Engine) changed(prev, next cell, now time.Time) bool {
	if !prev.present {
		return true
	}
	if prev.meta != next.meta {
		return true
	}

	drift := prev.baseline.Estimate(now) - next.baseline.Estimate(now)
	if drift < 0 {
		drift = -drift
	}
	return drift > e.seekTolerance.Milliseconds()
}

func (e *Engine) emit(event string, st State) {
	if e.publisher == nil {
		return
	}
	e.publisher.Publish(event, st)
}

// Play starts playback.
func (e *Engine) Play(ctx context.Context) { e.command(ctx, Play) }

// Pause pauses playback.
func (e *Engine) Pause(ctx context.Context) { e.command(ctx, Pause) }

// Toggle flips between playing and paused.
func (e *Engine) Toggle(ctx context.Context) { e.command(ctx, Toggle) }

// Next skips to the next track.
func (e *Engine) Next(ctx context.Context) { e.command(ctx, Next) }

// Previous skips to the previous track.
func (e *Engine) Previous(ctx context.Context) { e.command(ctx, Previous) }

// Stop stops playback.
func (e *Engine) Stop(ctx context.Context) { e.command(ctx, Stop) }

// command is best effort: the session command first, then a simulated media key.
// Failures are logged and the session is re-read afterwards.
func (e *Engine) command(ctx context.Context, cmd Command) {
	logger := log.WithFields(log.Fields{"module": "media", "action": cmd.String()})

	if err := e.viaSession(ctx, cmd); err != nil {
		logger.WithError(err).Debug("session command failed, falling back to media key")

		if e.injector != nil {
			if err := e.injector.Press(ctx, cmd); err != nil {
				logger.WithError(err).Warn("media key injection failed")
			}
		}
	}

	e.Reconcile(ctx)
}

func (e *Engine) viaSession(ctx context.Context, cmd Command) error {
	session, ok, err := e.source.Session(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSession
	}
	return session.Command(ctx, cmd)
}

func (e *Engine) markArtStale() {
	e.artGen.Add(1)
}

// AlbumArt returns the artwork of the current track. Art is loaded lazily once per track and
// replaced only when new art is found, so a track without art keeps showing the previous image.
func (e *Engine) AlbumArt(ctx context.Context) (Artwork, bool) {
	e.artMu.Lock()
	defer e.artMu.Unlock()

	st := e.State()
	if st.IsAbsent() {
		return e.art.OrEmpty(), e.art.IsPresent()
	}

	identity := st.MustGet().Identity()
	gen := e.artGen.Load()
	if e.artLoaded && e.artAt == gen && e.artFor == identity {
		return e.art.OrEmpty(), e.art.IsPresent()
	}

	art, found, err := e.loadArt(ctx)
	if err != nil && !errors.Is(err, ErrNoSession) {
		log.WithFields(log.Fields{"module": "media", "action": "albumart"}).WithError(err).Debug("artwork load failed")
	}
	if err == nil {
		// A change during the load leaves artAt behind artGen, so the next call reloads.
		e.artFor = identity
		e.artAt = gen
		e.artLoaded = true
	}
	if found {
		e.art = mo.Some(art)
	}

	return e.art.OrEmpty(), e.art.IsPresent()
}

func (e *Engine) loadArt(ctx context.Context) (Artwork, bool, error) {
	session, ok, err := e.source.Session(ctx)
	if err != nil {
		return Artwork{}, false, err
	}
	if !ok {
		return Artwork{}, false, ErrNoSession
	}

	art, found, err := session.Artwork(ctx)
	if err != nil {
		return Artwork{}, false, err
	}
	if !found || len(art.Data) == 0 {
		return Artwork{}, false, nil
	}
	if art.ContentType == "" {
		art.ContentType = "image/jpeg"
	}
	return art, true, nil
}
