package media

import (
	"context"
	"testing"
	"time"

	"github.com/Ducheved/sharpmote/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEngineState(t *testing.T) {
	Convey("Given an engine over a fake source", t, func() {
		ctx := context.Background()
		clock := newFakeClock()
		src := newFakeSource()
		inj := &fakeInjector{}
		rec := &recorder{}
		engine := NewEngine(src, inj, rec, WithClock(clock.Now))

		Convey("Without a session there is no state and nothing is published", func() {
			engine.Reconcile(ctx)
			So(engine.State().IsAbsent(), ShouldBeTrue)
			So(rec.Events(), ShouldBeEmpty)
		})

		Convey("Starting playback of a 200000ms track", func() {
			src.set(func(s *fakeSource) {
				s.active = true
				s.status = Playing
				s.props = Properties{Title: "Song", Artist: "Band", Album: "Record"}
				s.timeline = Timeline{PositionMs: 0, DurationMs: 200_000}
			})
			engine.Reconcile(ctx)

			Convey("publishes state then track at position 0", func() {
				events := rec.Events()
				So(len(events), ShouldEqual, 2)
				So(events[0].event, ShouldEqual, constant.EventState)
				So(events[1].event, ShouldEqual, constant.EventTrack)
				So(events[0].state.Status, ShouldEqual, Playing)
				So(events[0].state.PositionMs, ShouldEqual, 0)
				So(events[0].state.DurationMs, ShouldEqual, 200_000)
			})

			Convey("advances the position by wall time", func() {
				clock.Advance(2 * time.Second)
				So(engine.State().MustGet().PositionMs, ShouldEqual, 2000)
			})

			Convey("a reconcile with an unchanged zero position publishes nothing new", func() {
				rec.Reset()
				clock.Advance(time.Second)
				engine.Reconcile(ctx)
				So(rec.Events(), ShouldBeEmpty)
				So(engine.State().MustGet().PositionMs, ShouldEqual, 1000)
			})

			Convey("pausing freezes the position", func() {
				clock.Advance(2 * time.Second)
				engine.Pause(ctx)
				So(src.commands, ShouldResemble, []Command{Pause})

				frozen := engine.State().MustGet()
				So(frozen.Status, ShouldEqual, Paused)
				So(frozen.PositionMs, ShouldEqual, 2000)

				clock.Advance(5 * time.Second)
				So(engine.State().MustGet().PositionMs, ShouldEqual, 2000)
			})

			Convey("a seek is published as a change", func() {
				rec.Reset()
				src.set(func(s *fakeSource) { s.timeline.PositionMs = 120_000 })
				engine.Reconcile(ctx)
				So(len(rec.Events()), ShouldEqual, 2)
				So(engine.State().MustGet().PositionMs, ShouldEqual, 120_000)
			})

			Convey("a track change resets the position", func() {
				clock.Advance(30 * time.Second)
				src.set(func(s *fakeSource) {
					s.props = Properties{Title: "Next Song", Artist: "Band", Album: "Record"}
					s.timeline = Timeline{DurationMs: 180_000}
				})
				engine.Reconcile(ctx)
				st := engine.State().MustGet()
				So(st.Title, ShouldEqual, "Next Song")
				So(st.PositionMs, ShouldEqual, 0)
			})

			Convey("losing the session clears the state and publishes an unknown state", func() {
				rec.Reset()
				src.set(func(s *fakeSource) { s.active = false })
				engine.Reconcile(ctx)
				So(engine.State().IsAbsent(), ShouldBeTrue)
				events := rec.Events()
				So(len(events), ShouldEqual, 1)
				So(events[0].state.Status, ShouldEqual, Unknown)
			})

			Convey("Republish pushes the interpolated state while playing", func() {
				rec.Reset()
				clock.Advance(1500 * time.Millisecond)
				engine.Republish()
				events := rec.Events()
				So(len(events), ShouldEqual, 1)
				So(events[0].event, ShouldEqual, constant.EventState)
				So(events[0].state.PositionMs, ShouldEqual, 1500)
			})

			Convey("Republish is silent while paused", func() {
				engine.Pause(ctx)
				rec.Reset()
				engine.Republish()
				So(rec.Events(), ShouldBeEmpty)
			})
		})
	})
}

func TestEngineCommands(t *testing.T) {
	Convey("Given an engine and an injector", t, func() {
		ctx := context.Background()
		src := newFakeSource()
		inj := &fakeInjector{}
		engine := NewEngine(src, inj, nil)

		Convey("Without a session every command falls back to a media key", func() {
			engine.Play(ctx)
			engine.Pause(ctx)
			engine.Toggle(ctx)
			engine.Next(ctx)
			engine.Previous(ctx)
			engine.Stop(ctx)
			So(inj.Pressed(), ShouldResemble, []Command{Play, Pause, Toggle, Next, Previous, Stop})
		})

		Convey("A successful session command does not inject", func() {
			src.set(func(s *fakeSource) { s.active = true })
			engine.Next(ctx)
			So(src.commands, ShouldResemble, []Command{Next})
			So(inj.Pressed(), ShouldBeEmpty)
		})

		Convey("A rejected session command injects", func() {
			src.set(func(s *fakeSource) {
				s.active = true
				s.commandErr = errRejected
			})
			engine.Toggle(ctx)
			So(inj.Pressed(), ShouldResemble, []Command{Toggle})
		})

		Convey("An injector failure is swallowed", func() {
			inj.err = errRejected
			So(func() { engine.Stop(ctx) }, ShouldNotPanic)
		})

		Convey("A nil injector is tolerated", func() {
			engine := NewEngine(src, nil, nil)
			So(func() { engine.Play(ctx) }, ShouldNotPanic)
		})
	})
}

func TestEngineEvents(t *testing.T) {
	Convey("Given a started engine", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		src := newFakeSource()
		src.set(func(s *fakeSource) {
			s.active = true
			s.status = Paused
			s.props = Properties{Title: "Song"}
			s.timeline = Timeline{PositionMs: 10_000, DurationMs: 100_000}
		})
		engine := NewEngine(src, nil, nil, WithPollInterval(time.Hour), WithRepublishInterval(time.Hour))

		done := make(chan struct{})
		go func() {
			engine.Start(ctx)
			close(done)
		}()

		So(waitFor(func() bool { return engine.State().IsPresent() }), ShouldBeTrue)

		Convey("A playback event re-reads playback and timeline only", func() {
			before := src.count("properties")
			src.set(func(s *fakeSource) { s.status = Playing })
			src.events <- SourceEvent{Kind: PlaybackChanged}

			So(waitFor(func() bool { return engine.State().MustGet().Status == Playing }), ShouldBeTrue)
			So(src.count("properties"), ShouldEqual, before)
		})

		Convey("A properties event picks up new metadata", func() {
			src.set(func(s *fakeSource) { s.props = Properties{Title: "Other"} })
			src.events <- SourceEvent{Kind: PropertiesChanged}

			So(waitFor(func() bool { return engine.State().MustGet().Title == "Other" }), ShouldBeTrue)
		})

		Convey("A slow artwork load does not hold up metadata events", func() {
			gate := make(chan struct{})
			src.set(func(s *fakeSource) {
				s.art = &Artwork{Data: []byte{1}, ContentType: "image/png"}
				s.artGate = gate
			})

			loaded := make(chan bool, 1)
			go func() {
				_, ok := engine.AlbumArt(ctx)
				loaded <- ok
			}()
			So(waitFor(func() bool { return src.count("artwork") == 1 }), ShouldBeTrue)

			src.set(func(s *fakeSource) { s.props = Properties{Title: "Next"} })
			src.events <- SourceEvent{Kind: PropertiesChanged}
			So(waitFor(func() bool { return engine.State().MustGet().Title == "Next" }), ShouldBeTrue)

			close(gate)
			So(<-loaded, ShouldBeTrue)

			Convey("and the art loaded for the previous track is fetched again", func() {
				src.set(func(s *fakeSource) { s.artGate = nil })
				_, ok := engine.AlbumArt(ctx)
				So(ok, ShouldBeTrue)
				So(src.count("artwork"), ShouldEqual, 2)
			})
		})

		Reset(func() {
			cancel()
			<-done
		})
	})
}

func TestAlbumArt(t *testing.T) {
	Convey("Given a playing session", t, func() {
		ctx := context.Background()
		src := newFakeSource()
		src.set(func(s *fakeSource) {
			s.active = true
			s.status = Playing
			s.props = Properties{Title: "Song"}
			s.art = &Artwork{Data: []byte{0xff, 0xd8}, ContentType: "image/jpeg"}
		})
		engine := NewEngine(src, nil, nil)
		engine.Reconcile(ctx)

		Convey("Art is loaded once per track", func() {
			art, ok := engine.AlbumArt(ctx)
			So(ok, ShouldBeTrue)
			So(art.ContentType, ShouldEqual, "image/jpeg")

			_, _ = engine.AlbumArt(ctx)
			So(src.count("artwork"), ShouldEqual, 1)
		})

		Convey("A following track without art keeps the previous image", func() {
			_, _ = engine.AlbumArt(ctx)
			src.set(func(s *fakeSource) {
				s.props = Properties{Title: "Artless"}
				s.art = nil
			})
			engine.Reconcile(ctx)

			art, ok := engine.AlbumArt(ctx)
			So(ok, ShouldBeTrue)
			So(art.Data, ShouldResemble, []byte{0xff, 0xd8})
			So(src.count("artwork"), ShouldEqual, 2)
		})

		Convey("A session without art reports no content", func() {
			src.set(func(s *fakeSource) { s.art = nil })
			_, ok := engine.AlbumArt(ctx)
			So(ok, ShouldBeFalse)
		})

		Convey("A missing content type defaults to jpeg", func() {
			src.set(func(s *fakeSource) { s.art = &Artwork{Data: []byte{1}} })
			art, ok := engine.AlbumArt(ctx)
			So(ok, ShouldBeTrue)
			So(art.ContentType, ShouldEqual, "image/jpeg")
		})
	})
}

func TestCommandString(t *testing.T) {
	Convey("Commands have stable names", t, func() {
		So(Play.String(), ShouldEqual, "play")
		So(Previous.String(), ShouldEqual, "previous")
		So(Command(42).String(), ShouldEqual, "unknown")
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
