package history

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ducheved/sharpmote/constant"
	"github.com/Ducheved/sharpmote/filesystem"
	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/media"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
	log.SetOutput(io.Discard)
}

type sink struct{ events []string }

func (s *sink) Publish(event string, _ media.State) { s.events = append(s.events, event) }

func track(title string) media.State {
	return media.State{Status: media.Playing, App: "spotify", Title: title, Artist: "Artist"}
}

func TestHistory(t *testing.T) {
	Convey("Given an empty log", t, func() {
		path := filepath.Join(t.TempDir(), "history.json")
		l := Open(path, 2)
		l.now = func() time.Time { return time.Unix(1700000000, 0) }

		Convey("tracks are recorded newest first", func() {
			So(l.Record(track("one")), ShouldBeTrue)
			So(l.Record(track("two")), ShouldBeTrue)

			entries := l.Get()
			So(entries, ShouldHaveLength, 2)
			So(entries[0].Title, ShouldEqual, "two")
			So(entries[0].String(), ShouldEqual, "Artist - two")
			So(entries[1].PlayedAt.Unix(), ShouldEqual, 1700000000)
		})

		Convey("the newest entry is not repeated", func() {
			l.Record(track("one"))
			So(l.Record(track("one")), ShouldBeFalse)
			So(l.Get(), ShouldHaveLength, 1)
		})

		Convey("untitled states are skipped", func() {
			So(l.Record(media.State{Status: media.Playing}), ShouldBeFalse)
			So(l.Get(), ShouldBeEmpty)
		})

		Convey("the log is bounded", func() {
			l.Record(track("one"))
			l.Record(track("two"))
			l.Record(track("three"))
			entries := l.Get()
			So(entries, ShouldHaveLength, 2)
			So(entries[1].Title, ShouldEqual, "two")
		})

		Convey("entries survive a reopen", func() {
			l.Record(track("one"))
			So(Open(path, 2).Get()[0].Title, ShouldEqual, "one")
		})

		Convey("clear empties the log", func() {
			l.Record(track("one"))
			So(l.Clear(), ShouldBeNil)
			So(l.Get(), ShouldBeEmpty)
			So(Open(path, 2).Get(), ShouldBeEmpty)
		})

		Convey("tee records track events and forwards everything", func() {
			next := &sink{}
			pub := l.Tee(next)
			pub.Publish(constant.EventState, track("ignored"))
			pub.Publish(constant.EventTrack, track("kept"))

			So(next.events, ShouldResemble, []string{constant.EventState, constant.EventTrack})
			So(l.Get(), ShouldHaveLength, 1)
			So(l.Get()[0].Title, ShouldEqual, "kept")
		})
	})
}
