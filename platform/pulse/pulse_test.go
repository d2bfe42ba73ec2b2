package pulse

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Ducheved/sharpmote/volume"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeWpctl emulates wpctl with mutable state.
type fakeWpctl struct {
	mu    sync.Mutex
	level string
	muted bool
	calls []string
}

func (f *fakeWpctl) run(_ context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	if name != "wpctl" {
		return "", errors.New("not installed")
	}

	switch args[0] {
	case "get-volume":
		out := "Volume: " + f.level
		if f.muted {
			out += " [MUTED]"
		}
		return out, nil
	case "set-volume":
		f.level = args[2]
	case "set-mute":
		f.muted = args[2] == "1"
	}
	return "", nil
}

func (f *fakeWpctl) set(level string, muted bool) {
	f.mu.Lock()
	f.level, f.muted = level, muted
	f.mu.Unlock()
}

func TestParse(t *testing.T) {
	Convey("wpctl output", t, func() {
		v, muted, err := parseWPCTLVolume("Volume: 0.38 [MUTED]")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 0.38)
		So(muted, ShouldBeTrue)

		_, _, err = parseWPCTLVolume("garbage")
		So(err, ShouldNotBeNil)
	})

	Convey("pactl output", t, func() {
		v, err := parsePACTLVolume("Volume: front-left: 42598 /  65% / -11.23 dB,   front-right: 42598 /  65% / -11.23 dB")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 0.65)

		_, err = parsePACTLVolume("Volume: n/a")
		So(err, ShouldNotBeNil)
	})
}

func TestDevice(t *testing.T) {
	Convey("Given a wpctl backend", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		fake := &fakeWpctl{level: "0.50"}
		d, err := open(ctx, fake.run, 10*time.Millisecond)
		So(err, ShouldBeNil)
		So(d.Backend(), ShouldEqual, "wpctl")

		Convey("levels round-trip", func() {
			So(d.SetLevel(ctx, 0.25), ShouldBeNil)
			level, err := d.Level(ctx)
			So(err, ShouldBeNil)
			So(level, ShouldEqual, 0.25)
		})

		Convey("levels above unity read as 1", func() {
			fake.set("1.04", false)
			level, _ := d.Level(ctx)
			So(level, ShouldEqual, 1.0)
		})

		Convey("mute round-trips", func() {
			So(d.SetMuted(ctx, true), ShouldBeNil)
			muted, err := d.Muted(ctx)
			So(err, ShouldBeNil)
			So(muted, ShouldBeTrue)
		})

		Convey("external changes are reported", func() {
			fake.set("0.70", true)
			select {
			case n := <-d.Changes():
				So(n, ShouldResemble, volume.Notification{Level: 0.70, Muted: true})
			case <-time.After(2 * time.Second):
				t.Fatal("no notification")
			}
		})
	})

	Convey("Without any backend there is no device", t, func() {
		run := func(context.Context, string, ...string) (string, error) { return "", errors.New("missing") }
		_, err := open(context.Background(), run, time.Second)
		So(errors.Is(err, volume.ErrNoDevice), ShouldBeTrue)
	})
}
