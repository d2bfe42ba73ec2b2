package cmd

import (
	"testing"
	"time"

	"github.com/Ducheved/sharpmote/config"
	"github.com/Ducheved/sharpmote/key"
	"github.com/Ducheved/sharpmote/projection"
	"github.com/Ducheved/sharpmote/where"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseValue(t *testing.T) {
	Convey("Values are parsed into the type of the default", t, func() {
		v, err := parseValue(config.Default[key.HTTPPort], []string{"9090"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 9090)

		v, err = parseValue(config.Default[key.VolumeStep], []string{"0.1"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 0.1)

		v, err = parseValue(config.Default[key.DiscoveryMDNS], []string{"true"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, true)

		v, err = parseValue(config.Default[key.HTTPSSELifetime], []string{"90s"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, "1m30s")

		v, err = parseValue(config.Default[key.TelegramAllowedIDs], []string{"1", "2"})
		So(err, ShouldBeNil)
		So(v, ShouldResemble, []string{"1", "2"})
	})

	Convey("Malformed values are rejected", t, func() {
		_, err := parseValue(config.Default[key.HTTPPort], []string{"http"})
		So(err, ShouldNotBeNil)

		_, err = parseValue(config.Default[key.HTTPSSELifetime], []string{"forever"})
		So(err, ShouldNotBeNil)
	})
}

func TestEnvVars(t *testing.T) {
	Convey("Every config key has a canonical variable", t, func() {
		vars := envVars()
		So(vars, ShouldHaveLength, len(config.Default)+1)
		So(vars[0].name <= vars[len(vars)-1].name, ShouldBeTrue)
	})

	Convey("Values supplied through an alias are attributed to it", t, func() {
		t.Setenv("SHARPMOTE_TELEGRAM_BOT_TOKEN", "legacy")

		for _, v := range envVars() {
			if v.name == config.Default[key.TelegramToken].Env() {
				So(v.value, ShouldEqual, "legacy")
				So(v.via, ShouldEqual, "SHARPMOTE_TELEGRAM_BOT_TOKEN")
			}
		}
	})

	Convey("The config path override is listed", t, func() {
		names := make([]string, 0)
		for _, v := range envVars() {
			names = append(names, v.name)
		}
		So(names, ShouldContain, where.EnvConfigPath)
	})
}

func TestFormatState(t *testing.T) {
	Convey("Given a playing state", t, func() {
		level, muted := 0.42, false
		st := projection.State{
			Playback:   "Playing",
			Title:      "Song",
			Artist:     "Band",
			PositionMs: 61000,
			DurationMs: 185000,
			Volume:     &level,
			Mute:       &muted,
		}

		Convey("it shows the title, artist, timeline and volume", func() {
			out := formatState(st)
			So(out, ShouldContainSubstring, "Song")
			So(out, ShouldContainSubstring, "Band")
			So(out, ShouldContainSubstring, "1:01 / 3:05")
			So(out, ShouldContainSubstring, "42%")
		})

		Convey("a muted device says so", func() {
			muted = true
			So(formatState(st), ShouldContainSubstring, "muted")
		})

		Convey("an untitled state shows a dash", func() {
			st.Title = ""
			So(formatState(st), ShouldContainSubstring, "-")
		})
	})

	Convey("clock formats minutes and seconds", t, func() {
		So(clock((2*time.Minute + 5*time.Second).Milliseconds()), ShouldEqual, "2:05")
		So(clock(0), ShouldEqual, "0:00")
	})
}
