package log

import (
	"bytes"
	"testing"

	"github.com/Ducheved/sharpmote/filesystem"
	"github.com/Ducheved/sharpmote/key"
	logrus "github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given logging configuration", t, func() {
		viper.Set(key.LogsWrite, false)
		viper.Set(key.LogsJson, false)

		Convey("An unknown level falls back to info", func() {
			viper.Set(key.LogsLevel, "chatty")
			So(Setup(), ShouldBeNil)
			So(logrus.GetLevel(), ShouldEqual, logrus.InfoLevel)
		})

		Convey("A valid level is applied", func() {
			viper.Set(key.LogsLevel, "debug")
			So(Setup(), ShouldBeNil)
			So(logrus.GetLevel(), ShouldEqual, logrus.DebugLevel)
		})

		Convey("ApplyLevel picks up a reloaded level", func() {
			viper.Set(key.LogsLevel, "warn")
			ApplyLevel()
			So(logrus.GetLevel(), ShouldEqual, logrus.WarnLevel)
		})

		Convey("JSON output carries structured fields", func() {
			viper.Set(key.LogsJson, true)
			viper.Set(key.LogsLevel, "info")
			So(Setup(), ShouldBeNil)

			var buf bytes.Buffer
			SetOutput(&buf)
			WithFields(Fields{"route": "/healthz"}).Info("served")
			So(buf.String(), ShouldContainSubstring, `"route":"/healthz"`)
			So(buf.String(), ShouldContainSubstring, `"msg":"served"`)
		})

		Convey("File logging succeeds on a virtual filesystem", func() {
			viper.Set(key.LogsWrite, true)
			So(Setup(), ShouldBeNil)
		})

		Reset(func() {
			viper.Set(key.LogsWrite, false)
			viper.Set(key.LogsJson, false)
			viper.Set(key.LogsLevel, "info")
		})
	})
}
