package platform

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/Ducheved/sharpmote/constant"
	"github.com/Ducheved/sharpmote/media"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInert(t *testing.T) {
	Convey("Inert adapters", t, func() {
		ctx := context.Background()

		Convey("NoSource never has a session", func() {
			_, ok, err := NoSource{}.Session(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(NoSource{}.Events(), ShouldBeNil)
		})

		Convey("NoInjector reports the platform as unsupported", func() {
			So(errors.Is(NoInjector{}.Press(ctx, media.Play), ErrUnsupported), ShouldBeTrue)
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Open always returns a usable source and injector", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		adapters := Open(ctx, time.Second)
		So(adapters.Source, ShouldNotBeNil)
		So(adapters.Injector, ShouldNotBeNil)

		if runtime.GOOS != constant.Linux {
			Convey("and falls back to inert adapters off Linux", func() {
				So(adapters.Source, ShouldHaveSameTypeAs, NoSource{})
				So(adapters.Injector, ShouldHaveSameTypeAs, NoInjector{})
				So(adapters.Device, ShouldBeNil)
			})
		}
	})
}
