package filesystem

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			fs := API()
			So(fs, ShouldNotBeNil)
			So(fs.Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			fs := API()
			So(fs, ShouldNotBeNil)
			So(fs.Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestReadOptional(t *testing.T) {
	Convey("Given an in-memory filesystem", t, func() {
		SetMemMapFs()

		Convey("A missing file is not an error", func() {
			data, ok, err := ReadOptional("/nope/sharpmote.conf")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(data, ShouldBeNil)
		})

		Convey("An existing file is returned whole", func() {
			So(API().WriteFile("/etc/sharpmote.conf", []byte("A=1\n"), 0o644), ShouldBeNil)
			data, ok, err := ReadOptional("/etc/sharpmote.conf")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(string(data), ShouldEqual, "A=1\n")
		})
	})
}

func TestGacheFs(t *testing.T) {
	Convey("GacheFs writes through the active backend", t, func() {
		SetMemMapFs()
		var g GacheFs
		So(g.MkdirAll("/state", 0o755), ShouldBeNil)
		f, err := g.OpenFile("/state/x.json", os.O_RDWR|os.O_CREATE, 0o644)
		So(err, ShouldBeNil)
		_, _ = f.Write([]byte("{}"))
		So(f.Close(), ShouldBeNil)
		exists, _ := API().Exists("/state/x.json")
		So(exists, ShouldBeTrue)
	})
}
