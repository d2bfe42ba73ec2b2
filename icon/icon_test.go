package icon

import (
	"testing"

	"github.com/Ducheved/sharpmote/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given a registered icon", t, func() {
		target := Playing

		Convey("It renders correctly for each variant", func() {
			for _, variant := range AvailableVariants() {
				Convey("variant="+variant, func() {
					viper.Set(key.IconsVariant, variant)
					result := Get(target)
					So(result, ShouldNotBeEmpty)
				})
			}
		})

		Convey("It returns empty for an unknown variant", func() {
			viper.Set(key.IconsVariant, "")
			result := Get(target)
			So(result, ShouldBeEmpty)
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Every icon renders in every variant", t, func() {
		for i := range icons {
			for _, variant := range AvailableVariants() {
				viper.Set(key.IconsVariant, variant)
				So(Get(i), ShouldNotBeEmpty)
			}
		}
	})

	Convey("ForPlayback maps statuses", t, func() {
		So(ForPlayback("playing"), ShouldEqual, Playing)
		So(ForPlayback("Paused"), ShouldEqual, Paused)
		So(ForPlayback("unknown"), ShouldEqual, Stopped)
	})
}
