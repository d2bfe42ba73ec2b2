package auth

import (
	"testing"

	"github.com/Ducheved/sharpmote/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

func init() {
	keyring.MockInit()
}

func TestAPIKey(t *testing.T) {
	Convey("Given a mocked keyring", t, func() {
		viper.Set(key.APIKey, "")
		viper.Set(key.APIKeyUseKeyring, true)
		_ = DeleteAPIKey()

		Convey("No key anywhere means unconfigured", func() {
			So(APIKey(), ShouldBeEmpty)
			_, err := GetAPIKey()
			So(IsNotFound(err), ShouldBeTrue)
		})

		Convey("The keyring is consulted when config is empty", func() {
			So(SetAPIKey("stored"), ShouldBeNil)
			So(APIKey(), ShouldEqual, "stored")

			Convey("unless keyring lookup is disabled", func() {
				viper.Set(key.APIKeyUseKeyring, false)
				So(APIKey(), ShouldBeEmpty)
			})
		})

		Convey("Config takes precedence over the keyring", func() {
			So(SetAPIKey("stored"), ShouldBeNil)
			viper.Set(key.APIKey, "  configured ")
			So(APIKey(), ShouldEqual, "configured")
		})

		Reset(func() {
			viper.Set(key.APIKey, "")
			viper.Set(key.APIKeyUseKeyring, true)
		})
	})
}

func TestGenerateAPIKey(t *testing.T) {
	Convey("Generated keys are long, hex and unique", t, func() {
		a, b := GenerateAPIKey(), GenerateAPIKey()
		So(len(a), ShouldEqual, 64)
		So(a, ShouldNotEqual, b)
		So(a, ShouldNotContainSubstring, "-")
	})
}

func TestEqual(t *testing.T) {
	Convey("Equal", t, func() {
		So(Equal("abc", "abc"), ShouldBeTrue)
		So(Equal("abc", "abd"), ShouldBeFalse)
		So(Equal("abc", ""), ShouldBeFalse)
	})
}
