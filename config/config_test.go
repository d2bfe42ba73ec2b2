package config

import (
	"os"
	"testing"
	"time"

	"github.com/Ducheved/sharpmote/filesystem"
	"github.com/Ducheved/sharpmote/key"
	"github.com/Ducheved/sharpmote/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			So(Setup(), ShouldBeNil)
			for name := range Default {
				So(viper.IsSet(name), ShouldBeTrue)
			}
			So(viper.GetInt(key.HTTPPort), ShouldEqual, 8080)
			So(viper.GetDuration(key.MediaRepublishInterval), ShouldEqual, 500*time.Millisecond)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("telegram.allowed_ids"), ShouldEqual, "telegram_allowed_ids")
		})

		Convey("Legacy environment names are honoured", func() {
			t.Setenv("SHARPMOTE_YA_OAUTH_DEV_TOKEN", "legacy")
			So(Setup(), ShouldBeNil)
			So(viper.GetString(key.YandexDevToken), ShouldEqual, "legacy")
		})

		Convey("The canonical environment name wins over an alias", func() {
			t.Setenv("SHARPMOTE_TELEGRAM_BOT_TOKEN", "alias")
			t.Setenv("SHARPMOTE_TELEGRAM_TOKEN", "canonical")
			So(Setup(), ShouldBeNil)
			So(viper.GetString(key.TelegramToken), ShouldEqual, "canonical")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.APIKey]

		Convey("Env derives the prefixed variable name", func() {
			So(field.Env(), ShouldEqual, "SHARPMOTE_API_KEY")
		})

		Convey("typeName reports durations", func() {
			f := Default[key.HTTPSSELifetime]
			So(f.typeName(), ShouldEqual, "duration")
		})
	})
}

func TestParseConf(t *testing.T) {
	Convey("Given a KEY=VALUE document", t, func() {
		doc := "# comment\n; another\n\nSHARPMOTE_HTTP_PORT = 9090\nSHARPMOTE_API_KEY=\"quoted value\"\nbroken line\n=novalue\n"
		entries := ParseConf(doc)

		Convey("Comments, blanks and malformed lines are skipped", func() {
			So(len(entries), ShouldEqual, 2)
		})

		Convey("Whitespace and quotes are trimmed", func() {
			So(entries["SHARPMOTE_HTTP_PORT"], ShouldEqual, "9090")
			So(entries["SHARPMOTE_API_KEY"], ShouldEqual, "quoted value")
		})
	})
}

func TestLoadConfFile(t *testing.T) {
	Convey("Given a conf file next to the config", t, func() {
		t.Setenv(where.EnvConfigPath, "/conf-test")
		path := where.ConfFile()
		So(filesystem.API().WriteFile(path, []byte("SHARPMOTE_TEST_UNSET=from-file\nSHARPMOTE_TEST_SET=from-file\n"), 0o644), ShouldBeNil)
		t.Setenv("SHARPMOTE_TEST_SET", "from-env")

		So(LoadConfFile(path), ShouldBeNil)

		Convey("Unset variables are exported", func() {
			So(os.Getenv("SHARPMOTE_TEST_UNSET"), ShouldEqual, "from-file")
		})

		Convey("Existing variables are left alone", func() {
			So(os.Getenv("SHARPMOTE_TEST_SET"), ShouldEqual, "from-env")
		})

		Reset(func() {
			_ = os.Unsetenv("SHARPMOTE_TEST_UNSET")
		})
	})

	Convey("A missing conf file is not an error", t, func() {
		So(LoadConfFile("/does/not/exist.conf"), ShouldBeNil)
	})
}

func TestSecretFields(t *testing.T) {
	Convey("Given a secret field", t, func() {
		field := Default[key.TelegramToken]
		So(field.Secret, ShouldBeTrue)

		Convey("a set value is masked", func() {
			viper.Set(key.TelegramToken, "123:abc")
			So(field.Current(), ShouldEqual, "********")
			So(field.Pretty(), ShouldNotContainSubstring, "123:abc")
		})

		Convey("an empty value is shown as is", func() {
			viper.Set(key.TelegramToken, "")
			So(field.Current(), ShouldEqual, "")
		})

		Reset(func() {
			viper.Set(key.TelegramToken, nil)
		})
	})

	Convey("Plain fields are not masked", t, func() {
		field := Default[key.HTTPPort]
		So(field.Secret, ShouldBeFalse)
		So(field.Current(), ShouldEqual, viper.GetInt(key.HTTPPort))
	})
}
