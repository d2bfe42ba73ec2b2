// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"os"
	"strings"

	"github.com/Ducheved/sharpmote/constant"
	"github.com/Ducheved/sharpmote/filesystem"
	"github.com/Ducheved/sharpmote/where"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvKeyReplacer is a strings.Replacer used to normalize configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup initializes the global configuration state, including defaults, environment bindings, and localized file resolution.
// Precedence, highest first: process environment, sharpmote.conf entries, sharpmote.toml, defaults.
func Setup() error {
	if err := LoadConfFile(where.ConfFile()); err != nil {
		return err
	}

	viper.SetConfigName(constant.Sharpmote)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Sharpmote)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, name := range EnvExposed {
		field := Default[name]
		viper.MustBindEnv(append([]string{name, field.Env()}, field.Aliases...)...)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// LoadConfFile reads a flat KEY=VALUE file and exports every entry to the process environment
// unless the variable is already set. Blank lines and lines starting with '#' or ';' are skipped.
// A missing file is not an error.
func LoadConfFile(path string) error {
	data, ok, err := filesystem.ReadOptional(path)
	if err != nil || !ok {
		return err
	}

	for name, value := range ParseConf(string(data)) {
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, value); err != nil {
			return err
		}
	}

	return nil
}

// ParseConf parses KEY=VALUE lines. Values may be wrapped in single or double quotes.
func ParseConf(contents string) map[string]string {
	entries := make(map[string]string)

	for _, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		name, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') || (value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		entries[name] = value
	}

	return entries
}

// Watch enables live reload of sharpmote.toml. onChange runs after viper has re-read the file.
// Only keys read at call time (api.key, logs.level) observe the new values.
func Watch(onChange func(fsnotify.Event)) {
	if viper.ConfigFileUsed() == "" {
		return
	}

	viper.OnConfigChange(onChange)
	viper.WatchConfig()
}
