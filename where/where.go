// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/Ducheved/sharpmote/constant"
	"github.com/Ducheved/sharpmote/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "SHARPMOTE_CONFIG_PATH"

// ensureDir guarantees the existence of a directory at the specified path, creating it if necessary.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// It prioritizes the XDG_CONFIG_HOME specification on Linux and equivalent user profile paths on Darwin and Windows.
// The path can be overridden via the SHARPMOTE_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Sharpmote))
}

// Cache resolves the absolute path to the application's persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Sharpmote))
}

// Logs resolves the absolute path to the directory used for application diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// State resolves the directory holding connector state that must survive restarts.
func State() string {
	return ensureDir(filepath.Join(Config(), "state"))
}

// Telegram resolves the path to the persisted chat-bot offsets and message registry.
func Telegram() string {
	return filepath.Join(State(), "telegram.json")
}

// History resolves the path to the recently played tracks.
func History() string {
	return filepath.Join(State(), "history.json")
}

// ConfFile resolves the path to the flat KEY=VALUE bootstrap file read before the main config.
func ConfFile() string {
	return filepath.Join(Config(), constant.Sharpmote+".conf")
}
