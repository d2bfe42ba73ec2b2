// Package filesystem provides a virtualized abstraction layer for all filesystem operations.
//
// Every path the service touches (config, logs, connector state) goes through the afero backend
// returned by API, so tests can swap in an in-memory filesystem.
package filesystem

import (
	"errors"
	"io/fs"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active afero.Afero instance for filesystem interaction.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the filesystem backend to the native operating system implementation.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs initializes a volatile in-memory filesystem backend for unit testing.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// ReadOptional reads the whole file at path. A missing file yields (nil, false, nil).
func ReadOptional(path string) ([]byte, bool, error) {
	data, err := backend.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
