// Package log provides a thread-safe, structured logging infrastructure with optional filesystem-based persistence.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Ducheved/sharpmote/filesystem"
	"github.com/Ducheved/sharpmote/key"
	"github.com/Ducheved/sharpmote/where"
	"github.com/samber/lo"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Fields is an alias for structured key/value pairs attached to a log entry.
type Fields = logrus.Fields

// Setup initializes the logging subsystem, including output sinks, formatting, and severity levels based on global configuration.
// Entries always reach stderr; when logs.write is enabled they are additionally appended to a dated file.
func Setup() error {
	var out io.Writer = os.Stderr

	if viper.GetBool(key.LogsWrite) {
		dir := where.Logs()
		if dir == "" {
			return errors.New("log directory path is empty")
		}

		filename := fmt.Sprintf("%s.log", time.Now().Format("2006-01-02"))
		path := filepath.Join(dir, filename)

		if exists := lo.Must(filesystem.API().Exists(path)); !exists {
			lo.Must(filesystem.API().Create(path))
		}

		f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
	}
	logrus.SetOutput(out)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	ApplyLevel()
	return nil
}

// ApplyLevel sets the severity from logs.level, falling back to info on unknown names.
func ApplyLevel() {
	parsed, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// SetOutput redirects log output, mostly for tests that want to observe or silence entries.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// WithFields returns an entry pre-populated with structured context.
func WithFields(fields Fields) *logrus.Entry {
	return logrus.WithFields(fields)
}

// WithField returns an entry carrying a single structured field.
func WithField(k string, v any) *logrus.Entry {
	return logrus.WithField(k, v)
}

// WithError returns an entry carrying the given error under the standard "error" field.
func WithError(err error) *logrus.Entry {
	return logrus.WithError(err)
}

// Severity-Specific Log Emissions - these functions proxy messages to the configured backend.

func Panic(args ...interface{}) {
	logrus.Panic(args...)
}
func Panicf(format string, args ...interface{}) {
	logrus.Panicf(format, args...)
}
func Fatal(args ...interface{}) {
	logrus.Fatal(args...)
}
func Fatalf(format string, args ...interface{}) {
	logrus.Fatalf(format, args...)
}
func Error(args ...interface{}) {
	logrus.Error(args...)
}
func Errorf(format string, args ...interface{}) {
	logrus.Errorf(format, args...)
}
func Warn(args ...interface{}) {
	logrus.Warn(args...)
}
func Warnf(format string, args ...interface{}) {
	logrus.Warnf(format, args...)
}
func Info(args ...interface{}) {
	logrus.Info(args...)
}
func Infof(format string, args ...interface{}) {
	logrus.Infof(format, args...)
}
func Debug(args ...interface{}) {
	logrus.Debug(args...)
}
func Debugf(format string, args ...interface{}) {
	logrus.Debugf(format, args...)
}
func Trace(args ...interface{}) {
	logrus.Trace(args...)
}
func Tracef(format string, args ...interface{}) {
	logrus.Tracef(format, args...)
}

// Writer returns a pipe that logs each written line at warning level, for libraries
// that only accept a *log.Logger.
func Writer() *io.PipeWriter {
	return logrus.StandardLogger().WriterLevel(logrus.WarnLevel)
}
