// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Sharpmote is the canonical application identifier used for filesystem paths and CLI branding.
	Sharpmote = "sharpmote"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// Repository is the source repository path on GitHub.
	Repository = "Ducheved/sharpmote"

	// UserAgent is the HTTP User-Agent sent to external services (Telegram Bot API, artwork hosts).
	UserAgent = Sharpmote + "/" + Version
)

// Build metadata, overridden with -ldflags at release time.
var (
	BuiltAt  = ""
	BuiltBy  = "unknown"
	Revision = "HEAD"
)
