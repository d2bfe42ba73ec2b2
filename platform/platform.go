// Package platform selects the media source, audio endpoint and key injector for the host OS.
package platform

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/Ducheved/sharpmote/constant"
	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/media"
	"github.com/Ducheved/sharpmote/platform/artwork"
	"github.com/Ducheved/sharpmote/platform/keys"
	"github.com/Ducheved/sharpmote/platform/mpris"
	"github.com/Ducheved/sharpmote/platform/pulse"
	"github.com/Ducheved/sharpmote/volume"
)

// Adapters groups the host integrations. Device is nil when no audio endpoint was acquired.
type Adapters struct {
	Source   media.Source
	Device   volume.Device
	Injector media.Injector
}

// Open acquires the adapters for runtime.GOOS. Failures degrade to inert adapters instead of erroring,
// so the HTTP surface stays up on headless hosts.
func Open(ctx context.Context, volumePoll time.Duration) Adapters {
	adapters := Adapters{Source: NoSource{}, Injector: NoInjector{}}

	if runtime.GOOS != constant.Linux {
		log.WithFields(log.Fields{"module": "platform", "os": runtime.GOOS}).Warn("no media integration for this platform")
		return adapters
	}

	if src, err := mpris.Open(ctx, artwork.NewLoader()); err != nil {
		log.WithFields(log.Fields{"module": "platform", "adapter": "mpris"}).WithError(err).Warn("media source unavailable")
	} else {
		adapters.Source = src
	}

	if dev, err := pulse.Open(ctx, volumePoll); err != nil {
		log.WithFields(log.Fields{"module": "platform", "adapter": "pulse"}).WithError(err).Warn("audio endpoint unavailable")
	} else {
		adapters.Device = dev
	}

	adapters.Injector = keys.New()
	return adapters
}

// NoSource never has a session.
type NoSource struct{}

func (NoSource) Session(context.Context) (media.Session, bool, error) { return nil, false, nil }
func (NoSource) Events() <-chan media.SourceEvent                     { return nil }

// ErrUnsupported is returned by the inert injector.
var ErrUnsupported = errors.New("media keys are not supported on this platform")

// NoInjector rejects every key press.
type NoInjector struct{}

func (NoInjector) Press(context.Context, media.Command) error { return ErrUnsupported }
