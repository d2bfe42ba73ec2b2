package projection

import (
	"time"

	"github.com/Ducheved/sharpmote/constant"
	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/media"
	"github.com/Ducheved/sharpmote/volume"
)

// Broadcaster is the fan-out the publishers write to.
type Broadcaster interface {
	Broadcast(event string, payload any) error
}

// Publisher adapts engine snapshots to broadcast payloads. It implements both
// media.Publisher and volume.Publisher through its two views.
type Publisher struct {
	out Broadcaster
	now func() time.Time
}

// NewPublisher publishes to out, stamping payloads with the wall clock.
func NewPublisher(out Broadcaster) *Publisher {
	return &Publisher{out: out, now: time.Now}
}

// Media returns the media.Publisher view.
func (p *Publisher) Media() media.Publisher {
	return mediaPublisher{p}
}

// Volume returns the volume.Publisher view.
func (p *Publisher) Volume() volume.Publisher {
	return volumePublisher{p}
}

func (p *Publisher) send(event string, payload any) {
	if err := p.out.Broadcast(event, payload); err != nil {
		log.WithFields(log.Fields{"module": "projection", "event": event}).WithError(err).Error("broadcast payload could not be encoded")
	}
}

type mediaPublisher struct{ *Publisher }

func (m mediaPublisher) Publish(event string, st media.State) {
	ts := m.now()
	switch event {
	case constant.EventTrack:
		m.send(event, NewTrack(st, ts))
	default:
		m.send(event, NewState(st, ts))
	}
}

type volumePublisher struct{ *Publisher }

func (v volumePublisher) Publish(st volume.State) {
	v.send(constant.EventVolume, NewVolume(st, v.now()))
}
