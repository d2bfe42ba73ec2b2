// Package mpris implements the media source over the MPRIS D-Bus interface on Linux desktops.
package mpris

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/media"
	"github.com/godbus/dbus/v5"
)

const playerInterface = "org.mpris.MediaPlayer2.Player"

// ArtLoader resolves an mpris:artUrl.
type ArtLoader interface {
	Load(ctx context.Context, url string) (media.Artwork, bool, error)
}

// Source tracks MPRIS players on the session bus.
type Source struct {
	conn   *dbus.Conn
	art    ArtLoader
	events chan media.SourceEvent

	mu   sync.Mutex
	last string
}

// Open connects to the session bus and starts listening for player signals until ctx is done.
func Open(ctx context.Context, art ArtLoader) (*Source, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}

	for _, match := range []string{propsMatch, seekedMatch, nameMatch} {
		if call := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.AddMatch", 0, match); call.Err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("add match: %w", call.Err)
		}
	}

	s := &Source{
		conn:   conn,
		art:    art,
		events: make(chan media.SourceEvent, 16),
	}

	signals := make(chan *dbus.Signal, 32)
	conn.Signal(signals)
	go s.listen(ctx, signals)

	return s, nil
}

func (s *Source) listen(ctx context.Context, signals chan *dbus.Signal) {
	defer close(s.events)

	for {
		select {
		case <-ctx.Done():
			s.conn.RemoveSignal(signals)
			_ = s.conn.Close()
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			ev, ok := classify(sig)
			if !ok {
				continue
			}
			// A full buffer means the engine is behind; its poll tick catches up.
			select {
			case s.events <- ev:
			default:
			}
		}
	}
}

// Events implements media.Source.
func (s *Source) Events() <-chan media.SourceEvent {
	return s.events
}

// Session implements media.Source.
func (s *Source) Session(ctx context.Context) (media.Session, bool, error) {
	names, err := listNames(ctx, s.conn)
	if err != nil {
		return nil, false, fmt.Errorf("list names: %w", err)
	}

	var players []candidate
	for _, name := range names {
		if !strings.HasPrefix(name, busPrefix) {
			continue
		}

		v, err := property(ctx, s.conn.Object(name, objectPath), "PlaybackStatus")
		if err != nil {
			log.WithFields(log.Fields{"module": "mpris", "player": name}).WithError(err).Debug("skipping player")
			continue
		}
		players = append(players, candidate{busName: name, status: parseStatus(asString(v))})
	}

	s.mu.Lock()
	chosen, ok := pick(players, s.last)
	if ok && chosen.status == media.Playing {
		s.last = chosen.busName
	}
	s.mu.Unlock()

	if !ok {
		return nil, false, nil
	}

	return &player{
		busName: chosen.busName,
		obj:     s.conn.Object(chosen.busName, objectPath),
		art:     s.art,
	}, true, nil
}

func listNames(ctx context.Context, conn *dbus.Conn) ([]string, error) {
	var names []string
	call := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0)
	if call.Err != nil {
		return nil, call.Err
	}
	if err := call.Store(&names); err != nil {
		return nil, err
	}
	return names, nil
}

func property(ctx context.Context, obj dbus.BusObject, name string) (dbus.Variant, error) {
	var v dbus.Variant
	call := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, playerInterface, name)
	if call.Err != nil {
		return v, call.Err
	}
	err := call.Store(&v)
	return v, err
}

// appName derives a stable application id from a bus name,
// e.g. org.mpris.MediaPlayer2.firefox.instance_1_84 becomes firefox.
func appName(busName string) string {
	name := strings.TrimPrefix(busName, busPrefix)
	if i := strings.Index(name, ".instance"); i > 0 {
		name = name[:i]
	}
	return name
}

type player struct {
	busName string
	obj     dbus.BusObject
	art     ArtLoader
}

func (p *player) App() string {
	return appName(p.busName)
}

func (p *player) Playback(ctx context.Context) (media.PlaybackStatus, error) {
	v, err := property(ctx, p.obj, "PlaybackStatus")
	if err != nil {
		return media.Unknown, err
	}
	return parseStatus(asString(v)), nil
}

func (p *player) metadata(ctx context.Context) (metadata, error) {
	v, err := property(ctx, p.obj, "Metadata")
	if err != nil {
		return metadata{}, err
	}
	return parseMetadata(v), nil
}

func (p *player) Timeline(ctx context.Context) (media.Timeline, error) {
	meta, err := p.metadata(ctx)
	if err != nil {
		return media.Timeline{}, err
	}

	tl := media.Timeline{DurationMs: meta.lengthMs, EndMs: meta.lengthMs}

	// Some players do not implement Position; treat it as unknown.
	if v, err := property(ctx, p.obj, "Position"); err == nil {
		tl.PositionMs = asInt64(v) / 1000
	}

	return tl, nil
}

func (p *player) Properties(ctx context.Context) (media.Properties, error) {
	meta, err := p.metadata(ctx)
	if err != nil {
		return media.Properties{}, err
	}
	return meta.properties, nil
}

func (p *player) Artwork(ctx context.Context) (media.Artwork, bool, error) {
	if p.art == nil {
		return media.Artwork{}, false, nil
	}

	meta, err := p.metadata(ctx)
	if err != nil {
		return media.Artwork{}, false, err
	}
	return p.art.Load(ctx, meta.artURL)
}

func (p *player) Command(ctx context.Context, cmd media.Command) error {
	method, ok := methods[cmd]
	if !ok {
		return fmt.Errorf("unsupported command %s", cmd)
	}
	return p.obj.CallWithContext(ctx, playerInterface+"."+method, 0).Err
}

var methods = map[media.Command]string{
	media.Play:     "Play",
	media.Pause:    "Pause",
	media.Toggle:   "PlayPause",
	media.Next:     "Next",
	media.Previous: "Previous",
	media.Stop:     "Stop",
}
