// Package hub fans named events out to any number of subscribers, each with its own
// unbounded delivery queue so a slow consumer never blocks the producer or its peers.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ducheved/sharpmote/constant"
	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/projection"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	// ErrClosed is returned by Next once the subscriber was removed from the hub.
	ErrClosed = errors.New("subscriber closed")
	// ErrBacklog is returned by Next when the subscriber fell too far behind and was dropped.
	ErrBacklog = errors.New("subscriber backlog exceeded")
)

// Hub is a named-event broadcaster.
type Hub struct {
	subscribers sync.Map
	count       atomic.Int64

	maxBacklog int
	now        func() time.Time
}

// Option configures a Hub.
type Option func(*Hub)

// WithMaxBacklog drops subscribers whose queue grows past n frames. Zero keeps queues unbounded.
func WithMaxBacklog(n int) Option {
	return func(h *Hub) {
		h.maxBacklog = max(n, 0)
	}
}

// WithClock replaces the clock used for ping timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) {
		h.now = now
	}
}

// New creates an empty hub.
func New(opts ...Option) *Hub {
	h := &Hub{now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a subscriber whose first frame is a ping. The subscriber is removed
// when ctx is done or Close is called.
func (h *Hub) Subscribe(ctx context.Context) *Subscriber {
	s := &Subscriber{
		ID:     uuid.New(),
		hub:    h,
		signal: make(chan struct{}, 1),
	}

	s.push(lo.Must(frame(constant.EventPing, projection.Ping{Timestamp: h.now()})), 0)

	h.subscribers.Store(s.ID, s)
	h.count.Add(1)

	stop := context.AfterFunc(ctx, s.Close)
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()

	log.WithFields(log.Fields{"module": "hub", "subscriber": s.ID}).Debug("subscribed")
	return s
}

// Broadcast encodes payload once and enqueues the frame to every subscriber.
// It never blocks on a subscriber. An encoding error is a programming error and is returned unsent.
func (h *Hub) Broadcast(event string, payload any) error {
	f, err := frame(event, payload)
	if err != nil {
		return err
	}

	h.subscribers.Range(func(_, value any) bool {
		s := value.(*Subscriber)
		if !s.push(f, h.maxBacklog) {
			log.WithFields(log.Fields{"module": "hub", "subscriber": s.ID}).Warn("subscriber backlog exceeded, dropping")
			s.Close()
		}
		return true
	})

	return nil
}

// Len returns the number of live subscribers.
func (h *Hub) Len() int {
	return int(h.count.Load())
}

func (h *Hub) remove(s *Subscriber) {
	if _, loaded := h.subscribers.LoadAndDelete(s.ID); loaded {
		h.count.Add(-1)
		log.WithFields(log.Fields{"module": "hub", "subscriber": s.ID}).Debug("unsubscribed")
	}
}

func frame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return Encode(event, data), nil
}
