package hub

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Subscriber is one consumer of the hub. Only the hub writes to its queue and
// only one goroutine is expected to call Next.
type Subscriber struct {
	ID uuid.UUID

	hub  *Hub
	stop func() bool

	mu      sync.Mutex
	queue   [][]byte
	closed  bool
	overrun bool
	signal  chan struct{}
}

// push appends a frame. It reports false when limit is positive and the backlog would exceed it.
func (s *Subscriber) push(frame []byte, limit int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return true
	}

	if limit > 0 && len(s.queue) >= limit {
		s.overrun = true
		return false
	}

	s.queue = append(s.queue, frame)
	s.wake()
	return true
}

func (s *Subscriber) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Next blocks until a frame is available, the subscriber is closed, or ctx is done.
// Frames already queued when the subscriber is closed are dropped.
func (s *Subscriber) Next(ctx context.Context) ([]byte, error) {
	for {
		s.mu.Lock()
		switch {
		case s.overrun:
			s.mu.Unlock()
			return nil, ErrBacklog
		case s.closed:
			s.mu.Unlock()
			return nil, ErrClosed
		case len(s.queue) > 0:
			f := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return f, nil
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			s.Close()
			return nil, ctx.Err()
		case <-s.signal:
		}
	}
}

// Backlog returns the number of queued frames.
func (s *Subscriber) Backlog() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close removes the subscriber from the hub. It is safe to call more than once.
func (s *Subscriber) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	stop := s.stop
	s.wake()
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	s.hub.remove(s)
}
