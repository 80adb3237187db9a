package sink

import (
	"context"
	"sync"

	"lobby-lab/contract"
	"lobby-lab/domain/event"
	"lobby-lab/errors"
)

var _ contract.EventSink = (*ConnectionSink)(nil)

// ConnectionSink buffers the events of one live connection.
// The transport write loop drains Events and owns the socket.
type ConnectionSink struct {
	mu     sync.RWMutex
	events chan event.DomainEvent
	closed bool
}

func NewConnectionSink(bufferSize int) *ConnectionSink {
	return &ConnectionSink{events: make(chan event.DomainEvent, bufferSize)}
}

// Events is the channel the write loop reads from.
func (s *ConnectionSink) Events() <-chan event.DomainEvent {
	return s.events
}

// Consume is called by the router.
// It never blocks: a slow client loses the event instead of stalling every room.
func (s *ConnectionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.ErrSinkClosed
	}
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSinkFull
	}
}

// Close ends the Events channel. Later Consume calls report ErrSinkClosed.
func (s *ConnectionSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}
