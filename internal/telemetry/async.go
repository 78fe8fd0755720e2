package telemetry

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// DefaultBufferSize is used when NewAsyncSink is given a non-positive size.
const DefaultBufferSize = 1024

// AsyncSink forwards events to a downstream Sink from its own goroutine.
// Notify never blocks: when the buffer is full the event is dropped and
// counted.
type AsyncSink struct {
	next    Sink
	events  chan Event
	done    chan struct{}
	logger  *zap.Logger
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// NewAsyncSink starts the forwarding goroutine. Call Close to flush and stop it.
func NewAsyncSink(next Sink, size int, logger *zap.Logger) *AsyncSink {
	if next == nil {
		next = Nop
	}
	if size <= 0 {
		size = DefaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AsyncSink{
		next:   next,
		events: make(chan Event, size),
		done:   make(chan struct{}),
		logger: logger,
	}
	go s.run()
	return s
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for evt := range s.events {
		s.next.Notify(evt)
	}
}

// Notify enqueues the event, dropping it when the buffer is full or the
// sink is closed.
func (s *AsyncSink) Notify(event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return
	}
	select {
	case s.events <- event:
	default:
		if s.dropped.Add(1) == 1 {
			s.logger.Warn("telemetry buffer full, dropping events", zap.Int("capacity", cap(s.events)))
		}
	}
}

// Dropped returns how many events were discarded.
func (s *AsyncSink) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops accepting events and waits until the buffered ones are delivered.
func (s *AsyncSink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()
	<-s.done
	if n := s.dropped.Load(); n > 0 {
		s.logger.Info("telemetry sink closed", zap.Int64("dropped", n))
	}
}
