// Package analytics provides a fire-and-forget event sink. Emitting never
// blocks the caller; when the buffer is full the event is dropped.
package analytics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a single analytics record.
type Event struct {
	ID         string
	Name       string
	OccurredAt time.Time
	Properties map[string]string
}

// Sink accepts events for asynchronous delivery.
type Sink interface {
	Emit(name string, properties map[string]string)
	Close()
}

// LogSink delivers events to a structured logger from a background goroutine.
// The events channel is never closed; shutdown is signalled through quit so a
// concurrent Emit can never panic on a closed channel.
type LogSink struct {
	logger *slog.Logger
	events chan Event

	closeOnce sync.Once
	quit      chan struct{}
	done      chan struct{}
}

// NewLogSink starts the delivery goroutine. bufferSize bounds how many
// undelivered events are held before new ones are dropped.
func NewLogSink(logger *slog.Logger, bufferSize int) *LogSink {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	s := &LogSink{
		logger: logger,
		events: make(chan Event, bufferSize),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Emit queues an event without blocking. Events that do not fit in the buffer
// or arrive after Close are silently dropped.
func (s *LogSink) Emit(name string, properties map[string]string) {
	select {
	case <-s.quit:
		return
	default:
	}

	event := Event{
		ID:         uuid.NewString(),
		Name:       name,
		OccurredAt: time.Now().UTC(),
		Properties: properties,
	}

	select {
	case s.events <- event:
	default:
	}
}

// Close stops accepting events and waits for the queued ones to drain.
func (s *LogSink) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.done
	})
}

func (s *LogSink) run() {
	defer close(s.done)
	for {
		select {
		case event := <-s.events:
			s.deliver(event)
		case <-s.quit:
			for {
				select {
				case event := <-s.events:
					s.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (s *LogSink) deliver(event Event) {
	attrs := []any{
		"id", event.ID,
		"event", event.Name,
		"occurredAt", event.OccurredAt.Format(time.RFC3339),
	}
	for k, v := range event.Properties {
		attrs = append(attrs, k, v)
	}
	s.logger.Info("analytics event", attrs...)
}

var _ Sink = (*LogSink)(nil)
