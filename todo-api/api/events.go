package api

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/OjusAnilNaik/To-do-List/todo-api/model"
)

// SenderConfig sizes the background event sender.
type SenderConfig struct {
	Workers int
	Buffer  int
	// Timeout bounds a single publish.
	Timeout time.Duration
	// Handoff is how long Send waits for buffer space before publishing
	// inline.
	Handoff time.Duration
}

// DefaultSenderConfig is used for zero fields.
var DefaultSenderConfig = SenderConfig{Workers: 4, Buffer: 256, Timeout: 30 * time.Second, Handoff: 15 * time.Millisecond}

// EventSender publishes events from a small worker pool so requests do not
// wait on the queue. When the buffer is saturated events are published
// inline instead of dropped.
type EventSender struct {
	publisher EventPublisher
	log       *log.Logger
	cfg       SenderConfig

	mu     sync.RWMutex
	jobs   chan model.Event
	closed bool
	wg     sync.WaitGroup
}

func NewEventSender(publisher EventPublisher, logger *log.Logger, cfg SenderConfig) *EventSender {
	if logger == nil {
		panic("Logger is not initialized")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultSenderConfig.Workers
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultSenderConfig.Buffer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSenderConfig.Timeout
	}
	s := &EventSender{
		publisher: publisher,
		log:       logger,
		cfg:       cfg,
		jobs:      make(chan model.Event, cfg.Buffer),
	}
	for i := 0; i < cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	logger.Infof("event sender started, workers: %d, buffer: %d, timeout: %v, handoff: %v", cfg.Workers, cfg.Buffer, cfg.Timeout, cfg.Handoff)
	return s
}

func (s *EventSender) worker(id int) {
	defer s.wg.Done()
	for ev := range s.jobs {
		if err := s.publish(ev); err != nil {
			s.log.WithFields(log.Fields{"worker": id, "event": ev.Type, "user": ev.UserID}).WithError(err).Error("publish event failed")
		}
	}
}

func (s *EventSender) publish(ev model.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	return s.publisher.Publish(ctx, ev)
}

// Send stamps ev and hands it to a worker.
func (s *EventSender) Send(ev model.Event) {
	if s == nil {
		return
	}
	ev.Timestamp = nextTimestamp()

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return
	}
	queued := s.tryQueue(ev)
	s.mu.RUnlock()
	if queued {
		return
	}

	s.log.Warn("event buffer saturated; publishing inline")
	if err := s.publish(ev); err != nil {
		s.log.WithFields(log.Fields{"event": ev.Type, "user": ev.UserID}).WithError(err).Error("publish event inline failed")
	}
}

func (s *EventSender) tryQueue(ev model.Event) bool {
	select {
	case s.jobs <- ev:
		return true
	default:
	}
	if s.cfg.Handoff <= 0 {
		return false
	}
	timer := time.NewTimer(s.cfg.Handoff)
	defer timer.Stop()
	select {
	case s.jobs <- ev:
		return true
	case <-timer.C:
		return false
	}
}

// Close stops accepting events and waits for queued ones to be published.
func (s *EventSender) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.jobs)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
