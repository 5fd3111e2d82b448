package event

import (
	"sync"
	"time"
)

// Sink receives events from background work.
// Publish must not block for long and must be safe for concurrent use.
type Sink interface {
	// Publish delivers a message.
	Publish(msg Message)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(msg Message)

// Publish implements Sink.
func (f SinkFunc) Publish(msg Message) {
	f(msg)
}

// Discard is a Sink that drops every message.
//
//nolint:gochecknoglobals // Stateless sink used as a constant.
var Discard Sink = SinkFunc(func(Message) {})

// Publisher stamps the events of one job with its ID, a sequence number and a time.
type Publisher struct {
	sink  Sink
	jobID string
	now   func() time.Time

	mu  sync.Mutex
	seq uint64
}

// NewPublisher creates a Publisher for the given job. A nil sink discards events.
func NewPublisher(sink Sink, jobID string) *Publisher {
	if sink == nil {
		sink = Discard
	}

	return &Publisher{
		sink:  sink,
		jobID: jobID,
		now:   time.Now,
	}
}

// JobID returns the ID stamped on every message.
func (p *Publisher) JobID() string {
	return p.jobID
}

// Publish sends e to the sink.
// Sequence numbers are assigned under the same lock as delivery, so they reach the sink in order.
func (p *Publisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++

	p.sink.Publish(Message{
		JobID: p.jobID,
		Seq:   p.seq,
		Time:  p.now(),
		Event: e,
	})
}

// Recorder is a Sink keeping every message in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	notify   chan struct{}
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{notify: make(chan struct{}, 1)}
}

// Publish implements Sink.
func (r *Recorder) Publish(msg Message) {
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Message(nil), r.messages...)
}

// Events returns the recorded events in publication order.
func (r *Recorder) Events() []Event {
	messages := r.Messages()

	events := make([]Event, len(messages))
	for i, m := range messages {
		events[i] = m.Event
	}

	return events
}

// Kinds returns the kinds of the recorded events in publication order.
func (r *Recorder) Kinds() []Kind {
	events := r.Events()

	kinds := make([]Kind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind()
	}

	return kinds
}

// WaitFor blocks until a recorded event satisfies match or the timeout elapses.
func (r *Recorder) WaitFor(timeout time.Duration, match func(Event) bool) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		for _, e := range r.Events() {
			if match(e) {
				return true
			}
		}

		select {
		case <-r.notify:
		case <-deadline.C:
			return false
		}
	}
}
