package event

import "sync"

// Queue is an unbounded FIFO Sink.
// Publish never blocks the producer; the consumer reads from Events in publication order.
type Queue struct {
	mu      sync.Mutex
	pending []Message
	closed  bool
	wake    chan struct{}
	out     chan Message
	done    chan struct{}
}

// NewQueue creates a Queue and starts its delivery goroutine.
func NewQueue() *Queue {
	q := &Queue{
		wake: make(chan struct{}, 1),
		out:  make(chan Message),
		done: make(chan struct{}),
	}

	go q.run()

	return q
}

// Publish appends msg to the queue. Messages published after Close are dropped.
func (q *Queue) Publish(msg Message) {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()

		return
	}

	q.pending = append(q.pending, msg)
	q.mu.Unlock()

	q.signal()
}

// Events returns the channel messages are delivered on.
// It is closed after Close once every pending message has been delivered.
func (q *Queue) Events() <-chan Message {
	return q.out
}

// Close stops accepting messages. Already queued messages are still delivered.
// Close does not wait for the consumer; use Done for that.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.signal()
}

// Done is closed once the delivery goroutine has handed out every message.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Len returns the number of messages not yet handed to the consumer.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.pending)
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) run() {
	defer close(q.done)
	defer close(q.out)

	for {
		q.mu.Lock()

		if len(q.pending) == 0 {
			closed := q.closed
			q.mu.Unlock()

			if closed {
				return
			}

			<-q.wake

			continue
		}

		msg := q.pending[0]
		q.pending[0] = Message{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.out <- msg
	}
}
