package live

import "sync"

// mailbox is an unbounded queue between the session and the UI program.
// A snapshot replaces a snapshot queued directly before it, since each one
// carries the full progress state. Every other event is kept.
type mailbox struct {
	mu     sync.Mutex
	queue  []Event
	closed bool
	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

func (m *mailbox) push(event Event) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if n := len(m.queue); event.Kind == EventSnapshot && n > 0 && m.queue[n-1].Kind == EventSnapshot {
		m.queue[n-1] = event
	} else {
		m.queue = append(m.queue, event)
	}
	m.mu.Unlock()
	m.wake()
}

// next blocks until an event is queued. It reports false once the mailbox is
// closed and drained, or when stop is closed first.
func (m *mailbox) next(stop <-chan struct{}) (Event, bool) {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			event := m.queue[0]
			m.queue[0] = Event{}
			m.queue = m.queue[1:]
			m.mu.Unlock()
			return event, true
		}
		closed := m.closed
		m.mu.Unlock()
		if closed {
			return Event{}, false
		}
		select {
		case <-m.notify:
		case <-stop:
			return Event{}, false
		}
	}
}

func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.wake()
}

func (m *mailbox) wake() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}
