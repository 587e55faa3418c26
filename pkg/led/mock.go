package led

import (
	"sync"

	"github.com/rs/zerolog"
)

// Event is one SetChannel call observed by a [Mock].
type Event struct {
	Channel int
	On      bool
}

// Mock is an in-memory Controller that records every call. It tracks how many
// channels were lit at once, so callers can check mutual exclusion.
type Mock struct {
	mu        sync.Mutex
	on        [Channels]bool
	events    []Event
	maxLit    int
	failAfter int
	err       error
	log       zerolog.Logger
}

// NewMock returns a Mock logging calls at trace level to l.
func NewMock(l zerolog.Logger) *Mock {
	return &Mock{log: l, failAfter: -1}
}

// FailAfter makes the call following n successful ones, and every call after
// it, return err.
func (m *Mock) FailAfter(n int, err error) {
	m.mu.Lock()
	m.failAfter = n
	m.err = err
	m.mu.Unlock()
}

func (m *Mock) SetChannel(index int, on bool) error {
	if err := checkChannel(index); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAfter >= 0 && len(m.events) >= m.failAfter {
		return m.err
	}
	m.events = append(m.events, Event{Channel: index, On: on})
	m.on[index] = on
	if lit := m.litLocked(); lit > m.maxLit {
		m.maxLit = lit
	}
	m.log.Trace().Int("channel", index).Bool("on", on).Msg("led")
	return nil
}

func (m *Mock) litLocked() int {
	n := 0
	for _, on := range m.on {
		if on {
			n++
		}
	}
	return n
}

// Lit returns the channels currently on.
func (m *Mock) Lit() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var lit []int
	for i, on := range m.on {
		if on {
			lit = append(lit, i)
		}
	}
	return lit
}

// MaxLit returns the largest number of channels that were on at the same time.
func (m *Mock) MaxLit() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxLit
}

// Events returns a copy of the recorded calls.
func (m *Mock) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
