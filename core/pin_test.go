package core

import (
	"sync"
	"time"
)

// fakePin records every configure and write it accepts.
type fakePin struct {
	mu sync.Mutex

	ready     bool
	configErr error
	setErr    error

	configured bool
	level      Level
	writes     []Level
	events     *eventLog
}

func newFakePin() *fakePin {
	return &fakePin{ready: true}
}

func (p *fakePin) IsReady() bool {
	return p.ready
}

func (p *fakePin) Configure(initial Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.configErr != nil {
		return p.configErr
	}
	p.configured = true
	p.level = initial
	return nil
}

func (p *fakePin) Set(level Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.setErr != nil {
		return p.setErr
	}
	p.level = level
	p.writes = append(p.writes, level)
	if p.events != nil {
		p.events.add("write " + level.String())
	}
	return nil
}

func (p *fakePin) failWrites(err error) {
	p.mu.Lock()
	p.setErr = err
	p.mu.Unlock()
}

func (p *fakePin) writeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.writes)
}

func (p *fakePin) current() Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// recordingSleeper replaces time.Sleep and records requested delays.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
	events *eventLog
}

func (s *recordingSleeper) sleep(d time.Duration) {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	if s.events != nil {
		s.events.add("settle")
	}
}

func (s *recordingSleeper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delays)
}

// newTestRail returns an initialized rail over a fake pin with a recording sleeper.
func newTestRail(opts ...RailOption) (*Rail, *fakePin, *recordingSleeper) {
	events := &eventLog{}
	pin := newFakePin()
	pin.events = events
	sleeper := &recordingSleeper{events: events}

	rail, err := NewRail(pin, append([]RailOption{WithSleeper(sleeper.sleep)}, opts...)...)
	if err != nil {
		panic(err)
	}
	return rail, pin, sleeper
}
