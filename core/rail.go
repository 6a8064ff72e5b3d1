package core

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultSettleDelay is how long Enable waits after driving the rail high
// so downstream components are powered before the caller touches them.
const DefaultSettleDelay = 100 * time.Millisecond

// Rail owns the control pin of a switched supply rail.
// It is the only code path allowed to write the pin.
type Rail struct {
	name   string
	pin    OutputPin
	settle time.Duration
	sleep  func(time.Duration)

	// mu serializes the check-write-update sequence of Enable and Disable
	mu      sync.Mutex
	enabled atomic.Bool
	gen     atomic.Uint64 // bumped by every accepted write, under mu

	watchMu  sync.Mutex
	watchers []func(enabled bool)

	// notifyMu orders watcher delivery between transitions
	notifyMu sync.Mutex
}

// RailOption customizes a Rail at construction.
type RailOption func(*Rail)

// WithSettleDelay overrides DefaultSettleDelay. Zero disables the wait.
func WithSettleDelay(d time.Duration) RailOption {
	return func(r *Rail) {
		if d >= 0 {
			r.settle = d
		}
	}
}

// WithSleeper replaces time.Sleep for the settle delay.
func WithSleeper(sleep func(time.Duration)) RailOption {
	return func(r *Rail) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// WithName sets the name used in diagnostics.
func WithName(name string) RailOption {
	return func(r *Rail) {
		r.name = name
	}
}

// NewRail acquires pin, configures it as an output driven high and returns an
// enabled rail. Any fault here is fatal: no Rail is returned.
func NewRail(pin OutputPin, opts ...RailOption) (*Rail, error) {
	r := &Rail{
		name:   DefaultRailName,
		settle: DefaultSettleDelay,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}

	logInfo(ComponentRail, "initializing rail", "rail", r.name)

	if pin == nil || !pin.IsReady() {
		logError(ComponentRail, "rail control pin not ready", "rail", r.name)
		return nil, newFault("init", ErrPinNotReady, nil)
	}

	// Configuring with the active level powers the rail; no separate write
	if err := pin.Configure(LevelHigh); err != nil {
		logError(ComponentRail, "failed to configure rail control pin", "rail", r.name, "error", err)
		return nil, newFault("init", ErrConfigRejected, err)
	}

	r.pin = pin
	r.enabled.Store(true)

	logInfo(ComponentRail, "rail initialized", "rail", r.name, "enabled", true)
	return r, nil
}

// Name returns the rail name.
func (r *Rail) Name() string {
	return r.name
}

// SettleDelay returns the wait applied after enabling.
func (r *Rail) SettleDelay() time.Duration {
	return r.settle
}

// Enable powers the rail. When the rail was off it drives the pin high and then
// blocks for the settle delay; when already on it returns immediately.
func (r *Rail) Enable() error {
	r.mustInit()

	r.mu.Lock()
	if r.enabled.Load() {
		r.mu.Unlock()
		return nil
	}
	logInfo(ComponentRail, "enabling rail", "rail", r.name, "level", LevelHigh)
	if err := r.pin.Set(LevelHigh); err != nil {
		r.mu.Unlock()
		logError(ComponentRail, "failed to enable rail", "rail", r.name, "error", err)
		return newFault("enable", ErrWriteRejected, err)
	}
	r.enabled.Store(true)
	gen := r.gen.Add(1)
	r.mu.Unlock()

	// Settle outside the critical section so queries and other triggers proceed
	if r.settle > 0 {
		r.sleep(r.settle)
	}

	r.notify(gen, true)
	return nil
}

// Disable removes power from the rail. No-op when already off.
func (r *Rail) Disable() error {
	r.mustInit()

	r.mu.Lock()
	if !r.enabled.Load() {
		r.mu.Unlock()
		return nil
	}
	logInfo(ComponentRail, "disabling rail", "rail", r.name, "level", LevelLow)
	if err := r.pin.Set(LevelLow); err != nil {
		r.mu.Unlock()
		logError(ComponentRail, "failed to disable rail", "rail", r.name, "error", err)
		return newFault("disable", ErrWriteRejected, err)
	}
	r.enabled.Store(false)
	gen := r.gen.Add(1)
	r.mu.Unlock()

	r.notify(gen, false)
	return nil
}

// Enabled reports the commanded rail state. It never blocks.
func (r *Rail) Enabled() bool {
	r.mustInit()
	return r.enabled.Load()
}

// Watch registers fn to run after every completed transition. Enable
// transitions are reported once the settle delay has elapsed; an enable that
// was overtaken by a later transition during its settle is not reported, so
// the last value a watcher sees is the rail state. Watchers must not switch
// the rail.
func (r *Rail) Watch(fn func(enabled bool)) {
	r.mustInit()
	if fn == nil {
		return
	}
	r.watchMu.Lock()
	r.watchers = append(r.watchers, fn)
	r.watchMu.Unlock()
}

func (r *Rail) notify(gen uint64, enabled bool) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	if r.gen.Load() != gen {
		return
	}

	r.watchMu.Lock()
	watchers := make([]func(bool), len(r.watchers))
	copy(watchers, r.watchers)
	r.watchMu.Unlock()

	for _, fn := range watchers {
		fn(enabled)
	}
}

// mustInit panics on a Rail that did not come from NewRail.
func (r *Rail) mustInit() {
	if r == nil || r.pin == nil {
		panic("rail used before init")
	}
}
