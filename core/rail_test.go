package core

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestNewRailStartsEnabled(t *testing.T) {
	rail, pin, sleeper := newTestRail()

	if !rail.Enabled() {
		t.Error("Expected rail to be enabled after init")
	}
	if !pin.configured || pin.current() != LevelHigh {
		t.Errorf("Expected pin configured HIGH, got configured=%v level=%v", pin.configured, pin.current())
	}
	if n := pin.writeCount(); n != 0 {
		t.Errorf("Expected no writes during init, got %d", n)
	}
	if n := sleeper.count(); n != 0 {
		t.Errorf("Expected no settle delay during init, got %d", n)
	}
	if rail.Name() != DefaultRailName {
		t.Errorf("Expected default name %q, got %q", DefaultRailName, rail.Name())
	}
	if rail.SettleDelay() != DefaultSettleDelay {
		t.Errorf("Expected default settle delay %v, got %v", DefaultSettleDelay, rail.SettleDelay())
	}
}

func TestNewRailPinNotReady(t *testing.T) {
	pin := newFakePin()
	pin.ready = false

	rail, err := NewRail(pin)
	if rail != nil {
		t.Fatal("Expected no rail when the pin is not ready")
	}
	if !errors.Is(err, ErrPinNotReady) || !errors.Is(err, ErrHardwareFault) {
		t.Errorf("Expected pin-not-ready hardware fault, got %v", err)
	}
	if pin.configured {
		t.Error("Pin must not be configured when not ready")
	}
}

func TestNewRailNilPin(t *testing.T) {
	if _, err := NewRail(nil); !errors.Is(err, ErrPinNotReady) {
		t.Errorf("Expected ErrPinNotReady for nil pin, got %v", err)
	}
}

func TestNewRailConfigRejected(t *testing.T) {
	cause := errors.New("EINVAL")
	pin := newFakePin()
	pin.configErr = cause

	rail, err := NewRail(pin)
	if rail != nil {
		t.Fatal("Expected no rail when configuration is rejected")
	}
	if !errors.Is(err, ErrConfigRejected) || !errors.Is(err, cause) {
		t.Errorf("Expected config-rejected fault wrapping cause, got %v", err)
	}

	var fault *HardwareFault
	if !errors.As(err, &fault) || fault.Op != "init" {
		t.Errorf("Expected *HardwareFault with op init, got %#v", err)
	}
}

func TestEnableWhenEnabledIsNoop(t *testing.T) {
	rail, pin, sleeper := newTestRail()

	for i := 0; i < 3; i++ {
		if err := rail.Enable(); err != nil {
			t.Fatalf("Enable failed: %v", err)
		}
	}

	if n := pin.writeCount(); n != 0 {
		t.Errorf("Expected zero pin writes, got %d", n)
	}
	if n := sleeper.count(); n != 0 {
		t.Errorf("Expected zero settle delays, got %d", n)
	}
}

func TestDisableWhenDisabledIsNoop(t *testing.T) {
	rail, pin, sleeper := newTestRail()

	if err := rail.Disable(); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}
	if err := rail.Disable(); err != nil {
		t.Fatalf("Second Disable failed: %v", err)
	}

	if n := pin.writeCount(); n != 1 {
		t.Errorf("Expected exactly one pin write, got %d", n)
	}
	if n := sleeper.count(); n != 0 {
		t.Errorf("Disable must not wait, got %d delays", n)
	}
	if rail.Enabled() {
		t.Error("Expected rail disabled")
	}
}

func TestEnableWritesBeforeSettle(t *testing.T) {
	rail, pin, sleeper := newTestRail()

	if err := rail.Disable(); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}
	if err := rail.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}

	if !rail.Enabled() {
		t.Error("Expected rail enabled after Enable")
	}
	if pin.current() != LevelHigh {
		t.Errorf("Expected pin HIGH, got %v", pin.current())
	}

	events := pin.events.list()
	expected := []string{"write LOW", "write HIGH", "settle"}
	if len(events) != len(expected) {
		t.Fatalf("Expected events %v, got %v", expected, events)
	}
	for i := range expected {
		if events[i] != expected[i] {
			t.Errorf("Event %d: expected %q, got %q", i, expected[i], events[i])
		}
	}
	if sleeper.delays[0] != DefaultSettleDelay {
		t.Errorf("Expected settle delay %v, got %v", DefaultSettleDelay, sleeper.delays[0])
	}
}

func TestEnableBlocksForSettleDelay(t *testing.T) {
	pin := newFakePin()
	delay := 20 * time.Millisecond

	rail, err := NewRail(pin, WithSettleDelay(delay))
	if err != nil {
		t.Fatalf("NewRail failed: %v", err)
	}
	if err := rail.Disable(); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}

	start := time.Now()
	if err := rail.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < delay {
		t.Errorf("Enable returned after %v, expected at least %v", elapsed, delay)
	}
}

func TestSettleDelayOption(t *testing.T) {
	rail, _, sleeper := newTestRail(WithSettleDelay(5 * time.Millisecond))
	_ = rail.Disable()
	_ = rail.Enable()
	if sleeper.count() != 1 || sleeper.delays[0] != 5*time.Millisecond {
		t.Errorf("Expected one 5ms delay, got %v", sleeper.delays)
	}

	rail, _, sleeper = newTestRail(WithSettleDelay(0))
	_ = rail.Disable()
	_ = rail.Enable()
	if sleeper.count() != 0 {
		t.Errorf("Expected no delay with zero settle, got %v", sleeper.delays)
	}
}

func TestEnableFaultLeavesStateUnchanged(t *testing.T) {
	rail, pin, sleeper := newTestRail()
	_ = rail.Disable()

	cause := errors.New("bus error")
	pin.failWrites(cause)

	err := rail.Enable()
	if !errors.Is(err, ErrWriteRejected) || !errors.Is(err, cause) {
		t.Fatalf("Expected write-rejected fault, got %v", err)
	}
	if rail.Enabled() {
		t.Error("Flag must stay false when the write was rejected")
	}
	if sleeper.count() != 0 {
		t.Error("No settle delay expected after a failed write")
	}

	pin.failWrites(nil)
	if err := rail.Enable(); err != nil {
		t.Fatalf("Enable after recovery failed: %v", err)
	}
	if !rail.Enabled() {
		t.Error("Expected rail enabled after recovery")
	}
}

func TestDisableFaultLeavesStateUnchanged(t *testing.T) {
	rail, pin, _ := newTestRail()
	pin.failWrites(errors.New("bus error"))

	err := rail.Disable()
	var fault *HardwareFault
	if !errors.As(err, &fault) || fault.Op != "disable" {
		t.Fatalf("Expected disable fault, got %v", err)
	}
	if !rail.Enabled() {
		t.Error("Flag must stay true when the write was rejected")
	}
}

func TestUninitializedRailPanics(t *testing.T) {
	ops := map[string]func(r *Rail){
		"Enable":  func(r *Rail) { _ = r.Enable() },
		"Disable": func(r *Rail) { _ = r.Disable() },
		"Enabled": func(r *Rail) { _ = r.Enabled() },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s on an uninitialized rail did not panic", name)
				}
			}()
			var r Rail
			op(&r)
		})
	}
}

func TestWatchReportsTransitions(t *testing.T) {
	rail, _, _ := newTestRail()

	var seen []bool
	rail.Watch(func(enabled bool) { seen = append(seen, enabled) })

	_ = rail.Enable() // no-op
	_ = rail.Disable()
	_ = rail.Disable() // no-op
	_ = rail.Enable()

	if len(seen) != 2 || seen[0] != false || seen[1] != true {
		t.Errorf("Expected transitions [false true], got %v", seen)
	}
}

func TestWatchRunsAfterSettle(t *testing.T) {
	rail, pin, _ := newTestRail()
	rail.Watch(func(enabled bool) { pin.events.add("watch") })

	_ = rail.Disable()
	_ = rail.Enable()

	events := pin.events.list()
	last := events[len(events)-2:]
	if last[0] != "settle" || last[1] != "watch" {
		t.Errorf("Expected watcher after settle, got %v", events)
	}
}

func TestConcurrentEnableDisable(t *testing.T) {
	rail, pin, _ := newTestRail(WithSettleDelay(0))

	var wg sync.WaitGroup
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if (i+g)%2 == 0 {
					_ = rail.Enable()
				} else {
					_ = rail.Disable()
				}
			}
		}(g)
	}
	wg.Wait()

	if Level(rail.Enabled()) != pin.current() {
		t.Errorf("Flag %v disagrees with last accepted write %v", rail.Enabled(), pin.current())
	}

	// Every accepted write must change the level
	pin.mu.Lock()
	defer pin.mu.Unlock()
	prev := LevelHigh
	for i, level := range pin.writes {
		if level == prev {
			t.Fatalf("Redundant write %v at index %d", level, i)
		}
		prev = level
	}
}

// watchLog records watcher calls from any goroutine.
type watchLog struct {
	mu   sync.Mutex
	seen []bool
}

func (w *watchLog) add(enabled bool) {
	w.mu.Lock()
	w.seen = append(w.seen, enabled)
	w.mu.Unlock()
}

func (w *watchLog) list() []bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]bool(nil), w.seen...)
}

func TestDisableDuringSettleWins(t *testing.T) {
	var rail *Rail
	interrupted := false
	settle := func(time.Duration) {
		if !interrupted {
			interrupted = true
			if err := rail.Disable(); err != nil {
				t.Errorf("Disable during settle failed: %v", err)
			}
		}
	}

	pin := newFakePin()
	rail, err := NewRail(pin, WithSleeper(settle))
	if err != nil {
		t.Fatalf("NewRail failed: %v", err)
	}
	watched := &watchLog{}
	rail.Watch(watched.add)

	if err := rail.Disable(); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}
	if err := rail.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}

	if rail.Enabled() {
		t.Error("Expected the disable issued during settle to leave the rail off")
	}
	if pin.current() != LevelLow {
		t.Errorf("Expected pin LOW, got %v", pin.current())
	}

	seen := watched.list()
	if len(seen) != 2 || seen[0] || seen[1] {
		t.Errorf("Expected watcher sequence [false false], got %v", seen)
	}
}

func TestConcurrentSwitchingWithSettle(t *testing.T) {
	rail, pin, _ := newTestRail(WithSettleDelay(time.Millisecond), WithSleeper(func(time.Duration) {
		runtime.Gosched()
	}))
	watched := &watchLog{}
	rail.Watch(watched.add)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				if (i+g)%2 == 0 {
					_ = rail.Enable()
				} else {
					_ = rail.Disable()
				}
			}
		}(g)
	}
	wg.Wait()

	if Level(rail.Enabled()) != pin.current() {
		t.Errorf("Flag %v disagrees with last accepted write %v", rail.Enabled(), pin.current())
	}

	seen := watched.list()
	if len(seen) == 0 {
		t.Fatal("Expected watcher notifications")
	}
	if last := seen[len(seen)-1]; last != rail.Enabled() {
		t.Errorf("Last watcher notification %v disagrees with rail state %v", last, rail.Enabled())
	}
}
