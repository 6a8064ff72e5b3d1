package core

import (
	"errors"
	"sync"
	"sync/atomic"
)

// TriggerMode selects the policy that decides when the rail switches.
type TriggerMode string

const (
	TriggerManual TriggerMode = "manual" // ext-power API caller
	TriggerUSB    TriggerMode = "usb"    // USB presence
	TriggerStatic TriggerMode = "static" // always on
)

var (
	ErrTriggerNoRail   = errors.New("trigger attached to nil rail")
	ErrTriggerAttached = errors.New("trigger already attached")
)

// Trigger is a policy driving a Rail. Exactly one trigger is attached to a rail.
type Trigger interface {
	Mode() TriggerMode
	Attach(rail *Rail) error
}

// ManualTrigger exposes the rail to an external ext-power coordinator and
// makes no decisions of its own.
type ManualTrigger struct {
	registry *ExtPowerRegistry
	name     string
	rail     *Rail
}

// NewManualTrigger registers the rail under name in registry on Attach.
func NewManualTrigger(registry *ExtPowerRegistry, name string) *ManualTrigger {
	if name == "" {
		name = DefaultRailName
	}
	return &ManualTrigger{registry: registry, name: name}
}

func (t *ManualTrigger) Mode() TriggerMode { return TriggerManual }

func (t *ManualTrigger) Attach(rail *Rail) error {
	if rail == nil {
		return ErrTriggerNoRail
	}
	if t.rail != nil {
		return ErrTriggerAttached
	}
	t.rail = rail
	if t.registry != nil {
		if err := t.registry.Register(t.name, t); err != nil {
			t.rail = nil
			return err
		}
	}
	logInfo(ComponentTrigger, "manual trigger attached", "rail", rail.Name(), "name", t.name)
	return nil
}

// Enable implements ExtPower.
func (t *ManualTrigger) Enable() error { return t.rail.Enable() }

// Disable implements ExtPower.
func (t *ManualTrigger) Disable() error { return t.rail.Disable() }

// Get implements ExtPower.
func (t *ManualTrigger) Get() bool { return t.rail.Enabled() }

// USBTrigger follows USB presence: bus power enables the rail, losing it
// disables the rail.
type USBTrigger struct {
	source StatusSource

	// mu serializes status handling; powered is readable without it
	mu      sync.Mutex
	powered atomic.Bool // last USB presence acted upon
	rail    *Rail
}

// NewUSBTrigger creates a trigger listening on source. USB is assumed present
// at boot so the rail is not switched off right after init.
func NewUSBTrigger(source StatusSource) *USBTrigger {
	t := &USBTrigger{source: source}
	t.powered.Store(true)
	return t
}

func (t *USBTrigger) Mode() TriggerMode { return TriggerUSB }

func (t *USBTrigger) Attach(rail *Rail) error {
	if rail == nil {
		return ErrTriggerNoRail
	}
	t.mu.Lock()
	if t.rail != nil {
		t.mu.Unlock()
		return ErrTriggerAttached
	}
	t.rail = rail
	t.mu.Unlock()

	t.source.Subscribe(t.HandleStatus)
	logInfo(ComponentTrigger, "usb trigger attached", "rail", rail.Name())
	return nil
}

// Powered reports the last observed USB presence.
func (t *USBTrigger) Powered() bool {
	return t.powered.Load()
}

// HandleStatus feeds one status event to the trigger. It runs in the caller's
// context and blocks only for the rail's settle delay and rail watchers.
// Presence is recorded only once the rail call succeeds, so a faulted switch
// is retried by the next matching status event, never by a timer.
func (t *USBTrigger) HandleStatus(status USBStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rail == nil {
		return
	}

	switch status {
	case USBConnected, USBConfigured:
		if t.powered.Load() {
			return
		}
		logInfo(ComponentTrigger, "usb power detected", "status", status.String())
		if err := t.rail.Enable(); err != nil {
			logError(ComponentTrigger, "usb enable failed", "error", err)
			return
		}
		t.powered.Store(true)

	case USBDisconnected, USBSuspended:
		if !t.powered.Load() {
			return
		}
		logInfo(ComponentTrigger, "usb power lost", "status", status.String())
		if err := t.rail.Disable(); err != nil {
			logError(ComponentTrigger, "usb disable failed", "error", err)
			return
		}
		t.powered.Store(false)

	default:
		logDebug(ComponentTrigger, "ignoring usb status", "status", status.String())
	}
}

// StaticTrigger leaves the rail on. Toggling is left to a physical switch
// outside the controller.
type StaticTrigger struct {
	rail *Rail
}

func NewStaticTrigger() *StaticTrigger {
	return &StaticTrigger{}
}

func (t *StaticTrigger) Mode() TriggerMode { return TriggerStatic }

func (t *StaticTrigger) Attach(rail *Rail) error {
	if rail == nil {
		return ErrTriggerNoRail
	}
	if t.rail != nil {
		return ErrTriggerAttached
	}
	t.rail = rail
	logInfo(ComponentTrigger, "static trigger attached", "rail", rail.Name())
	return rail.Enable()
}

// TriggerDeps carries the collaborators a trigger may need.
type TriggerDeps struct {
	Registry *ExtPowerRegistry // manual
	Name     string            // manual
	Source   StatusSource      // usb
}

var ErrTriggerMode = errors.New("unknown trigger mode")

// NewTrigger builds the trigger for mode.
func NewTrigger(mode TriggerMode, deps TriggerDeps) (Trigger, error) {
	switch mode {
	case TriggerManual:
		return NewManualTrigger(deps.Registry, deps.Name), nil
	case TriggerUSB:
		if deps.Source == nil {
			return nil, errors.New("usb trigger requires a status source")
		}
		return NewUSBTrigger(deps.Source), nil
	case TriggerStatic:
		return NewStaticTrigger(), nil
	default:
		return nil, ErrTriggerMode
	}
}
