package core

import (
	"errors"
	"sort"
	"sync"
)

// DefaultRailName is the ext-power name of the board's switched VCC rail.
const DefaultRailName = "vcc_power_ctrl"

// ExtPower is the API an ext-power coordinator uses to drive a rail.
type ExtPower interface {
	Enable() error
	Disable() error
	Get() bool
}

var (
	ErrExtPowerNil        = errors.New("ext-power device is nil")
	ErrExtPowerNameEmpty  = errors.New("ext-power name is required")
	ErrExtPowerRegistered = errors.New("ext-power name already registered")
	ErrExtPowerNotFound   = errors.New("ext-power device not found")
)

// ExtPowerRegistry maps fixed names to ext-power devices so a coordinator
// can drive every rail on the board through the same calls.
type ExtPowerRegistry struct {
	mu      sync.RWMutex
	devices map[string]ExtPower
}

// NewExtPowerRegistry creates an empty registry.
func NewExtPowerRegistry() *ExtPowerRegistry {
	return &ExtPowerRegistry{
		devices: make(map[string]ExtPower),
	}
}

// Register adds dev under name.
func (r *ExtPowerRegistry) Register(name string, dev ExtPower) error {
	if dev == nil {
		return ErrExtPowerNil
	}
	if name == "" {
		return ErrExtPowerNameEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[name]; exists {
		return ErrExtPowerRegistered
	}
	r.devices[name] = dev

	logDebug(ComponentExtPower, "registered ext-power device", "name", name)
	return nil
}

// Lookup returns the device registered under name.
func (r *ExtPowerRegistry) Lookup(name string) (ExtPower, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dev, ok := r.devices[name]
	return dev, ok
}

// Names returns the registered names in sorted order.
func (r *ExtPowerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.devices))
	for name := range r.devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Enable enables the named device.
func (r *ExtPowerRegistry) Enable(name string) error {
	dev, ok := r.Lookup(name)
	if !ok {
		return ErrExtPowerNotFound
	}
	return dev.Enable()
}

// Disable disables the named device.
func (r *ExtPowerRegistry) Disable(name string) error {
	dev, ok := r.Lookup(name)
	if !ok {
		return ErrExtPowerNotFound
	}
	return dev.Disable()
}

// Get returns the state of the named device.
func (r *ExtPowerRegistry) Get(name string) (bool, error) {
	dev, ok := r.Lookup(name)
	if !ok {
		return false, ErrExtPowerNotFound
	}
	return dev.Get(), nil
}

// Toggle flips the named device based on its current state.
func (r *ExtPowerRegistry) Toggle(name string) error {
	dev, ok := r.Lookup(name)
	if !ok {
		return ErrExtPowerNotFound
	}
	if dev.Get() {
		return dev.Disable()
	}
	return dev.Enable()
}

// EnableAll enables every device, continuing past failures.
func (r *ExtPowerRegistry) EnableAll() error {
	var errs []error
	for _, name := range r.Names() {
		if err := r.Enable(name); err != nil {
			logError(ComponentExtPower, "enable failed", "name", name, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DisableAll disables every device, continuing past failures.
func (r *ExtPowerRegistry) DisableAll() error {
	var errs []error
	for _, name := range r.Names() {
		if err := r.Disable(name); err != nil {
			logError(ComponentExtPower, "disable failed", "name", name, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
