// Package pin drives a rail control line on Linux boards through periph.io.
package pin

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"vccrail/core"
)

var errNoPin = errors.New("pin not found in hardware")

// Pin implements core.OutputPin on a periph.io GPIO line
type Pin struct {
	name string
	pin  gpio.PinIO // nil when the name did not resolve
}

// Open initializes periph.io and resolves name (e.g. "GPIO17").
// An unresolved name yields a Pin that reports not ready.
func Open(name string) (*Pin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	return ByName(name), nil
}

// ByName resolves name in the periph.io registry without initializing drivers
func ByName(name string) *Pin {
	return &Pin{name: name, pin: gpioreg.ByName(name)}
}

// New wraps an already resolved line
func New(p gpio.PinIO) *Pin {
	if p == nil {
		return &Pin{}
	}
	return &Pin{name: p.Name(), pin: p}
}

func (p *Pin) String() string {
	return p.name
}

// IsReady reports whether the line exists
func (p *Pin) IsReady() bool {
	return p.pin != nil
}

// Configure switches the line to output at initial
func (p *Pin) Configure(initial core.Level) error {
	return p.out(initial)
}

// Set drives the line to level
func (p *Pin) Set(level core.Level) error {
	return p.out(level)
}

func (p *Pin) out(level core.Level) error {
	if p.pin == nil {
		return fmt.Errorf("%s: %w", p.name, errNoPin)
	}
	if err := p.pin.Out(gpio.Level(level)); err != nil {
		return fmt.Errorf("%s: set %s: %w", p.name, level, err)
	}
	return nil
}
