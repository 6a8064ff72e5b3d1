//go:build nicenano

package main

import (
	"machine"

	"vccrail/core"
)

// GPIOPin implements core.OutputPin on an nRF52840 GPIO
type GPIOPin struct {
	pin machine.Pin
}

func NewGPIOPin(pin machine.Pin) *GPIOPin {
	return &GPIOPin{pin: pin}
}

func (p *GPIOPin) IsReady() bool {
	return p.pin != machine.NoPin
}

// Configure latches the initial level before switching the pin to output so
// the rail never glitches low during boot.
func (p *GPIOPin) Configure(initial core.Level) error {
	p.pin.Set(bool(initial))
	p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

func (p *GPIOPin) Set(level core.Level) error {
	p.pin.Set(bool(level))
	return nil
}
