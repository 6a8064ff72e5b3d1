//go:build rp2040 || rp2350

package main

import (
	"machine"
	"strconv"

	"vccrail/core"
)

// RPGPIOPin implements core.OutputPin for RP2040/RP2350
type RPGPIOPin struct {
	pin machine.Pin
}

func NewRPGPIOPin(pin machine.Pin) *RPGPIOPin {
	return &RPGPIOPin{pin: pin}
}

func (p *RPGPIOPin) IsReady() bool {
	return p.pin != machine.NoPin
}

func (p *RPGPIOPin) Configure(initial core.Level) error {
	// Latch the level first so the output comes up at the initial level
	p.pin.Set(bool(initial))
	p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

func (p *RPGPIOPin) Set(level core.Level) error {
	p.pin.Set(bool(level))
	return nil
}

// pinNumberToMachinePin converts a GPIO number to machine.Pin
func pinNumberToMachinePin(s string) machine.Pin {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n >= maxGPIO {
		return machine.NoPin
	}
	return machine.Pin(n)
}
