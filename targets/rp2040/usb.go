//go:build rp2040 || rp2350

package main

import (
	"machine"
)

// maxGPIO bounds user pin numbers (GPIO0-GPIO29)
const maxGPIO = 30

// vbusSense is the Pico's VBUS divider input
var vbusSense = machine.GPIO24

// InitUSB initializes USB serial communication
// TinyGo automatically sets up USB CDC-ACM on RP2040
func InitUSB() {
	// Configure machine.Serial (which is USB CDC on RP2040)
	_ = machine.Serial.Configure(machine.UARTConfig{})
	vbusSense.Configure(machine.PinConfig{Mode: machine.PinInput})
}

// VBUSPresent samples the VBUS sense line
func VBUSPresent() (bool, error) {
	return vbusSense.Get(), nil
}

// USBPort adapts machine.Serial to io.ReadWriter for core.Link
type USBPort struct{}

// Read returns the bytes already buffered by the CDC endpoint
func (USBPort) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) && machine.Serial.Buffered() > 0 {
		c, err := machine.Serial.ReadByte()
		if err != nil {
			return n, err
		}
		b[n] = c
		n++
	}
	return n, nil
}

func (USBPort) Write(b []byte) (int, error) {
	return machine.Serial.Write(b)
}
