//go:build nicenano

package main

import (
	"device/nrf"
	"machine"
)

// InitUSB initializes USB serial communication
func InitUSB() {
	// machine.Serial is USB CDC on the nice!nano
	_ = machine.Serial.Configure(machine.UARTConfig{})
}

// VBUSPresent reports whether the USB regulator sees bus voltage
func VBUSPresent() (bool, error) {
	return nrf.POWER.USBREGSTATUS.HasBits(nrf.POWER_USBREGSTATUS_VBUSDETECT_Msk), nil
}

// USBPort adapts machine.Serial to io.ReadWriter for core.Link
type USBPort struct{}

// Read drains whatever the CDC endpoint has buffered and never blocks
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
