//go:build rp2040 || rp2350

package main

import (
	"machine"

	"vccrail/config"
	"vccrail/core"
)

// Link-time board settings, e.g.
//
//	tinygo flash -target=pico -ldflags="-X main.triggerMode=static" ./targets/rp2040
var (
	triggerMode = "manual"
	railGPIO    = "22"
)

// ModeConfig determines how the rail is driven
type ModeConfig struct {
	Trigger core.TriggerMode
	Pin     machine.Pin
}

// GetMode resolves the link-time settings. An unparsable pin number yields
// machine.NoPin, which the rail reports as not ready.
func GetMode() ModeConfig {
	mode, err := config.ParseMode(triggerMode)
	if err != nil {
		mode = core.TriggerManual
	}
	return ModeConfig{
		Trigger: mode,
		Pin:     pinNumberToMachinePin(railGPIO),
	}
}
