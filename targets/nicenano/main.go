//go:build nicenano

package main

import (
	"context"
	"machine"
	"time"

	"vccrail/config"
	"vccrail/core"
)

// triggerMode selects the rail policy at link time:
//
//	tinygo flash -target=nicenano -ldflags="-X main.triggerMode=usb" ./targets/nicenano
var triggerMode = "manual"

// railPin is the nice!nano VCC control line (P0.13, active high).
var railPin = machine.P0_13

func main() {
	InitUSB()

	mode, err := config.ParseMode(triggerMode)
	if err != nil {
		mode = core.TriggerManual
	}

	// Manual mode owns the CDC port for the ext-power link.
	if mode != core.TriggerManual {
		core.SetLogWriter(machine.Serial)
	}

	rail, err := core.NewRail(NewGPIOPin(railPin))
	if err != nil {
		park()
	}

	display := NewStatusDisplay()
	display.Show(rail.Enabled())
	rail.Watch(display.Show)

	registry := core.NewExtPowerRegistry()
	deps := core.TriggerDeps{Registry: registry, Name: rail.Name()}

	var poller *core.StatusPoller
	if mode == core.TriggerUSB {
		poller = core.NewStatusPoller(VBUSPresent, core.DefaultPollInterval)
		deps.Source = poller
	}

	trigger, err := core.NewTrigger(mode, deps)
	if err != nil {
		park()
	}
	if err := trigger.Attach(rail); err != nil {
		park()
	}

	ctx := context.Background()
	switch mode {
	case core.TriggerUSB:
		poller.Run(ctx)
	case core.TriggerManual:
		link := core.NewLink(USBPort{}, registry)
		for {
			_ = link.Serve(ctx)
			// Start the next session on a clean decoder
			link.Reset()
			time.Sleep(10 * time.Millisecond)
		}
	}
	park()
}

// park idles forever. The rail pin keeps whatever level it last had.
func park() {
	for {
		time.Sleep(time.Second)
	}
}
