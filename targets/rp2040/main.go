//go:build rp2040 || rp2350

package main

import (
	"context"
	"machine"
	"time"

	"vccrail/core"
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	// Initialize USB CDC immediately
	InitUSB()

	mode := GetMode()
	if mode.Trigger != core.TriggerManual {
		core.SetLogWriter(machine.Serial)
	}

	rail, err := core.NewRail(NewRPGPIOPin(mode.Pin))
	if err != nil {
		// Nothing drives the rail; keep the CDC port alive for diagnostics
		idle()
	}

	registry := core.NewExtPowerRegistry()
	deps := core.TriggerDeps{Registry: registry, Name: rail.Name()}

	var poller *core.StatusPoller
	if mode.Trigger == core.TriggerUSB {
		poller = core.NewStatusPoller(VBUSPresent, core.DefaultPollInterval)
		deps.Source = poller
	}

	trigger, err := core.NewTrigger(mode.Trigger, deps)
	if err == nil {
		err = trigger.Attach(rail)
	}
	if err != nil {
		idle()
	}

	ctx := context.Background()
	switch mode.Trigger {
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
	idle()
}

func idle() {
	for {
		time.Sleep(time.Second)
	}
}
