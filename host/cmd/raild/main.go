// Command raild drives a VCC rail from a Linux host GPIO.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"vccrail/config"
	"vccrail/core"
	"vccrail/host/pin"
	"vccrail/host/serial"
	"vccrail/host/usbpower"
)

var (
	configPath = flag.String("config", "", "Path to YAML config file (defaults apply when empty)")
	pinName    = flag.String("pin", "", "Override the control pin name")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level, _ := config.ParseLogLevel(cfg.Log.Level)
	if *verbose {
		level = slog.LevelDebug
	}
	core.SetLogLevel(level)
	core.SetLogWriter(os.Stderr)
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("raild stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if *pinName != "" {
		cfg.Rail.Pin = *pinName
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	p, err := pin.Open(cfg.Rail.Pin)
	if err != nil {
		return err
	}

	// A rail that fails to initialise leaves the peripheral unpowered.
	rail, err := core.NewRail(p, cfg.RailOptions()...)
	if err != nil {
		return fmt.Errorf("rail init: %w", err)
	}
	rail.Watch(func(enabled bool) {
		log.Info("rail changed", "rail", rail.Name(), "enabled", enabled)
	})

	registry := core.NewExtPowerRegistry()
	deps := core.TriggerDeps{Registry: registry, Name: rail.Name()}

	var poller *core.StatusPoller
	if cfg.Mode() == core.TriggerUSB {
		supply := cfg.Trigger.USB.Supply
		// Only the default path is a guess; an explicit supply must exist
		if supply == config.DefaultSupply {
			if supply, err = usbpower.Locate(supply, usbpower.SysfsPowerSupplyPath); err != nil {
				return err
			}
		}
		log.Info("watching usb power", "supply", supply)
		poller = core.NewStatusPoller(usbpower.Probe(supply), cfg.Trigger.USB.PollInterval)
		deps.Source = poller
	}

	trigger, err := core.NewTrigger(cfg.Mode(), deps)
	if err != nil {
		return err
	}
	if err := trigger.Attach(rail); err != nil {
		return fmt.Errorf("attach %s trigger: %w", trigger.Mode(), err)
	}
	log.Info("rail ready", "rail", rail.Name(), "pin", p.String(), "mode", trigger.Mode(), "enabled", rail.Enabled())

	switch {
	case poller != nil:
		poller.Run(ctx)
	case trigger.Mode() == core.TriggerManual && cfg.Link.Device != "":
		return serveLink(ctx, cfg, registry, log)
	default:
		<-ctx.Done()
	}
	return nil
}

func serveLink(ctx context.Context, cfg *config.Config, registry *core.ExtPowerRegistry, log *slog.Logger) error {
	port, err := serial.Open(&serial.Config{
		Device:      cfg.Link.Device,
		Baud:        cfg.Link.Baud,
		ReadTimeout: cfg.Link.ReadTimeout,
	})
	if err != nil {
		return err
	}
	defer port.Close()

	log.Info("serving ext-power link", "device", cfg.Link.Device, "rails", registry.Names())

	link := core.NewLink(port, registry)
	err = link.Serve(ctx)
	received, failed := link.Stats()
	log.Info("link closed", "frames", received, "errors", failed)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
