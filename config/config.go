package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vccrail/core"
)

// Config describes one rail controller instance
type Config struct {
	Rail    RailConfig    `yaml:"rail"`
	Trigger TriggerConfig `yaml:"trigger"`
	Link    LinkConfig    `yaml:"link"`
	Log     LogConfig     `yaml:"log"`
}

// RailConfig describes the controlled rail and its control pin
type RailConfig struct {
	Name        string        `yaml:"name"`         // ext-power name
	Pin         string        `yaml:"pin"`          // e.g. "P0.13" or "GPIO13"
	SettleDelay time.Duration `yaml:"settle_delay"` // wait after enabling
}

// TriggerConfig selects the policy driving the rail
type TriggerConfig struct {
	Mode string    `yaml:"mode"` // manual, usb or static
	USB  USBConfig `yaml:"usb"`
}

// USBConfig configures USB presence detection
type USBConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	Supply       string        `yaml:"supply"` // sysfs power_supply directory on Linux hosts
}

// LinkConfig is the serial port serving ext-power commands in manual mode
type LinkConfig struct {
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// LogConfig controls diagnostics
type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	DefaultPin          = "P0.13"
	DefaultSupply       = "/sys/class/power_supply/usb"
	DefaultBaud         = 115200
	DefaultReadTimeout  = 100 * time.Millisecond
	DefaultLogLevel     = "info"
	DefaultPollInterval = core.DefaultPollInterval
)

// Default returns the nice!nano v2 configuration: P0.13 gating VCC, manual trigger
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in missing configuration values
func applyDefaults(cfg *Config) {
	if cfg.Rail.Name == "" {
		cfg.Rail.Name = core.DefaultRailName
	}
	if cfg.Rail.Pin == "" {
		cfg.Rail.Pin = DefaultPin
	}
	// A negative delay means "no settle delay"; zero means "unset"
	if cfg.Rail.SettleDelay == 0 {
		cfg.Rail.SettleDelay = core.DefaultSettleDelay
	} else if cfg.Rail.SettleDelay < 0 {
		cfg.Rail.SettleDelay = 0
	}

	if cfg.Trigger.Mode == "" {
		cfg.Trigger.Mode = string(core.TriggerManual)
	}
	if cfg.Trigger.USB.PollInterval == 0 {
		cfg.Trigger.USB.PollInterval = DefaultPollInterval
	}
	if cfg.Trigger.USB.Supply == "" {
		cfg.Trigger.USB.Supply = DefaultSupply
	}

	if cfg.Link.Baud == 0 {
		cfg.Link.Baud = DefaultBaud
	}
	if cfg.Link.ReadTimeout == 0 {
		cfg.Link.ReadTimeout = DefaultReadTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

var (
	ErrInvalidMode     = errors.New("invalid trigger mode")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// ParseMode converts a mode string to a trigger mode
func ParseMode(s string) (core.TriggerMode, error) {
	switch mode := core.TriggerMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case core.TriggerManual, core.TriggerUSB, core.TriggerStatic:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// ParseLogLevel converts a level name to a slog level
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}
}

// Mode returns the parsed trigger mode
func (c *Config) Mode() core.TriggerMode {
	mode, _ := ParseMode(c.Trigger.Mode)
	return mode
}

// Validate checks a configuration after defaults have been applied
func (c *Config) Validate() error {
	var errs []error

	if c.Rail.Name == "" {
		errs = append(errs, errors.New("rail.name is required"))
	}
	if c.Rail.Pin == "" {
		errs = append(errs, errors.New("rail.pin is required"))
	}
	if c.Rail.SettleDelay < 0 {
		errs = append(errs, errors.New("rail.settle_delay must not be negative"))
	}

	mode, err := ParseMode(c.Trigger.Mode)
	if err != nil {
		errs = append(errs, err)
	}
	if mode == core.TriggerUSB && c.Trigger.USB.PollInterval <= 0 {
		errs = append(errs, errors.New("trigger.usb.poll_interval must be positive"))
	}
	if c.Link.Baud <= 0 {
		errs = append(errs, errors.New("link.baud must be positive"))
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// RailOptions returns the core options matching the rail section
func (c *Config) RailOptions() []core.RailOption {
	return []core.RailOption{
		core.WithName(c.Rail.Name),
		core.WithSettleDelay(c.Rail.SettleDelay),
	}
}
