// Package usbpower detects USB bus power on Linux hosts through the
// power_supply class in sysfs.
package usbpower

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vccrail/core"
)

// SysfsPowerSupplyPath is where the kernel lists power supplies
const SysfsPowerSupplyPath = "/sys/class/power_supply"

var ErrNoSupply = errors.New("no USB power supply found")

// Probe returns a VBUS probe reading the "online" attribute of the supply
// directory (e.g. /sys/class/power_supply/usb).
func Probe(supply string) core.VBUSProbe {
	online := filepath.Join(supply, "online")
	return func() (bool, error) {
		data, err := os.ReadFile(online)
		if err != nil {
			return false, err
		}
		switch v := strings.TrimSpace(string(data)); v {
		case "0":
			return false, nil
		case "1", "2":
			// 2 is reported by some USB-PD chargers for "online, programmable"
			return true, nil
		default:
			return false, fmt.Errorf("unexpected %s value %q", online, v)
		}
	}
}

// FindUSBSupplies lists supply directories whose type is USB
func FindUSBSupplies(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var supplies []string
	for _, entry := range entries {
		dir := filepath.Join(root, entry.Name())
		data, err := os.ReadFile(filepath.Join(dir, "type"))
		if err != nil {
			continue // Skip supplies we can't parse
		}
		if strings.HasPrefix(strings.TrimSpace(string(data)), "USB") {
			supplies = append(supplies, dir)
		}
	}
	return supplies, nil
}

// Locate returns supply when it exposes an online attribute, otherwise the
// first USB supply under root in name order.
func Locate(supply, root string) (string, error) {
	if _, err := os.Stat(filepath.Join(supply, "online")); err == nil {
		return supply, nil
	}

	supplies, err := FindUSBSupplies(root)
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", root, err)
	}
	if len(supplies) == 0 {
		return "", fmt.Errorf("%w under %s", ErrNoSupply, root)
	}
	return supplies[0], nil
}
