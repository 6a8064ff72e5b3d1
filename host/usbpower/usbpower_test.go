package usbpower

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vccrail/core"
)

func writeSupply(t *testing.T, root, name, typ, online string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "type"), []byte(typ+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "online"), []byte(online+"\n"), 0o644))
	return dir
}

func TestProbe(t *testing.T) {
	dir := writeSupply(t, t.TempDir(), "usb", "USB", "1")
	probe := Probe(dir)

	present, err := probe()
	require.NoError(t, err)
	assert.True(t, present)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "online"), []byte("0\n"), 0o644))
	present, err = probe()
	require.NoError(t, err)
	assert.False(t, present)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "online"), []byte("maybe\n"), 0o644))
	_, err = probe()
	assert.Error(t, err)

	_, err = Probe(filepath.Join(dir, "missing"))()
	assert.Error(t, err)
}

func TestFindUSBSupplies(t *testing.T) {
	root := t.TempDir()
	usb := writeSupply(t, root, "usb", "USB", "1")
	writeSupply(t, root, "BAT0", "Battery", "1")
	pd := writeSupply(t, root, "ucsi-source-psy-0", "USB_PD", "0")

	supplies, err := FindUSBSupplies(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{usb, pd}, supplies)
}

func TestLocate(t *testing.T) {
	root := t.TempDir()
	writeSupply(t, root, "BAT0", "Battery", "1")
	pd := writeSupply(t, root, "ucsi-source-psy-0", "USB_PD", "0")
	usb := writeSupply(t, root, "usb", "USB", "1")

	found, err := Locate(usb, root)
	require.NoError(t, err)
	assert.Equal(t, usb, found, "an existing supply is used as is")

	found, err = Locate(filepath.Join(root, "missing"), root)
	require.NoError(t, err)
	assert.Equal(t, pd, found, "first USB supply in name order")

	empty := t.TempDir()
	writeSupply(t, empty, "BAT0", "Battery", "1")
	_, err = Locate(filepath.Join(empty, "usb"), empty)
	assert.ErrorIs(t, err, ErrNoSupply)

	_, err = Locate(filepath.Join(root, "missing"), filepath.Join(root, "nope"))
	assert.Error(t, err)
}

func TestProbeDrivesPoller(t *testing.T) {
	dir := writeSupply(t, t.TempDir(), "usb", "USB", "0")
	poller := core.NewStatusPoller(Probe(dir), 0)

	var got []core.USBStatus
	poller.Subscribe(func(s core.USBStatus) { got = append(got, s) })

	poller.Poll()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "online"), []byte("1\n"), 0o644))
	poller.Poll()

	assert.Equal(t, []core.USBStatus{core.USBDisconnected, core.USBConnected}, got)
}
