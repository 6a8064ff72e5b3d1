//go:build nicenano

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ssd1306"
)

const (
	displayWidth  = 128
	displayHeight = 32
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

// StatusDisplay is an SSD1306 OLED hanging off the switched rail. It loses
// its configuration whenever the rail drops, so every power-up re-initialises it.
type StatusDisplay struct {
	dev *ssd1306.Device
}

func NewStatusDisplay() *StatusDisplay {
	err := machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.SDA_PIN,
		SCL:       machine.SCL_PIN,
	})
	if err != nil {
		return &StatusDisplay{}
	}
	return &StatusDisplay{dev: ssd1306.NewI2C(machine.I2C0)}
}

// Show runs as a rail watcher, after the settle delay on power-up.
func (d *StatusDisplay) Show(enabled bool) {
	if d.dev == nil || !enabled {
		return
	}

	d.dev.Configure(ssd1306.Config{
		Address: ssd1306.Address_128_32,
		Width:   displayWidth,
		Height:  displayHeight,
	})
	d.dev.ClearBuffer()

	// Outline with a filled bar: rail on
	_ = d.dev.FillRectangle(0, 0, displayWidth, displayHeight, white)
	_ = d.dev.FillRectangle(2, 2, displayWidth-4, displayHeight-4, black)
	_ = d.dev.FillRectangle(6, 8, displayWidth-12, displayHeight-16, white)
	_ = d.dev.Display()
}
