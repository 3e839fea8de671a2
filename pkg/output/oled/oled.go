// Package oled renders frames on an SSD1306 128x64 I2C OLED.
package oled

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/ericogr/accel-color-monitor/pkg/output"
	"github.com/ericogr/accel-color-monitor/pkg/sensor"
)

type screen interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

// addrBus pins every transaction to one address so the panel can live at a
// non-default address.
type addrBus struct {
	i2c.Bus
	addr uint16
}

func (b addrBus) Tx(_ uint16, w, r []byte) error { return b.Bus.Tx(b.addr, w, r) }

type OLEDOutput struct {
	screen screen
	bus    i2c.BusCloser
	img    *image1bit.VerticalLSB
}

// NewOLED opens the bus and initializes the panel at addr.
func NewOLED(busName string, addr uint16) (output.Sink, error) {
	bus, err := sensor.OpenBus(busName)
	if err != nil {
		return nil, err
	}
	dev, err := ssd1306.NewI2C(addrBus{Bus: bus, addr: addr}, &ssd1306.DefaultOpts)
	if err != nil {
		_ = bus.Close()
		return nil, errors.Wrap(err, "ssd1306 init")
	}
	return newOLED(dev, bus), nil
}

func newOLED(s screen, bus i2c.BusCloser) *OLEDOutput {
	return &OLEDOutput{screen: s, bus: bus, img: image1bit.NewVerticalLSB(s.Bounds())}
}

func (o *OLEDOutput) Render(f output.Frame) error {
	draw.Draw(o.img, o.img.Bounds(), &image.Uniform{C: image1bit.Off}, image.Point{}, draw.Src)
	d := font.Drawer{
		Dst:  o.img,
		Src:  &image.Uniform{C: image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines(f) {
		d.Dot = fixed.P(0, (i+1)*basicfont.Face7x13.Height)
		d.DrawString(line)
	}
	return errors.Wrap(o.screen.Draw(o.img.Bounds(), o.img, image.Point{}), "ssd1306 draw")
}

// Close blanks the panel and releases the bus.
func (o *OLEDOutput) Close() error {
	haltErr := o.screen.Halt()
	if o.bus != nil {
		if err := o.bus.Close(); err != nil {
			return errors.Wrap(err, "close i2c")
		}
	}
	return errors.Wrap(haltErr, "ssd1306 halt")
}

// lines lays the frame out in 17 columns of the 7x13 font.
func lines(f output.Frame) []string {
	x, y, z := output.Placeholder, output.Placeholder, output.Placeholder
	if f.HasAcceleration {
		x = fmt.Sprintf("%.2f", f.Acceleration.X)
		y = fmt.Sprintf("%.2f", f.Acceleration.Y)
		z = fmt.Sprintf("%.2f", f.Acceleration.Z)
	}
	r, g, b := output.Placeholder, output.Placeholder, output.Placeholder
	if f.HasColor {
		r = fmt.Sprintf("%03d", f.Color.R)
		g = fmt.Sprintf("%03d", f.Color.G)
		b = fmt.Sprintf("%03d", f.Color.B)
	}
	return []string{
		"Acceleration (g)",
		fmt.Sprintf("X:%6s Y:%6s", x, y),
		fmt.Sprintf("Z:%6s", z),
		fmt.Sprintf("R:%3s G:%3s B:%3s", r, g, b),
	}
}
