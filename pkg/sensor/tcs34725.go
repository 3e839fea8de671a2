package sensor

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/ericogr/accel-color-monitor/pkg/config"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
)

const (
	tcsCommand   = 0x80
	tcsAutoIncr  = 0x20
	tcsRegEnable = 0x00
	tcsRegATime  = 0x01
	tcsRegCtrl   = 0x0F
	tcsRegID     = 0x12
	tcsRegCData  = 0x14

	tcsEnablePON = 0x01
	tcsEnableAEN = 0x02

	tcsCycle = 2.4 // ms per integration cycle
)

// TCS34725 reads RGB color from an AMS TCS3472x light-to-digital converter.
type TCS34725 struct {
	open          busOpener
	addr          uint16
	gain          int
	integrationMs float64

	bus i2c.BusCloser
	dev *i2c.Dev
}

func NewTCS34725(bus string, cfg config.ColorConfig) *TCS34725 {
	return &TCS34725{open: openerFor(bus), addr: uint16(cfg.Address), gain: cfg.Gain, integrationMs: cfg.IntegrationMs}
}

func (s *TCS34725) Init() error {
	gain, err := tcsGain(s.gain)
	if err != nil {
		return err
	}
	bus, err := s.open()
	if err != nil {
		return err
	}
	dev := &i2c.Dev{Addr: s.addr, Bus: bus}

	id, err := readRegs(dev, tcsCommand|tcsRegID, 1)
	if err != nil {
		_ = bus.Close()
		return errors.Wrap(err, "tcs34725 id")
	}
	if id[0] != 0x44 && id[0] != 0x4D {
		_ = bus.Close()
		return errors.Wrapf(ErrUnexpectedDevice, "tcs34725 at %#02x reported %#02x", s.addr, id[0])
	}
	steps := []struct {
		reg, val byte
	}{
		{tcsRegATime, tcsATime(s.integrationMs)},
		{tcsRegCtrl, gain},
		{tcsRegEnable, tcsEnablePON},
	}
	for _, st := range steps {
		if err := writeReg(dev, tcsCommand|st.reg, st.val); err != nil {
			_ = bus.Close()
			return errors.Wrap(err, "tcs34725 setup")
		}
	}
	// the oscillator needs 2.4ms after PON before AEN
	time.Sleep(3 * time.Millisecond)
	if err := writeReg(dev, tcsCommand|tcsRegEnable, tcsEnablePON|tcsEnableAEN); err != nil {
		_ = bus.Close()
		return errors.Wrap(err, "tcs34725 enable")
	}

	s.bus, s.dev = bus, dev
	return nil
}

func (s *TCS34725) Read() (Color, error) {
	if s.dev == nil {
		return Color{}, ErrNotInitialized
	}
	buf, err := readRegs(s.dev, tcsCommand|tcsAutoIncr|tcsRegCData, 8)
	if err != nil {
		return Color{}, errors.Wrap(err, "tcs34725 read")
	}
	c := binary.LittleEndian.Uint16(buf[0:])
	r := binary.LittleEndian.Uint16(buf[2:])
	g := binary.LittleEndian.Uint16(buf[4:])
	b := binary.LittleEndian.Uint16(buf[6:])
	out := clearCorrected(c, r, g, b)
	out.Timestamp = time.Now()
	return out, nil
}

// Close powers the chip down and releases the bus.
func (s *TCS34725) Close() error {
	if s.bus == nil {
		return nil
	}
	offErr := writeReg(s.dev, tcsCommand|tcsRegEnable, 0x00)
	err := s.bus.Close()
	s.bus, s.dev = nil, nil
	if err != nil {
		return errors.Wrap(err, "tcs34725 close bus")
	}
	return errors.Wrap(offErr, "tcs34725 power down")
}

// clearCorrected divides each channel by the clear channel and scales the
// ratio to a byte.
func clearCorrected(c, r, g, b uint16) Color {
	out := Color{Clear: c}
	if c == 0 {
		return out
	}
	scale := func(v uint16) uint8 {
		x := math.Round(float64(v) / float64(c) * 255)
		if x > 255 {
			return 255
		}
		return uint8(x)
	}
	out.R, out.G, out.B = scale(r), scale(g), scale(b)
	return out
}

// tcsATime converts an integration time to the ATIME register value
// (256 - cycles).
func tcsATime(ms float64) byte {
	cycles := int(math.Round(ms / tcsCycle))
	if cycles < 1 {
		cycles = 1
	}
	if cycles > 256 {
		cycles = 256
	}
	return byte(256 - cycles)
}

func tcsGain(g int) (byte, error) {
	switch g {
	case 1:
		return 0x00, nil
	case 4:
		return 0x01, nil
	case 16:
		return 0x02, nil
	case 60:
		return 0x03, nil
	default:
		return 0, errors.Errorf("invalid color gain %dx", g)
	}
}
