package sensor

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// busOpener opens the I2C bus a driver talks to. Tests swap it for a
// playback bus.
type busOpener func() (i2c.BusCloser, error)

// OpenBus initializes the host drivers and opens the named I2C bus.
func OpenBus(name string) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "host init")
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open i2c %q", name)
	}
	return bus, nil
}

func openerFor(name string) busOpener {
	return func() (i2c.BusCloser, error) { return OpenBus(name) }
}

func writeReg(dev *i2c.Dev, reg, value byte) error {
	if err := dev.Tx([]byte{reg, value}, nil); err != nil {
		return errors.Wrapf(err, "write reg %#02x", reg)
	}
	return nil
}

func readRegs(dev *i2c.Dev, reg byte, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := dev.Tx([]byte{reg}, buf); err != nil {
		return nil, errors.Wrapf(err, "read reg %#02x", reg)
	}
	return buf, nil
}
