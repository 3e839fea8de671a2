package sensor

import (
	"time"

	"github.com/ericogr/accel-color-monitor/pkg/config"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
)

const (
	mpuRegAccelConfig = 0x1C
	mpuRegAccelXOutH  = 0x3B
	mpuRegPwrMgmt1    = 0x6B
	mpuRegWhoAmI      = 0x75

	mpuSleep = 0x40
)

// MPU6050 reads acceleration from an InvenSense MPU-6050 (or register
// compatible MPU-6500/9250) over I2C.
type MPU6050 struct {
	open   busOpener
	addr   uint16
	rangeG int

	bus     i2c.BusCloser
	dev     *i2c.Dev
	lsbPerG float64
}

func NewMPU6050(bus string, cfg config.AccelerometerConfig) *MPU6050 {
	return &MPU6050{open: openerFor(bus), addr: uint16(cfg.Address), rangeG: cfg.RangeG}
}

func (s *MPU6050) Init() error {
	afs, lsb, err := mpuRange(s.rangeG)
	if err != nil {
		return err
	}
	bus, err := s.open()
	if err != nil {
		return err
	}
	dev := &i2c.Dev{Addr: s.addr, Bus: bus}

	id, err := readRegs(dev, mpuRegWhoAmI, 1)
	if err != nil {
		_ = bus.Close()
		return errors.Wrap(err, "mpu6050 who_am_i")
	}
	switch id[0] {
	case 0x68, 0x70, 0x71:
	default:
		_ = bus.Close()
		return errors.Wrapf(ErrUnexpectedDevice, "mpu6050 at %#02x reported %#02x", s.addr, id[0])
	}
	// wake up, internal oscillator
	if err := writeReg(dev, mpuRegPwrMgmt1, 0x00); err != nil {
		_ = bus.Close()
		return errors.Wrap(err, "mpu6050 wake")
	}
	if err := writeReg(dev, mpuRegAccelConfig, afs<<3); err != nil {
		_ = bus.Close()
		return errors.Wrap(err, "mpu6050 accel config")
	}

	s.bus, s.dev, s.lsbPerG = bus, dev, lsb
	return nil
}

func (s *MPU6050) Read() (Acceleration, error) {
	if s.dev == nil {
		return Acceleration{}, ErrNotInitialized
	}
	buf, err := readRegs(s.dev, mpuRegAccelXOutH, 6)
	if err != nil {
		return Acceleration{}, errors.Wrap(err, "mpu6050 read")
	}
	x := int16(buf[0])<<8 | int16(buf[1])
	y := int16(buf[2])<<8 | int16(buf[3])
	z := int16(buf[4])<<8 | int16(buf[5])
	return Acceleration{
		X:         float64(x) / s.lsbPerG,
		Y:         float64(y) / s.lsbPerG,
		Z:         float64(z) / s.lsbPerG,
		Timestamp: time.Now(),
	}, nil
}

// Close puts the chip to sleep and releases the bus. It is safe to call on a
// driver whose Init failed.
func (s *MPU6050) Close() error {
	if s.bus == nil {
		return nil
	}
	sleepErr := writeReg(s.dev, mpuRegPwrMgmt1, mpuSleep)
	err := s.bus.Close()
	s.bus, s.dev = nil, nil
	if err != nil {
		return errors.Wrap(err, "mpu6050 close bus")
	}
	return errors.Wrap(sleepErr, "mpu6050 sleep")
}

// mpuRange maps a full scale in g to the AFS_SEL bits and the sensitivity.
func mpuRange(g int) (byte, float64, error) {
	switch g {
	case 2:
		return 0, 16384, nil
	case 4:
		return 1, 8192, nil
	case 8:
		return 2, 4096, nil
	case 16:
		return 3, 2048, nil
	default:
		return 0, 0, errors.Errorf("invalid accelerometer range %d g", g)
	}
}
