package t5403

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/io/i2c"
	"golang.org/x/exp/io/i2c/driver"
)

const (
	// DefaultAddress is the fixed 7-bit I2C address of the T5403
	DefaultAddress = 0x77

	// DefaultDevice is the Raspberry Pi's user facing I2C bus
	DefaultDevice = "/dev/i2c-1"
)

// Bus is a register level connection to a single sensor. The device address
// is part of the Bus, the driver only ever names registers.
type Bus interface {
	ReadReg(reg byte, buf []byte) error
	WriteReg(reg byte, buf []byte) error
}

// DevfsBus talks to the sensor through golang.org/x/exp/io/i2c. It holds no
// open handle: each transaction opens the device, performs a single register
// access, and closes it again, whether or not the access succeeded.
type DevfsBus struct {
	Opener  driver.Opener
	Address int
}

// NewDevfsBus returns a DevfsBus for the T5403 on the given /dev/i2c-N device
// file.
func NewDevfsBus(dev string) *DevfsBus {
	if dev == "" {
		dev = DefaultDevice
	}

	return &DevfsBus{
		Opener:  &i2c.Devfs{Dev: dev},
		Address: DefaultAddress,
	}
}

// ReadReg fills buf starting at register reg
func (b *DevfsBus) ReadReg(reg byte, buf []byte) error {
	return b.session(func(d *i2c.Device) error {
		return d.ReadReg(reg, buf)
	})
}

// WriteReg writes buf starting at register reg
func (b *DevfsBus) WriteReg(reg byte, buf []byte) error {
	return b.session(func(d *i2c.Device) error {
		return d.WriteReg(reg, buf)
	})
}

func (b *DevfsBus) session(fn func(*i2c.Device) error) (err error) {
	address := b.Address
	if address == 0 {
		address = DefaultAddress
	}

	device, err := i2c.Open(b.Opener, address)
	if err != nil {
		return errors.Wrapf(err, "could not open I2C device at 0x%02x", address)
	}
	defer func() {
		if cerr := device.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "could not close I2C device")
		}
	}()

	return fn(device)
}
