// Package t5403 is a driver for the EPCOS/TDK T5403 barometric pressure and
// temperature sensor on an I2C bus.
//
// Datasheet: https://cdn.sparkfun.com/datasheets/Sensors/Weather/T5400.pdf
package t5403

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// Register the sensor writes conversion results to
	dataRegister = 0xF5

	// Register conversion commands are written to
	commandRegister = 0xF1

	// Command byte that starts a temperature conversion
	commandTemperature = 0x03

	// How long to sleep after starting a temperature conversion before the
	// result can be read
	temperatureSleep = 5 * time.Millisecond
)

// Logger is the definition of the logger interface we need
type Logger interface {
	Debug(...interface{})
	Debugf(string, ...interface{})
}

// Reading is a temperature and pressure pair taken one after the other
type Reading struct {
	// Temperature in degrees Celsius
	Temperature float64
	// Pressure in hPa
	Pressure float64
	Mode     Mode
	Time     time.Time
}

// T5403 encapsulates communications with the T5403 pressure sensor.
//
// A conversion is a command write, a sleep and a data read. Another command
// sent to the sensor during the sleep corrupts the result, so a T5403 must
// not be used from more than one goroutine at a time.
type T5403 struct {
	bus   Bus
	cal   *Calibration
	log   Logger
	sleep func(time.Duration)
}

// New reads the calibration coefficients from the sensor and returns a driver
// ready to take readings. If any coefficient can't be read no driver is
// returned.
func New(bus Bus) (*T5403, error) {
	t := &T5403{
		bus:   bus,
		log:   logrus.StandardLogger(),
		sleep: time.Sleep,
	}

	cal, err := t.readCalibration()
	if err != nil {
		return nil, errors.Wrap(err, "could not read calibration coefficients")
	}
	t.cal = &cal

	t.log.Debugf("Read calibration coefficients: %+v", cal)
	return t, nil
}

// SetLogger sets the logger to use
func (t *T5403) SetLogger(l Logger) {
	t.log = l
}

// Calibration returns the coefficients read from the sensor
func (t *T5403) Calibration() (Calibration, error) {
	if t == nil || t.cal == nil {
		return Calibration{}, ErrUninitialized
	}
	return *t.cal, nil
}

func (t *T5403) readCalibration() (Calibration, error) {
	raw := make([]byte, 2*len(calibrationRegisters))
	for i, reg := range calibrationRegisters {
		if err := t.read(reg, raw[2*i:2*i+2]); err != nil {
			return Calibration{}, errors.Wrapf(err, "could not read C%d", i+1)
		}
	}

	t.log.Debugf("Raw calibration bytes: % x", raw)
	return newCalibration(raw), nil
}

// RawTemperature returns the compensated temperature in hundredths of a
// degree Celsius.
func (t *T5403) RawTemperature() (int32, error) {
	if t == nil || t.cal == nil {
		return 0, ErrUninitialized
	}

	tr, err := t.readTemperatureSample()
	if err != nil {
		return 0, err
	}

	return t.cal.Temperature(tr), nil
}

// Temperature returns the temperature in degrees Celsius
func (t *T5403) Temperature() (float64, error) {
	temp, err := t.RawTemperature()
	if err != nil {
		return 0, err
	}

	return float64(temp) / 100.0, nil
}

// Pressure returns the pressure in hPa, rounded to two decimal places. A
// temperature conversion is made first as the pressure compensation depends
// on it.
func (t *T5403) Pressure(mode Mode) (float64, error) {
	r, err := t.Sense(mode)
	if err != nil {
		return 0, err
	}

	return r.Pressure, nil
}

// Sense takes a temperature and a pressure reading. The compensated
// temperature is also the temperature input to the pressure compensation.
func (t *T5403) Sense(mode Mode) (Reading, error) {
	tr, pr, err := t.RawSamples(mode)
	if err != nil {
		return Reading{}, err
	}

	temp := t.cal.Temperature(tr)
	return Reading{
		Temperature: float64(temp) / 100.0,
		Pressure:    t.cal.Pressure(temp, pr),
		Mode:        mode,
		Time:        time.Now(),
	}, nil
}

// RawSamples makes a temperature conversion followed by a pressure conversion
// in the given mode and returns the uncompensated ADC samples. Pass tr
// through Calibration.Temperature before giving it to Calibration.Pressure.
func (t *T5403) RawSamples(mode Mode) (tr int16, pr uint16, err error) {
	if t == nil || t.cal == nil {
		return 0, 0, ErrUninitialized
	}
	if !mode.Valid() {
		return 0, 0, errors.Errorf("t5403: unsupported pressure mode %s", mode)
	}

	if tr, err = t.readTemperatureSample(); err != nil {
		return 0, 0, err
	}
	if pr, err = t.readPressureSample(mode); err != nil {
		return 0, 0, err
	}

	return tr, pr, nil
}

// readTemperatureSample starts a temperature conversion and returns the raw
// signed result.
func (t *T5403) readTemperatureSample() (int16, error) {
	b, err := t.convert(commandTemperature, temperatureSleep)
	if err != nil {
		return 0, errors.Wrap(err, "could not read temperature")
	}

	tr := decodeSigned(b)
	t.log.Debugf("Read temperature bytes: % x (%d)", b, tr)
	return tr, nil
}

// readPressureSample starts a pressure conversion in the given mode and
// returns the raw unsigned result.
func (t *T5403) readPressureSample(mode Mode) (uint16, error) {
	b, err := t.convert(mode.Command(), mode.Delay())
	if err != nil {
		return 0, errors.Wrapf(err, "could not read pressure in %s mode", mode)
	}

	pr := decodeUnsigned(b)
	t.log.Debugf("Read pressure bytes: % x (%d)", b, pr)
	return pr, nil
}

// convert writes command, sleeps for the conversion time and reads the two
// byte result.
func (t *T5403) convert(command byte, wait time.Duration) ([]byte, error) {
	// Write the command
	if err := t.write(commandRegister, command); err != nil {
		return nil, err
	}

	t.sleep(wait)

	// Read the sensor data
	b := make([]byte, 2)
	if err := t.read(dataRegister, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (t *T5403) read(reg byte, b []byte) error {
	if err := t.bus.ReadReg(reg, b); err != nil {
		return &TransportError{Op: "read", Register: reg, Err: err}
	}
	return nil
}

func (t *T5403) write(reg byte, b ...byte) error {
	if err := t.bus.WriteReg(reg, b); err != nil {
		return &TransportError{Op: "write", Register: reg, Err: err}
	}
	return nil
}
