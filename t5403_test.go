package t5403

import (
	"bytes"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// fakeBus is an in memory sensor. Calibration registers are served from
// testCalibrationBytes, the data register from the queued samples.
type fakeBus struct {
	regs    map[byte][]byte
	samples [][]byte
	ops     []string

	failRead  map[byte]bool
	failWrite bool
}

func newFakeBus(samples ...[]byte) *fakeBus {
	f := &fakeBus{
		regs:     make(map[byte][]byte),
		samples:  samples,
		failRead: make(map[byte]bool),
	}
	for i, reg := range calibrationRegisters {
		f.regs[reg] = testCalibrationBytes[2*i : 2*i+2]
	}
	return f
}

func (f *fakeBus) ReadReg(reg byte, buf []byte) error {
	f.ops = append(f.ops, fmt.Sprintf("read 0x%02x", reg))
	if f.failRead[reg] {
		return errors.New("remote I/O error")
	}

	if reg == dataRegister {
		if len(f.samples) == 0 {
			return errors.New("no sample queued")
		}
		copy(buf, f.samples[0])
		f.samples = f.samples[1:]
		return nil
	}

	copy(buf, f.regs[reg])
	return nil
}

func (f *fakeBus) WriteReg(reg byte, buf []byte) error {
	f.ops = append(f.ops, fmt.Sprintf("write 0x%02x % x", reg, buf))
	if f.failWrite {
		return errors.New("remote I/O error")
	}
	return nil
}

// newTestSensor creates a sensor on f that records its sleeps instead of
// sleeping.
func newTestSensor(t *testing.T, f *fakeBus) (*T5403, *[]time.Duration) {
	t.Helper()

	sensor, err := New(f)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	sensor.SetLogger(logger)

	var sleeps []time.Duration
	sensor.sleep = func(d time.Duration) {
		f.ops = append(f.ops, fmt.Sprintf("sleep %s", d))
		sleeps = append(sleeps, d)
	}

	f.ops = nil
	return sensor, &sleeps
}

func TestNewReadsCalibration(t *testing.T) {
	f := newFakeBus()
	sensor, err := New(f)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	cal, err := sensor.Calibration()
	if err != nil {
		t.Fatalf("Calibration() error = %v", err)
	}
	if cal != testCalibration {
		t.Errorf("Calibration() = %+v, want %+v", cal, testCalibration)
	}

	if len(f.ops) != len(calibrationRegisters) {
		t.Fatalf("New() made %d transactions, want %d: %v", len(f.ops), len(calibrationRegisters), f.ops)
	}
	for i, reg := range calibrationRegisters {
		if want := fmt.Sprintf("read 0x%02x", reg); f.ops[i] != want {
			t.Errorf("transaction %d = %q, want %q", i, f.ops[i], want)
		}
	}
}

func TestNewFailsOnCalibrationReadError(t *testing.T) {
	for _, reg := range calibrationRegisters {
		t.Run(fmt.Sprintf("0x%02x", reg), func(t *testing.T) {
			f := newFakeBus()
			f.failRead[reg] = true

			sensor, err := New(f)
			if err == nil {
				t.Fatal("New() error = nil, want a transport error")
			}
			if sensor != nil {
				t.Errorf("New() returned a sensor alongside error %v", err)
			}
			if !IsTransportError(err) {
				t.Errorf("New() error = %v, want a *TransportError", err)
			}

			var te *TransportError
			if errors.As(err, &te) && te.Register != reg {
				t.Errorf("TransportError.Register = 0x%02x, want 0x%02x", te.Register, reg)
			}
		})
	}
}

func TestTemperature(t *testing.T) {
	f := newFakeBus([]byte{0xB8, 0x1F})
	sensor, sleeps := newTestSensor(t, f)

	temp, err := sensor.Temperature()
	if err != nil {
		t.Fatalf("Temperature() error = %v", err)
	}
	if temp != 25.87 {
		t.Errorf("Temperature() = %v, want 25.87", temp)
	}

	want := []string{"write 0xf1 03", "sleep 5ms", "read 0xf5"}
	if fmt.Sprint(f.ops) != fmt.Sprint(want) {
		t.Errorf("transactions = %v, want %v", f.ops, want)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 5*time.Millisecond {
		t.Errorf("sleeps = %v, want [5ms]", *sleeps)
	}
}

func TestRawTemperature(t *testing.T) {
	f := newFakeBus([]byte{0x24, 0xFA})
	sensor, _ := newTestSensor(t, f)

	temp, err := sensor.RawTemperature()
	if err != nil {
		t.Fatalf("RawTemperature() error = %v", err)
	}
	if temp != 1018 {
		t.Errorf("RawTemperature() = %d, want 1018", temp)
	}
}

func TestPressure(t *testing.T) {
	tests := []struct {
		mode    Mode
		command string
		sleep   string
	}{
		{ModeLow, "00", "5ms"},
		{ModeStandard, "01", "20ms"},
		{ModeHigh, "10", "19ms"},
		{ModeUltra, "11", "67ms"},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			f := newFakeBus([]byte{0xB8, 0x1F}, []byte{0x3F, 0x75})
			sensor, _ := newTestSensor(t, f)

			p, err := sensor.Pressure(tt.mode)
			if err != nil {
				t.Fatalf("Pressure() error = %v", err)
			}
			if p != 1007.08 {
				t.Errorf("Pressure() = %v, want 1007.08", p)
			}

			want := []string{
				"write 0xf1 03", "sleep 5ms", "read 0xf5",
				"write 0xf1 " + tt.command, "sleep " + tt.sleep, "read 0xf5",
			}
			if fmt.Sprint(f.ops) != fmt.Sprint(want) {
				t.Errorf("transactions = %v, want %v", f.ops, want)
			}
		})
	}
}

func TestSense(t *testing.T) {
	f := newFakeBus([]byte{0x24, 0xFA}, []byte{0x3F, 0x75})
	sensor, _ := newTestSensor(t, f)

	r, err := sensor.Sense(ModeUltra)
	if err != nil {
		t.Fatalf("Sense() error = %v", err)
	}
	if r.Temperature != 10.18 {
		t.Errorf("Sense().Temperature = %v, want 10.18", r.Temperature)
	}
	if r.Pressure != 1005.27 {
		t.Errorf("Sense().Pressure = %v, want 1005.27", r.Pressure)
	}
	if r.Mode != ModeUltra {
		t.Errorf("Sense().Mode = %s, want %s", r.Mode, ModeUltra)
	}
	if r.Time.IsZero() {
		t.Error("Sense().Time is zero")
	}
}

func TestPressureRejectsUnknownMode(t *testing.T) {
	f := newFakeBus()
	sensor, _ := newTestSensor(t, f)

	if _, err := sensor.Pressure(Mode(0x02)); err == nil {
		t.Fatal("Pressure(0x02) error = nil, want an error")
	}
	if len(f.ops) != 0 {
		t.Errorf("Pressure(0x02) touched the bus: %v", f.ops)
	}
}

func TestPressureTransportErrors(t *testing.T) {
	t.Run("command write", func(t *testing.T) {
		f := newFakeBus()
		sensor, _ := newTestSensor(t, f)
		f.failWrite = true

		_, err := sensor.Pressure(ModeStandard)
		if !IsTransportError(err) {
			t.Fatalf("Pressure() error = %v, want a *TransportError", err)
		}
		if want := []string{"write 0xf1 03"}; fmt.Sprint(f.ops) != fmt.Sprint(want) {
			t.Errorf("transactions = %v, want %v", f.ops, want)
		}
	})

	t.Run("pressure read", func(t *testing.T) {
		// Only the temperature sample is queued
		f := newFakeBus([]byte{0xB8, 0x1F})
		sensor, _ := newTestSensor(t, f)

		_, err := sensor.Pressure(ModeHigh)
		if !IsTransportError(err) {
			t.Fatalf("Pressure() error = %v, want a *TransportError", err)
		}

		var te *TransportError
		if errors.As(err, &te) && (te.Op != "read" || te.Register != dataRegister) {
			t.Errorf("TransportError = %+v, want a read of 0x%02x", te, dataRegister)
		}
	})
}

func TestUninitialized(t *testing.T) {
	var sensor T5403

	if _, err := sensor.Temperature(); err != ErrUninitialized {
		t.Errorf("Temperature() error = %v, want ErrUninitialized", err)
	}
	if _, err := sensor.RawTemperature(); err != ErrUninitialized {
		t.Errorf("RawTemperature() error = %v, want ErrUninitialized", err)
	}
	if _, err := sensor.Pressure(ModeStandard); err != ErrUninitialized {
		t.Errorf("Pressure() error = %v, want ErrUninitialized", err)
	}
	if _, err := sensor.Sense(ModeStandard); err != ErrUninitialized {
		t.Errorf("Sense() error = %v, want ErrUninitialized", err)
	}
	if _, err := sensor.Calibration(); err != ErrUninitialized {
		t.Errorf("Calibration() error = %v, want ErrUninitialized", err)
	}
}

func TestDebugLogging(t *testing.T) {
	f := newFakeBus([]byte{0xB8, 0x1F})
	sensor, _ := newTestSensor(t, f)

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	sensor.SetLogger(logger)

	if _, err := sensor.Temperature(); err != nil {
		t.Fatalf("Temperature() error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("b8 1f")) {
		t.Errorf("debug log %q does not contain the raw temperature bytes", buf.String())
	}
}

func TestRawSamples(t *testing.T) {
	f := newFakeBus([]byte{0x24, 0xFA}, []byte{0xFF, 0xFF})
	sensor, _ := newTestSensor(t, f)

	tr, pr, err := sensor.RawSamples(ModeLow)
	if err != nil {
		t.Fatalf("RawSamples() error = %v", err)
	}
	if tr != -1500 || pr != 65535 {
		t.Errorf("RawSamples() = %d, %d, want -1500, 65535", tr, pr)
	}
}
