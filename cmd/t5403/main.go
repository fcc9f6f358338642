package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wjessop/t5403"
)

var (
	logLevel = "info"
	device   = t5403.DefaultDevice
	address  = t5403.DefaultAddress
)

// newBus returns the bus the sensor is read through
var newBus = func(dev string, addr int) t5403.Bus {
	bus := t5403.NewDevfsBus(dev)
	bus.Address = addr
	return bus
}

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return errors.Wrap(err, "failed to parse log level")
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.Kitchen,
	})

	return nil
}

// openSensor loads the calibration coefficients of the sensor selected by
// the global flags.
func openSensor() (*t5403.T5403, error) {
	if address < 0x03 || address > 0x77 {
		return nil, errors.Errorf("address should be in the range 0x03 -> 0x77, you requested 0x%x", address)
	}

	logrus.Debugf("opening T5403 at 0x%02x on %s", address, device)

	sensor, err := t5403.New(newBus(device, address))
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open the T5403 sensor at 0x%02x on %s", address, device)
	}

	return sensor, nil
}

// NewCommand returns the root command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "t5403",
		Short:         "Read temperature and pressure from a T5403 barometric sensor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
	}

	cmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", logLevel, "log level (trace, debug, info, warn, error, fatal, panic)")
	cmd.PersistentFlags().StringVarP(&device, "device", "d", device, "I2C bus device file")
	cmd.PersistentFlags().IntVarP(&address, "address", "a", address, "I2C address of the sensor")

	cmd.AddCommand(
		NewTemperatureCommand(),
		NewPressureCommand(),
		NewReadCommand(),
		NewCalibrationCommand(),
	)

	return cmd
}

func main() {
	if err := NewCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if t5403.IsTransportError(err) {
			fmt.Fprintln(os.Stderr, "Is the sensor connected, and do you have permission to use the I2C device?")
		}
		os.Exit(1)
	}
}
