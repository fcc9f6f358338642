package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wjessop/t5403"
)

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

func formatTemperature(c float64) string {
	return color.New(color.Bold, color.FgYellow).Sprintf("%.2f °C", c)
}

func formatPressure(hpa float64) string {
	return color.New(color.Bold, color.FgCyan).Sprintf("%.2f hPa", hpa)
}

// addModeFlags adds --mode and --fixed-point to cmd, returning a function that
// parses them.
func addModeFlags(cmd *cobra.Command) func() (t5403.Mode, bool, error) {
	mode := t5403.ModeStandard.String()
	fixed := false

	cmd.Flags().StringVarP(&mode, "mode", "m", mode, "pressure accuracy mode (low, standard, high, ultra)")
	cmd.Flags().BoolVar(&fixed, "fixed-point", fixed, "compensate pressure with the manufacturer's integer formula")

	return func() (t5403.Mode, bool, error) {
		m, err := t5403.ParseMode(mode)
		return m, fixed, err
	}
}

// NewTemperatureCommand .
func NewTemperatureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "temperature",
		Short: "Print the temperature in degrees Celsius",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sensor, err := openSensor()
			if err != nil {
				return err
			}

			c, err := sensor.Temperature()
			if err != nil {
				return errors.Wrap(err, "could not read temperature")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bold("Temperature:"), formatTemperature(c))
			return nil
		},
	}
}

// NewPressureCommand .
func NewPressureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pressure",
		Short: "Print the pressure in hPa",
	}
	parse := addModeFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		mode, fixed, err := parse()
		if err != nil {
			return err
		}

		sensor, err := openSensor()
		if err != nil {
			return err
		}

		r, err := sense(sensor, mode, fixed)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bold("Pressure:"), formatPressure(r.Pressure))
		return nil
	}

	return cmd
}

// NewReadCommand .
func NewReadCommand() *cobra.Command {
	var (
		interval time.Duration
		count    int
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Print temperature and pressure, optionally repeating",
	}
	parse := addModeFlags(cmd)
	cmd.Flags().DurationVarP(&interval, "interval", "i", 0, "time between readings, 0 takes a single reading")
	cmd.Flags().IntVarP(&count, "count", "c", 0, "number of readings to take when --interval is set, 0 means forever")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		mode, fixed, err := parse()
		if err != nil {
			return err
		}

		sensor, err := openSensor()
		if err != nil {
			return err
		}

		for n := 1; ; n++ {
			r, err := sense(sensor, mode, fixed)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s %s  %s %s\n",
				r.Time.Format(time.Kitchen),
				bold("Temperature:"), formatTemperature(r.Temperature),
				bold("Pressure:"), formatPressure(r.Pressure),
			)

			if interval <= 0 || (count > 0 && n >= count) {
				return nil
			}
			time.Sleep(interval)
		}
	}

	return cmd
}

// sense takes a reading, recomputing the pressure with the fixed point
// formula if asked to.
func sense(sensor *t5403.T5403, mode t5403.Mode, fixed bool) (t5403.Reading, error) {
	if !fixed {
		r, err := sensor.Sense(mode)
		if err != nil {
			return r, errors.Wrap(err, "could not read sensor")
		}
		logrus.WithFields(logrus.Fields{
			"temperature": r.Temperature,
			"pressure":    r.Pressure,
			"mode":        r.Mode,
		}).Debug("read sensor")
		return r, nil
	}

	cal, err := sensor.Calibration()
	if err != nil {
		return t5403.Reading{}, err
	}
	tr, pr, err := sensor.RawSamples(mode)
	if err != nil {
		return t5403.Reading{}, errors.Wrap(err, "could not read sensor")
	}

	temp := cal.Temperature(tr)
	return t5403.Reading{
		Temperature: float64(temp) / 100.0,
		Pressure:    cal.PressureFixedPoint(temp, pr),
		Mode:        mode,
		Time:        time.Now(),
	}, nil
}
