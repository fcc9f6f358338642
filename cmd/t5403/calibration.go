package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewCalibrationCommand .
func NewCalibrationCommand() *cobra.Command {
	asJSON := false

	cmd := &cobra.Command{
		Use:   "calibration",
		Short: "Print the factory calibration coefficients C1 to C10",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sensor, err := openSensor()
			if err != nil {
				return err
			}

			cal, err := sensor.Calibration()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cal)
			}

			coefficients := []int{
				int(cal.C1), int(cal.C2), int(cal.C3), int(cal.C4), int(cal.C5),
				int(cal.C6), int(cal.C7), int(cal.C8), int(cal.C9), int(cal.C10),
			}
			for i, c := range coefficients {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %6d\n", bold("C%-2d", i+1), c)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "print as JSON")

	return cmd
}
