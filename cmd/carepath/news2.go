package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/carepath/internal/cli"
	"github.com/aretw0/carepath/internal/presentation/tui"
	"github.com/aretw0/carepath/pkg/news2"
)

var news2Cmd = &cobra.Command{
	Use:   "news2",
	Short: "Score a set of observations with NEWS2",
	Example: `  carepath news2 --rr 22 --spo2 95 --temp 38.4 --sbp 105 --hr 112 --avpu alert
  carepath news2 --rr 18 --spo2 89 --scale scale2 --o2 --temp 37 --sbp 120 --hr 80 --avpu v --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		rr, _ := f.GetInt("rr")
		spo2, _ := f.GetInt("spo2")
		scale, _ := f.GetString("scale")
		o2, _ := f.GetBool("o2")
		temp, _ := f.GetFloat64("temp")
		sbp, _ := f.GetInt("sbp")
		hr, _ := f.GetInt("hr")
		avpu, _ := f.GetString("avpu")
		asJSON, _ := f.GetBool("json")

		params := news2.Parameters{
			RespiratoryRate:    rr,
			OxygenSaturation:   spo2,
			OxygenScale:        news2.OxygenScale(scale),
			SupplementalOxygen: o2,
			Temperature:        temp,
			SystolicBP:         sbp,
			HeartRate:          hr,
			Consciousness:      news2.ParseConsciousness(avpu),
		}
		if err := validator.New().Struct(params); err != nil {
			return fmt.Errorf("invalid observations: %w", err)
		}

		result := news2.Calculate(params)
		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		profile := termenv.Ascii
		if cli.IsTerminal(os.Stdout) {
			profile = termenv.ColorProfile()
		}
		fmt.Fprint(out, tui.FormatNEWS2(result, profile))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(news2Cmd)

	f := news2Cmd.Flags()
	f.Int("rr", 0, "Respiratory rate (breaths per minute)")
	f.Int("spo2", 0, "Oxygen saturation (%)")
	f.String("scale", string(news2.ScaleStandard), "SpO2 scale: scale1 or scale2")
	f.Bool("o2", false, "Patient is on supplemental oxygen")
	f.Float64("temp", 0, "Temperature (°C)")
	f.Int("sbp", 0, "Systolic blood pressure (mmHg)")
	f.Int("hr", 0, "Heart rate (beats per minute)")
	f.String("avpu", string(news2.Alert), "Level of consciousness: alert, or C/V/P/U")
	f.Bool("json", false, "Print the result as JSON")
	for _, name := range []string{"rr", "spo2", "temp", "sbp", "hr"} {
		_ = news2Cmd.MarkFlagRequired(name)
	}
}
