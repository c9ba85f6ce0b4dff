package main

import (
	"github.com/spf13/cobra"

	"github.com/Manav02012002/hepconduit/pkg/convert"
	"github.com/Manav02012002/hepconduit/pkg/validate"
)

func newValidateCmd() *cobra.Command {
	var inputFormat string
	var maxEvents int
	var momentumTolerance float64

	cmd := &cobra.Command{
		Use:   "validate <input>",
		Short: "Validate an event file for physics consistency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ef, err := convert.Read(args[0], inputFormat)
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return exitCodeError{1}
			}
			if maxEvents >= 0 && maxEvents < len(ef.Events) {
				ef.Events = ef.Events[:maxEvents]
			}

			opts := validate.DefaultOptions()
			opts.MomentumTolerance = momentumTolerance
			report := convert.ValidateEventFile(ef, opts)

			cmd.Println(report.String())
			if !report.IsValid() {
				return exitCodeError{2}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputFormat, "format", "", "Input format (auto-detected if omitted)")
	cmd.Flags().IntVar(&maxEvents, "max-events", -1, "Maximum number of events to validate (-1 for all)")
	cmd.Flags().Float64Var(&momentumTolerance, "momentum-tolerance", 1e-4, "Relative tolerance for momentum conservation")
	return cmd
}
