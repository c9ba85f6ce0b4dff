package main

import (
	"github.com/spf13/cobra"

	"github.com/Manav02012002/hepconduit/pkg/convert"
	"github.com/Manav02012002/hepconduit/pkg/validate"
)

func newConvertCmd() *cobra.Command {
	var (
		inputFormat  string
		outputFormat string
		filterExpr   string
		maxEvents    int
		doValidate   bool
		columnar     bool
		quiet        bool
		report       string
		reportFormat string
		prov         string
	)

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert between HEP event formats",
		Long:  "Convert between LHE, HepMC3, CSV, TSV, and Parquet formats.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]

			opts := convert.DefaultOptions()
			opts.InputFormat = inputFormat
			opts.OutputFormat = outputFormat
			opts.FilterExpr = filterExpr
			opts.MaxEvents = maxEvents
			opts.Validate = doValidate
			opts.Report = report
			opts.ReportFormat = reportFormat
			opts.Provenance = prov
			opts.Quiet = quiet
			opts.WriteOptions.Columnar = columnar
			opts.Argv = append([]string{"hepconduit", "convert"}, args...)
			opts.ToolVersion = version

			result, err := convert.Convert(input, output, opts)
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return exitCodeError{1}
			}
			if !quiet {
				log.Infof("converted %d -> %d events (%s)", result.NInput, result.NOutput, output)
			}

			if doValidate {
				vopts := validate.DefaultOptions()
				rep, err := convert.Validate(input, inputFormat, vopts)
				if err == nil && !rep.IsValid() {
					cmd.PrintErrln(rep.String())
					return exitCodeError{2}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputFormat, "from", "", "Input format (auto-detected from extension if omitted)")
	cmd.Flags().StringVar(&outputFormat, "to", "", "Output format (auto-detected from extension if omitted)")
	cmd.Flags().StringVar(&filterExpr, "filter", "", `Event filter expression, e.g. "n_jets >= 2 && ht > 200"`)
	cmd.Flags().IntVar(&maxEvents, "max-events", -1, "Maximum number of events to convert (-1 for all)")
	cmd.Flags().BoolVar(&doValidate, "validate", false, "Run physics validation on input events")
	cmd.Flags().BoolVar(&columnar, "columnar", false, "Use columnar (event-per-row with list columns) Parquet schema")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	cmd.Flags().StringVar(&report, "report", "auto", "Conversion audit report output: 'auto', '-', 'none', or a path")
	cmd.Flags().StringVar(&reportFormat, "report-format", "json", "Audit report format: 'json' or 'sarif'")
	cmd.Flags().StringVar(&prov, "provenance", "auto", "Provenance embedding mode: 'auto', 'sidecar', or 'none'")

	return cmd
}
