package main

import (
	"encoding/json"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Manav02012002/hepconduit/pkg/doctorcheck"
)

func newDoctorCmd() *cobra.Command {
	var asJSON bool
	var outputDir string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Environment & capability check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := doctorcheck.Run(outputDir)

			if asJSON {
				b, err := json.MarshalIndent(rep, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(b))
			} else {
				cmd.Println(rep.Summary)
				for _, c := range rep.Checks {
					status := color.GreenString("OK")
					if !c.OK {
						status = color.RedString("FAIL")
					}
					cmd.Printf("- %s: %s: %s\n", status, c.Name, c.Detail)
				}
			}

			if !rep.OK() {
				return exitCodeError{2}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory to check for write access (defaults to skipping this check)")
	return cmd
}
