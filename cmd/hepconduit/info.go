package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Manav02012002/hepconduit/pkg/convert"
)

func newInfoCmd() *cobra.Command {
	var inputFormat string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <input>",
		Short: "Show information about an event file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := convert.BuildInfo(args[0], inputFormat)
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return exitCodeError{1}
			}

			if asJSON {
				b, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(b))
				return nil
			}

			printInfoHuman(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputFormat, "format", "", "Input format (auto-detected if omitted)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func printInfoHuman(cmd *cobra.Command, result convert.Info) {
	cmd.Printf("Format:              %s\n", result.Format)
	cmd.Printf("Events:              %s\n", humanize.Comma(int64(result.NEvents)))
	cmd.Printf("Total particles:     %s\n", humanize.Comma(int64(result.TotalParticles)))
	cmd.Printf("Avg particles/event: %.1f\n", result.AvgParticlesPerEvent)

	if result.BeamPDGID != [2]int{0, 0} {
		cmd.Printf("Beam PDG IDs:        %v\n", result.BeamPDGID)
		cmd.Printf("Beam energies:       %v GeV\n", result.BeamEnergy)
	}

	if result.Generator != "" {
		gen := result.Generator
		if result.GeneratorVersion != "" {
			gen = fmt.Sprintf("%s v%s", gen, result.GeneratorVersion)
		}
		cmd.Printf("Generator:           %s\n", gen)
	}

	if result.NProcesses > 0 {
		cmd.Printf("Processes:           %d\n", result.NProcesses)
	}

	if len(result.WeightNames) > 0 {
		n := len(result.WeightNames)
		shown := result.WeightNames
		if n > 5 {
			shown = shown[:5]
		}
		cmd.Printf("Weight names:        %v\n", shown)
		if n > 5 {
			cmd.Printf("                     ... and %d more\n", n-5)
		}
	}

	if len(result.StatusCounts) > 0 {
		cmd.Printf("Status codes:        %v\n", result.StatusCounts)
	}

	if len(result.TopParticles) > 0 {
		cmd.Println("Top particles:")
		top := result.TopParticles
		if len(top) > 10 {
			top = top[:10]
		}
		for _, p := range top {
			cmd.Printf("  %20s: %s\n", p.Name, humanize.Comma(int64(p.Count)))
		}
	}
}
