package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Manav02012002/hepconduit/pkg/contracts"
)

func newCertifyCmd() *cobra.Command {
	var pack string
	var contract string
	var toFormat string
	var strict bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "certify <input>",
		Short: "Run a conversion contract and certify invariants",
		Long:  "Run a contract (parse/validate/convert/re-parse/invariants) and fail on violations.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]

			if pack != "" {
				result, err := contracts.RunContractPack(input, pack, toFormat, strict)
				if err != nil {
					cmd.PrintErrln("Error:", err)
					return exitCodeError{1}
				}
				printPackResult(cmd, result, asJSON)
				if !result.OK {
					return exitCodeError{2}
				}
				return nil
			}

			result, err := contracts.RunContract(input, contract, toFormat, strict)
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return exitCodeError{1}
			}
			printResult(cmd, result, asJSON)
			if !result.OK {
				return exitCodeError{2}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pack, "pack", "", "Contract pack name (runs multiple contracts)")
	cmd.Flags().StringVar(&contract, "contract", "roundtrip_v1", "Contract name")
	cmd.Flags().StringVar(&toFormat, "to", "hepmc3", "Intermediate format for round-trip contracts")
	cmd.Flags().BoolVar(&strict, "strict", false, "Use strict validation during certification")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output certification report as JSON")
	return cmd
}

func printResult(cmd *cobra.Command, r contracts.Result, asJSON bool) {
	if asJSON {
		b, _ := json.MarshalIndent(r, "", "  ")
		cmd.Println(string(b))
		return
	}
	cmd.Println(statusLine(r.Contract, r.OK))
}

func printPackResult(cmd *cobra.Command, pr contracts.PackResult, asJSON bool) {
	if asJSON {
		b, _ := json.MarshalIndent(pr, "", "  ")
		cmd.Println(string(b))
		return
	}
	cmd.Println(statusLine(pr.Pack, pr.OK))
	for _, r := range pr.Results {
		cmd.Println("  " + statusLine(r.Contract, r.OK))
	}
}

func statusLine(name string, ok bool) string {
	label := color.GreenString("PASS")
	if !ok {
		label = color.RedString("FAIL")
	}
	return fmt.Sprintf("[%s] %s", label, name)
}
