package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Manav02012002/hepconduit/pkg/schema"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect and manage Parquet schemas",
	}
	cmd.AddCommand(newSchemaShowCmd(), newSchemaUpgradeCmd())
	return cmd
}

func newSchemaShowCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show known schema versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas := schema.ListSchemas()
			if asJSON {
				b, err := json.MarshalIndent(schemas, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(b))
				return nil
			}
			for _, s := range schemas {
				cmd.Printf("%s: %s\n", s.Name, s.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newSchemaUpgradeCmd() *cobra.Command {
	var toSchema string
	cmd := &cobra.Command{
		Use:   "upgrade <input> <output>",
		Short: "Upgrade a Parquet file schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := schema.UpgradeParquet(args[0], args[1], toSchema); err != nil {
				cmd.PrintErrln("Error:", err)
				return exitCodeError{1}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&toSchema, "to", "hepconduit.event.v1.flat", "Target schema name")
	return cmd
}
