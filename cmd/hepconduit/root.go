package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "hepconduit",
		Short:   "Universal HEP event data format converter",
		Long:    "Universal HEP event data format converter. Like pandoc for particle physics.",
		Version: version,
	}

	root.AddCommand(
		newConvertCmd(),
		newInfoCmd(),
		newValidateCmd(),
		newDiffCmd(),
		newCertifyCmd(),
		newSchemaCmd(),
		newDoctorCmd(),
	)

	return root
}
