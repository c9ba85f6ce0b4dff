// Command hepconduit is a universal HEP event data format converter:
// pandoc for particle physics. It converts, inspects, validates, diffs,
// and certifies LHE, HepMC3, CSV, TSV, and Parquet event files.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

// version is stamped into provenance records and --version output.
const version = "0.1.0"

var log = logrus.New()

// exitCodeError lets a subcommand signal a specific process exit code
// (the Python CLI distinguishes "ran but found problems" (2) from
// "could not run at all" (1)) without cobra printing a spurious usage
// dump for the former.
type exitCodeError struct{ code int }

func (e exitCodeError) Error() string { return "" }

func main() {
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	root := newRootCmd()
	root.SilenceErrors = true
	root.SilenceUsage = true

	err := root.Execute()
	if err == nil {
		os.Exit(0)
	}
	if ec, ok := err.(exitCodeError); ok {
		os.Exit(ec.code)
	}
	log.Errorf("%v", err)
	os.Exit(1)
}
