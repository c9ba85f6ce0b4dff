package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/Manav02012002/hepconduit/pkg/convert"
)

const sampleLHE = `<LesHouchesEvents version="3.0">
<init>
2212 2212 6500.00000 6500.00000 0 0 0 0 0 0
0.123 0.001 0.456 1
</init>
<event>
4 1 1.0 91.188 0.00754 0.118
2212 -1 0 0 0 0 0.0 0.0 6500.0 6500.0 0.938 0 9.0
2212 -1 0 0 0 0 0.0 0.0 -6500.0 6500.0 0.938 0 9.0
11 1 1 2 0 0 30.0 40.0 0.0 13000.0 0.0 0 9.0
-11 1 1 2 0 0 -30.0 -40.0 0.0 0.0 0.0 0 9.0
</event>
</LesHouchesEvents>
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.lhe")
	require.NoError(t, os.WriteFile(path, []byte(sampleLHE), 0o644))
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommandHasAllSubcommands(t *testing.T) {
	root := newRootCmd()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"convert", "info", "validate", "diff", "certify", "schema", "doctor"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestInfoCommandPrintsSummary(t *testing.T) {
	path := writeSample(t)
	out, err := runCmd(t, "info", path, "--format", "lhe")
	require.NoError(t, err)
	assert.Contains(t, out, "Events:")
	assert.Contains(t, out, "Total particles:")
}

func TestValidateCommandReportsClean(t *testing.T) {
	path := writeSample(t)
	_, err := runCmd(t, "validate", path, "--format", "lhe")
	assert.NoError(t, err)
}

func TestDoctorCommandReportsOK(t *testing.T) {
	out, err := runCmd(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "hepconduit doctor")
}

func TestSchemaShowListsKnownSchemas(t *testing.T) {
	out, err := runCmd(t, "schema", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "hepconduit.event.v1.flat")
	assert.Contains(t, out, "hepconduit.event.v1.columnar")
}

func TestConvertCommandWritesOutput(t *testing.T) {
	input := writeSample(t)
	output := filepath.Join(t.TempDir(), "out.csv")
	_, err := runCmd(t, "convert", input, output, "--report", "none", "--provenance", "none")
	require.NoError(t, err)
	_, statErr := os.Stat(output)
	assert.NoError(t, statErr)
}
