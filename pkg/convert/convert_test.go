package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLHE = `<LesHouchesEvents version="3.0">
<init>
 2212 2212 6.500000e+03 6.500000e+03 0 0 0 0 -4 1
 1.0 0.01 1.0 1
</init>
<event>
4 1 1.0 91.2 0.00729735 0.118
 2212 -1 0 0 0 0 0.0 0.0 6500.0 6500.0 0.938 0.0 9.0
 2212 -1 0 0 0 0 0.0 0.0 -6500.0 6500.0 0.938 0.0 9.0
 11 1 1 2 0 0 30.0 40.0 0.0 50.0 0.0 0.0 9.0
 -11 1 1 2 0 0 -30.0 -40.0 0.0 50.0 0.0 0.0 9.0
</event>
</LesHouchesEvents>
`

func TestConvertLHEToCSVWritesReportAndRoundTrips(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.lhe")
	outPath := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(inPath, []byte(sampleLHE), 0o644))

	opts := DefaultOptions()
	opts.Report = "auto"
	result, err := Convert(inPath, outPath, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, result.NOutput)
	assert.Equal(t, reportKind, result.Report.Kind)
	assert.NotEmpty(t, result.Report.LossHash)

	_, err = os.Stat(outPath + ".hepconduit.json")
	assert.NoError(t, err)

	ef, err := Read(outPath, "csv")
	require.NoError(t, err)
	require.Len(t, ef.Events, 1)
	assert.Len(t, ef.Events[0].Particles, 4)
}

func TestConvertAppliesFilterExpression(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.lhe")
	outPath := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(inPath, []byte(sampleLHE), 0o644))

	opts := DefaultOptions()
	opts.Report = "none"
	opts.FilterExpr = "n_jets >= 1"
	result, err := Convert(inPath, outPath, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, result.NOutput)
}

func TestBuildInfoSummarizesFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.lhe")
	require.NoError(t, os.WriteFile(inPath, []byte(sampleLHE), 0o644))

	info, err := BuildInfo(inPath, "lhe")
	require.NoError(t, err)
	assert.Equal(t, 1, info.NEvents)
	assert.Equal(t, 4, info.TotalParticles)
	assert.Equal(t, [2]int{2212, 2212}, info.BeamPDGID)
}
