package lhe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manav02012002/hepconduit/pkg/hepio"
)

const sampleLHE = `<LesHouchesEvents version="3.0">
<init>
2212 2212 6500.00000 6500.00000 0 0 0 0 0 0
0.123 0.001 0.456 1
</init>
<generator>MadGraph5_aMC@NLO v2.9.18</generator>
<event>
2 1 1.0D+00 91.188 0.00754 0.118
11 -1 0 0 0 0 0.0 0.0 45.6 45.6 0.0 0 9.0
-11 -1 0 0 0 0 0.0 0.0 -45.6 45.6 0.0 0 9.0
<weights>
1.0 0.9 1.1
</weights>
</event>
</LesHouchesEvents>
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.lhe")
	require.NoError(t, os.WriteFile(path, []byte(sampleLHE), 0o644))
	return path
}

func TestReadRunInfoParsesBeamAndProcess(t *testing.T) {
	path := writeSample(t)
	r := NewReader()
	run, err := r.ReadRunInfo(path)
	require.NoError(t, err)

	assert.Equal(t, [2]int{2212, 2212}, run.BeamPDGID)
	assert.InDelta(t, 6500.0, run.BeamEnergy[0], 1e-6)
	require.Len(t, run.Processes, 1)
	assert.Equal(t, 1, run.Processes[0].ProcessID)
	assert.Equal(t, "MadGraph5_aMC@NLO", run.GeneratorName)
	assert.Equal(t, "2.9.18", run.GeneratorVersion)
}

func TestIterEventsParsesParticlesAndWeightsBlock(t *testing.T) {
	path := writeSample(t)
	r := NewReader()
	cur, err := r.IterEvents(path)
	require.NoError(t, err)
	defer cur.Close()

	ev, ok, err := cur.Next()
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, ev.Particles, 2)
	assert.Equal(t, 11, ev.Particles[0].PDGID)
	assert.InDelta(t, 1.0, ev.Weight(), 1e-9)
	require.NotNil(t, ev.Extra.LHE)
	assert.Len(t, ev.Extra.LHE.Weights, 3)
	require.GreaterOrEqual(t, len(ev.Weights), 1+len(ev.Extra.LHE.Weights)+len(ev.Extra.LHE.Rwgt))
	assert.InDelta(t, 1.0, ev.Weights[0], 1e-9)

	_, ok, err = cur.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

const sampleLHEWithRwgt = `<LesHouchesEvents version="3.0">
<init>
2212 2212 6500.00000 6500.00000 0 0 0 0 0 0
0.123 0.001 0.456 1
</init>
<event>
2 1 1.0D+00 91.188 0.00754 0.118
11 -1 0 0 0 0 0.0 0.0 45.6 45.6 0.0 0 9.0
-11 -1 0 0 0 0 0.0 0.0 -45.6 45.6 0.0 0 9.0
<weights>
1.0 0.9
</weights>
<rwgt>
<wgt id='1001'>1.05</wgt>
<wgt id='1002'>0.95</wgt>
</rwgt>
</event>
</LesHouchesEvents>
`

func TestIterEventsAppendsWeightsAndRwgtBlocksToEventWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample_rwgt.lhe")
	require.NoError(t, os.WriteFile(path, []byte(sampleLHEWithRwgt), 0o644))

	r := NewReader()
	cur, err := r.IterEvents(path)
	require.NoError(t, err)
	defer cur.Close()

	ev, ok, err := cur.Next()
	require.NoError(t, err)
	require.True(t, ok)

	require.NotNil(t, ev.Extra.LHE)
	require.Len(t, ev.Weights, 1+len(ev.Extra.LHE.Weights)+len(ev.Extra.LHE.Rwgt))
	assert.InDelta(t, 1.0, ev.Weights[0], 1e-9)
	assert.Contains(t, ev.Weights, 1.0)
	assert.Contains(t, ev.Weights, 0.9)
	assert.Contains(t, ev.Weights, 1.05)
	assert.Contains(t, ev.Weights, 0.95)
}

func TestWriteThenReadRoundTripsParticleCount(t *testing.T) {
	path := writeSample(t)
	r := NewReader()
	ef, err := r.Read(path)
	require.NoError(t, err)

	outPath := filepath.Join(t.TempDir(), "out.lhe")
	w := NewWriter()
	cur := hepio.NewSliceCursor(ef.Events, nil)
	require.NoError(t, w.Write(outPath, cur, ef.RunInfo, hepio.WriteOptions{}))

	ef2, err := r.Read(outPath)
	require.NoError(t, err)
	assert.Equal(t, len(ef.Events), len(ef2.Events))
	require.Len(t, ef2.Events[0].Particles, 2)
}
