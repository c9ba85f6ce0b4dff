package hepmc3

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manav02012002/hepconduit/pkg/hepio"
)

const sample = `HepMC::Version 3.0.0
HepMC::Asciiv3
U GEV MM
N 2 nominal scale_up
E 0
W 1.0 1.05
V -1 0.0 0.0 0.0 0.0 2 2 1 2 3 4
P 1 2212 4 0.0 0.0 6500.0 6500.0 0.0
P 2 2212 4 0.0 0.0 -6500.0 6500.0 0.0
P 3 11 1 0.0 0.0 45.6 45.6 0.0 -1 0
P 4 -11 1 0.0 0.0 -45.6 45.6 0.0 -1 0
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.hepmc3")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	return path
}

func TestReadParsesRunInfoAndEvent(t *testing.T) {
	path := writeSample(t)
	r := NewReader()
	ef, err := r.Read(path)
	require.NoError(t, err)

	assert.Equal(t, "GEV", ef.RunInfo.Extra.Units.Momentum)
	require.Equal(t, []string{"nominal", "scale_up"}, ef.RunInfo.WeightNames)

	require.Len(t, ef.Events, 1)
	ev := ef.Events[0]
	require.Len(t, ev.Particles, 4)
	assert.Equal(t, -1, ev.Particles[0].Status) // beam (raw 4) mapped to -1
	require.NotNil(t, ev.Particles[0].Attributes.HepMCStatusRaw)
	assert.Equal(t, 4, *ev.Particles[0].Attributes.HepMCStatusRaw)
	assert.InDelta(t, 1.0, ev.Weights[0], 1e-9)
	assert.InDelta(t, 1.05, ev.Weights[1], 1e-9)

	require.Len(t, ev.Vertices, 1)
	assert.Equal(t, -1, ev.Vertices[0].Barcode)
}

const sampleWithAttrs = `HepMC::Version 3.0.0
HepMC::Asciiv3
U GEV MM
E 0
A key1 value1
A key2 value2 extra
A key1 value1_again
P 1 11 1 0.0 0.0 45.6 45.6 0.0
`

func TestReadPreservesRawARecordsInOrderIncludingDuplicateKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attrs.hepmc3")
	require.NoError(t, os.WriteFile(path, []byte(sampleWithAttrs), 0o644))

	r := NewReader()
	ef, err := r.Read(path)
	require.NoError(t, err)

	require.Len(t, ef.Events, 1)
	ev := ef.Events[0]
	require.NotNil(t, ev.Extra.HepMC3)
	assert.Equal(t, []string{
		"A key1 value1",
		"A key2 value2 extra",
		"A key1 value1_again",
	}, ev.Extra.HepMC3.ARaw)
}

func TestWriteThenReadRoundTripsEventCount(t *testing.T) {
	path := writeSample(t)
	r := NewReader()
	ef, err := r.Read(path)
	require.NoError(t, err)

	outPath := filepath.Join(t.TempDir(), "out.hepmc3")
	w := NewWriter()
	cur := hepio.NewSliceCursor(ef.Events, nil)
	require.NoError(t, w.Write(outPath, cur, ef.RunInfo, hepio.WriteOptions{}))

	ef2, err := r.Read(outPath)
	require.NoError(t, err)
	assert.Equal(t, len(ef.Events), len(ef2.Events))
	assert.Equal(t, len(ef.Events[0].Particles), len(ef2.Events[0].Particles))
}
