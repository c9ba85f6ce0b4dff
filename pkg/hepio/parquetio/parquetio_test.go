package parquetio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

func sampleEvents() []hepmodel.Event {
	ev := hepmodel.NewEvent()
	ev.EventNumber = 0
	ev.Particles = []hepmodel.Particle{
		{Status: -1, PDGID: 2212, Energy: 6500, Pz: 6500},
		{Status: -1, PDGID: 2212, Energy: 6500, Pz: -6500},
		{Status: 1, PDGID: 11, Mother1: 1, Mother2: 2, Energy: 45.6, Pz: 45.6},
		{Status: 1, PDGID: -11, Mother1: 1, Mother2: 2, Energy: 45.6, Pz: -45.6},
	}
	return []hepmodel.Event{ev}
}

func TestWriteFlatThenReadRoundTripsParticleCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.parquet")
	w := NewWriter()
	events := hepio.NewSliceCursor(sampleEvents(), nil)
	run := hepmodel.RunInfo{BeamPDGID: [2]int{2212, 2212}, BeamEnergy: [2]float64{6500, 6500}}
	require.NoError(t, w.Write(path, events, run, hepio.WriteOptions{Columnar: false}))

	r := NewReader()
	ef, err := r.Read(path)
	require.NoError(t, err)
	require.Len(t, ef.Events, 1)
	assert.Len(t, ef.Events[0].Particles, 4)
	assert.Equal(t, [2]int{2212, 2212}, ef.RunInfo.BeamPDGID)
}

func TestWriteColumnarThenReadRoundTripsVerticesAndWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "columnar.parquet")
	w := NewWriter()
	events := hepio.NewSliceCursor(sampleEvents(), nil)
	run := hepmodel.RunInfo{GeneratorName: "MadGraph5_aMC@NLO"}
	require.NoError(t, w.Write(path, events, run, hepio.WriteOptions{Columnar: true}))

	r := NewReader()
	ef, err := r.Read(path)
	require.NoError(t, err)
	require.Len(t, ef.Events, 1)
	assert.Len(t, ef.Events[0].Particles, 4)
	assert.NotEmpty(t, ef.Events[0].Vertices)
	assert.Equal(t, "MadGraph5_aMC@NLO", ef.RunInfo.GeneratorName)
}
