package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

func sampleEvent() hepmodel.Event {
	return hepmodel.Event{
		Particles: []hepmodel.Particle{
			{Status: -1, PDGID: 2212, Pz: 6500, Energy: 6500},
			{Status: -1, PDGID: 2212, Pz: -6500, Energy: 6500},
			{Status: 1, PDGID: 11, Pz: 45.6, Energy: 45.6},
			{Status: 1, PDGID: -11, Pz: -45.6, Energy: 45.6},
		},
	}
}

func TestEventFingerprintDeterministicUnderParticleReordering(t *testing.T) {
	ev := sampleEvent()
	reordered := ev
	reordered.Particles = []hepmodel.Particle{ev.Particles[2], ev.Particles[3], ev.Particles[0], ev.Particles[1]}

	cfg := DefaultConfig()
	fp1, err1 := Event(ev, cfg)
	fp2, err2 := Event(reordered, cfg)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, fp1, fp2)
}

func TestEventFingerprintToleratesSubTolNoise(t *testing.T) {
	ev := sampleEvent()
	noisy := ev
	noisy.Particles = append([]hepmodel.Particle{}, ev.Particles...)
	noisy.Particles[0].Energy += 1e-9

	cfg := DefaultConfig()
	fp1, err1 := Event(ev, cfg)
	fp2, err2 := Event(noisy, cfg)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, fp1, fp2)
}

func TestEventFingerprintDiffersAcrossRealChange(t *testing.T) {
	ev := sampleEvent()
	changed := ev
	changed.Particles = append([]hepmodel.Particle{}, ev.Particles...)
	changed.Particles[2].Energy += 10.0

	cfg := DefaultConfig()
	fp1, err1 := Event(ev, cfg)
	fp2, err2 := Event(changed, cfg)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.NotEqual(t, fp1, fp2)
}

func TestEventFingerprintRejectsNonPositiveAbsTol(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AbsTol = 0
	_, err := Event(sampleEvent(), cfg)
	assert.Error(t, err)
}

func TestEventFingerprintIncludeGraphIgnoresDocumentationParticles(t *testing.T) {
	ev := sampleEvent()
	withDoc := ev
	withDoc.Particles = append([]hepmodel.Particle{}, ev.Particles...)
	withDoc.Particles = append(withDoc.Particles, hepmodel.Particle{
		Status: 3, PDGID: 21, Barcode: 99, VertexBarcode: 1, EndVertexBarcode: 2,
	})

	cfg := DefaultConfig()
	cfg.IncludeGraph = true
	fp1, err1 := Event(ev, cfg)
	fp2, err2 := Event(withDoc, cfg)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, fp1, fp2)
}

func TestEventFingerprintIncludeGraphSensitiveToRealWiringChange(t *testing.T) {
	ev := sampleEvent()
	for i := range ev.Particles {
		ev.Particles[i].Barcode = i + 1
	}
	rewired := ev
	rewired.Particles = append([]hepmodel.Particle{}, ev.Particles...)
	rewired.Particles[2].VertexBarcode = 77

	cfg := DefaultConfig()
	cfg.IncludeGraph = true
	fp1, err1 := Event(ev, cfg)
	fp2, err2 := Event(rewired, cfg)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.NotEqual(t, fp1, fp2)
}
