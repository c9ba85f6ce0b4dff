package hepmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventFiltersByStatus(t *testing.T) {
	e := NewEvent()
	e.Particles = []Particle{
		{Status: -1, PDGID: 2212},
		{Status: -1, PDGID: 2212},
		{Status: 1, PDGID: 11},
		{Status: 2, PDGID: 23},
	}

	assert.Len(t, e.IncomingParticles(), 2)
	assert.Len(t, e.FinalParticles(), 1)
	assert.Len(t, e.IntermediateParticles(), 1)
	assert.Equal(t, 1, e.NFinal())
	assert.Equal(t, 4, e.NParticles())
	assert.Equal(t, 1.0, e.Weight())
}

func TestEventExtraMarshalFlattensNamedFronts(t *testing.T) {
	raw := 4
	ev := Event{
		Extra: EventExtra{
			LHE: &LHEEventExtra{Weights: map[string]float64{"scale_up": 1.1}},
			Extra: map[string]any{
				"custom": "value",
			},
		},
		Particles: []Particle{{Attributes: ParticleAttributes{HepMCStatusRaw: &raw}}},
	}

	b, err := ev.Extra.MarshalJSON()
	assert.NoError(t, err)
	assert.Contains(t, string(b), "custom")
	assert.Contains(t, string(b), "lhe")
	assert.Contains(t, string(b), "scale_up")
}
