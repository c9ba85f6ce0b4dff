package hepmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticleDerivedQuantities(t *testing.T) {
	p := Particle{Px: 3, Py: 4, Pz: 0, Energy: 10, Mass: 5}

	assert.InDelta(t, 5.0, p.Pt(), 1e-9)
	assert.InDelta(t, 0.0, p.Eta(), 1e-9)
	assert.InDelta(t, math.Atan2(4, 3), p.Phi(), 1e-9)
}

func TestParticleEtaAlongBeamAxis(t *testing.T) {
	forward := Particle{Pz: 100, Energy: 100}
	backward := Particle{Pz: -100, Energy: 100}

	assert.True(t, math.IsInf(forward.Eta(), 1))
	assert.True(t, math.IsInf(backward.Eta(), -1))
}

func TestComputedMassClampsTinyNegative(t *testing.T) {
	// E^2 - |p|^2 is a hair below zero purely from float round-off.
	p := Particle{Px: 1, Py: 0, Pz: 0, Energy: math.Nextafter(1, 0)}
	require.True(t, p.ComputedMass() >= 0)
	assert.InDelta(t, 0.0, p.ComputedMass(), 1e-4)
}

func TestParticleStatusClassification(t *testing.T) {
	incoming := Particle{Status: -1}
	final := Particle{Status: 1}
	intermediate := Particle{Status: 2}
	docOnly := Particle{Status: 3}

	assert.True(t, incoming.IsIncoming())
	assert.True(t, final.IsFinal())
	assert.True(t, intermediate.IsIntermediate())
	assert.True(t, docOnly.IsIntermediate())
	assert.False(t, final.IsIncoming())
}
