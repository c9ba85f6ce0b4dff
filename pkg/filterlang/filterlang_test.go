package filterlang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

func sampleEvent() hepmodel.Event {
	ev := hepmodel.NewEvent()
	ev.ProcessID = 1
	ev.Scale = 91.2
	ev.Particles = []hepmodel.Particle{
		{Status: -1, PDGID: 2212, Energy: 6500, Pz: 6500},
		{Status: -1, PDGID: 2212, Energy: 6500, Pz: -6500},
		{Status: 1, PDGID: 1, Px: 100, Py: 0, Pz: 10, Energy: 101},
		{Status: 1, PDGID: 11, Px: 30, Py: 40, Pz: 0, Energy: 50},
		{Status: 1, PDGID: 12, Px: 5, Py: 5, Pz: 0, Energy: 10},
	}
	return ev
}

func TestCompileRejectsDisallowedSyntax(t *testing.T) {
	_, err := Compile("__import__('os')")
	assert.Error(t, err)

	_, err = Compile("ev.particles")
	assert.Error(t, err)

	_, err = Compile("unknown_fn(1)")
	assert.Error(t, err)
}

func TestCompileAcceptsArithmeticAndBooleanExpressions(t *testing.T) {
	c, err := Compile("n_jets >= 1 && ht > 50")
	require.NoError(t, err)
	matched, err := c.Matches(sampleEvent())
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestVariablesClassifiesFinalStateParticles(t *testing.T) {
	vars := Variables(sampleEvent())
	assert.Equal(t, 1.0, vars["n_jets"])
	assert.Equal(t, 1.0, vars["n_leptons"])
	assert.Equal(t, 1.0, vars["n_neutrinos"])
	assert.Equal(t, 2.0, vars["n_incoming"])
}

func TestMatchesFalseWhenConditionUnmet(t *testing.T) {
	c, err := Compile("n_jets >= 5")
	require.NoError(t, err)
	matched, err := c.Matches(sampleEvent())
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestEvalSupportsAllowedFunctions(t *testing.T) {
	c, err := Compile("sqrt(ht * ht) > 0 && abs(-met) >= 0")
	require.NoError(t, err)
	matched, err := c.Matches(sampleEvent())
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestEvalErrorsOnUnknownVariable(t *testing.T) {
	c, err := Compile("not_a_real_variable > 0")
	require.NoError(t, err)
	_, err = c.Matches(sampleEvent())
	assert.Error(t, err)
}
