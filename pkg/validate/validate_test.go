package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

func balancedEvent() hepmodel.Event {
	return hepmodel.Event{
		Particles: []hepmodel.Particle{
			{Status: -1, PDGID: 11, Energy: 45.6, Pz: 45.6},
			{Status: -1, PDGID: -11, Energy: 45.6, Pz: -45.6},
			{Status: 1, PDGID: 11, Energy: 45.6, Pz: 45.6},
			{Status: 1, PDGID: -11, Energy: 45.6, Pz: -45.6},
		},
	}
}

func TestEventNoIssuesOnBalancedEvent(t *testing.T) {
	issues := Event(balancedEvent(), DefaultOptions())
	assert.Empty(t, issues)
}

func TestEventFlagsNegativeEnergy(t *testing.T) {
	ev := balancedEvent()
	ev.Particles[2].Energy = -1
	issues := Event(ev, DefaultOptions())
	found := false
	for _, is := range issues {
		if is.Level == LevelError {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEventFlagsMomentumNonConservation(t *testing.T) {
	ev := balancedEvent()
	ev.Particles[2].Energy = 1000
	issues := Event(ev, DefaultOptions())
	require.NotEmpty(t, issues)
}

func TestEventSkipsMomentumCheckWithoutIncomingParticles(t *testing.T) {
	ev := hepmodel.Event{
		Particles: []hepmodel.Particle{
			{Status: 1, PDGID: 11, Energy: 45.6, Pz: 45.6},
			{Status: 1, PDGID: -11, Energy: 45.6, Pz: -45.6},
		},
	}
	issues := Event(ev, DefaultOptions())
	for _, is := range issues {
		assert.NotContains(t, is.Message, "not conserved")
	}
}

func TestEventSkipsMomentumCheckWithoutOutgoingParticles(t *testing.T) {
	ev := hepmodel.Event{
		Particles: []hepmodel.Particle{
			{Status: -1, PDGID: 11, Energy: 45.6, Pz: 45.6},
			{Status: -1, PDGID: -11, Energy: 45.6, Pz: -45.6},
		},
	}
	issues := Event(ev, DefaultOptions())
	for _, is := range issues {
		assert.NotContains(t, is.Message, "not conserved")
	}
}

func TestEventWarnsOnEmptyParticleList(t *testing.T) {
	ev := hepmodel.Event{}
	issues := Event(ev, DefaultOptions())
	require.Len(t, issues, 1)
	assert.Equal(t, LevelWarning, issues[0].Level)
}

func TestStreamAnnotatesExtraWithoutStrict(t *testing.T) {
	ev := balancedEvent()
	ev.Particles[2].Energy = -1
	cur := hepio.NewSliceCursor([]hepmodel.Event{ev}, nil)
	streamed := Stream(cur, DefaultOptions(), false)

	out, ok, err := streamed.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, out.Extra.ValidationIssues)
}

func TestStreamStopsOnFirstErrorWhenStrict(t *testing.T) {
	ev := balancedEvent()
	ev.Particles[2].Energy = -1
	cur := hepio.NewSliceCursor([]hepmodel.Event{ev}, nil)
	streamed := Stream(cur, DefaultOptions(), true)

	_, _, err := streamed.Next()
	assert.Error(t, err)
}
