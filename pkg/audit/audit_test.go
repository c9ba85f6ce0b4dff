package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

func TestFormatCapabilitiesKnownAndUnknown(t *testing.T) {
	lhe := FormatCapabilities("lhe")
	assert.True(t, lhe.ParticleFields["spin"])
	assert.False(t, lhe.ParticleFields["barcode"])

	unknown := FormatCapabilities("nonexistent")
	assert.Empty(t, unknown.ParticleFields)
	assert.Empty(t, unknown.EventFields)
	assert.Empty(t, unknown.RunFields)
}

func TestPlanComputesFieldDifferences(t *testing.T) {
	plan := Plan("hepmc3", "csv")
	assert.Contains(t, plan.DroppedParticleFields, "attributes")
	assert.Contains(t, plan.DroppedEventFields, "weights")
	assert.NotContains(t, plan.DroppedParticleFields, "pdg_id")
}

func TestPlanIsEmptyForIdenticalFormats(t *testing.T) {
	plan := Plan("lhe", "lhe")
	assert.Empty(t, plan.DroppedParticleFields)
	assert.Empty(t, plan.DroppedEventFields)
	assert.Empty(t, plan.DroppedRunFields)
}

func TestObserveLossesCountsNonDefaultDroppedFields(t *testing.T) {
	plan := Plan("lhe", "hepmc3")

	ev := hepmodel.NewEvent()
	ev.EventNumber = 7
	ev.ProcessID = 42
	ev.Particles = []hepmodel.Particle{{PDGID: 11, Status: 1, Spin: 0.5}}

	cur := hepio.NewSliceCursor([]hepmodel.Event{ev}, nil)
	wrapped, counter := ObserveLosses(cur, plan)

	out, ok, err := wrapped.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, out.EventNumber)

	assert.Equal(t, 1, counter.DroppedFields["event.process_id"])
	assert.Equal(t, 1, counter.DroppedFields["particle.spin"])
	require.Len(t, counter.LossExamples["particle.spin"], 1)
	assert.Equal(t, 7, counter.LossExamples["particle.spin"][0]["event"])
}

func TestObserveLossesIgnoresDefaultSpinAndZeroValues(t *testing.T) {
	plan := Plan("lhe", "hepmc3")

	ev := hepmodel.NewEvent()
	ev.Particles = []hepmodel.Particle{hepmodel.NewParticle()}

	cur := hepio.NewSliceCursor([]hepmodel.Event{ev}, nil)
	wrapped, counter := ObserveLosses(cur, plan)

	_, ok, err := wrapped.Next()
	require.NoError(t, err)
	require.True(t, ok)

	assert.Empty(t, counter.DroppedFields)
}

func TestObserveLossesCountsDroppedMultiWeights(t *testing.T) {
	plan := Plan("lhe", "csv")

	ev := hepmodel.NewEvent()
	ev.Weights = []float64{1.0, 0.9, 1.1}

	cur := hepio.NewSliceCursor([]hepmodel.Event{ev}, nil)
	wrapped, counter := ObserveLosses(cur, plan)

	_, ok, err := wrapped.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, counter.DroppedWeights)
}

func TestLossHashDeterministic(t *testing.T) {
	plan := Plan("lhe", "csv")
	c1 := newLossCounter()
	c1.DroppedFields["event.process_id"] = 3

	h1, err := LossHash(plan, c1)
	require.NoError(t, err)
	h2, err := LossHash(plan, c1)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	c2 := newLossCounter()
	c2.DroppedFields["event.process_id"] = 4
	h3, err := LossHash(plan, c2)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestConversionReportToSARIFRejectsWrongKind(t *testing.T) {
	_, err := ConversionReportToSARIF(ConversionReport{Kind: "wrong"})
	assert.Error(t, err)
}

func TestConversionReportToSARIFEmitsOneResultPerField(t *testing.T) {
	report := ConversionReport{
		Kind: conversionReportKind,
		Provenance: ReportProvenance{
			Tool: "hepconduit", ToolVersion: "0.1.0", InputPath: "in.lhe", OutputPath: "out.csv",
		},
		LossPlan:             Plan("lhe", "csv"),
		DroppedFields:        map[string]int{"particle.spin": 2, "event.process_id": 1},
		DroppedWeightsEvents: 0,
		LossHash:             "deadbeef",
	}
	sarif, err := ConversionReportToSARIF(report)
	require.NoError(t, err)

	runs := sarif["runs"].([]map[string]any)
	require.Len(t, runs, 1)
	results := runs[0]["results"].([]map[string]any)
	assert.Len(t, results, 2)
}
