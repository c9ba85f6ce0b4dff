package hepmodel

// Vertex is a production/decay vertex in the event graph, identified by a
// barcode (negative for reconstructed internal vertices, by HepMC3
// convention) and linked to particles purely through barcode references —
// never pointers, so the graph survives serialization round-trips.
type Vertex struct {
	Barcode int
	X, Y, Z, T float64

	Incoming []int // particle barcodes flowing in
	Outgoing []int // particle barcodes flowing out
}

// ProcessInfo describes one generator process contributing to a run.
type ProcessInfo struct {
	ProcessID        int
	CrossSection     float64
	CrossSectionError float64
	MaxWeight        float64
}

// RunInfo carries run-scope metadata shared by every event in an EventFile.
type RunInfo struct {
	BeamPDGID  [2]int
	BeamEnergy [2]float64

	WeightNames []string
	Processes   []ProcessInfo

	GeneratorName    string
	GeneratorVersion string

	Extra RunExtra
}

// Event is one generator-level event: a flat particle list plus the
// vertices that connect them, generator bookkeeping scalars, and a
// catch-all Extra record for format-specific fields that round-trip but
// are otherwise opaque to the core model.
type Event struct {
	EventNumber int
	Particles   []Particle
	Vertices    []Vertex

	Weights   []float64
	ProcessID int
	Scale     float64
	AlphaQED  float64
	AlphaQCD  float64

	Extra EventExtra
}

// NewEvent returns an Event with a single unit weight, matching the
// reference implementation's weights=[1.0] default.
func NewEvent() Event {
	return Event{Weights: []float64{1.0}}
}

// Weight returns the event's primary (first) weight, or 1.0 if none is set.
func (e Event) Weight() float64 {
	if len(e.Weights) == 0 {
		return 1.0
	}
	return e.Weights[0]
}

// IncomingParticles returns the event's incoming beam particles.
func (e Event) IncomingParticles() []Particle {
	return e.filterByStatus(func(p Particle) bool { return p.IsIncoming() })
}

// FinalParticles returns the event's final-state particles.
func (e Event) FinalParticles() []Particle {
	return e.filterByStatus(func(p Particle) bool { return p.IsFinal() })
}

// IntermediateParticles returns the event's intermediate/documentation
// particles.
func (e Event) IntermediateParticles() []Particle {
	return e.filterByStatus(func(p Particle) bool { return p.IsIntermediate() })
}

func (e Event) filterByStatus(pred func(Particle) bool) []Particle {
	out := make([]Particle, 0, len(e.Particles))
	for _, p := range e.Particles {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// NFinal returns the number of final-state particles.
func (e Event) NFinal() int {
	n := 0
	for _, p := range e.Particles {
		if p.IsFinal() {
			n++
		}
	}
	return n
}

// NParticles returns the total particle count.
func (e Event) NParticles() int { return len(e.Particles) }

// EventFile bundles a run's RunInfo with the events read from (or to be
// written to) one physical file, plus the format tag the data was read
// from or is destined for.
type EventFile struct {
	RunInfo    RunInfo
	Events     []Event
	FormatName string
}

// Len returns the number of events in the file.
func (ef EventFile) Len() int { return len(ef.Events) }
