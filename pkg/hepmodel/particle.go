// Package hepmodel holds the in-memory event-record types shared by every
// reader, writer, and analysis component: Particle, Vertex, ProcessInfo,
// RunInfo, Event, and EventFile.
package hepmodel

import "math"

// Particle is a single four-momentum entry in an event record, carrying
// both the generator-level bookkeeping fields (mother/color indices) and
// the HepMC-style graph fields (barcode, vertex barcodes).
type Particle struct {
	PDGID  int
	Status int

	Px, Py, Pz, Energy float64
	Mass               float64

	Mother1, Mother2 int
	Color1, Color2   int
	Spin             float64

	Barcode         int
	VertexBarcode   int
	EndVertexBarcode int

	Attributes ParticleAttributes
}

// NewParticle returns a Particle with the same field defaults as the
// original Python dataclass: zero momentum/mass, spin 9.0 (HepMC3's "unset"
// convention), and zero barcodes.
func NewParticle() Particle {
	return Particle{Spin: 9.0}
}

// P returns the momentum magnitude.
func (p Particle) P() float64 {
	return math.Sqrt(p.Px*p.Px + p.Py*p.Py + p.Pz*p.Pz)
}

// Pt returns the transverse momentum.
func (p Particle) Pt() float64 {
	return math.Hypot(p.Px, p.Py)
}

// Eta returns the pseudorapidity. When the particle travels exactly along
// the beam axis (p == |pz|), eta diverges to signed infinity rather than
// raising, matching the reference implementation.
func (p Particle) Eta() float64 {
	mom := p.P()
	if mom == math.Abs(p.Pz) {
		if p.Pz > 0 {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
	return math.Atanh(p.Pz / mom)
}

// Phi returns the azimuthal angle in (-pi, pi].
func (p Particle) Phi() float64 {
	return math.Atan2(p.Py, p.Px)
}

// Rapidity returns the longitudinal rapidity y = 0.5 * ln((E+pz)/(E-pz)).
func (p Particle) Rapidity() float64 {
	num := p.Energy + p.Pz
	den := p.Energy - p.Pz
	if den == 0 {
		if num > 0 {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
	return 0.5 * math.Log(num/den)
}

// ComputedMass returns the mass implied by the four-momentum, clamping the
// tiny negative m^2 values that floating point round-off produces near
// zero (m^2 in (-1e-8, 0)) up to zero before taking the square root.
func (p Particle) ComputedMass() float64 {
	m2 := p.Energy*p.Energy - p.Px*p.Px - p.Py*p.Py - p.Pz*p.Pz
	if m2 < 0 {
		if m2 > -1e-8 {
			m2 = 0
		} else {
			return -math.Sqrt(-m2)
		}
	}
	return math.Sqrt(m2)
}

// IsIncoming reports whether the particle is an incoming beam particle.
func (p Particle) IsIncoming() bool { return p.Status == -1 }

// IsFinal reports whether the particle is a final-state particle.
func (p Particle) IsFinal() bool { return p.Status == 1 }

// IsIntermediate reports whether the particle is an intermediate/decayed
// particle (status 2) or documentation-only entry (status 3).
func (p Particle) IsIntermediate() bool { return p.Status == 2 || p.Status == 3 }

// ToMap renders the particle's core fields as a string-keyed map, the same
// shape the CSV/TSV writer and the legacy flat dict representation use.
func (p Particle) ToMap() map[string]any {
	return map[string]any{
		"pdg_id":             p.PDGID,
		"status":             p.Status,
		"mother1":            p.Mother1,
		"mother2":            p.Mother2,
		"color1":             p.Color1,
		"color2":             p.Color2,
		"px":                 p.Px,
		"py":                 p.Py,
		"pz":                 p.Pz,
		"energy":             p.Energy,
		"mass":               p.Mass,
		"spin":               p.Spin,
		"barcode":            p.Barcode,
		"vertex_barcode":     p.VertexBarcode,
		"end_vertex_barcode": p.EndVertexBarcode,
	}
}
