// Package audit computes and observes the information lost when converting
// an event record from one format to another, and renders the result as a
// conversion report and, optionally, a SARIF log for CI annotation.
package audit

// Capabilities is the set of core-model field names a format can represent
// natively, at the particle, event, and run scope.
type Capabilities struct {
	ParticleFields map[string]bool
	EventFields    map[string]bool
	RunFields      map[string]bool
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var capabilities = map[string]Capabilities{
	"lhe": {
		ParticleFields: set("pdg_id", "status", "mother1", "mother2", "color1", "color2", "px", "py", "pz", "energy", "mass", "spin"),
		EventFields:    set("event_number", "weights", "process_id", "scale", "alpha_qed", "alpha_qcd"),
		RunFields:      set("beam_pdg_id", "beam_energy", "weight_names", "processes", "generator_name", "generator_version", "extra"),
	},
	"hepmc3": {
		ParticleFields: set("pdg_id", "status", "px", "py", "pz", "energy", "mass", "barcode", "vertex_barcode", "end_vertex_barcode", "attributes"),
		EventFields:    set("event_number", "weights", "extra"),
		RunFields:      set("beam_pdg_id", "beam_energy", "weight_names", "generator_name", "generator_version", "extra"),
	},
	"csv": {
		ParticleFields: set("pdg_id", "status", "mother1", "mother2", "color1", "color2", "px", "py", "pz", "energy", "mass", "spin", "barcode", "vertex_barcode", "end_vertex_barcode"),
		EventFields:    set("event_number"),
		RunFields:      set(),
	},
	"tsv": {
		ParticleFields: set("pdg_id", "status", "mother1", "mother2", "color1", "color2", "px", "py", "pz", "energy", "mass", "spin", "barcode", "vertex_barcode", "end_vertex_barcode"),
		EventFields:    set("event_number"),
		RunFields:      set(),
	},
	"parquet": {
		ParticleFields: set("pdg_id", "status", "mother1", "mother2", "color1", "color2", "px", "py", "pz", "energy", "mass", "spin", "barcode", "vertex_barcode", "end_vertex_barcode", "attributes"),
		EventFields:    set("event_number", "weights", "process_id", "scale", "alpha_qed", "alpha_qcd", "extra"),
		RunFields:      set("beam_pdg_id", "beam_energy", "weight_names", "processes", "generator_name", "generator_version", "extra"),
	},
}

// FormatCapabilities returns the capability manifest for fmt, or a manifest
// of three empty sets if fmt is unknown.
func FormatCapabilities(format string) Capabilities {
	if c, ok := capabilities[format]; ok {
		return c
	}
	return Capabilities{ParticleFields: set(), EventFields: set(), RunFields: set()}
}
