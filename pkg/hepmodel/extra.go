package hepmodel

import "encoding/json"

// ParticleAttributes holds the small set of named, well-known particle
// attributes HepMC3 round-tripping needs (the raw numeric status code, when
// it doesn't collapse cleanly onto the three-way HepMC3 status convention)
// plus a catch-all bag for anything else a reader captured but the core
// model has no named field for.
type ParticleAttributes struct {
	HepMCStatusRaw *int
	Extra          map[string]any
}

// MarshalJSON flattens the named front and the catch-all bag into one
// object so the result is deterministic and indistinguishable from a plain
// dict, the shape every report/provenance consumer expects.
func (a ParticleAttributes) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.merged())
}

func (a ParticleAttributes) merged() map[string]any {
	out := make(map[string]any, len(a.Extra)+1)
	for k, v := range a.Extra {
		out[k] = v
	}
	if a.HepMCStatusRaw != nil {
		out["hepmc_status_raw"] = *a.HepMCStatusRaw
	}
	return out
}

// IsEmpty reports whether the attribute bag carries no data at all.
func (a ParticleAttributes) IsEmpty() bool {
	return a.HepMCStatusRaw == nil && len(a.Extra) == 0
}

// LHEEventExtra holds the LHE-specific per-event data the core model has
// no dedicated field for: explicit <weights>/<rwgt> blocks and any
// unrecognised trailing XML captured verbatim.
type LHEEventExtra struct {
	Weights map[string]float64
	Rwgt    map[string]float64
	Tail    string
}

// HepMC3EventExtra holds HepMC3-specific per-event data: the raw "E ..."
// header line (for fields the core model doesn't carry explicitly), the raw
// "A ..." attribute lines verbatim and in file order, and unrecognised
// record lines.
type HepMC3EventExtra struct {
	ERaw           string
	ARaw           []string
	UnknownRecords []string
}

// EventExtra is the per-event catch-all record: named fronts for each
// format that needs one, validation annotations attached by the streaming
// validator, and a generic bag for anything else.
type EventExtra struct {
	LHE    *LHEEventExtra
	HepMC3 *HepMC3EventExtra

	ValidationIssues []string

	Extra map[string]any
}

// MarshalJSON flattens all named fronts plus the catch-all bag.
func (e EventExtra) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Extra)+3)
	for k, v := range e.Extra {
		out[k] = v
	}
	if e.LHE != nil {
		lhe := map[string]any{}
		if len(e.LHE.Weights) > 0 {
			lhe["weights"] = e.LHE.Weights
		}
		if len(e.LHE.Rwgt) > 0 {
			lhe["rwgt"] = e.LHE.Rwgt
		}
		if e.LHE.Tail != "" {
			lhe["tail"] = e.LHE.Tail
		}
		if len(lhe) > 0 {
			out["lhe"] = lhe
		}
	}
	if e.HepMC3 != nil {
		hm := map[string]any{}
		if e.HepMC3.ERaw != "" {
			hm["e_raw"] = e.HepMC3.ERaw
		}
		if len(e.HepMC3.ARaw) > 0 {
			hm["A"] = e.HepMC3.ARaw
		}
		if len(e.HepMC3.UnknownRecords) > 0 {
			hm["unknown_records"] = e.HepMC3.UnknownRecords
		}
		if len(hm) > 0 {
			out["hepmc3"] = hm
		}
	}
	if len(e.ValidationIssues) > 0 {
		out["validation_issues"] = e.ValidationIssues
	}
	return json.Marshal(out)
}

// Units describes the momentum/length unit convention a run uses, the
// HepMC3 "U" record.
type Units struct {
	Momentum string // e.g. "GEV" or "MEV"
	Length   string // e.g. "MM" or "CM"
}

// HepMC3RunExtra preserves HepMC3 run-scope records the core model has no
// dedicated field for: raw header comment lines and any "F"/"C" records.
type HepMC3RunExtra struct {
	RawHeaders []string
	F          []string
	C          []string
}

// RunExtra is the run-scope catch-all record.
type RunExtra struct {
	Units                *Units
	HepMC3                *HepMC3RunExtra
	ParquetSchemaMetadata map[string]string

	Extra map[string]any
}

// MarshalJSON flattens all named fronts plus the catch-all bag.
func (r RunExtra) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+3)
	for k, v := range r.Extra {
		out[k] = v
	}
	if r.Units != nil {
		out["units"] = map[string]string{
			"momentum": r.Units.Momentum,
			"length":   r.Units.Length,
		}
	}
	if r.HepMC3 != nil {
		hm := map[string]any{}
		if len(r.HepMC3.RawHeaders) > 0 {
			hm["raw_headers"] = r.HepMC3.RawHeaders
		}
		if len(r.HepMC3.F) > 0 {
			hm["f"] = r.HepMC3.F
		}
		if len(r.HepMC3.C) > 0 {
			hm["c"] = r.HepMC3.C
		}
		if len(hm) > 0 {
			out["hepmc3"] = hm
		}
	}
	if len(r.ParquetSchemaMetadata) > 0 {
		out["parquet_schema_metadata"] = r.ParquetSchemaMetadata
	}
	return json.Marshal(out)
}
