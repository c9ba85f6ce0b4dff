// Package pdgdata provides PDG Monte Carlo particle numbering scheme
// lookups: validity, display name, and (where known) mass.
//
// The reference implementation optionally defers to the scikit-hep
// "particle" package when installed and otherwise falls back to a small
// built-in table; no Go pack dependency supplies an equivalent particle
// database, so this package carries only the fallback table, always.
package pdgdata

import "strconv"

var fallbackNames = map[int]string{
	1:  "d",
	2:  "u",
	3:  "s",
	4:  "c",
	5:  "b",
	6:  "t",
	11: "e-",
	12: "nu_e",
	13: "mu-",
	14: "nu_mu",
	15: "tau-",
	16: "nu_tau",
	21: "g",
	22: "gamma",
	23: "Z0",
	24: "W+",
	25: "H0",
	2212: "proton",
	-2212: "antiproton",
	2112: "neutron",
	-2112: "antineutron",
}

// IsValidPDGID reports whether id is a recognised PDG Monte Carlo ID. The
// fallback table has no notion of "invalid" — any nonzero integer is
// accepted, matching the reference implementation's permissive behaviour
// when the optional particle database is unavailable.
func IsValidPDGID(id int) bool {
	return id != 0
}

// Name returns a human-readable name for a PDG ID, falling back to the
// decimal string form when the ID isn't in the built-in table.
func Name(id int) string {
	if n, ok := fallbackNames[id]; ok {
		return n
	}
	if n, ok := fallbackNames[-id]; ok && id < 0 {
		return "anti-" + n
	}
	return strconv.Itoa(id)
}

// MassGeV returns the known rest mass in GeV for id, and false if unknown.
// The fallback table carries no mass data (only the optional "particle"
// package would), so this always reports unknown.
func MassGeV(id int) (float64, bool) {
	_ = id
	return 0, false
}
