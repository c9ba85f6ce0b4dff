// Package diffevt computes a semantic diff summary between two event
// files: either a multiset comparison keyed by content fingerprint (order-
// and round-off independent), or a positional comparison of event i in
// each file against the other (sensitive to generator seed/ordering
// drift).
package diffevt

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/Manav02012002/hepconduit/pkg/fingerprint"
	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

// FingerprintDiff is the result of comparing two event lists as multisets
// of content fingerprints.
type FingerprintDiff struct {
	NA             int      `json:"n_a"`
	NB             int      `json:"n_b"`
	Common         int      `json:"common"`
	Added          int      `json:"added"`
	Removed        int      `json:"removed"`
	ExampleAdded   []string `json:"example_added"`
	ExampleRemoved []string `json:"example_removed"`
}

// ByFingerprint fingerprints every event in a and b under cfg and compares
// the two as multisets: how many fingerprints are shared, added in b, or
// removed relative to a.
func ByFingerprint(a, b []hepmodel.Event, cfg fingerprint.Config) (FingerprintDiff, error) {
	ca, err := counts(a, cfg)
	if err != nil {
		return FingerprintDiff{}, err
	}
	cb, err := counts(b, cfg)
	if err != nil {
		return FingerprintDiff{}, err
	}

	keys := make(map[string]bool)
	for k := range ca {
		keys[k] = true
	}
	for k := range cb {
		keys[k] = true
	}

	var common, added, removed int
	for k := range keys {
		na, nb := ca[k], cb[k]
		if na < nb {
			common += na
		} else {
			common += nb
		}
		if nb > na {
			added += nb - na
		}
		if na > nb {
			removed += na - nb
		}
	}

	var exampleAdded, exampleRemoved []string
	sortedKeys := sortedFingerprintKeys(cb)
	for _, k := range sortedKeys {
		if cb[k] > ca[k] && len(exampleAdded) < 5 {
			exampleAdded = append(exampleAdded, k)
		}
	}
	sortedKeys = sortedFingerprintKeys(ca)
	for _, k := range sortedKeys {
		if ca[k] > cb[k] && len(exampleRemoved) < 5 {
			exampleRemoved = append(exampleRemoved, k)
		}
	}

	return FingerprintDiff{
		NA: len(a), NB: len(b),
		Common: common, Added: added, Removed: removed,
		ExampleAdded: exampleAdded, ExampleRemoved: exampleRemoved,
	}, nil
}

func counts(evs []hepmodel.Event, cfg fingerprint.Config) (map[string]int, error) {
	out := make(map[string]int, len(evs))
	for _, ev := range evs {
		fp, err := fingerprint.Event(ev, cfg)
		if err != nil {
			return nil, errors.Wrap(err, "diffevt: fingerprint")
		}
		out[fp]++
	}
	return out, nil
}

func sortedFingerprintKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IndexDiff is the result of comparing two event lists position by
// position.
type IndexDiff struct {
	NA             int `json:"n_a"`
	NB             int `json:"n_b"`
	ComparedEvents int `json:"compared_events"`

	WeightMeanDelta   float64 `json:"weight_mean_delta"`
	WeightMaxAbsDelta float64 `json:"weight_max_abs_delta"`

	FinalStateMeanL1 float64 `json:"final_state_mean_l1"`
	FinalStateMaxL1  float64 `json:"final_state_max_l1"`
}

type particleTuple struct {
	pdgID              int
	px, py, pz, energy float64
}

func finalStateTuples(ev hepmodel.Event) []particleTuple {
	var out []particleTuple
	for _, p := range ev.FinalParticles() {
		out = append(out, particleTuple{p.PDGID, p.Px, p.Py, p.Pz, p.Energy})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.pdgID != b.pdgID {
			return a.pdgID < b.pdgID
		}
		if a.px != b.px {
			return a.px < b.px
		}
		if a.py != b.py {
			return a.py < b.py
		}
		if a.pz != b.pz {
			return a.pz < b.pz
		}
		return a.energy < b.energy
	})
	return out
}

// ByIndex compares a[i] against b[i] for every i up to the shorter list's
// length: weight drift and L1 four-momentum drift across final-state
// particles, sorted identically in each event so drift reflects physics
// differences rather than ordering differences.
func ByIndex(a, b []hepmodel.Event) IndexDiff {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var weightDiffs []float64
	var maxDp, meanDpSum float64
	var nPartComp int

	for i := 0; i < n; i++ {
		ea, eb := a[i], b[i]
		weightDiffs = append(weightDiffs, eb.Weight()-ea.Weight())

		fa := finalStateTuples(ea)
		fb := finalStateTuples(eb)
		m := len(fa)
		if len(fb) < m {
			m = len(fb)
		}
		for j := 0; j < m; j++ {
			dp := math.Abs(fb[j].px-fa[j].px) + math.Abs(fb[j].py-fa[j].py) +
				math.Abs(fb[j].pz-fa[j].pz) + math.Abs(fb[j].energy-fa[j].energy)
			if dp > maxDp {
				maxDp = dp
			}
			meanDpSum += dp
			nPartComp++
		}
	}

	meanDp := 0.0
	if nPartComp > 0 {
		meanDp = meanDpSum / float64(nPartComp)
	}

	var sumDw, maxDw float64
	for _, d := range weightDiffs {
		sumDw += d
		if math.Abs(d) > maxDw {
			maxDw = math.Abs(d)
		}
	}
	meanDw := 0.0
	if len(weightDiffs) > 0 {
		meanDw = sumDw / float64(len(weightDiffs))
	}

	return IndexDiff{
		NA: len(a), NB: len(b), ComparedEvents: n,
		WeightMeanDelta: meanDw, WeightMaxAbsDelta: maxDw,
		FinalStateMeanL1: meanDp, FinalStateMaxL1: maxDp,
	}
}
