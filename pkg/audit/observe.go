package audit

import (
	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

// LossCounter tallies the non-default values actually observed for each
// field a LossPlan says will be dropped, as a stream of events passes
// through ObserveLosses.
type LossCounter struct {
	DroppedFields      map[string]int                 `json:"dropped_fields"`
	DroppedWeights     int                             `json:"dropped_weights_events"`
	DroppedRunInfoKeys map[string]int                  `json:"dropped_runinfo_keys"`
	LossExamples       map[string][]map[string]any     `json:"loss_examples"`
}

func newLossCounter() *LossCounter {
	return &LossCounter{
		DroppedFields:      map[string]int{},
		DroppedRunInfoKeys: map[string]int{},
		LossExamples:       map[string][]map[string]any{},
	}
}

// isNonDefault mirrors the reference tool's conservative "is this value
// worth reporting as lost" predicate: zero values, the 9.0 unknown-spin
// sentinel, empty collections, and empty strings are not losses.
func isNonDefault(val any) bool {
	switch v := val.(type) {
	case nil:
		return false
	case int:
		return v != 0 && v != 9
	case int64:
		return v != 0 && v != 9
	case float64:
		return v != 0 && v != 9.0
	case string:
		return v != ""
	case []string:
		return len(v) > 0
	case []float64:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case map[string]float64:
		return len(v) > 0
	case hepmodel.ParticleAttributes:
		return !v.IsEmpty()
	default:
		return true
	}
}

func particleFieldValue(p hepmodel.Particle, field string) (any, bool) {
	switch field {
	case "pdg_id":
		return p.PDGID, true
	case "status":
		return p.Status, true
	case "mother1":
		return p.Mother1, true
	case "mother2":
		return p.Mother2, true
	case "color1":
		return p.Color1, true
	case "color2":
		return p.Color2, true
	case "px":
		return p.Px, true
	case "py":
		return p.Py, true
	case "pz":
		return p.Pz, true
	case "energy":
		return p.Energy, true
	case "mass":
		return p.Mass, true
	case "spin":
		return p.Spin, true
	case "barcode":
		return p.Barcode, true
	case "vertex_barcode":
		return p.VertexBarcode, true
	case "end_vertex_barcode":
		return p.EndVertexBarcode, true
	case "attributes":
		return p.Attributes, true
	default:
		return nil, false
	}
}

func eventFieldValue(ev hepmodel.Event, field string) (any, bool) {
	switch field {
	case "event_number":
		return ev.EventNumber, true
	case "weights":
		return ev.Weights, true
	case "process_id":
		return ev.ProcessID, true
	case "scale":
		return ev.Scale, true
	case "alpha_qed":
		return ev.AlphaQED, true
	case "alpha_qcd":
		return ev.AlphaQCD, true
	case "extra":
		return ev.Extra.Extra, true
	default:
		return nil, false
	}
}

func recordExample(counter *LossCounter, key string, ex map[string]any) {
	lst := counter.LossExamples[key]
	if len(lst) < 5 {
		counter.LossExamples[key] = append(lst, ex)
	}
}

// ObserveLosses wraps cur, tallying into the returned LossCounter every
// non-default value seen for a field the plan says is dropped, without
// altering the events that pass through.
func ObserveLosses(cur hepio.EventCursor, plan LossPlan) (hepio.EventCursor, *LossCounter) {
	counter := newLossCounter()
	droppedEvent := make(map[string]bool, len(plan.DroppedEventFields))
	for _, f := range plan.DroppedEventFields {
		droppedEvent[f] = true
	}

	next := func() (hepmodel.Event, bool, error) {
		ev, ok, err := cur.Next()
		if err != nil || !ok {
			return ev, ok, err
		}

		if droppedEvent["weights"] && isNonDefault(ev.Weights) && len(ev.Weights) > 1 {
			counter.DroppedWeights++
		}
		for field := range droppedEvent {
			if field == "weights" {
				continue
			}
			val, present := eventFieldValue(ev, field)
			if present && isNonDefault(val) {
				key := "event." + field
				counter.DroppedFields[key]++
				recordExample(counter, key, map[string]any{"event": ev.EventNumber})
			}
		}

		for _, p := range ev.Particles {
			for _, field := range plan.DroppedParticleFields {
				val, present := particleFieldValue(p, field)
				if present && isNonDefault(val) {
					key := "particle." + field
					counter.DroppedFields[key]++
					recordExample(counter, key, map[string]any{"event": ev.EventNumber, "particle_barcode": p.Barcode})
				}
			}
		}

		return ev, true, nil
	}
	return &hepio.FuncCursor{NextFn: next, CloseFn: cur.Close}, counter
}
