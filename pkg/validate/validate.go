// Package validate checks event-level physics invariants: PDG validity,
// energy positivity, mass consistency, and four-momentum conservation.
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
	"github.com/Manav02012002/hepconduit/pkg/pdgdata"
)

// Level is an issue's severity.
type Level string

const (
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Issue is one validation finding attached to an event (and optionally a
// specific particle within it).
type Issue struct {
	Level         Level
	EventNumber   int
	ParticleIndex int // -1 when the issue isn't about one particle
	Message       string
}

func (i Issue) String() string {
	if i.ParticleIndex >= 0 {
		return fmt.Sprintf("[%s] event %d particle %d: %s", i.Level, i.EventNumber, i.ParticleIndex, i.Message)
	}
	return fmt.Sprintf("[%s] event %d: %s", i.Level, i.EventNumber, i.Message)
}

// Report aggregates every Issue found across one or more events.
type Report struct {
	Issues []Issue
}

// NErrors returns the number of error-level issues.
func (r Report) NErrors() int {
	n := 0
	for _, i := range r.Issues {
		if i.Level == LevelError {
			n++
		}
	}
	return n
}

// NWarnings returns the number of warning-level issues.
func (r Report) NWarnings() int {
	n := 0
	for _, i := range r.Issues {
		if i.Level == LevelWarning {
			n++
		}
	}
	return n
}

// IsValid reports whether the report carries no error-level issues.
func (r Report) IsValid() bool { return r.NErrors() == 0 }

// String renders up to 50 issues, one per line.
func (r Report) String() string {
	var b strings.Builder
	limit := 50
	for i, issue := range r.Issues {
		if i >= limit {
			fmt.Fprintf(&b, "... and %d more\n", len(r.Issues)-limit)
			break
		}
		b.WriteString(issue.String())
		b.WriteString("\n")
	}
	return b.String()
}

// Options controls which checks run and at what tolerance.
type Options struct {
	CheckMomentum      bool
	CheckPDG           bool
	CheckEnergy        bool
	CheckMass          bool
	MomentumTolerance  float64
	MassTolerance      float64
}

// DefaultOptions returns the reference tolerances: 1e-4 relative for
// momentum conservation, 1e-2 relative for mass consistency.
func DefaultOptions() Options {
	return Options{
		CheckMomentum: true, CheckPDG: true, CheckEnergy: true, CheckMass: true,
		MomentumTolerance: 1e-4, MassTolerance: 1e-2,
	}
}

// Event validates a single event and returns the issues found.
func Event(ev hepmodel.Event, opts Options) []Issue {
	var issues []Issue

	if len(ev.Particles) == 0 {
		issues = append(issues, Issue{Level: LevelWarning, EventNumber: ev.EventNumber, ParticleIndex: -1, Message: "event has no particles"})
		return issues
	}

	for idx, p := range ev.Particles {
		if opts.CheckPDG && !pdgdata.IsValidPDGID(p.PDGID) {
			issues = append(issues, Issue{Level: LevelWarning, EventNumber: ev.EventNumber, ParticleIndex: idx, Message: fmt.Sprintf("invalid PDG ID %d", p.PDGID)})
		}
		if opts.CheckEnergy && p.Energy < 0 {
			issues = append(issues, Issue{Level: LevelError, EventNumber: ev.EventNumber, ParticleIndex: idx, Message: fmt.Sprintf("negative energy %.6g", p.Energy)})
		}
		if opts.CheckMass && math.Abs(p.Mass) >= 1e-3 {
			computed := p.ComputedMass()
			denom := math.Max(math.Abs(p.Mass), 1e-10)
			if math.Abs(computed-p.Mass)/denom > opts.MassTolerance {
				issues = append(issues, Issue{
					Level: LevelWarning, EventNumber: ev.EventNumber, ParticleIndex: idx,
					Message: fmt.Sprintf("mass %.6g inconsistent with four-momentum (computed %.6g)", p.Mass, computed),
				})
			}
		}
	}

	if opts.CheckMomentum {
		var inPx, inPy, inPz, inE float64
		var outPx, outPy, outPz, outE float64
		var nIncoming, nOutgoing int
		for _, p := range ev.Particles {
			switch {
			case p.IsIncoming():
				inPx += p.Px
				inPy += p.Py
				inPz += p.Pz
				inE += p.Energy
				nIncoming++
			case p.IsFinal():
				outPx += p.Px
				outPy += p.Py
				outPz += p.Pz
				outE += p.Energy
				nOutgoing++
			}
		}
		// Only compare in/out sums when both sides are actually present;
		// an event fragment with only final-state particles (or only
		// incoming ones) has nothing to conserve against.
		if nIncoming > 0 && nOutgoing > 0 {
			norm := math.Max(math.Max(math.Abs(inE), math.Abs(outE)), 1e-10)
			components := []struct {
				name           string
				in, out float64
			}{
				{"px", inPx, outPx}, {"py", inPy, outPy}, {"pz", inPz, outPz}, {"E", inE, outE},
			}
			for _, c := range components {
				if math.Abs(c.in-c.out)/norm > opts.MomentumTolerance {
					issues = append(issues, Issue{
						Level: LevelError, EventNumber: ev.EventNumber, ParticleIndex: -1,
						Message: fmt.Sprintf("%s not conserved: in=%.6g out=%.6g", c.name, c.in, c.out),
					})
				}
			}
		}
	}

	return issues
}

// File validates every event in ef and returns the aggregated report.
func File(ef hepmodel.EventFile, opts Options) Report {
	var rep Report
	for _, ev := range ef.Events {
		rep.Issues = append(rep.Issues, Event(ev, opts)...)
	}
	return rep
}

// Stream wraps a cursor, annotating each event's Extra.ValidationIssues
// with any issues found and, in strict mode, stopping with an error as
// soon as the first error-level issue appears.
func Stream(cur hepio.EventCursor, opts Options, strict bool) hepio.EventCursor {
	next := func() (hepmodel.Event, bool, error) {
		ev, ok, err := cur.Next()
		if err != nil || !ok {
			return ev, ok, err
		}
		issues := Event(ev, opts)
		if len(issues) > 0 {
			strs := make([]string, len(issues))
			for i, is := range issues {
				strs[i] = is.String()
			}
			ev.Extra.ValidationIssues = strs
			if strict {
				for _, is := range issues {
					if is.Level == LevelError {
						return ev, false, errors.New(is.String())
					}
				}
			}
		}
		return ev, true, nil
	}
	return &hepio.FuncCursor{NextFn: next, CloseFn: cur.Close}
}
