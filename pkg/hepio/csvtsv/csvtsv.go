// Package csvtsv implements a flat, one-row-per-particle CSV/TSV reader and
// writer, the plainest interchange format for downstream tools with no
// notion of the event graph.
package csvtsv

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

// DefaultFields is the column order used when a writer isn't given an
// explicit field list.
var DefaultFields = []string{
	"event_number", "pdg_id", "status", "mother1", "mother2",
	"color1", "color2", "px", "py", "pz", "energy", "mass", "spin",
	"barcode", "vertex_barcode", "end_vertex_barcode",
}

func get(row map[string]string, key, fallback string) string {
	if v, ok := row[key]; ok && v != "" {
		return v
	}
	return fallback
}

func parseIntField(row map[string]string, key, fallback string) int {
	v, err := strconv.Atoi(get(row, key, fallback))
	if err != nil {
		return 0
	}
	return v
}

func parseFloatField(row map[string]string, key, fallback string) float64 {
	v, err := strconv.ParseFloat(get(row, key, fallback), 64)
	if err != nil {
		return 0
	}
	return v
}

// Reader implements hepio.Reader for delimiter-separated flat event files.
type Reader struct {
	Delimiter rune
}

// NewReader constructs a Reader for the given single-character delimiter.
func NewReader(delimiter rune) hepio.Reader { return &Reader{Delimiter: delimiter} }

func (r *Reader) ReadRunInfo(path string) (hepmodel.RunInfo, error) {
	return hepmodel.RunInfo{}, nil
}

func (r *Reader) Read(path string) (hepmodel.EventFile, error) {
	cur, err := r.IterEvents(path)
	if err != nil {
		return hepmodel.EventFile{}, err
	}
	events, err := hepio.DrainAll(cur)
	if err != nil {
		return hepmodel.EventFile{}, err
	}
	return hepmodel.EventFile{RunInfo: hepmodel.RunInfo{}, Events: events, FormatName: "csv"}, nil
}

func (r *Reader) IterEvents(path string) (hepio.EventCursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "csvtsv: open %s", path)
	}
	cr := csv.NewReader(f)
	cr.Comma = r.Delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "csvtsv: read header")
	}
	colIdx := map[string]int{}
	for i, h := range header {
		colIdx[strings.TrimSpace(h)] = i
	}

	rowAsMap := func(record []string) map[string]string {
		row := make(map[string]string, len(colIdx))
		for k, i := range colIdx {
			if i < len(record) {
				row[k] = record[i]
			}
		}
		return row
	}

	var currentEvt int
	haveCurrent := false
	var particles []hepmodel.Particle
	done := false

	emit := func() hepmodel.Event {
		ev := hepmodel.Event{EventNumber: currentEvt, Particles: particles, Weights: []float64{1.0}}
		particles = nil
		return ev
	}

	next := func() (hepmodel.Event, bool, error) {
		for {
			if done {
				return hepmodel.Event{}, false, nil
			}
			record, err := cr.Read()
			if err != nil {
				done = true
				if errors.Is(err, io.EOF) {
					if haveCurrent {
						haveCurrent = false
						return emit(), true, nil
					}
					return hepmodel.Event{}, false, nil
				}
				return hepmodel.Event{}, false, err
			}
			row := rowAsMap(record)
			evtNo := parseIntField(row, "event_number", "0")
			if !haveCurrent {
				currentEvt = evtNo
				haveCurrent = true
			}
			if evtNo != currentEvt {
				toEmit := emit()
				currentEvt = evtNo
				p := buildParticle(row)
				particles = append(particles, p)
				return toEmit, true, nil
			}
			p := buildParticle(row)
			particles = append(particles, p)
		}
	}

	return &hepio.FuncCursor{NextFn: next, CloseFn: f.Close}, nil
}

func buildParticle(row map[string]string) hepmodel.Particle {
	p := hepmodel.NewParticle()
	p.PDGID = parseIntField(row, "pdg_id", "0")
	p.Status = parseIntField(row, "status", "0")
	p.Mother1 = parseIntField(row, "mother1", "0")
	p.Mother2 = parseIntField(row, "mother2", "0")
	p.Color1 = parseIntField(row, "color1", "0")
	p.Color2 = parseIntField(row, "color2", "0")
	p.Px = parseFloatField(row, "px", "0")
	p.Py = parseFloatField(row, "py", "0")
	p.Pz = parseFloatField(row, "pz", "0")
	if v, ok := row["energy"]; ok && v != "" {
		p.Energy = parseFloatField(row, "energy", "0")
	} else {
		p.Energy = parseFloatField(row, "E", "0")
	}
	if v, ok := row["mass"]; ok && v != "" {
		p.Mass = parseFloatField(row, "mass", "0")
	} else {
		p.Mass = parseFloatField(row, "m", "0")
	}
	p.Spin = parseFloatField(row, "spin", "9")
	p.Barcode = parseIntField(row, "barcode", "0")
	p.VertexBarcode = parseIntField(row, "vertex_barcode", "0")
	p.EndVertexBarcode = parseIntField(row, "end_vertex_barcode", "0")
	return p
}

// Writer implements hepio.Writer for delimiter-separated flat event files.
type Writer struct {
	Delimiter rune
}

// NewWriter constructs a Writer for the given single-character delimiter.
func NewWriter(delimiter rune) hepio.Writer { return &Writer{Delimiter: delimiter} }

func (w *Writer) Write(path string, events hepio.EventCursor, _ hepmodel.RunInfo, opts hepio.WriteOptions) error {
	fields := opts.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "csvtsv: create %s", path)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Comma = w.Delimiter
	defer cw.Flush()

	if err := cw.Write(fields); err != nil {
		return err
	}

	for {
		ev, ok, err := events.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		for _, p := range ev.Particles {
			row := p.ToMap()
			row["event_number"] = ev.EventNumber
			record := make([]string, len(fields))
			for i, field := range fields {
				v, ok := row[field]
				if !ok {
					record[i] = ""
					continue
				}
				record[i] = formatValue(v)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	return cw.Error()
}

func formatValue(v any) string {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return t
	default:
		return ""
	}
}
