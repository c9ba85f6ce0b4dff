// Package hepmc3 implements the HepMC3 Asciiv3 text format reader and
// writer: a line-oriented record format where each line's first token is a
// record tag (HepMC::, U, N, F, C, E, W, V, P).
package hepmc3

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
	"github.com/Manav02012002/hepconduit/pkg/vertex"
)

func openText(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &gzipFileCloser{Reader: gz, file: f}, nil
	}
	return f, nil
}

type gzipFileCloser struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFileCloser) Close() error {
	err := g.Reader.Close()
	if ferr := g.file.Close(); err == nil {
		err = ferr
	}
	return err
}

func openWrite(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		return &gzipWriteCloser{Writer: gzip.NewWriter(f), file: f}, nil
	}
	return f, nil
}

type gzipWriteCloser struct {
	*gzip.Writer
	file *os.File
}

func (g *gzipWriteCloser) Close() error {
	err := g.Writer.Close()
	if ferr := g.file.Close(); err == nil {
		err = ferr
	}
	return err
}

// parser holds the streaming state threaded through one file read: the run
// info being assembled, and the event currently being accumulated.
type parser struct {
	run              hepmodel.RunInfo
	runExtra         hepmodel.HepMC3RunExtra
	current          *hepmodel.Event
	vertices         map[int]*hepmodel.Vertex
	pending          []hepmodel.Event
	pendingUnknown   []string
	pendingARaw      []string
}

func newParser() *parser {
	return &parser{vertices: map[int]*hepmodel.Vertex{}}
}

func (ps *parser) finalizeCurrent() {
	if ps.current == nil {
		return
	}
	ids := make([]int, 0, len(ps.vertices))
	for id := range ps.vertices {
		ids = append(ids, id)
	}
	sortInts(ids)
	vs := make([]hepmodel.Vertex, 0, len(ids))
	for _, id := range ids {
		vs = append(vs, *ps.vertices[id])
	}
	ps.current.Vertices = vs
	if len(ps.pendingUnknown) > 0 || len(ps.pendingARaw) > 0 {
		if ps.current.Extra.HepMC3 == nil {
			ps.current.Extra.HepMC3 = &hepmodel.HepMC3EventExtra{}
		}
		ps.current.Extra.HepMC3.UnknownRecords = append(ps.current.Extra.HepMC3.UnknownRecords, ps.pendingUnknown...)
		ps.current.Extra.HepMC3.ARaw = append(ps.current.Extra.HepMC3.ARaw, ps.pendingARaw...)
	}
	ps.pending = append(ps.pending, *ps.current)
	ps.current = nil
	ps.vertices = map[int]*hepmodel.Vertex{}
	ps.pendingUnknown = nil
	ps.pendingARaw = nil
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func (ps *parser) handleLine(line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}
	if strings.HasPrefix(trimmed, "HepMC::") {
		ps.runExtra.RawHeaders = append(ps.runExtra.RawHeaders, trimmed)
		return nil
	}

	fields := strings.Fields(trimmed)
	tag := fields[0]

	switch tag {
	case "U":
		if len(fields) >= 3 {
			ps.run.Extra.Units = &hepmodel.Units{Momentum: fields[1], Length: fields[2]}
		}
		return nil
	case "N":
		if len(fields) >= 2 {
			n, _ := strconv.Atoi(fields[1])
			names := fields[2:]
			if n > 0 && len(names) >= n {
				ps.run.WeightNames = names[:n]
			} else {
				ps.run.WeightNames = names
			}
		}
		return nil
	case "F":
		ps.runExtra.F = append(ps.runExtra.F, trimmed)
		return nil
	case "C":
		ps.runExtra.C = append(ps.runExtra.C, trimmed)
		return nil
	case "E":
		ps.finalizeCurrent()
		evtno := 0
		if len(fields) >= 2 {
			evtno, _ = strconv.Atoi(fields[1])
		}
		ev := hepmodel.Event{EventNumber: evtno, Weights: nil}
		ev.Extra.HepMC3 = &hepmodel.HepMC3EventExtra{ERaw: trimmed}
		ps.current = &ev
		ps.vertices = map[int]*hepmodel.Vertex{}
		return nil
	}

	if ps.current == nil {
		return nil
	}

	switch tag {
	case "A":
		// A <key> <value...> — event-scope attribute, preserved verbatim
		// and in file order; repeated keys are kept as distinct entries.
		ps.pendingARaw = append(ps.pendingARaw, trimmed)
		return nil
	case "W":
		var ws []float64
		for _, tok := range fields[1:] {
			if v, err := strconv.ParseFloat(tok, 64); err == nil {
				ws = append(ws, v)
			}
		}
		if len(ws) > 0 {
			ps.current.Weights = ws
		}
		return nil
	case "V":
		if len(fields) < 6 {
			return nil
		}
		vtxid, err1 := strconv.Atoi(fields[1])
		x, err2 := strconv.ParseFloat(fields[2], 64)
		y, err3 := strconv.ParseFloat(fields[3], 64)
		z, err4 := strconv.ParseFloat(fields[4], 64)
		tt, err5 := strconv.ParseFloat(fields[5], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			return nil
		}
		v := &hepmodel.Vertex{Barcode: vtxid, X: x, Y: y, Z: z, T: tt}
		idx := 6
		if len(fields) >= idx+2 {
			nin, e1 := strconv.Atoi(fields[idx])
			nout, e2 := strconv.Atoi(fields[idx+1])
			if e1 == nil && e2 == nil {
				idx += 2
				for i := 0; i < nin && idx < len(fields); i++ {
					if b, err := strconv.Atoi(fields[idx]); err == nil {
						v.Incoming = append(v.Incoming, b)
					}
					idx++
				}
				for i := 0; i < nout && idx < len(fields); i++ {
					if b, err := strconv.Atoi(fields[idx]); err == nil {
						v.Outgoing = append(v.Outgoing, b)
					}
					idx++
				}
			}
		}
		ps.vertices[vtxid] = v
		return nil
	case "P":
		if len(fields) < 9 {
			return nil
		}
		bc, e1 := strconv.Atoi(fields[1])
		pdg, e2 := strconv.Atoi(fields[2])
		st, e3 := strconv.Atoi(fields[3])
		px, e4 := strconv.ParseFloat(fields[4], 64)
		py, e5 := strconv.ParseFloat(fields[5], 64)
		pz, e6 := strconv.ParseFloat(fields[6], 64)
		energy, e7 := strconv.ParseFloat(fields[7], 64)
		mass, e8 := strconv.ParseFloat(fields[8], 64)
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil || e5 != nil || e6 != nil || e7 != nil || e8 != nil {
			return nil
		}
		pv, ev := 0, 0
		if len(fields) >= 11 {
			if v1, err := strconv.Atoi(fields[9]); err == nil {
				pv = v1
			}
			if v2, err := strconv.Atoi(fields[10]); err == nil {
				ev = v2
			}
		}
		mapped := st
		switch st {
		case 4:
			mapped = -1
		case 1:
			mapped = 1
		case 2, 3:
			mapped = 2
		}
		p := hepmodel.NewParticle()
		p.PDGID = pdg
		p.Status = mapped
		p.Px, p.Py, p.Pz, p.Energy, p.Mass = px, py, pz, energy, mass
		p.Barcode = bc
		p.VertexBarcode = pv
		p.EndVertexBarcode = ev
		if mapped != st {
			raw := st
			p.Attributes.HepMCStatusRaw = &raw
		}
		ps.current.Particles = append(ps.current.Particles, p)
		return nil
	}

	ps.pendingUnknown = append(ps.pendingUnknown, trimmed)
	return nil
}

func (ps *parser) runInfo() hepmodel.RunInfo {
	run := ps.run
	run.Extra.HepMC3 = &ps.runExtra
	return run
}

func parseAll(path string) (hepmodel.RunInfo, []hepmodel.Event, error) {
	f, err := openText(path)
	if err != nil {
		return hepmodel.RunInfo{}, nil, errors.Wrapf(err, "hepmc3: open %s", path)
	}
	defer f.Close()

	ps := newParser()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if err := ps.handleLine(scanner.Text()); err != nil {
			return hepmodel.RunInfo{}, nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return hepmodel.RunInfo{}, nil, err
	}
	ps.finalizeCurrent()
	return ps.runInfo(), ps.pending, nil
}

// Reader implements hepio.Reader for HepMC3 Asciiv3.
type Reader struct{}

// NewReader constructs a HepMC3 Reader.
func NewReader() hepio.Reader { return &Reader{} }

func (r *Reader) Read(path string) (hepmodel.EventFile, error) {
	run, events, err := parseAll(path)
	if err != nil {
		return hepmodel.EventFile{}, err
	}
	return hepmodel.EventFile{RunInfo: run, Events: events, FormatName: "hepmc3"}, nil
}

func (r *Reader) IterEvents(path string) (hepio.EventCursor, error) {
	_, events, err := parseAll(path)
	if err != nil {
		return nil, err
	}
	return hepio.NewSliceCursor(events, nil), nil
}

func (r *Reader) ReadRunInfo(path string) (hepmodel.RunInfo, error) {
	run, _, err := parseAll(path)
	return run, err
}

// Writer implements hepio.Writer for HepMC3 Asciiv3.
type Writer struct{}

// NewWriter constructs a HepMC3 Writer.
func NewWriter() hepio.Writer { return &Writer{} }

func (w *Writer) Write(path string, events hepio.EventCursor, run hepmodel.RunInfo, _ hepio.WriteOptions) error {
	out, err := openWrite(path)
	if err != nil {
		return errors.Wrapf(err, "hepmc3: create %s", path)
	}
	defer out.Close()

	bw := bufio.NewWriter(out)
	defer bw.Flush()

	bw.WriteString("HepMC::Version 3.0.0\n")
	bw.WriteString("HepMC::Asciiv3\n")

	if run.Extra.Units != nil && run.Extra.Units.Momentum != "" && run.Extra.Units.Length != "" {
		fmt.Fprintf(bw, "U %s %s\n", run.Extra.Units.Momentum, run.Extra.Units.Length)
	} else {
		bw.WriteString("U GEV MM\n")
	}

	if len(run.WeightNames) > 0 {
		fmt.Fprintf(bw, "N %d %s\n", len(run.WeightNames), strings.Join(run.WeightNames, " "))
	}

	if run.Extra.HepMC3 != nil {
		for _, line := range run.Extra.HepMC3.F {
			bw.WriteString(line + "\n")
		}
		for _, line := range run.Extra.HepMC3.C {
			bw.WriteString(line + "\n")
		}
	}

	for {
		ev, ok, err := events.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		vertex.BuildFromMothers(&ev)

		fmt.Fprintf(bw, "E %d\n", ev.EventNumber)

		if len(ev.Weights) > 1 || (len(ev.Weights) == 1 && ev.Weights[0] != 1.0) {
			parts := make([]string, len(ev.Weights))
			for i, wgt := range ev.Weights {
				parts[i] = strconv.FormatFloat(wgt, 'g', 17, 64)
			}
			fmt.Fprintf(bw, "W %s\n", strings.Join(parts, " "))
		}

		vtxByID := map[int]hepmodel.Vertex{}
		for _, v := range ev.Vertices {
			vtxByID[v.Barcode] = v
		}
		ids := make([]int, 0, len(vtxByID))
		for id := range vtxByID {
			ids = append(ids, id)
		}
		sortInts(ids)
		for _, id := range ids {
			v := vtxByID[id]
			fmt.Fprintf(bw, "V %d %s %s %s %s %d %d %s %s\n",
				v.Barcode,
				strconv.FormatFloat(v.X, 'g', 17, 64),
				strconv.FormatFloat(v.Y, 'g', 17, 64),
				strconv.FormatFloat(v.Z, 'g', 17, 64),
				strconv.FormatFloat(v.T, 'g', 17, 64),
				len(v.Incoming), len(v.Outgoing),
				joinInts(v.Incoming), joinInts(v.Outgoing))
		}

		for i, p := range ev.Particles {
			bc := p.Barcode
			if bc == 0 {
				bc = i + 1
			}
			outStatus := p.Status
			switch p.Status {
			case -1:
				outStatus = 4
			case 1:
				outStatus = 1
			case 2:
				outStatus = 2
			}
			if p.Attributes.HepMCStatusRaw != nil {
				outStatus = *p.Attributes.HepMCStatusRaw
			}
			fmt.Fprintf(bw, "P %d %d %d %s %s %s %s %s %d %d\n",
				bc, p.PDGID, outStatus,
				strconv.FormatFloat(p.Px, 'g', 17, 64),
				strconv.FormatFloat(p.Py, 'g', 17, 64),
				strconv.FormatFloat(p.Pz, 'g', 17, 64),
				strconv.FormatFloat(p.Energy, 'g', 17, 64),
				strconv.FormatFloat(p.Mass, 'g', 17, 64),
				p.VertexBarcode, p.EndVertexBarcode)
		}
	}
	return nil
}

func joinInts(xs []int) string {
	if len(xs) == 0 {
		return ""
	}
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, " ")
}
