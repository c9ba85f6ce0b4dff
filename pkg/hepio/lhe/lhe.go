// Package lhe implements the Les Houches Event (LHE) format reader and
// writer: an XML-framed, line-oriented ASCII event record format.
package lhe

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

var (
	tagEventOpen   = regexp.MustCompile(`<event\b`)
	tagEventClose  = regexp.MustCompile(`</event>`)
	tagInitOpen    = regexp.MustCompile(`<init\b`)
	tagInitClose   = regexp.MustCompile(`</init>`)
	tagGenerator   = regexp.MustCompile(`(?is)<generator\b[^>]*>(.*?)</generator>`)
	tagWeightsOpen = regexp.MustCompile(`<weights>`)
	tagWeightsClose = regexp.MustCompile(`</weights>`)
	tagRwgtOpen    = regexp.MustCompile(`<rwgt>`)
	tagRwgtClose   = regexp.MustCompile(`</rwgt>`)
	tagWgt         = regexp.MustCompile(`(?is)<wgt\s+id=['"]([^'"]+)['"]\s*>\s*([^<]+)</wgt>`)
	fortranExp     = regexp.MustCompile(`[dD]([+-]?\d+)`)
)

func normalizeFortranFloat(s string) string {
	return fortranExp.ReplaceAllString(s, "E$1")
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(normalizeFortranFloat(s), 64)
}

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

// parseInit extracts beam IDs/energies and process cross sections from the
// lines inside an <init>...</init> block, following the same two-pass
// heuristic as the reference implementation: the first >=4-column line is
// the beam line, and any 4-column line whose 4th field isn't one of the
// beam PDG IDs is a process (XSECUP XERRUP XMAXUP LPRUP) line.
func parseInit(lines []string) hepmodel.RunInfo {
	run := hepmodel.RunInfo{}
	for _, ln := range lines {
		s := strings.TrimSpace(ln)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		parts := strings.Fields(s)
		if len(parts) >= 4 {
			if id0, err := strconv.Atoi(parts[0]); err == nil {
				if id1, err := strconv.Atoi(parts[1]); err == nil {
					e0, err0 := parseFloat(parts[2])
					e1, err1 := parseFloat(parts[3])
					if err0 == nil && err1 == nil {
						run.BeamPDGID = [2]int{id0, id1}
						run.BeamEnergy = [2]float64{e0, e1}
					}
				}
			}
			break
		}
	}
	for _, ln := range lines {
		s := strings.TrimSpace(ln)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		parts := strings.Fields(s)
		if len(parts) != 4 {
			continue
		}
		xsec, e0 := parseFloat(parts[0])
		xerr, e1 := parseFloat(parts[1])
		xmax, e2 := parseFloat(parts[2])
		lprup, e3 := strconv.Atoi(parts[3])
		if e0 != nil || e1 != nil || e2 != nil || e3 != nil {
			continue
		}
		if lprup == run.BeamPDGID[0] || lprup == run.BeamPDGID[1] {
			continue
		}
		run.Processes = append(run.Processes, hepmodel.ProcessInfo{
			ProcessID:         lprup,
			CrossSection:      xsec,
			CrossSectionError: xerr,
			MaxWeight:         xmax,
		})
	}
	return run
}

// parseEventBlock parses the header line plus nup particle lines and any
// trailing <weights>/<rwgt> blocks from the buffered lines of one
// <event>...</event> element.
func parseEventBlock(lines []string, eventNumber int) (hepmodel.Event, error) {
	idx := 0
	var header string
	for idx < len(lines) {
		s := strings.TrimSpace(lines[idx])
		idx++
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		header = s
		break
	}
	ev := hepmodel.Event{EventNumber: eventNumber}
	if header == "" {
		return ev, nil
	}

	hp := strings.Fields(header)
	nup, err := strconv.Atoi(hp[0])
	if err != nil {
		return ev, errors.Wrap(err, "lhe: malformed event header")
	}
	processID := 0
	weight := 1.0
	var scale, aqed, aqcd float64
	if len(hp) > 1 {
		processID, _ = strconv.Atoi(hp[1])
	}
	if len(hp) > 2 {
		weight, _ = parseFloat(hp[2])
	}
	if len(hp) > 3 {
		scale, _ = parseFloat(hp[3])
	}
	if len(hp) > 4 {
		aqed, _ = parseFloat(hp[4])
	}
	if len(hp) > 5 {
		aqcd, _ = parseFloat(hp[5])
	}

	particles := make([]hepmodel.Particle, 0, nup)
	for i := 0; i < nup; {
		if idx >= len(lines) {
			break
		}
		s := strings.TrimSpace(lines[idx])
		idx++
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		cols := strings.Fields(s)
		if len(cols) < 11 {
			i++
			continue
		}
		p := hepmodel.NewParticle()
		p.PDGID, _ = strconv.Atoi(cols[0])
		p.Status, _ = strconv.Atoi(cols[1])
		p.Mother1, _ = strconv.Atoi(cols[2])
		p.Mother2, _ = strconv.Atoi(cols[3])
		p.Color1, _ = strconv.Atoi(cols[4])
		p.Color2, _ = strconv.Atoi(cols[5])
		p.Px, _ = parseFloat(cols[6])
		p.Py, _ = parseFloat(cols[7])
		p.Pz, _ = parseFloat(cols[8])
		p.Energy, _ = parseFloat(cols[9])
		p.Mass, _ = parseFloat(cols[10])
		if len(cols) > 12 {
			p.Spin, _ = parseFloat(cols[12])
		}
		particles = append(particles, p)
		i++
	}

	// Remaining buffered lines (after the nup particle rows) may contain a
	// <weights> or <rwgt> block, or other generator-specific tail XML; the
	// tail is kept verbatim in Extra.LHE.Tail.
	tailLines := lines[idx:]
	weightsBlock, weightsOrder, rwgtBlock, rwgtOrder, tail := parseWeightBlocks(tailLines)

	ev.Particles = particles
	ev.ProcessID = processID
	ev.Scale = scale
	ev.AlphaQED = aqed
	ev.AlphaQCD = aqcd
	ev.Weights = []float64{weight}
	for _, k := range weightsOrder {
		ev.Weights = append(ev.Weights, weightsBlock[k])
	}
	for _, k := range rwgtOrder {
		ev.Weights = append(ev.Weights, rwgtBlock[k])
	}
	if len(weightsBlock) > 0 || len(rwgtBlock) > 0 || tail != "" {
		ev.Extra.LHE = &hepmodel.LHEEventExtra{
			Weights: weightsBlock,
			Rwgt:    rwgtBlock,
			Tail:    tail,
		}
	}
	return ev, nil
}

// parseWeightBlocks splits the tail of an <event> block into its
// <weights>/<rwgt> entries, each also returned as an ordered key slice so
// callers can append the entries to Event.Weights in the order they
// appeared in the file.
func parseWeightBlocks(lines []string) (weights map[string]float64, weightsOrder []string, rwgt map[string]float64, rwgtOrder []string, tail string) {
	var inWeights, inRwgt bool
	var weightsLines, rwgtLines, tailLines []string
	for _, ln := range lines {
		switch {
		case tagWeightsOpen.MatchString(ln):
			inWeights = true
		case tagWeightsClose.MatchString(ln):
			inWeights = false
		case tagRwgtOpen.MatchString(ln):
			inRwgt = true
		case tagRwgtClose.MatchString(ln):
			inRwgt = false
		case inWeights:
			weightsLines = append(weightsLines, ln)
		case inRwgt:
			rwgtLines = append(rwgtLines, ln)
		default:
			if strings.TrimSpace(ln) != "" {
				tailLines = append(tailLines, ln)
			}
		}
	}
	if len(weightsLines) > 0 {
		weights = map[string]float64{}
		idx := 0
		for _, ln := range weightsLines {
			for _, f := range strings.Fields(ln) {
				v, err := parseFloat(f)
				if err != nil {
					continue
				}
				idx++
				key := strconv.Itoa(idx)
				weights[key] = v
				weightsOrder = append(weightsOrder, key)
			}
		}
	}
	if len(rwgtLines) > 0 {
		rwgt = map[string]float64{}
		for _, ln := range rwgtLines {
			for _, m := range tagWgt.FindAllStringSubmatch(ln, -1) {
				if v, err := parseFloat(strings.TrimSpace(m[2])); err == nil {
					if _, seen := rwgt[m[1]]; !seen {
						rwgtOrder = append(rwgtOrder, m[1])
					}
					rwgt[m[1]] = v
				}
			}
		}
	}
	if len(tailLines) > 0 {
		tail = strings.Join(tailLines, "")
	}
	return
}

func iterLHE(path string) (hepio.EventCursor, error) {
	f, err := openText(path)
	if err != nil {
		return nil, errors.Wrapf(err, "lhe: open %s", path)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	inEvent := false
	var buf []string
	eventNo := 0

	next := func() (hepmodel.Event, bool, error) {
		for scanner.Scan() {
			line := scanner.Text() + "\n"
			if !inEvent {
				if tagEventOpen.MatchString(line) {
					inEvent = true
					buf = nil
				}
				continue
			}
			if tagEventClose.MatchString(line) {
				eventNo++
				ev, err := parseEventBlock(buf, eventNo)
				inEvent = false
				buf = nil
				if err != nil {
					return hepmodel.Event{}, false, err
				}
				return ev, true, nil
			}
			buf = append(buf, line)
		}
		if err := scanner.Err(); err != nil {
			return hepmodel.Event{}, false, err
		}
		return hepmodel.Event{}, false, nil
	}

	return &hepio.FuncCursor{NextFn: next, CloseFn: f.Close}, nil
}

// Reader implements hepio.Reader for the LHE format.
type Reader struct{}

// NewReader constructs an LHE Reader.
func NewReader() hepio.Reader { return &Reader{} }

func (r *Reader) IterEvents(path string) (hepio.EventCursor, error) {
	return iterLHE(path)
}

func (r *Reader) Read(path string) (hepmodel.EventFile, error) {
	run, err := r.ReadRunInfo(path)
	if err != nil {
		return hepmodel.EventFile{}, err
	}
	cur, err := iterLHE(path)
	if err != nil {
		return hepmodel.EventFile{}, err
	}
	events, err := hepio.DrainAll(cur)
	if err != nil {
		return hepmodel.EventFile{}, err
	}
	return hepmodel.EventFile{RunInfo: run, Events: events, FormatName: "lhe"}, nil
}

func (r *Reader) ReadRunInfo(path string) (hepmodel.RunInfo, error) {
	f, err := openText(path)
	if err != nil {
		return hepmodel.RunInfo{}, errors.Wrapf(err, "lhe: open %s", path)
	}
	defer f.Close()

	generatorName, generatorVersion := sniffGenerator(f)

	f2, err := openText(path)
	if err != nil {
		return hepmodel.RunInfo{}, errors.Wrapf(err, "lhe: reopen %s", path)
	}
	defer f2.Close()

	var initLines []string
	inInit := false
	scanner := bufio.NewScanner(f2)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text() + "\n"
		if !inInit {
			if tagInitOpen.MatchString(line) {
				inInit = true
				initLines = nil
			}
			continue
		}
		if tagInitClose.MatchString(line) {
			break
		}
		initLines = append(initLines, line)
	}
	if err := scanner.Err(); err != nil {
		return hepmodel.RunInfo{}, err
	}

	run := parseInit(initLines)
	run.GeneratorName = generatorName
	run.GeneratorVersion = generatorVersion
	return run, nil
}

func sniffGenerator(f io.Reader) (name, version string) {
	reader := bufio.NewReader(f)
	var head strings.Builder
	for i := 0; i < 200; i++ {
		line, err := reader.ReadString('\n')
		if line != "" {
			head.WriteString(line)
		}
		if strings.Contains(strings.ToLower(line), "</generator>") {
			break
		}
		if err != nil {
			break
		}
	}
	m := tagGenerator.FindStringSubmatch(head.String())
	if m == nil {
		return "", ""
	}
	gen := strings.TrimSpace(whitespaceCollapse(m[1]))
	if idx := strings.Index(gen, " v"); idx >= 0 {
		return gen[:idx], gen[idx+2:]
	}
	return gen, ""
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func whitespaceCollapse(s string) string {
	return whitespaceRe.ReplaceAllString(s, " ")
}

// Writer implements hepio.Writer for the LHE format.
type Writer struct{}

// NewWriter constructs an LHE Writer.
func NewWriter() hepio.Writer { return &Writer{} }

func (w *Writer) Write(path string, events hepio.EventCursor, run hepmodel.RunInfo, _ hepio.WriteOptions) error {
	out, err := openWrite(path)
	if err != nil {
		return errors.Wrapf(err, "lhe: create %s", path)
	}
	defer out.Close()

	bw := bufio.NewWriter(out)
	defer bw.Flush()

	bw.WriteString("<LesHouchesEvents version=\"3.0\">\n")
	bw.WriteString("<init>\n")
	bw.WriteString(strconv.Itoa(run.BeamPDGID[0]) + " " + strconv.Itoa(run.BeamPDGID[1]) + " " +
		strconv.FormatFloat(run.BeamEnergy[0], 'g', 8, 64) + " " +
		strconv.FormatFloat(run.BeamEnergy[1], 'g', 8, 64) + " 0 0 0 0 0 0\n")
	for _, proc := range run.Processes {
		bw.WriteString(strconv.FormatFloat(proc.CrossSection, 'g', 8, 64) + " " +
			strconv.FormatFloat(proc.CrossSectionError, 'g', 8, 64) + " " +
			strconv.FormatFloat(proc.MaxWeight, 'g', 8, 64) + " " +
			strconv.Itoa(proc.ProcessID) + "\n")
	}
	bw.WriteString("</init>\n")
	if run.GeneratorName != "" {
		gen := run.GeneratorName
		if run.GeneratorVersion != "" {
			gen += " v" + run.GeneratorVersion
		}
		bw.WriteString("<generator>" + gen + "</generator>\n")
	}

	for {
		ev, ok, err := events.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		bw.WriteString("<event>\n")
		nup := len(ev.Particles)
		weight := ev.Weight()
		bw.WriteString(strconv.Itoa(nup) + " " + strconv.Itoa(ev.ProcessID) + " " +
			strconv.FormatFloat(weight, 'g', 16, 64) + " " +
			strconv.FormatFloat(ev.Scale, 'g', 16, 64) + " " +
			strconv.FormatFloat(ev.AlphaQED, 'g', 16, 64) + " " +
			strconv.FormatFloat(ev.AlphaQCD, 'g', 16, 64) + "\n")
		for _, p := range ev.Particles {
			bw.WriteString(
				strconv.Itoa(p.PDGID) + " " + strconv.Itoa(p.Status) + " " +
					strconv.Itoa(p.Mother1) + " " + strconv.Itoa(p.Mother2) + " " +
					strconv.Itoa(p.Color1) + " " + strconv.Itoa(p.Color2) + " " +
					strconv.FormatFloat(p.Px, 'g', 16, 64) + " " +
					strconv.FormatFloat(p.Py, 'g', 16, 64) + " " +
					strconv.FormatFloat(p.Pz, 'g', 16, 64) + " " +
					strconv.FormatFloat(p.Energy, 'g', 16, 64) + " " +
					strconv.FormatFloat(p.Mass, 'g', 16, 64) + " 0 " +
					strconv.FormatFloat(p.Spin, 'g', 16, 64) + "\n")
		}
		bw.WriteString("</event>\n")
	}
	bw.WriteString("</LesHouchesEvents>\n")
	return nil
}
