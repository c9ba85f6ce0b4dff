// Package parquetio implements the Parquet reader/writer, in two row
// layouts: "flat" (one row per particle, event scalars repeated) and
// "columnar" (one row per event, particles/vertices as nested list
// columns) — see pkg/schema for the schema registry these two map onto.
package parquetio

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
	parquetfmt "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
	"github.com/xitongsys/parquet-go-source/local"

	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
	"github.com/Manav02012002/hepconduit/pkg/vertex"
)

const metaPrefix = "hepconduit."

// flatRow is one particle row of the flat schema: event scalars repeated
// on every particle row, plus optional production/end-vertex spacetime
// columns when the source carried an explicit vertex graph.
type flatRow struct {
	EventNumber int32   `parquet:"name=event_number, type=INT32"`
	ProcessID   int32   `parquet:"name=process_id, type=INT32"`
	Scale       float64 `parquet:"name=scale, type=DOUBLE"`
	AlphaQED    float64 `parquet:"name=alpha_qed, type=DOUBLE"`
	AlphaQCD    float64 `parquet:"name=alpha_qcd, type=DOUBLE"`
	Weight      float64 `parquet:"name=weight, type=DOUBLE"`

	PDGID            int32   `parquet:"name=pdg_id, type=INT32"`
	Status           int32   `parquet:"name=status, type=INT32"`
	Mother1          int32   `parquet:"name=mother1, type=INT32"`
	Mother2          int32   `parquet:"name=mother2, type=INT32"`
	Color1           int32   `parquet:"name=color1, type=INT32"`
	Color2           int32   `parquet:"name=color2, type=INT32"`
	Px               float64 `parquet:"name=px, type=DOUBLE"`
	Py               float64 `parquet:"name=py, type=DOUBLE"`
	Pz               float64 `parquet:"name=pz, type=DOUBLE"`
	Energy           float64 `parquet:"name=energy, type=DOUBLE"`
	Mass             float64 `parquet:"name=mass, type=DOUBLE"`
	Spin             float64 `parquet:"name=spin, type=DOUBLE"`
	Barcode          int32   `parquet:"name=barcode, type=INT32"`
	VertexBarcode    int32   `parquet:"name=vertex_barcode, type=INT32"`
	EndVertexBarcode int32   `parquet:"name=end_vertex_barcode, type=INT32"`

	ProdVX float64 `parquet:"name=prod_vx, type=DOUBLE"`
	ProdVY float64 `parquet:"name=prod_vy, type=DOUBLE"`
	ProdVZ float64 `parquet:"name=prod_vz, type=DOUBLE"`
	ProdVT float64 `parquet:"name=prod_vt, type=DOUBLE"`
	EndVX  float64 `parquet:"name=end_vx, type=DOUBLE"`
	EndVY  float64 `parquet:"name=end_vy, type=DOUBLE"`
	EndVZ  float64 `parquet:"name=end_vz, type=DOUBLE"`
	EndVT  float64 `parquet:"name=end_vt, type=DOUBLE"`
}

// particleStruct and vertexStruct are the nested element types of the
// columnar schema's particles/vertices list columns.
type particleStruct struct {
	PDGID            int32   `parquet:"name=pdg_id, type=INT32"`
	Status           int32   `parquet:"name=status, type=INT32"`
	Mother1          int32   `parquet:"name=mother1, type=INT32"`
	Mother2          int32   `parquet:"name=mother2, type=INT32"`
	Color1           int32   `parquet:"name=color1, type=INT32"`
	Color2           int32   `parquet:"name=color2, type=INT32"`
	Px               float64 `parquet:"name=px, type=DOUBLE"`
	Py               float64 `parquet:"name=py, type=DOUBLE"`
	Pz               float64 `parquet:"name=pz, type=DOUBLE"`
	Energy           float64 `parquet:"name=energy, type=DOUBLE"`
	Mass             float64 `parquet:"name=mass, type=DOUBLE"`
	Spin             float64 `parquet:"name=spin, type=DOUBLE"`
	Barcode          int32   `parquet:"name=barcode, type=INT32"`
	VertexBarcode    int32   `parquet:"name=vertex_barcode, type=INT32"`
	EndVertexBarcode int32   `parquet:"name=end_vertex_barcode, type=INT32"`
	AttributesJSON   string  `parquet:"name=attributes_json, type=BYTE_ARRAY, convertedtype=UTF8"`
}

type vertexStruct struct {
	Barcode  int32   `parquet:"name=barcode, type=INT32"`
	X        float64 `parquet:"name=x, type=DOUBLE"`
	Y        float64 `parquet:"name=y, type=DOUBLE"`
	Z        float64 `parquet:"name=z, type=DOUBLE"`
	T        float64 `parquet:"name=t, type=DOUBLE"`
	Incoming []int32 `parquet:"name=incoming, type=LIST, valuetype=INT32"`
	Outgoing []int32 `parquet:"name=outgoing, type=LIST, valuetype=INT32"`
}

// columnarRow is one event row of the columnar schema.
type columnarRow struct {
	EventNumber int32            `parquet:"name=event_number, type=INT32"`
	ProcessID   int32            `parquet:"name=process_id, type=INT32"`
	Scale       float64          `parquet:"name=scale, type=DOUBLE"`
	AlphaQED    float64          `parquet:"name=alpha_qed, type=DOUBLE"`
	AlphaQCD    float64          `parquet:"name=alpha_qcd, type=DOUBLE"`
	Weights     []float64        `parquet:"name=weights, type=LIST, valuetype=DOUBLE"`
	Particles   []particleStruct `parquet:"name=particles, type=LIST"`
	Vertices    []vertexStruct   `parquet:"name=vertices, type=LIST"`
	EventExtraJSON string        `parquet:"name=event_extra_json, type=BYTE_ARRAY, convertedtype=UTF8"`
}

func eventToFlatRows(ev hepmodel.Event) []flatRow {
	weight := ev.Weight()
	vtxByBarcode := map[int]hepmodel.Vertex{}
	for _, v := range ev.Vertices {
		vtxByBarcode[v.Barcode] = v
	}
	rows := make([]flatRow, 0, len(ev.Particles))
	for _, p := range ev.Particles {
		row := flatRow{
			EventNumber: int32(ev.EventNumber), ProcessID: int32(ev.ProcessID),
			Scale: ev.Scale, AlphaQED: ev.AlphaQED, AlphaQCD: ev.AlphaQCD, Weight: weight,
			PDGID: int32(p.PDGID), Status: int32(p.Status),
			Mother1: int32(p.Mother1), Mother2: int32(p.Mother2),
			Color1: int32(p.Color1), Color2: int32(p.Color2),
			Px: p.Px, Py: p.Py, Pz: p.Pz, Energy: p.Energy, Mass: p.Mass, Spin: p.Spin,
			Barcode: int32(p.Barcode), VertexBarcode: int32(p.VertexBarcode), EndVertexBarcode: int32(p.EndVertexBarcode),
		}
		if v, ok := vtxByBarcode[p.VertexBarcode]; ok {
			row.ProdVX, row.ProdVY, row.ProdVZ, row.ProdVT = v.X, v.Y, v.Z, v.T
		}
		if v, ok := vtxByBarcode[p.EndVertexBarcode]; ok {
			row.EndVX, row.EndVY, row.EndVZ, row.EndVT = v.X, v.Y, v.Z, v.T
		}
		rows = append(rows, row)
	}
	return rows
}

func eventToColumnarRow(ev hepmodel.Event) (columnarRow, error) {
	particles := make([]particleStruct, 0, len(ev.Particles))
	for _, p := range ev.Particles {
		attrJSON := ""
		if !p.Attributes.IsEmpty() {
			b, err := json.Marshal(p.Attributes)
			if err != nil {
				return columnarRow{}, err
			}
			attrJSON = string(b)
		}
		particles = append(particles, particleStruct{
			PDGID: int32(p.PDGID), Status: int32(p.Status),
			Mother1: int32(p.Mother1), Mother2: int32(p.Mother2),
			Color1: int32(p.Color1), Color2: int32(p.Color2),
			Px: p.Px, Py: p.Py, Pz: p.Pz, Energy: p.Energy, Mass: p.Mass, Spin: p.Spin,
			Barcode: int32(p.Barcode), VertexBarcode: int32(p.VertexBarcode), EndVertexBarcode: int32(p.EndVertexBarcode),
			AttributesJSON: attrJSON,
		})
	}
	vertices := make([]vertexStruct, 0, len(ev.Vertices))
	for _, v := range ev.Vertices {
		vertices = append(vertices, vertexStruct{
			Barcode: int32(v.Barcode), X: v.X, Y: v.Y, Z: v.Z, T: v.T,
			Incoming: toInt32Slice(v.Incoming), Outgoing: toInt32Slice(v.Outgoing),
		})
	}
	extraJSON := ""
	b, err := ev.Extra.MarshalJSON()
	if err != nil {
		return columnarRow{}, err
	}
	if string(b) != "{}" {
		extraJSON = string(b)
	}
	return columnarRow{
		EventNumber: int32(ev.EventNumber), ProcessID: int32(ev.ProcessID),
		Scale: ev.Scale, AlphaQED: ev.AlphaQED, AlphaQCD: ev.AlphaQCD,
		Weights: ev.Weights, Particles: particles, Vertices: vertices,
		EventExtraJSON: extraJSON,
	}, nil
}

func toInt32Slice(xs []int) []int32 {
	out := make([]int32, len(xs))
	for i, x := range xs {
		out[i] = int32(x)
	}
	return out
}

func fromInt32Slice(xs []int32) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = int(x)
	}
	return out
}

// serializableRunInfo is a plain-tagged mirror of hepmodel.RunInfo used
// only for the Parquet key-value metadata blob: encoding RunInfo directly
// flattens its Extra record (RunExtra.MarshalJSON) for human-facing reports, a shape that isn't
// meant to round-trip back through Unmarshal, so metadata storage uses its
// own explicit, symmetric encoding instead.
type serializableRunInfo struct {
	BeamPDGID        [2]int             `json:"beam_pdg_id"`
	BeamEnergy       [2]float64         `json:"beam_energy"`
	WeightNames      []string           `json:"weight_names"`
	Processes        []hepmodel.ProcessInfo `json:"processes"`
	GeneratorName    string             `json:"generator_name"`
	GeneratorVersion string             `json:"generator_version"`
	Units            *hepmodel.Units    `json:"units,omitempty"`
}

// runInfoMetadata encodes RunInfo into the Parquet key-value metadata map
// used by both schemas, under the "hepconduit." key prefix.
func runInfoMetadata(run hepmodel.RunInfo) (map[string]string, error) {
	s := serializableRunInfo{
		BeamPDGID: run.BeamPDGID, BeamEnergy: run.BeamEnergy,
		WeightNames: run.WeightNames, Processes: run.Processes,
		GeneratorName: run.GeneratorName, GeneratorVersion: run.GeneratorVersion,
		Units: run.Extra.Units,
	}
	runJSON, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	md := map[string]string{metaPrefix + "run_info_json": string(runJSON)}
	return md, nil
}

func decodeRunInfoMetadata(md map[string]string) hepmodel.RunInfo {
	var s serializableRunInfo
	if raw, ok := md[metaPrefix+"run_info_json"]; ok {
		_ = json.Unmarshal([]byte(raw), &s)
	}
	run := hepmodel.RunInfo{
		BeamPDGID: s.BeamPDGID, BeamEnergy: s.BeamEnergy,
		WeightNames: s.WeightNames, Processes: s.Processes,
		GeneratorName: s.GeneratorName, GeneratorVersion: s.GeneratorVersion,
	}
	run.Extra.Units = s.Units
	return run
}

// Reader implements hepio.Reader for Parquet files, auto-detecting the
// flat-vs-columnar layout from the presence of a "particles" column.
type Reader struct{}

// NewReader constructs a Parquet Reader.
func NewReader() hepio.Reader { return &Reader{} }

func (r *Reader) Read(path string) (hepmodel.EventFile, error) {
	isColumnar, err := detectColumnar(path)
	if err != nil {
		return hepmodel.EventFile{}, err
	}
	if isColumnar {
		return readColumnar(path)
	}
	return readFlat(path)
}

func (r *Reader) IterEvents(path string) (hepio.EventCursor, error) {
	ef, err := r.Read(path)
	if err != nil {
		return nil, err
	}
	return hepio.NewSliceCursor(ef.Events, nil), nil
}

func (r *Reader) ReadRunInfo(path string) (hepmodel.RunInfo, error) {
	ef, err := r.Read(path)
	if err != nil {
		return hepmodel.RunInfo{}, err
	}
	return ef.RunInfo, nil
}

func detectColumnar(path string) (bool, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return false, errors.Wrapf(err, "parquetio: open %s", path)
	}
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(columnarRow), 1)
	if err != nil {
		// Falls back to the flat schema when the columnar struct's schema
		// cannot open the file (e.g. it truly is a flat-schema file).
		return false, nil
	}
	defer pr.ReadStop()
	for _, col := range pr.SchemaHandler.SchemaElements {
		if col.Name == "particles" {
			return true, nil
		}
	}
	return false, nil
}

func readFlat(path string) (hepmodel.EventFile, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return hepmodel.EventFile{}, errors.Wrapf(err, "parquetio: open %s", path)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(flatRow), 4)
	if err != nil {
		return hepmodel.EventFile{}, errors.Wrap(err, "parquetio: new reader")
	}
	defer pr.ReadStop()

	md := keyValueMetadata(pr.Footer.KeyValueMetadata)
	run := decodeRunInfoMetadata(md)

	numRows := int(pr.GetNumRows())
	rows := make([]flatRow, numRows)
	if err := pr.Read(&rows); err != nil {
		return hepmodel.EventFile{}, errors.Wrap(err, "parquetio: read flat rows")
	}

	byEvent := map[int]*hepmodel.Event{}
	var order []int
	for _, row := range rows {
		evNo := int(row.EventNumber)
		ev, ok := byEvent[evNo]
		if !ok {
			newEv := hepmodel.NewEvent()
			newEv.EventNumber = evNo
			newEv.ProcessID = int(row.ProcessID)
			newEv.Scale, newEv.AlphaQED, newEv.AlphaQCD = row.Scale, row.AlphaQED, row.AlphaQCD
			newEv.Weights = []float64{row.Weight}
			byEvent[evNo] = &newEv
			ev = &newEv
			order = append(order, evNo)
		}
		p := hepmodel.NewParticle()
		p.PDGID, p.Status = int(row.PDGID), int(row.Status)
		p.Mother1, p.Mother2 = int(row.Mother1), int(row.Mother2)
		p.Color1, p.Color2 = int(row.Color1), int(row.Color2)
		p.Px, p.Py, p.Pz, p.Energy, p.Mass, p.Spin = row.Px, row.Py, row.Pz, row.Energy, row.Mass, row.Spin
		p.Barcode, p.VertexBarcode, p.EndVertexBarcode = int(row.Barcode), int(row.VertexBarcode), int(row.EndVertexBarcode)
		ev.Particles = append(ev.Particles, p)
	}

	sort.Ints(order)
	events := make([]hepmodel.Event, 0, len(order))
	for _, evNo := range order {
		ev := *byEvent[evNo]
		if len(ev.Vertices) == 0 {
			vertex.BuildFromMothers(&ev)
		}
		events = append(events, ev)
	}

	return hepmodel.EventFile{RunInfo: run, Events: events, FormatName: "parquet"}, nil
}

func readColumnar(path string) (hepmodel.EventFile, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return hepmodel.EventFile{}, errors.Wrapf(err, "parquetio: open %s", path)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(columnarRow), 4)
	if err != nil {
		return hepmodel.EventFile{}, errors.Wrap(err, "parquetio: new reader")
	}
	defer pr.ReadStop()

	md := keyValueMetadata(pr.Footer.KeyValueMetadata)
	run := decodeRunInfoMetadata(md)

	numRows := int(pr.GetNumRows())
	rows := make([]columnarRow, numRows)
	if err := pr.Read(&rows); err != nil {
		return hepmodel.EventFile{}, errors.Wrap(err, "parquetio: read columnar rows")
	}

	events := make([]hepmodel.Event, 0, len(rows))
	for _, row := range rows {
		ev := hepmodel.NewEvent()
		ev.EventNumber = int(row.EventNumber)
		ev.ProcessID = int(row.ProcessID)
		ev.Scale, ev.AlphaQED, ev.AlphaQCD = row.Scale, row.AlphaQED, row.AlphaQCD
		if len(row.Weights) > 0 {
			ev.Weights = row.Weights
		}
		for _, ps := range row.Particles {
			p := hepmodel.NewParticle()
			p.PDGID, p.Status = int(ps.PDGID), int(ps.Status)
			p.Mother1, p.Mother2 = int(ps.Mother1), int(ps.Mother2)
			p.Color1, p.Color2 = int(ps.Color1), int(ps.Color2)
			p.Px, p.Py, p.Pz, p.Energy, p.Mass, p.Spin = ps.Px, ps.Py, ps.Pz, ps.Energy, ps.Mass, ps.Spin
			p.Barcode, p.VertexBarcode, p.EndVertexBarcode = int(ps.Barcode), int(ps.VertexBarcode), int(ps.EndVertexBarcode)
			if ps.AttributesJSON != "" {
				var attrs hepmodel.ParticleAttributes
				var raw map[string]any
				if err := json.Unmarshal([]byte(ps.AttributesJSON), &raw); err == nil {
					attrs.Extra = raw
					if v, ok := raw["hepmc_status_raw"]; ok {
						if f, ok := v.(float64); ok {
							iv := int(f)
							attrs.HepMCStatusRaw = &iv
							delete(raw, "hepmc_status_raw")
						}
					}
				}
				p.Attributes = attrs
			}
			ev.Particles = append(ev.Particles, p)
		}
		for _, vs := range row.Vertices {
			ev.Vertices = append(ev.Vertices, hepmodel.Vertex{
				Barcode:  int(vs.Barcode),
				X: vs.X, Y: vs.Y, Z: vs.Z, T: vs.T,
				Incoming: fromInt32Slice(vs.Incoming),
				Outgoing: fromInt32Slice(vs.Outgoing),
			})
		}
		if row.EventExtraJSON != "" {
			var issues struct {
				ValidationIssues []string `json:"validation_issues"`
			}
			_ = json.Unmarshal([]byte(row.EventExtraJSON), &issues)
			ev.Extra.ValidationIssues = issues.ValidationIssues
		}
		events = append(events, ev)
	}

	return hepmodel.EventFile{RunInfo: run, Events: events, FormatName: "parquet"}, nil
}

func keyValueMetadata(kvs []*parquetfmt.KeyValue) map[string]string {
	out := map[string]string{}
	for _, kv := range kvs {
		if kv.Value != nil {
			out[kv.Key] = *kv.Value
		}
	}
	return out
}

// Writer implements hepio.Writer for Parquet files. WriteOptions.Columnar
// selects the row layout; WriteOptions.Metadata entries are merged into
// the Parquet footer's key-value metadata alongside the run-info blob.
type Writer struct{}

// NewWriter constructs a Parquet Writer.
func NewWriter() hepio.Writer { return &Writer{} }

func (w *Writer) Write(path string, events hepio.EventCursor, run hepmodel.RunInfo, opts hepio.WriteOptions) error {
	if opts.Columnar {
		return writeColumnar(path, events, run, opts)
	}
	return writeFlat(path, events, run, opts)
}

func mergedMetadata(run hepmodel.RunInfo, opts hepio.WriteOptions) ([]*parquetfmt.KeyValue, error) {
	md, err := runInfoMetadata(run)
	if err != nil {
		return nil, err
	}
	for k, v := range opts.Metadata {
		md[k] = v
	}
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kvs := make([]*parquetfmt.KeyValue, 0, len(keys))
	for _, k := range keys {
		v := md[k]
		kvs = append(kvs, &parquetfmt.KeyValue{Key: k, Value: &v})
	}
	return kvs, nil
}

func writeFlat(path string, events hepio.EventCursor, run hepmodel.RunInfo, opts hepio.WriteOptions) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return errors.Wrapf(err, "parquetio: create %s", path)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(flatRow), 4)
	if err != nil {
		return errors.Wrap(err, "parquetio: new writer")
	}
	pw.CompressionType = parquetfmt.CompressionCodec_SNAPPY

	for {
		ev, ok, err := events.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if len(ev.Vertices) == 0 {
			vertex.BuildFromMothers(&ev)
		}
		for _, row := range eventToFlatRows(ev) {
			if err := pw.Write(row); err != nil {
				return errors.Wrap(err, "parquetio: write flat row")
			}
		}
	}

	kvs, err := mergedMetadata(run, opts)
	if err != nil {
		return err
	}
	pw.Footer.KeyValueMetadata = append(pw.Footer.KeyValueMetadata, kvs...)

	if err := pw.WriteStop(); err != nil {
		return errors.Wrap(err, "parquetio: write stop")
	}
	return nil
}

func writeColumnar(path string, events hepio.EventCursor, run hepmodel.RunInfo, opts hepio.WriteOptions) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return errors.Wrapf(err, "parquetio: create %s", path)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(columnarRow), 4)
	if err != nil {
		return errors.Wrap(err, "parquetio: new writer")
	}
	pw.CompressionType = parquetfmt.CompressionCodec_SNAPPY

	for {
		ev, ok, err := events.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if len(ev.Vertices) == 0 {
			vertex.BuildFromMothers(&ev)
		}
		row, err := eventToColumnarRow(ev)
		if err != nil {
			return err
		}
		if err := pw.Write(row); err != nil {
			return errors.Wrap(err, "parquetio: write columnar row")
		}
	}

	kvs, err := mergedMetadata(run, opts)
	if err != nil {
		return err
	}
	pw.Footer.KeyValueMetadata = append(pw.Footer.KeyValueMetadata, kvs...)

	if err := pw.WriteStop(); err != nil {
		return errors.Wrap(err, "parquetio: write stop")
	}
	return nil
}
