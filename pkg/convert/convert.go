package convert

import (
	"os"

	"github.com/pkg/errors"

	"github.com/Manav02012002/hepconduit/pkg/audit"
	"github.com/Manav02012002/hepconduit/pkg/canonicaljson"
	"github.com/Manav02012002/hepconduit/pkg/filterlang"
	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
	"github.com/Manav02012002/hepconduit/pkg/provenance"
	"github.com/Manav02012002/hepconduit/pkg/validate"
)

// Options configures one call to Convert.
type Options struct {
	InputFormat  string
	OutputFormat string

	FilterExpr string
	MaxEvents  int // -1 means unlimited

	Validate          bool
	MomentumTolerance float64
	StrictValidation  bool

	// Report controls where the conversion report is written: "auto"
	// writes alongside the output path, "-" writes to Stdout, "none"/
	// "off"/"false" suppresses it, anything else is a literal path.
	Report       string
	ReportFormat string // "json" or "sarif"

	// Provenance controls how the provenance record is surfaced: "auto"
	// embeds it only where the writer supports metadata, "sidecar" also
	// writes a standalone JSON file, "none" suppresses both.
	Provenance string

	WriteOptions hepio.WriteOptions

	Tool        string
	ToolVersion string
	Argv        []string

	Quiet bool
}

// DefaultOptions returns the reference tolerances and an unlimited,
// unfiltered, auto-reported conversion.
func DefaultOptions() Options {
	return Options{
		MaxEvents:         -1,
		MomentumTolerance: 1e-4,
		Report:            "auto",
		ReportFormat:      "json",
		Provenance:        "auto",
		Tool:              "hepconduit",
		ToolVersion:       "0.1.0",
	}
}

// ObservedLosses is the JSON-facing view of an audit.LossCounter, field-
// named to match the conversion report's "observed" object.
type ObservedLosses struct {
	DroppedFields        map[string]int               `json:"dropped_fields"`
	DroppedWeightsEvents  int                           `json:"dropped_weights_events"`
	DroppedRunInfoKeys    map[string]int                `json:"dropped_runinfo_keys"`
	LossExamples          map[string][]map[string]any   `json:"loss_examples"`
}

// Report is the conversion-time summary persisted alongside (or embedded
// in) the converted file: what will/did get dropped, and enough
// provenance to reproduce the run.
type Report struct {
	Kind       string              `json:"kind"`
	LossPlan   audit.LossPlan      `json:"loss_plan"`
	Observed   ObservedLosses      `json:"observed"`
	LossHash   string              `json:"loss_hash"`
	Provenance provenance.Record   `json:"provenance"`
}

// Result is what Convert returns: counts plus the full report.
type Result struct {
	NInput    int
	NOutput   int
	NFiltered int
	Report    Report
}

const reportKind = "hepconduit.conversion_report.v1"

// Convert streams inputPath to outputPath, applying an optional filter and
// validation pass, accounting for which fields the conversion will lose
// given the input/output format pair, and emitting a conversion report and
// provenance record.
func Convert(inputPath, outputPath string, opts Options) (Result, error) {
	inputFormat := opts.InputFormat
	if inputFormat == "" {
		f, err := hepio.DetectFormat(inputPath)
		if err != nil {
			return Result{}, err
		}
		inputFormat = f
	}
	outputFormat := opts.OutputFormat
	if outputFormat == "" {
		f, err := hepio.DetectFormat(outputPath)
		if err != nil {
			return Result{}, err
		}
		outputFormat = f
	}

	reader, err := hepio.GetReader(inputFormat)
	if err != nil {
		return Result{}, err
	}
	writer, err := hepio.GetWriter(outputFormat)
	if err != nil {
		return Result{}, err
	}

	nInput, err := countEvents(reader, inputPath, opts.MaxEvents)
	if err != nil {
		nInput = -1
	}

	cur, err := reader.IterEvents(inputPath)
	if err != nil {
		return Result{}, errors.Wrapf(err, "convert: open %s", inputPath)
	}
	cur = limitCursor(cur, opts.MaxEvents)

	if opts.FilterExpr != "" {
		compiled, err := filterlang.Compile(opts.FilterExpr)
		if err != nil {
			return Result{}, errors.Wrap(err, "convert: compile filter")
		}
		cur = filterCursor(cur, compiled)
	}

	if opts.Validate {
		vopts := validate.DefaultOptions()
		vopts.MomentumTolerance = opts.MomentumTolerance
		cur = validate.Stream(cur, vopts, opts.StrictValidation)
	}

	runInfo, _ := reader.ReadRunInfo(inputPath)

	plan := audit.Plan(inputFormat, outputFormat)
	cur, counter := audit.ObserveLosses(cur, plan)

	var nOutput int
	cur = countingCursor(cur, &nOutput)

	lossHash, err := audit.LossHash(plan, counter)
	if err != nil {
		return Result{}, err
	}

	argv := opts.Argv
	if len(argv) == 0 {
		argv = []string{"hepconduit", "convert", inputPath, outputPath}
	}
	prov, err := provenance.Build(provenance.Options{
		Tool: opts.Tool, ToolVersion: opts.ToolVersion,
		InputPath: inputPath, OutputPath: outputPath,
		InputFormat: inputFormat, OutputFormat: outputFormat,
		Argv: argv, LossHash: lossHash,
	})
	if err != nil {
		return Result{}, err
	}

	writeOpts := opts.WriteOptions
	if opts.Provenance != "none" {
		if writeOpts.Metadata == nil {
			writeOpts.Metadata = map[string]string{}
		} else {
			merged := make(map[string]string, len(writeOpts.Metadata))
			for k, v := range writeOpts.Metadata {
				merged[k] = v
			}
			writeOpts.Metadata = merged
		}
		provJSON, err := canonicaljson.MarshalString(prov)
		if err != nil {
			return Result{}, err
		}
		writeOpts.Metadata["hepconduit_provenance"] = provJSON
		writeOpts.Metadata["hepconduit_loss_hash"] = lossHash
		writeOpts.Metadata["hepconduit_report_kind"] = reportKind
	}

	if err := writer.Write(outputPath, cur, runInfo, writeOpts); err != nil {
		return Result{}, errors.Wrapf(err, "convert: write %s", outputPath)
	}

	nFiltered := 0
	if nInput >= 0 && opts.FilterExpr != "" {
		nFiltered = nInput - nOutput
		if nFiltered < 0 {
			nFiltered = 0
		}
	}

	report := Report{
		Kind:     reportKind,
		LossPlan: plan,
		Observed: ObservedLosses{
			DroppedFields:        counter.DroppedFields,
			DroppedWeightsEvents: counter.DroppedWeights,
			DroppedRunInfoKeys:   counter.DroppedRunInfoKeys,
			LossExamples:         counter.LossExamples,
		},
		LossHash:   lossHash,
		Provenance: prov,
	}

	if err := emitReport(report, outputPath, opts); err != nil {
		return Result{}, err
	}
	if opts.Provenance == "sidecar" {
		provJSON, err := canonicaljson.MarshalString(prov)
		if err != nil {
			return Result{}, err
		}
		if err := os.WriteFile(outputPath+".hepconduit.provenance.json", []byte(provJSON+"\n"), 0o644); err != nil {
			return Result{}, errors.Wrap(err, "convert: write provenance sidecar")
		}
	}

	return Result{NInput: nInput, NOutput: nOutput, NFiltered: nFiltered, Report: report}, nil
}

func emitReport(report Report, outputPath string, opts Options) error {
	reportFormat := opts.ReportFormat
	if reportFormat == "" {
		reportFormat = "json"
	}
	if reportFormat != "json" && reportFormat != "sarif" {
		return errors.Errorf("convert: report_format must be 'json' or 'sarif', got %q", reportFormat)
	}

	var text string
	var autoSuffix string
	if reportFormat == "json" {
		s, err := canonicaljson.MarshalString(report)
		if err != nil {
			return err
		}
		text = s + "\n"
		autoSuffix = ".hepconduit.json"
	} else {
		sarif, err := audit.ConversionReportToSARIF(audit.ConversionReport{
			Kind: report.Kind,
			Provenance: audit.ReportProvenance{
				Tool: report.Provenance.Tool, ToolVersion: report.Provenance.ToolVersion,
				GitSHA: report.Provenance.GitSHA,
				InputPath: report.Provenance.Input.Path, OutputPath: report.Provenance.Output.Path,
			},
			LossPlan:             report.LossPlan,
			DroppedFields:        report.Observed.DroppedFields,
			DroppedWeightsEvents: report.Observed.DroppedWeightsEvents,
			LossHash:             report.LossHash,
		})
		if err != nil {
			return err
		}
		s, err := canonicaljson.MarshalString(sarif)
		if err != nil {
			return err
		}
		text = s + "\n"
		autoSuffix = ".hepconduit.sarif"
	}

	switch opts.Report {
	case "auto", "":
		return os.WriteFile(outputPath+autoSuffix, []byte(text), 0o644)
	case "-":
		_, err := os.Stdout.WriteString(text)
		return err
	case "none", "off", "false":
		return nil
	default:
		return os.WriteFile(opts.Report, []byte(text), 0o644)
	}
}

func countEvents(reader hepio.Reader, path string, maxEvents int) (int, error) {
	cur, err := reader.IterEvents(path)
	if err != nil {
		return -1, err
	}
	defer cur.Close()
	cur = limitCursor(cur, maxEvents)

	n := 0
	for {
		_, ok, err := cur.Next()
		if err != nil {
			return -1, err
		}
		if !ok {
			break
		}
		n++
	}
	return n, nil
}

func limitCursor(cur hepio.EventCursor, maxEvents int) hepio.EventCursor {
	if maxEvents < 0 {
		return cur
	}
	n := 0
	next := func() (hepmodel.Event, bool, error) {
		if n >= maxEvents {
			return hepmodel.Event{}, false, nil
		}
		ev, ok, err := cur.Next()
		if ok {
			n++
		}
		return ev, ok, err
	}
	return &hepio.FuncCursor{NextFn: next, CloseFn: cur.Close}
}

func filterCursor(cur hepio.EventCursor, compiled *filterlang.Compiled) hepio.EventCursor {
	next := func() (hepmodel.Event, bool, error) {
		for {
			ev, ok, err := cur.Next()
			if err != nil || !ok {
				return ev, ok, err
			}
			matched, err := compiled.Matches(ev)
			if err != nil {
				return hepmodel.Event{}, false, err
			}
			if matched {
				return ev, true, nil
			}
		}
	}
	return &hepio.FuncCursor{NextFn: next, CloseFn: cur.Close}
}

func countingCursor(cur hepio.EventCursor, counter *int) hepio.EventCursor {
	next := func() (hepmodel.Event, bool, error) {
		ev, ok, err := cur.Next()
		if ok {
			*counter++
		}
		return ev, ok, err
	}
	return &hepio.FuncCursor{NextFn: next, CloseFn: cur.Close}
}
