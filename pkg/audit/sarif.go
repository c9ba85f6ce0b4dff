package audit

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

const conversionReportKind = "hepconduit.conversion_report.v1"

// ReportProvenance is the subset of a provenance record a SARIF conversion
// carries forward: enough to locate the input/output artifacts and identify
// the tool run.
type ReportProvenance struct {
	Tool        string
	ToolVersion string
	GitSHA      string
	InputPath   string
	OutputPath  string
}

// ConversionReport is the conversion-time summary ConversionReportToSARIF
// renders as a SARIF log: the loss plan, what was actually observed, and
// enough provenance to locate the artifacts involved.
type ConversionReport struct {
	Kind         string
	Provenance   ReportProvenance
	LossPlan     LossPlan
	DroppedFields map[string]int
	DroppedWeightsEvents int
	LossHash     string
}

// ConversionReportToSARIF renders report as a SARIF 2.1.0 log, so CI systems
// (GitHub, Azure DevOps, ...) can annotate the diff with the information a
// conversion would lose, without inventing a bespoke report format. The
// output is deterministic given the report.
func ConversionReportToSARIF(report ConversionReport) (map[string]any, error) {
	if report.Kind != conversionReportKind {
		return nil, errors.Errorf("audit: unsupported report kind for SARIF: %q", report.Kind)
	}

	inputURI := report.Provenance.InputPath
	if inputURI == "" {
		inputURI = "<input>"
	}
	outputURI := report.Provenance.OutputPath
	if outputURI == "" {
		outputURI = "<output>"
	}

	rules := []map[string]any{
		{
			"id":                  "HEPLOSS001",
			"name":                "DroppedField",
			"shortDescription":    map[string]string{"text": "Some information cannot be represented in the output format."},
			"fullDescription":     map[string]string{"text": "During conversion, some fields cannot be represented in the chosen output format and will be dropped. The conversion report includes an explicit loss plan and observed occurrences."},
			"defaultConfiguration": map[string]string{"level": "warning"},
		},
		{
			"id":                  "HEPLOSS002",
			"name":                "DroppedMultiWeights",
			"shortDescription":    map[string]string{"text": "Multiple event weights cannot be represented in the output format."},
			"fullDescription":     map[string]string{"text": "The output format does not support multiple named weights per event. Only the nominal weight may be retained."},
			"defaultConfiguration": map[string]string{"level": "warning"},
		},
	}

	var results []map[string]any

	fields := make([]string, 0, len(report.DroppedFields))
	for f := range report.DroppedFields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, field := range fields {
		count := report.DroppedFields[field]
		results = append(results, map[string]any{
			"ruleId": "HEPLOSS001",
			"level":  "warning",
			"message": map[string]string{
				"text": fmt.Sprintf("Dropped non-default values for %s in %d occurrences when converting %s -> %s.",
					field, count, report.LossPlan.InputFormat, report.LossPlan.OutputFormat),
			},
			"locations": []map[string]any{
				{"physicalLocation": map[string]any{"artifactLocation": map[string]string{"uri": inputURI}}},
			},
			"properties": map[string]any{
				"field":  field,
				"count":  count,
				"output": outputURI,
			},
		})
	}

	if report.DroppedWeightsEvents > 0 {
		results = append(results, map[string]any{
			"ruleId": "HEPLOSS002",
			"level":  "warning",
			"message": map[string]string{
				"text": fmt.Sprintf("Dropped multi-weights in %d events when converting %s -> %s.",
					report.DroppedWeightsEvents, report.LossPlan.InputFormat, report.LossPlan.OutputFormat),
			},
			"locations": []map[string]any{
				{"physicalLocation": map[string]any{"artifactLocation": map[string]string{"uri": inputURI}}},
			},
			"properties": map[string]any{
				"count":  report.DroppedWeightsEvents,
				"output": outputURI,
			},
		})
	}

	toolName := report.Provenance.Tool
	if toolName == "" {
		toolName = "hepconduit"
	}
	toolVersion := report.Provenance.ToolVersion
	if toolVersion == "" {
		toolVersion = "unknown"
	}

	return map[string]any{
		"$schema": "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0.json",
		"version": "2.1.0",
		"runs": []map[string]any{
			{
				"tool": map[string]any{
					"driver": map[string]any{
						"name":            toolName,
						"version":         toolVersion,
						"informationUri":  "https://github.com/Manav02012002/hepconduit",
						"rules":           rules,
					},
				},
				"invocations": []map[string]any{
					{
						"executionSuccessful": true,
						"properties": map[string]any{
							"git_sha":   report.Provenance.GitSHA,
							"loss_hash": report.LossHash,
						},
					},
				},
				"results": results,
			},
		},
	}, nil
}
