package audit

import "sort"

// LossPlan is the set of fields that will not survive a conversion from
// InputFormat to OutputFormat, computed purely from the two formats'
// capability manifests (it does not look at any actual event).
type LossPlan struct {
	InputFormat  string `json:"input_format"`
	OutputFormat string `json:"output_format"`

	DroppedParticleFields []string `json:"dropped_particle_fields"`
	DroppedEventFields    []string `json:"dropped_event_fields"`
	DroppedRunFields      []string `json:"dropped_run_fields"`
}

func difference(have, want map[string]bool) []string {
	var out []string
	for field := range have {
		if !want[field] {
			out = append(out, field)
		}
	}
	sort.Strings(out)
	return out
}

// Plan computes the loss plan for converting from inputFormat to
// outputFormat: every field the input format can carry that the output
// format has no place for.
func Plan(inputFormat, outputFormat string) LossPlan {
	in := FormatCapabilities(inputFormat)
	out := FormatCapabilities(outputFormat)
	return LossPlan{
		InputFormat:           inputFormat,
		OutputFormat:          outputFormat,
		DroppedParticleFields: difference(in.ParticleFields, out.ParticleFields),
		DroppedEventFields:    difference(in.EventFields, out.EventFields),
		DroppedRunFields:      difference(in.RunFields, out.RunFields),
	}
}
