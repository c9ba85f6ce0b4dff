package convert

import (
	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
	"github.com/Manav02012002/hepconduit/pkg/validate"
)

// Validate reads path and runs the physics validator over every event,
// returning the aggregated report.
func Validate(path, format string, opts validate.Options) (validate.Report, error) {
	ef, err := Read(path, format)
	if err != nil {
		return validate.Report{}, err
	}
	return validate.File(ef, opts), nil
}

// ValidateEventFile runs the physics validator over an already-loaded
// EventFile, for callers that read once and then validate and convert.
func ValidateEventFile(ef hepmodel.EventFile, opts validate.Options) validate.Report {
	return validate.File(ef, opts)
}
