// Package schema names and upgrades between the two Parquet row layouts
// hepconduit writes: the flat, particle-per-row table and the columnar,
// event-per-row table with nested particle/vertex lists.
package schema

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/Manav02012002/hepconduit/pkg/convert"
	"github.com/Manav02012002/hepconduit/pkg/hepio"
)

// Descriptor describes one known schema name.
type Descriptor struct {
	Name        string `json:"name"`
	Format      string `json:"format"`
	Layout      string `json:"layout"`
	Description string `json:"description"`
}

var knownSchemas = map[string]Descriptor{
	"hepconduit.event.v1.flat": {
		Name: "hepconduit.event.v1.flat", Format: "parquet", Layout: "flat",
		Description: "particle-per-row flat table.",
	},
	"hepconduit.event.v1.columnar": {
		Name: "hepconduit.event.v1.columnar", Format: "parquet", Layout: "columnar",
		Description: "event-per-row with particles list-of-struct.",
	},
}

// ListSchemas returns every known schema descriptor, sorted by name.
func ListSchemas() []Descriptor {
	names := make([]string, 0, len(knownSchemas))
	for n := range knownSchemas {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Descriptor, len(names))
	for i, n := range names {
		out[i] = knownSchemas[n]
	}
	return out
}

// UpgradeParquet reads inputPath as Parquet and rewrites it to outputPath
// under the named target schema, stamping the schema name into the
// output's key/value metadata.
func UpgradeParquet(inputPath, outputPath, toSchema string) error {
	spec, ok := knownSchemas[toSchema]
	if !ok {
		return errors.Errorf("schema: unknown schema %q", toSchema)
	}
	if spec.Format != "parquet" {
		return errors.New("schema: UpgradeParquet only supports parquet targets")
	}

	ef, err := convert.Read(inputPath, "parquet")
	if err != nil {
		return err
	}

	columnar := spec.Layout == "columnar"
	return convert.Write(outputPath, ef, "parquet", hepio.WriteOptions{
		Columnar: columnar,
		Metadata: map[string]string{"hepconduit_schema": toSchema},
	})
}
