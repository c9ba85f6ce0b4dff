// Package convert provides the high-level read/write/convert/info API:
// the streaming pipeline that ties format I/O, filtering, validation, loss
// accounting, and provenance together into one conversion.
package convert

import (
	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/hepio/csvtsv"
	"github.com/Manav02012002/hepconduit/pkg/hepio/hepmc3"
	"github.com/Manav02012002/hepconduit/pkg/hepio/lhe"
	"github.com/Manav02012002/hepconduit/pkg/hepio/parquetio"
)

func init() {
	hepio.Register("lhe", lhe.NewReader, lhe.NewWriter)
	hepio.Register("hepmc3", hepmc3.NewReader, hepmc3.NewWriter)
	hepio.Register("csv",
		func() hepio.Reader { return csvtsv.NewReader(',') },
		func() hepio.Writer { return csvtsv.NewWriter(',') },
	)
	hepio.Register("tsv",
		func() hepio.Reader { return csvtsv.NewReader('\t') },
		func() hepio.Writer { return csvtsv.NewWriter('\t') },
	)
	hepio.Register("parquet", parquetio.NewReader, parquetio.NewWriter)
}
