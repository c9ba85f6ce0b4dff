// Package hepio defines the Reader/Writer interfaces every event-record
// format implements, and a small registry mapping a format tag to its
// reader/writer factories and to the file extensions that imply it.
package hepio

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

// FormatError reports a malformed or unreadable input file. Per-field
// defects inside one event do not produce a FormatError; only conditions
// that prevent further progress through the file do.
type FormatError struct {
	Format string
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return "hepio: " + e.Format + " " + e.Path + ": " + e.Reason
}

// EventCursor is a pull cursor over an event stream: Next advances and
// returns the next event, ok=false with a nil error at end of stream.
// Close must always run, even after a partial read.
type EventCursor interface {
	Next() (ev hepmodel.Event, ok bool, err error)
	Close() error
}

// Reader reads a complete event file, or returns its events one at a time
// via IterEvents. The LHE and CSV/TSV readers stream from the file; the
// HepMC3 and Parquet readers load the whole file before the first event.
type Reader interface {
	Read(path string) (hepmodel.EventFile, error)
	IterEvents(path string) (EventCursor, error)
	ReadRunInfo(path string) (hepmodel.RunInfo, error)
}

// WriteOptions carries the writer-specific keyword arguments the Python
// original passed as **kwargs (a columnar Parquet layout toggle, output
// metadata key/value pairs, a CSV column list, ...).
type WriteOptions struct {
	Columnar bool
	Metadata map[string]string
	Fields   []string
}

// Writer writes a run's events to a path under one WriteOptions policy.
type Writer interface {
	Write(path string, events EventCursor, run hepmodel.RunInfo, opts WriteOptions) error
}

// ReaderFactory constructs a fresh Reader instance.
type ReaderFactory func() Reader

// WriterFactory constructs a fresh Writer instance.
type WriterFactory func() Writer

type handlers struct {
	reader ReaderFactory
	writer WriterFactory
}

var registry = map[string]handlers{}

// Register associates a format tag with reader/writer factories,
// overwriting any prior registration for the same tag. This is the sole
// extension point: hepconduit has no runtime plugin-discovery mechanism,
// callers wanting to add a format call Register directly.
func Register(format string, reader ReaderFactory, writer WriterFactory) {
	registry[format] = handlers{reader: reader, writer: writer}
}

var extensionMap = map[string]string{
	".lhe":     "lhe",
	".hepmc":   "hepmc3",
	".hepmc3":  "hepmc3",
	".csv":     "csv",
	".tsv":     "tsv",
	".tab":     "tsv",
	".parquet": "parquet",
	".pq":      "parquet",
}

// DetectFormat infers a format tag from a file's extension, stripping a
// trailing ".gz" first if present.
func DetectFormat(path string) (string, error) {
	base := path
	if strings.HasSuffix(strings.ToLower(base), ".gz") {
		base = base[:len(base)-3]
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" {
		return "", errors.Errorf("hepio: cannot detect format: %s has no extension", path)
	}
	fmtTag, ok := extensionMap[ext]
	if !ok {
		return "", errors.Errorf("hepio: cannot detect format: unrecognised extension %q", ext)
	}
	return fmtTag, nil
}

// GetReader returns a fresh Reader for the given format tag.
func GetReader(format string) (Reader, error) {
	h, ok := registry[format]
	if !ok {
		return nil, errors.Errorf("hepio: format not registered: %s", format)
	}
	return h.reader(), nil
}

// GetWriter returns a fresh Writer for the given format tag.
func GetWriter(format string) (Writer, error) {
	h, ok := registry[format]
	if !ok {
		return nil, errors.Errorf("hepio: format not registered: %s", format)
	}
	return h.writer(), nil
}
