// Package canonicaljson produces the compact, deterministic JSON encoding
// used for provenance records, conversion reports, and loss hashes: sorted
// object keys and no insignificant whitespace, so the same logical value
// always serializes to the same bytes.
package canonicaljson

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Marshal renders v as compact JSON. Go's encoding/json already sorts map
// keys lexicographically when marshaling map[string]T, which is the only
// property "stable_json_dumps(sort_keys=True)" relied on in the reference
// implementation; this function additionally strips the HTML-escaping
// encoding/json applies by default, since provenance and report output is
// never embedded in HTML.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "canonicaljson: marshal")
	}
	// json.Encoder.Encode always appends a trailing newline; the original
	// stable_json_dumps does not, so callers get byte-identical output to
	// the reference tool when they append their own line breaks.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalString is a convenience wrapper returning the canonical encoding
// as a string.
func MarshalString(v any) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
