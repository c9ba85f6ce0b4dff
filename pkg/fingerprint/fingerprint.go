// Package fingerprint computes content-addressed SHA-256 fingerprints over
// an event's canonicalised, quantized physics content, for round-trip and
// diff certification independent of field ordering or floating-point
// round-off below a configured tolerance.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

// Config controls what a fingerprint includes and at what numeric
// resolution. The zero value is invalid; use DefaultConfig.
type Config struct {
	Version              string
	AbsTol               float64
	IncludeIntermediate  bool
	IncludeIncoming      bool
	IncludeWeights       bool
	IncludeGraph         bool
	IncludeProcessID     bool
}

// DefaultConfig returns the default fingerprint policy: loose enough to
// treat numerically-equivalent round-trips as identical, but blind to the
// event graph and weights unless asked for them.
func DefaultConfig() Config {
	return Config{
		Version:             "event_fingerprint_v1",
		AbsTol:              1e-4,
		IncludeIntermediate: true,
		IncludeIncoming:     true,
		IncludeWeights:      false,
		IncludeGraph:        false,
		IncludeProcessID:    false,
	}
}

func quantize(x, absTol float64) (int64, error) {
	if absTol <= 0 {
		return 0, errors.New("fingerprint: abs_tol must be > 0")
	}
	return int64(roundHalfAwayFromZero(x / absTol)), nil
}

func roundHalfAwayFromZero(x float64) float64 {
	if x >= 0 {
		return float64(int64(x + 0.5))
	}
	return float64(int64(x - 0.5))
}

type particleGraphKey struct {
	barcode, vertexBarcode, endVertexBarcode int
}

func (k particleGraphKey) String() string {
	return fmt.Sprintf("%d,%d,%d", k.barcode, k.vertexBarcode, k.endVertexBarcode)
}

type particleKey struct {
	status, pdgID          int
	qpx, qpy, qpz, qenergy int64
}

func (k particleKey) String() string {
	return fmt.Sprintf("%d,%d,%d,%d,%d,%d", k.status, k.pdgID, k.qpx, k.qpy, k.qpz, k.qenergy)
}

// Event computes the fingerprint hex digest of ev under cfg.
func Event(ev hepmodel.Event, cfg Config) (string, error) {
	var keys []string
	for _, p := range ev.Particles {
		if p.Status == 3 {
			continue
		}
		if p.IsIntermediate() && !cfg.IncludeIntermediate {
			continue
		}
		if p.IsIncoming() && !cfg.IncludeIncoming {
			continue
		}
		qpx, err := quantize(p.Px, cfg.AbsTol)
		if err != nil {
			return "", err
		}
		qpy, err := quantize(p.Py, cfg.AbsTol)
		if err != nil {
			return "", err
		}
		qpz, err := quantize(p.Pz, cfg.AbsTol)
		if err != nil {
			return "", err
		}
		qe, err := quantize(p.Energy, cfg.AbsTol)
		if err != nil {
			return "", err
		}
		keys = append(keys, particleKey{p.Status, p.PDGID, qpx, qpy, qpz, qe}.String())
	}
	sort.Strings(keys)

	h := sha256.New()
	h.Write([]byte(cfg.Version))
	h.Write([]byte{0})
	if cfg.IncludeProcessID {
		h.Write([]byte(strconv.Itoa(ev.ProcessID)))
		h.Write([]byte{0})
	}
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{';'})
	}

	if cfg.IncludeGraph {
		var graphKeys []string
		for _, p := range ev.Particles {
			if p.Status == 3 {
				continue
			}
			graphKeys = append(graphKeys, particleGraphKey{p.Barcode, p.VertexBarcode, p.EndVertexBarcode}.String())
		}
		sort.Strings(graphKeys)
		h.Write([]byte("|g|"))
		h.Write([]byte(strings.Join(graphKeys, ";")))
	}

	if cfg.IncludeWeights {
		h.Write([]byte("|w|"))
		for _, w := range ev.Weights {
			qw, err := quantize(w, cfg.AbsTol)
			if err != nil {
				return "", err
			}
			h.Write([]byte(strconv.FormatInt(qw, 10)))
			h.Write([]byte{','})
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Events fingerprints each event in evs under cfg, in order.
func Events(evs []hepmodel.Event, cfg Config) ([]string, error) {
	out := make([]string, len(evs))
	for i, ev := range evs {
		fp, err := Event(ev, cfg)
		if err != nil {
			return nil, err
		}
		out[i] = fp
	}
	return out, nil
}
