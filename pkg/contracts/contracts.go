// Package contracts certifies a file (or a format conversion) against a
// named invariant: does it validate cleanly, does a round trip preserve
// its physics content, does HepMC3/Parquet fidelity hold under the
// graph+weights-sensitive fingerprint.
package contracts

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/Manav02012002/hepconduit/pkg/convert"
	"github.com/Manav02012002/hepconduit/pkg/fingerprint"
	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/validate"
)

func defaultWriteOptions() hepio.WriteOptions { return hepio.WriteOptions{} }

// Result is the outcome of running one contract.
type Result struct {
	Contract string         `json:"contract"`
	OK       bool           `json:"ok"`
	Details  map[string]any `json:"details"`
}

// PackResult is the outcome of running every contract in a pack.
type PackResult struct {
	Pack    string   `json:"pack"`
	OK      bool     `json:"ok"`
	Results []Result `json:"results"`
}

var builtinContracts = []string{
	"roundtrip_v1", "validate_only_v1", "hepmc3_roundtrip_fidelity_v1", "parquet_fidelity_v1",
}

var builtinPacks = map[string][]string{
	"generator_level_v1":  {"validate_only_v1", "roundtrip_v1"},
	"hepmc3_fidelity_v1":  {"hepmc3_roundtrip_fidelity_v1"},
	"parquet_fidelity_v1": {"parquet_fidelity_v1"},
}

// AvailableContracts lists every contract name RunContract accepts, sorted.
func AvailableContracts() []string {
	out := append([]string{}, builtinContracts...)
	sort.Strings(out)
	return out
}

// AvailablePacks lists every pack name RunContractPack accepts, sorted.
func AvailablePacks() []string {
	out := make([]string, 0, len(builtinPacks))
	for k := range builtinPacks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func tolerances(strict bool) (momentum, mass float64) {
	if strict {
		return 1e-6, 1e-4
	}
	return 1e-4, 1e-2
}

// RunContract certifies inputPath against one named contract.
func RunContract(inputPath, contract, toFormat string, strict bool) (Result, error) {
	momTol, massTol := tolerances(strict)

	switch contract {
	case "validate_only_v1":
		return runValidateOnly(inputPath, momTol, massTol)
	case "hepmc3_roundtrip_fidelity_v1":
		return runHepMC3RoundtripFidelity(inputPath)
	case "parquet_fidelity_v1":
		return runParquetFidelity(inputPath)
	case "roundtrip_v1":
		return runRoundtrip(inputPath, toFormat, momTol, massTol)
	default:
		return Result{}, errors.Errorf("contracts: unknown contract %q; available: %v", contract, AvailableContracts())
	}
}

// RunContractPack certifies inputPath against every contract in pack.
func RunContractPack(inputPath, pack, toFormat string, strict bool) (PackResult, error) {
	contracts, ok := builtinPacks[pack]
	if !ok {
		return PackResult{}, errors.Errorf("contracts: unknown pack %q; available: %v", pack, AvailablePacks())
	}

	ok2 := true
	results := make([]Result, 0, len(contracts))
	for _, c := range contracts {
		r, err := RunContract(inputPath, c, toFormat, strict)
		if err != nil {
			return PackResult{}, err
		}
		results = append(results, r)
		if !r.OK {
			ok2 = false
		}
	}
	return PackResult{Pack: pack, OK: ok2, Results: results}, nil
}

func runValidateOnly(inputPath string, momTol, massTol float64) (Result, error) {
	ef, err := convert.Read(inputPath, "")
	if err != nil {
		return Result{}, err
	}
	opts := validate.DefaultOptions()
	opts.MomentumTolerance = momTol
	opts.MassTolerance = massTol
	rep := validate.File(ef, opts)
	return Result{
		Contract: "validate_only_v1",
		OK:       rep.IsValid(),
		Details:  map[string]any{"validation": rep.String()},
	}, nil
}

func runRoundtrip(inputPath, toFormat string, momTol, massTol float64) (Result, error) {
	if toFormat == "" {
		toFormat = "hepmc3"
	}
	vopts := validate.DefaultOptions()
	vopts.MomentumTolerance = momTol
	vopts.MassTolerance = massTol

	efIn, err := convert.Read(inputPath, "")
	if err != nil {
		return Result{}, err
	}
	repIn := validate.File(efIn, vopts)
	cfg := fingerprint.DefaultConfig()
	fpIn, err := fingerprint.Events(efIn.Events, cfg)
	if err != nil {
		return Result{}, err
	}

	td, err := os.MkdirTemp("", "hepconduit_contract_")
	if err != nil {
		return Result{}, errors.Wrap(err, "contracts: temp dir")
	}
	defer os.RemoveAll(td)

	mid := filepath.Join(td, "mid."+toFormat)
	back := filepath.Join(td, "back.lhe")

	convOpts := convert.DefaultOptions()
	convOpts.OutputFormat = toFormat
	convOpts.Report = "none"
	convOpts.Provenance = "none"
	convOpts.Quiet = true
	if _, err := convert.Convert(inputPath, mid, convOpts); err != nil {
		return Result{}, err
	}

	backOpts := convert.DefaultOptions()
	backOpts.OutputFormat = "lhe"
	backOpts.Report = "none"
	backOpts.Provenance = "none"
	backOpts.Quiet = true
	if _, err := convert.Convert(mid, back, backOpts); err != nil {
		return Result{}, err
	}

	efBack, err := convert.Read(back, "")
	if err != nil {
		return Result{}, err
	}
	repBack := validate.File(efBack, vopts)
	fpBack, err := fingerprint.Events(efBack.Events, cfg)
	if err != nil {
		return Result{}, err
	}

	ok := true
	var reasons []string
	if !repIn.IsValid() {
		ok = false
		reasons = append(reasons, "input_failed_validation")
	}
	if !repBack.IsValid() {
		ok = false
		reasons = append(reasons, "roundtrip_failed_validation")
	}
	if len(efIn.Events) != len(efBack.Events) {
		ok = false
		reasons = append(reasons, "event_count_changed")
	}
	if !stringSlicesEqual(fpIn, fpBack) {
		ok = false
		reasons = append(reasons, "fingerprints_changed")
	}

	return Result{
		Contract: "roundtrip_v1",
		OK:       ok,
		Details: map[string]any{
			"to_format": toFormat,
			"reasons":   reasons,
			"n_events":  map[string]int{"input": len(efIn.Events), "back": len(efBack.Events)},
		},
	}, nil
}

func runHepMC3RoundtripFidelity(inputPath string) (Result, error) {
	errs, _ := validateErrorCount(inputPath)
	if errs > 0 {
		return Result{Contract: "hepmc3_roundtrip_fidelity_v1", OK: false, Details: map[string]any{"message": "input invalid"}}, nil
	}

	efIn, err := convert.Read(inputPath, "hepmc3")
	if err != nil {
		return Result{}, err
	}

	td, err := os.MkdirTemp("", "hepconduit_contract_")
	if err != nil {
		return Result{}, errors.Wrap(err, "contracts: temp dir")
	}
	defer os.RemoveAll(td)

	mid := filepath.Join(td, "mid.hepmc")
	if err := convert.Write(mid, efIn, "hepmc3", defaultWriteOptions()); err != nil {
		return Result{}, err
	}

	errs2, _ := validateErrorCount(mid)
	if errs2 > 0 {
		return Result{Contract: "hepmc3_roundtrip_fidelity_v1", OK: false, Details: map[string]any{"message": "roundtrip invalid"}}, nil
	}

	efOut, err := convert.Read(mid, "hepmc3")
	if err != nil {
		return Result{}, err
	}

	cfg := fingerprint.DefaultConfig()
	cfg.IncludeGraph = true
	cfg.IncludeWeights = true
	a, err := fingerprint.Events(efIn.Events, cfg)
	if err != nil {
		return Result{}, err
	}
	b, err := fingerprint.Events(efOut.Events, cfg)
	if err != nil {
		return Result{}, err
	}
	if !stringSlicesEqual(a, b) {
		return Result{Contract: "hepmc3_roundtrip_fidelity_v1", OK: false, Details: map[string]any{"message": "strict fingerprints differ after HepMC3->HepMC3"}}, nil
	}

	return Result{Contract: "hepmc3_roundtrip_fidelity_v1", OK: true, Details: map[string]any{"message": "ok"}}, nil
}

func runParquetFidelity(inputPath string) (Result, error) {
	errs, _ := validateErrorCount(inputPath)
	if errs > 0 {
		return Result{Contract: "parquet_fidelity_v1", OK: false, Details: map[string]any{"message": "input invalid"}}, nil
	}

	ef, err := convert.Read(inputPath, "")
	if err != nil {
		return Result{}, err
	}

	td, err := os.MkdirTemp("", "hepconduit_contract_")
	if err != nil {
		return Result{}, errors.Wrap(err, "contracts: temp dir")
	}
	defer os.RemoveAll(td)

	pq := filepath.Join(td, "out.parquet")
	writeOpts := defaultWriteOptions()
	writeOpts.Columnar = true
	writeOpts.Metadata = map[string]string{"hepconduit_schema": "hepconduit.event.v1.columnar"}
	if err := convert.Write(pq, ef, "parquet", writeOpts); err != nil {
		return Result{}, err
	}

	errsPQ, _ := validateErrorCount(pq)
	if errsPQ > 0 {
		return Result{Contract: "parquet_fidelity_v1", OK: false, Details: map[string]any{"message": "parquet invalid"}}, nil
	}

	ef2, err := convert.Read(pq, "parquet")
	if err != nil {
		return Result{}, err
	}

	cfg := fingerprint.DefaultConfig()
	cfg.IncludeGraph = true
	cfg.IncludeWeights = true
	a, err := fingerprint.Events(ef.Events, cfg)
	if err != nil {
		return Result{}, err
	}
	b, err := fingerprint.Events(ef2.Events, cfg)
	if err != nil {
		return Result{}, err
	}
	if !stringSlicesEqual(a, b) {
		return Result{Contract: "parquet_fidelity_v1", OK: false, Details: map[string]any{"message": "strict fingerprints differ after ->Parquet"}}, nil
	}

	return Result{Contract: "parquet_fidelity_v1", OK: true, Details: map[string]any{"message": "ok"}}, nil
}

func validateErrorCount(path string) (int, int) {
	ef, err := convert.Read(path, "")
	if err != nil {
		return 1, 0
	}
	rep := validate.File(ef, validate.DefaultOptions())
	return rep.NErrors(), rep.NWarnings()
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
