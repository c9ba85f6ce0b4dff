// Package provenance builds the record that accompanies every conversion:
// tool identity, git commit, timestamps, input/output hashes, and the
// contract/loss-hash this run was certified against.
package provenance

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Input describes the source artifact a conversion read.
type Input struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Format string `json:"format"`
}

// Output describes the artifact a conversion wrote. SHA256 is left empty
// until the caller hashes the finished file, since provenance is typically
// built before the output is fully flushed to disk.
type Output struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256,omitempty"`
	Format string `json:"format"`
}

// Record is one conversion's full provenance record.
type Record struct {
	Tool         string         `json:"tool"`
	ToolVersion  string         `json:"tool_version"`
	GitSHA       string         `json:"git_sha"`
	UTCTimestamp string         `json:"utc_timestamp"`
	Input        Input          `json:"input"`
	Output       Output         `json:"output"`
	Argv         []string       `json:"argv"`
	ContractID   string         `json:"contract_id"`
	LossHash     string         `json:"loss_hash"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// Options configures Build.
type Options struct {
	Tool          string
	ToolVersion   string
	InputPath     string
	OutputPath    string
	InputFormat   string
	OutputFormat  string
	Argv          []string
	ContractID    string
	LossHash      string
	Extra         map[string]any
	RepoRoot      string // working directory for the git lookup; "" uses the process cwd
}

// sha256File hashes a file's contents in fixed-size chunks, so memory use
// stays flat regardless of file size.
func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "provenance: open input for hashing")
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, 1024*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// gitSHA is a best-effort "git rev-parse HEAD" lookup: empty string if git
// is unavailable or repoRoot isn't inside a worktree.
func gitSHA(repoRoot string) string {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	if repoRoot != "" {
		cmd.Dir = repoRoot
	}
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// Build constructs a provenance record: it hashes the input file, looks up
// the current git commit on a best-effort basis, and stamps the current
// UTC time.
func Build(opts Options) (Record, error) {
	sum, err := sha256File(opts.InputPath)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Tool:         opts.Tool,
		ToolVersion:  opts.ToolVersion,
		GitSHA:       gitSHA(opts.RepoRoot),
		UTCTimestamp: time.Now().UTC().Format("2006-01-02T15:04:05.999999999Z"),
		Input: Input{
			Path:   opts.InputPath,
			SHA256: sum,
			Format: opts.InputFormat,
		},
		Output: Output{
			Path:   opts.OutputPath,
			Format: opts.OutputFormat,
		},
		Argv:       opts.Argv,
		ContractID: opts.ContractID,
		LossHash:   opts.LossHash,
		Extra:      opts.Extra,
	}, nil
}

// WithOutputHash returns a copy of rec with the output artifact's SHA-256
// filled in, for callers that hash the finished file after Build ran.
func WithOutputHash(rec Record, outputPath string) (Record, error) {
	sum, err := sha256File(outputPath)
	if err != nil {
		return rec, err
	}
	rec.Output.SHA256 = sum
	return rec, nil
}
