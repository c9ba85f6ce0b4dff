package provenance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.lhe")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestBuildHashesInputFile(t *testing.T) {
	path := writeTempFile(t, "hello world")

	rec, err := Build(Options{
		Tool: "hepconduit", ToolVersion: "0.1.0",
		InputPath: path, OutputPath: "out.csv",
		InputFormat: "lhe", OutputFormat: "csv",
		Argv: []string{"hepconduit", "convert", path, "out.csv"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.Input.SHA256)
	assert.Equal(t, "lhe", rec.Input.Format)
	assert.Equal(t, "out.csv", rec.Output.Path)
	assert.NotEmpty(t, rec.UTCTimestamp)
}

func TestBuildIsDeterministicForIdenticalInput(t *testing.T) {
	path := writeTempFile(t, "identical contents")

	rec1, err := Build(Options{InputPath: path, OutputPath: "a.csv"})
	require.NoError(t, err)
	rec2, err := Build(Options{InputPath: path, OutputPath: "a.csv"})
	require.NoError(t, err)

	assert.Equal(t, rec1.Input.SHA256, rec2.Input.SHA256)
}

func TestBuildFailsOnMissingInput(t *testing.T) {
	_, err := Build(Options{InputPath: filepath.Join(t.TempDir(), "missing.lhe")})
	assert.Error(t, err)
}

func TestGitSHAEmptyOutsideWorktree(t *testing.T) {
	sha := gitSHA(t.TempDir())
	assert.Equal(t, "", sha)
}

func TestWithOutputHashFillsOutputSHA(t *testing.T) {
	input := writeTempFile(t, "in")
	rec, err := Build(Options{InputPath: input, OutputPath: input})
	require.NoError(t, err)

	updated, err := WithOutputHash(rec, input)
	require.NoError(t, err)
	assert.NotEmpty(t, updated.Output.SHA256)
	assert.Equal(t, rec.Input.SHA256, updated.Output.SHA256)
}
