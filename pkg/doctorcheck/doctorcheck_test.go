package doctorcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithoutOutputDirSkipsWritabilityCheck(t *testing.T) {
	report := Run("")
	require.NotEmpty(t, report.Checks)
	for _, c := range report.Checks {
		assert.NotEqual(t, "output directory writable", c.Name)
	}
	assert.True(t, report.OK())
	assert.Equal(t, "hepconduit doctor: OK", report.Summary)
}

func TestRunWithWritableOutputDirPasses(t *testing.T) {
	dir := t.TempDir()
	report := Run(dir)

	var sawWritable bool
	for _, c := range report.Checks {
		if c.Name == "output directory writable" {
			sawWritable = true
			assert.True(t, c.OK)
		}
	}
	assert.True(t, sawWritable)
	assert.True(t, report.OK())
}

func TestRunReportsGitCheck(t *testing.T) {
	report := Run("")
	var sawGit bool
	for _, c := range report.Checks {
		if c.Name == "git (provenance)" {
			sawGit = true
		}
	}
	assert.True(t, sawGit)
}
