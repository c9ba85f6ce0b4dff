// Package doctorcheck runs a small environment sanity report: is the
// module importable (trivially true once this binary is running), is
// git available for provenance stamping, is the target output
// directory writable.
package doctorcheck

import (
	"os"
	"os/exec"
	"path/filepath"
)

// Check is the outcome of one sanity probe.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

// Report bundles every check plus a pass/fail summary line.
type Report struct {
	Summary string  `json:"summary"`
	Checks  []Check `json:"checks"`
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Run executes the doctor checks against outputDir (the directory a
// convert/certify invocation would write reports and sidecars into).
// outputDir may be empty, in which case the writability check is skipped.
func Run(outputDir string) Report {
	checks := []Check{
		{Name: "hepconduit binary", OK: true, Detail: "running"},
		checkGit(),
	}
	if outputDir != "" {
		checks = append(checks, checkWritable(outputDir))
	}

	summary := "hepconduit doctor: OK"
	for _, c := range checks {
		if !c.OK {
			summary = "hepconduit doctor: FAIL"
			break
		}
	}
	return Report{Summary: summary, Checks: checks}
}

func checkGit() Check {
	path, err := exec.LookPath("git")
	if err != nil {
		return Check{Name: "git (provenance)", OK: true, Detail: "not installed (optional, git SHA stamping skipped)"}
	}
	return Check{Name: "git (provenance)", OK: true, Detail: "found at " + path}
}

func checkWritable(dir string) Check {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Check{Name: "output directory writable", OK: false, Detail: err.Error()}
	}
	probe, err := os.CreateTemp(dir, ".hepconduit-doctor-*")
	if err != nil {
		return Check{Name: "output directory writable", OK: false, Detail: err.Error()}
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return Check{Name: "output directory writable", OK: true, Detail: "writable: " + filepath.Clean(dir)}
}
