// Package patch performs static sanity checks on proposed diffs. The policy
// core never applies a diff; it only inspects the text the agent is about to
// hand to the runner and advises when something looks off.
package patch

import (
	"fmt"
	"path"
	"strings"
)

// ForbiddenPaths are paths a repair patch has no business touching. Changes
// here are either infrastructure damage or reward hacking.
var ForbiddenPaths = []string{
	".git",
	".github",
	".env",
	"setup.cfg",
	"setup.py",
	"pyproject.toml",
	"tox.ini",
	"conftest.py",
	"requirements.txt",
}

// Warning is one advisory finding about a diff. Warnings never block.
type Warning struct {
	Code    string // stable identifier, e.g. "forbidden-path"
	Message string
}

// Analysis is the result of inspecting one proposed diff.
type Analysis struct {
	WellFormed   bool
	Files        []string // paths named by the diff headers
	LinesAdded   int
	LinesRemoved int
	Warnings     []Warning
}

// Analyze inspects a unified diff targeting targetPath. Malformed input
// never errors: it yields WellFormed=false with a warning, because advising
// the agent is the whole point.
func Analyze(targetPath, unified string) Analysis {
	a := Analysis{}

	if strings.TrimSpace(unified) == "" {
		a.Warnings = append(a.Warnings, Warning{
			Code:    "empty-diff",
			Message: "the diff is empty; nothing would change",
		})
		return a
	}

	sawHunk := false
	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ "):
			if p := diffHeaderPath(line); p != "" {
				a.Files = appendUnique(a.Files, p)
			}
		case strings.HasPrefix(line, "@@"):
			sawHunk = true
		case strings.HasPrefix(line, "+"):
			a.LinesAdded++
		case strings.HasPrefix(line, "-"):
			a.LinesRemoved++
		}
	}

	a.WellFormed = sawHunk && (a.LinesAdded > 0 || a.LinesRemoved > 0)
	if !a.WellFormed {
		a.Warnings = append(a.Warnings, Warning{
			Code:    "malformed-diff",
			Message: "the diff has no recognisable hunks; it will likely fail to apply",
		})
	}

	checkPaths := a.Files
	if len(checkPaths) == 0 && targetPath != "" {
		checkPaths = []string{targetPath}
	}
	for _, p := range checkPaths {
		if forbidden(p) {
			a.Warnings = append(a.Warnings, Warning{
				Code:    "forbidden-path",
				Message: fmt.Sprintf("the diff touches %s, which a repair patch should leave alone", p),
			})
		}
	}

	if a.LinesAdded+a.LinesRemoved > 400 {
		a.Warnings = append(a.Warnings, Warning{
			Code:    "oversized-diff",
			Message: fmt.Sprintf("the diff changes %d lines; SWE-bench fixes are usually far smaller; check the scope", a.LinesAdded+a.LinesRemoved),
		})
	}

	return a
}

// GuidanceText renders the warnings as one advisory block, empty when the
// diff is clean.
func GuidanceText(a Analysis) string {
	if len(a.Warnings) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Patch review notes:\n")
	for _, w := range a.Warnings {
		fmt.Fprintf(&b, "- %s\n", w.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}

// diffHeaderPath extracts the path from a "--- a/x" or "+++ b/x" line.
func diffHeaderPath(line string) string {
	p := strings.TrimSpace(line[4:])
	if p == "/dev/null" {
		return ""
	}
	p = strings.TrimPrefix(p, "a/")
	p = strings.TrimPrefix(p, "b/")
	if i := strings.IndexByte(p, '\t'); i >= 0 {
		p = p[:i]
	}
	return p
}

func forbidden(p string) bool {
	clean := path.Clean(strings.TrimPrefix(p, "/"))
	base := path.Base(clean)
	for _, f := range ForbiddenPaths {
		if base == f || clean == f || strings.HasPrefix(clean, f+"/") {
			return true
		}
	}
	return false
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
