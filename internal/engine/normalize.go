package engine

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Output normalisation exists so the loop detectors compare what a command
// did, not the noise around it: ANSI colour, pids, timestamps and durations
// change run to run even when the agent is going in circles.

var (
	ansiRe     = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)
	pidRe      = regexp.MustCompile(`\bpid \d+\b`)
	dateRe     = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	clockRe    = regexp.MustCompile(`\b\d{2}:\d{2}:\d{2}(\.\d+)?\b`)
	durationRe = regexp.MustCompile(`\b\d+(\.\d+)?\s*(s|ms|us|µs|seconds?)\b`)
	addrRe     = regexp.MustCompile(`\b0x[0-9a-fA-F]+\b`)
	tmpRe      = regexp.MustCompile(`/tmp/[\w.\-]+`)
	exitCodeRe = regexp.MustCompile(`Exit code:\s*(-?\d+)`)
)

// NormalizeOutput produces the canonical form used for loop signatures:
// ANSI stripped, lowercased, transient tokens substituted.
func NormalizeOutput(output string) string {
	s := ansiRe.ReplaceAllString(output, "")
	s = strings.ToLower(s)
	s = pidRe.ReplaceAllString(s, "pid <n>")
	s = dateRe.ReplaceAllString(s, "<date>")
	s = clockRe.ReplaceAllString(s, "<time>")
	s = durationRe.ReplaceAllString(s, "<duration>")
	s = addrRe.ReplaceAllString(s, "<addr>")
	s = tmpRe.ReplaceAllString(s, "<tmp>")
	return strings.TrimSpace(s)
}

// ExtractExitCode pulls the runner's "Exit code: N" line out of a command
// output. ok is false when no such line exists.
func ExtractExitCode(output string) (code int, ok bool) {
	m := exitCodeRe.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return code, true
}

// NormalizeCommand canonicalises a shell command for repeat detection:
// whitespace collapsed, nothing else touched: a different flag is a
// different command.
func NormalizeCommand(command string) string {
	return strings.Join(strings.Fields(command), " ")
}

// normalizeStderr reduces command output to the stable part of its error
// stream for the repeated-repeat detector.
func normalizeStderr(output string) string {
	norm := NormalizeOutput(output)
	// Keep only lines that look like errors; if none, keep the tail, which
	// is where runners put their verdict.
	var errLines []string
	lines := strings.Split(norm, "\n")
	for _, l := range lines {
		if strings.Contains(l, "error") || strings.Contains(l, "failed") ||
			strings.Contains(l, "traceback") || strings.Contains(l, "exception") {
			errLines = append(errLines, strings.TrimSpace(l))
		}
	}
	if len(errLines) > 0 {
		return strings.Join(errLines, "\n")
	}
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// outputSuccess is the framework-agnostic success heuristic applied to raw
// tool output when recording an execution.
func outputSuccess(tool, output string) bool {
	if tool == ToolExecuteCommand {
		if code, ok := ExtractExitCode(output); ok {
			return code == 0
		}
	}
	lower := strings.ToLower(output)
	for _, bad := range []string{"error:", "traceback (most recent call last)", "failed", "fatal:", "exception"} {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	return true
}

// paramsSignature canonicalises a parameter map for the repeated-failure
// detector. Large payloads are folded to a stable prefix.
func paramsSignature(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := params[k]
		if len(v) > 256 {
			v = v[:256]
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.Join(strings.Fields(v), " "))
		b.WriteByte(';')
	}
	return b.String()
}
