package testcmd

import "regexp"

// Framework-agnostic test command patterns. Applied per shell segment after
// repo-specific matching has had its chance.
var genericTestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(^|\s)pytest(\s|$)`),
	regexp.MustCompile(`(^|\s)py\.test(\s|$)`),
	regexp.MustCompile(`python\d*\s+-m\s+pytest`),
	regexp.MustCompile(`python\d*\s+-m\s+unittest`),
	regexp.MustCompile(`runtests\.py`),
	regexp.MustCompile(`(^|\s)tox(\s|$)`),
	regexp.MustCompile(`(^|\s)nox(\s|$)`),
	regexp.MustCompile(`manage\.py\s+test`),
	regexp.MustCompile(`(^|\s)make\s+test`),
	regexp.MustCompile(`(^|\s)bin/test(\s|$)`),
	regexp.MustCompile(`python\d*\s+setup\.py\s+test`),
	regexp.MustCompile(`(^|\s)unittest(\s|$)`),
}

// Discovery flags turn a test command into collection, not execution.
var discoveryPattern = regexp.MustCompile(`--collect-only|--co(\s|$)|--help(\s|$)|\s-h(\s|$)|--list-tests`)

// helpOnlyPattern excludes runner invocations asking for usage or version
// from the test-command set entirely.
var helpOnlyPattern = regexp.MustCompile(`--help(\s|$)|\s-h(\s|$)|--version(\s|$)`)

// installPattern matches pure dependency installation.
var installPattern = regexp.MustCompile(`^\s*(pip\d*|pip3|python\d*\s+-m\s+pip)\s+install\b`)

// shellSeparators splits a compound command line into its segments.
var shellSeparators = regexp.MustCompile(`&&|\|\||;`)

// Output classification patterns. Success requires a pass signal and the
// absence of a failure signal.
var (
	outputPassPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b\d+ passed\b`),
		regexp.MustCompile(`\bOK\b`),
		regexp.MustCompile(`(?i)\b0 failed\b`),
		regexp.MustCompile(`(?i)all tests passed`),
		regexp.MustCompile(`(?i)\bpassed\b`),
	}
	outputFailPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bFAILED\b`),
		regexp.MustCompile(`\bERROR\b`),
		regexp.MustCompile(`(?i)\b[1-9]\d* failed\b`),
		regexp.MustCompile(`(?i)\b[1-9]\d* error(s)?\b`),
		regexp.MustCompile(`Traceback \(most recent call last\)`),
	}
)

// testNamePattern extracts individual test identifiers from runner output,
// e.g. "tests/test_urls.py::test_resolve", or "test_reverse" out of
// "test_reverse (urlpatterns.Tests)".
var testNamePattern = regexp.MustCompile(`[\w/.\-]+::[\w\[\]\-.:]+|\btest_\w+\b`)
