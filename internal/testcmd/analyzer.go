// Package testcmd classifies agent shell commands and their outputs: whether
// a command runs tests, which kind, how confident the match is, and whether
// the resulting output reports success.
package testcmd

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ChamsBouzaiene/sweguard/internal/repocfg"
)

// Category describes what a test-flavoured command is for.
type Category string

const (
	CategoryF2P         Category = "f2p"         // targeted at the failing tests
	CategoryP2P         Category = "p2p"         // regression sweep matching a repo example
	CategoryDiscovery   Category = "discovery"   // collection / usage, no execution
	CategoryValidation  Category = "validation"  // reserved: post-fix validation runs
	CategoryExploration Category = "exploration" // reserved: probing the test layout
	CategoryUnknown     Category = "unknown"
)

// Analysis is the verdict for one command line.
type Analysis struct {
	Command        string
	IsTestCommand  bool
	Category       Category
	Confidence     float64
	Reasoning      string
	MatchedSegment string
}

// OutputAnalysis is the verdict for one command output.
type OutputAnalysis struct {
	Success   bool
	TestNames []string
}

// Analyzer classifies commands against a repository configuration and keeps
// a bounded per-repository effectiveness history.
type Analyzer struct {
	mu      sync.Mutex
	history map[string][]EffectivenessEntry
	store   *Store // optional persistence; nil keeps everything in memory
	logger  *log.Logger
	now     func() time.Time
}

// NewAnalyzer creates an Analyzer with an in-memory history.
func NewAnalyzer(logger *log.Logger) *Analyzer {
	return &Analyzer{
		history: make(map[string][]EffectivenessEntry),
		logger:  logger,
		now:     time.Now,
	}
}

// WithStore attaches a persistent effectiveness store. Store errors degrade
// to in-memory tracking with a warning.
func (a *Analyzer) WithStore(store *Store) *Analyzer {
	a.store = store
	return a
}

// WithClock overrides the time source, for tests.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// AnalyzeCommand classifies a shell command against a repository config.
// Malformed input never errors: it yields a non-test verdict with reasoning.
func (a *Analyzer) AnalyzeCommand(command string, cfg repocfg.Config) Analysis {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return Analysis{
			Command:   command,
			Category:  CategoryUnknown,
			Reasoning: "empty command",
		}
	}

	segments := splitSegments(trimmed)

	var (
		genericHit  bool
		repoHit     bool
		matchedSeg  string
		allInstalls = true
	)

	for _, seg := range segments {
		if installPattern.MatchString(seg) {
			continue
		}
		allInstalls = false

		// A runner asked for usage or version is not a test run.
		if strings.Contains(seg, "runtests.py") && helpOnlyPattern.MatchString(seg) {
			continue
		}

		segGeneric := matchesGeneric(seg)
		segRepo := matchesRepo(seg, cfg)
		if segGeneric || segRepo {
			if matchedSeg == "" {
				matchedSeg = seg
			}
			genericHit = genericHit || segGeneric
			repoHit = repoHit || segRepo
		}
	}

	if allInstalls {
		return Analysis{
			Command:   command,
			Category:  CategoryUnknown,
			Reasoning: "dependency installation only",
		}
	}
	if !genericHit && !repoHit {
		return Analysis{
			Command:   command,
			Category:  CategoryUnknown,
			Reasoning: "no test runner pattern matched",
		}
	}

	category, why := classify(matchedSeg, cfg, repoHit)
	confidence := score(trimmed, cfg, genericHit, repoHit)

	return Analysis{
		Command:        command,
		IsTestCommand:  true,
		Category:       category,
		Confidence:     confidence,
		Reasoning:      why,
		MatchedSegment: matchedSeg,
	}
}

// splitSegments breaks a compound command on &&, || and ;.
func splitSegments(command string) []string {
	parts := shellSeparators.Split(command, -1)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

func matchesGeneric(segment string) bool {
	for _, re := range genericTestPatterns {
		if re.MatchString(segment) {
			return true
		}
	}
	return false
}

// matchesRepo reports whether a segment uses the repository's own runner or
// mirrors one of its example invocations.
func matchesRepo(segment string, cfg repocfg.Config) bool {
	if cfg.TestRunner != "" && cfg.TestRunner != "auto-detect" &&
		strings.Contains(segment, cfg.TestRunner) {
		return true
	}
	for _, ex := range cfg.Examples {
		if similarCommand(segment, ex) {
			return true
		}
	}
	return false
}

// classify applies the precedence rules: discovery flags first, then repo
// example similarity (p2p), then targeted test selectors (f2p).
func classify(segment string, cfg repocfg.Config, repoHit bool) (Category, string) {
	if discoveryPattern.MatchString(segment) {
		return CategoryDiscovery, "discovery flag present"
	}
	for _, ex := range cfg.Examples {
		if similarCommand(segment, ex) {
			return CategoryP2P, fmt.Sprintf("matches repository example %q", ex)
		}
	}
	if strings.Contains(segment, "::test_") || strings.Contains(segment, "test_") {
		return CategoryF2P, "targets specific test names"
	}
	if repoHit {
		return CategoryUnknown, "repository runner without a recognisable target"
	}
	return CategoryUnknown, "generic test invocation"
}

// similarCommand compares a segment to a configured example invocation.
// Equality after whitespace normalisation counts, as does sharing the runner
// with most of the example's tokens.
func similarCommand(segment, example string) bool {
	normSeg := strings.Join(strings.Fields(segment), " ")
	normEx := strings.Join(strings.Fields(example), " ")
	if normSeg == normEx {
		return true
	}
	if strings.HasPrefix(normSeg, normEx+" ") || strings.HasPrefix(normEx, normSeg+" ") {
		return true
	}

	segTokens := tokenSet(normSeg)
	exTokens := tokenSet(normEx)
	if len(exTokens) == 0 {
		return false
	}
	shared := 0
	for tok := range exTokens {
		if segTokens[tok] {
			shared++
		}
	}
	return float64(shared)/float64(len(exTokens)) >= 0.8
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// score computes the confidence in [0, 1]: a generic base plus a bonus for
// the specificity of the match, plus a nudge when the exact runner appears.
func score(command string, cfg repocfg.Config, genericHit, repoHit bool) float64 {
	confidence := 0.0
	if genericHit {
		confidence += 0.4
	}
	if repoHit {
		confidence += 0.5
	} else if genericHit {
		confidence += 0.2
	}
	if cfg.TestRunner != "" && cfg.TestRunner != "auto-detect" &&
		strings.Contains(command, cfg.TestRunner) {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// AnalyzeOutput inspects raw command output for a pass verdict and collects
// the test names it mentions.
func (a *Analyzer) AnalyzeOutput(output string) OutputAnalysis {
	if strings.TrimSpace(output) == "" {
		return OutputAnalysis{}
	}

	failed := false
	for _, re := range outputFailPatterns {
		if re.MatchString(output) {
			failed = true
			break
		}
	}

	passed := false
	if !failed {
		for _, re := range outputPassPatterns {
			if re.MatchString(output) {
				passed = true
				break
			}
		}
	}

	names := testNamePattern.FindAllString(output, -1)
	seen := make(map[string]bool, len(names))
	unique := names[:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			unique = append(unique, n)
		}
	}

	return OutputAnalysis{Success: passed, TestNames: unique}
}
