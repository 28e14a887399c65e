package engine

import (
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/ChamsBouzaiene/sweguard/internal/patch"
	"github.com/ChamsBouzaiene/sweguard/internal/pathmap"
	"github.com/ChamsBouzaiene/sweguard/internal/repocfg"
	"github.com/ChamsBouzaiene/sweguard/internal/testcmd"
)

// MaxConsecutiveApplyDiff is the patch streak length that triggers the
// first-jinnang intervention.
const MaxConsecutiveApplyDiff = 3

// Decision is the interceptor's verdict for one proposed tool call.
type Decision struct {
	Allowed  bool
	Reason   string   // set when blocked
	Guidance string   // non-blocking advice to append to the tool result
	Loop     LoopKind // which loop detector fired, if any
}

func allow() Decision               { return Decision{Allowed: true} }
func allowWith(g string) Decision   { return Decision{Allowed: true, Guidance: g} }
func block(reason string) Decision  { return Decision{Reason: reason} }
func blockLoop(k LoopKind) Decision { return Decision{Reason: loopGuidance(k), Loop: k} }

// testFilePatterns flag writes into test files, per language family.
var testFilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(^|/)test_[^/]+\.py$`),
	regexp.MustCompile(`_test\.py$`),
	regexp.MustCompile(`(^|/)tests?/[^/]+\.py$`),
	regexp.MustCompile(`_test\.go$`),
	regexp.MustCompile(`\.test\.(js|jsx|ts|tsx)$`),
	regexp.MustCompile(`\.spec\.(js|jsx|ts|tsx)$`),
	regexp.MustCompile(`(^|/)Test[A-Z][^/]*\.java$`),
}

// gitCheckoutRe matches git checkout invocations; the file-restore form with
// "--" is the only permitted one.
var gitCheckoutRe = regexp.MustCompile(`\bgit\s+checkout\b`)

// Interceptor validates every proposed tool call for one task, records every
// execution, and injects guidance. It holds the task's StateMachine.
type Interceptor struct {
	sm       *StateMachine
	mapper   *pathmap.Mapper
	analyzer *testcmd.Analyzer
	repoCfg  repocfg.Config
	logger   *log.Logger
	now      func() time.Time

	execHistory   []ToolExecutionRecord
	outputHistory []OutputRecord
	lastToolTime  time.Time

	consecutiveApplyDiff int
	applyDiffTotal       int

	secondApplyDiffShown bool
	submitReviewShown    bool
}

// NewInterceptor wires an interceptor to its state machine. mapper and
// analyzer may be nil, in which case path mapping is skipped and command
// analysis degrades to the built-in heuristics.
func NewInterceptor(sm *StateMachine, mapper *pathmap.Mapper, analyzer *testcmd.Analyzer, repoCfg repocfg.Config, logger *log.Logger) *Interceptor {
	return &Interceptor{
		sm:       sm,
		mapper:   mapper,
		analyzer: analyzer,
		repoCfg:  repoCfg,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (i *Interceptor) WithClock(now func() time.Time) *Interceptor {
	i.now = now
	return i
}

// StateMachine exposes the owned state machine.
func (i *Interceptor) StateMachine() *StateMachine { return i.sm }

// ValidateToolUse decides whether a proposed call may proceed. The check
// order is contractual: hard bans, patch-streak limit, the
// attempt_completion shortcut, the write_to_file rule, loop detection, and
// finally the phase gate.
func (i *Interceptor) ValidateToolUse(tool string, params map[string]string) Decision {
	tool = NormalizeToolName(tool)
	params = NormalizeParams(params)

	if reason := validateParamShape(tool, params); reason != "" {
		return block(reason)
	}

	// 1. Hard bans.
	if tool == ToolExecuteCommand {
		if reason := checkGitBans(params[ParamCommand]); reason != "" {
			return block(reason)
		}
	}

	// 2. Patch-streak limit. Emitting the jinnang resets the streak so the
	// next patch goes through.
	if tool == ToolApplyDiff && i.consecutiveApplyDiff >= MaxConsecutiveApplyDiff {
		i.consecutiveApplyDiff = 0
		return block(firstJinnangGuidance)
	}

	// 3. attempt_completion is exempt from loop detection; only the phase
	// rule can block it.
	if tool == ToolAttemptCompletion {
		if !i.sm.IsToolAllowed(tool) {
			return block(i.sm.GetBlockReason(tool))
		}
		if !i.submitReviewShown {
			i.submitReviewShown = true
			return allowWith(submitReviewGuidance)
		}
		return allow()
	}

	// 4. write_to_file: never during ANALYZE; guidance when aimed at tests.
	var guidance string
	if tool == ToolWriteToFile {
		if i.sm.Phase() == PhaseAnalyze {
			return block(i.sm.GetBlockReason(tool))
		}
		if isTestFilePath(targetPath(params)) {
			guidance = testFileWriteGuidance
		}
	}

	// 5. Loop detection.
	if kind := i.detectLoop(i.now()); kind != LoopNone {
		if kind == LoopStagnation {
			// Stalling is not the call's fault; nudge and let it through.
			return allowWith(loopGuidance(kind))
		}
		return blockLoop(kind)
	}

	// 6. Phase gate.
	if !i.sm.IsToolAllowed(tool) {
		d := block(i.sm.GetBlockReason(tool))
		if i.sm.ShouldShowFirstModificationGuidance(tool) {
			i.sm.MarkFirstModificationGuidanceShown()
			d.Guidance = firstModificationGuidance
		}
		return d
	}

	// Static patch review: advisory only, never a block.
	if tool == ToolApplyDiff {
		analysis := patch.Analyze(targetPath(params), params[ParamDiff])
		if g := patch.GuidanceText(analysis); g != "" {
			guidance = g
		}
	}

	if guidance != "" {
		return allowWith(guidance)
	}
	return allow()
}

// checkGitBans rejects branch switching. "git checkout -- <path>" (the file
// restore form) stays allowed.
func checkGitBans(command string) string {
	if command == "" {
		return ""
	}
	if strings.Contains(command, "git switch") {
		return gitSwitchBlockReason
	}
	if gitCheckoutRe.MatchString(command) && !strings.Contains(command, " -- ") {
		return gitSwitchBlockReason
	}
	return ""
}

func isTestFilePath(path string) bool {
	if path == "" {
		return false
	}
	for _, re := range testFilePatterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// ApplyPathMappingToParams rewrites environment paths in the call's
// parameters before the call is handed back to the runner. Pure: the input
// map is left untouched.
func (i *Interceptor) ApplyPathMappingToParams(tool string, params map[string]string) map[string]string {
	params = NormalizeParams(params)
	if i.mapper == nil {
		return params
	}

	out := make(map[string]string, len(params))
	for k, v := range params {
		switch k {
		case ParamPath, ParamFilePath, ParamCwd:
			out[k] = i.mapper.MapSourceToTarget(v)
		case ParamArgs:
			out[k] = i.mapper.MapArgsSourceToTarget(v)
		case ParamCommand:
			out[k] = i.mapper.MapCommandSourceToTarget(v)
		default:
			out[k] = v
		}
	}
	return out
}

// RecordToolExecution ingests the outcome of an executed call: it updates
// histories and streaks, forwards to the state machine, and returns any
// guidance to append to the tool result.
func (i *Interceptor) RecordToolExecution(tool string, params map[string]string, output string) string {
	tool = NormalizeToolName(tool)
	params = NormalizeParams(params)
	now := i.now()

	normalized := NormalizeOutput(output)
	success := outputSuccess(tool, output)
	if tool == ToolExecuteCommand && i.analyzer != nil {
		if a := i.analyzer.AnalyzeOutput(output); a.Success {
			success = true
		}
		cmd := i.analyzer.AnalyzeCommand(params[ParamCommand], i.repoCfg)
		if cmd.IsTestCommand {
			i.analyzer.RecordEffectiveness(i.repoCfg.Repo, cmd, success)
			if cmd.Category == testcmd.CategoryF2P {
				i.sm.MarkTargetTestsLocated()
			}
		}
	}

	rec := ToolExecutionRecord{
		ToolName:         tool,
		Params:           params,
		NormalizedOutput: normalized,
		Timestamp:        now,
		Success:          success,
	}
	if tool == ToolExecuteCommand {
		rec.NormalizedCommand = NormalizeCommand(params[ParamCommand])
		rec.ExitCode, rec.HasExitCode = ExtractExitCode(output)
		rec.NormalizedStderr = normalizeStderr(output)
	}

	// Streak bookkeeping. The streak only resets on the events listed in
	// the serialisation contract, not on unrelated tool calls.
	switch {
	case tool == ToolApplyDiff:
		i.applyDiffTotal++
		i.consecutiveApplyDiff++
	case IsStepwiseReasoningCall(tool, params):
		i.consecutiveApplyDiff = 0
	}

	i.sm.RecordToolUse(tool, params, output, success)

	var guidance []string
	if tool == ToolApplyDiff && i.applyDiffTotal == 2 && !i.secondApplyDiffShown {
		i.secondApplyDiffShown = true
		guidance = append(guidance, secondApplyDiffGuidance)
	}
	if total := i.sm.ToolCallsTotal(); total > 0 && total%BudgetStepCalls == 0 {
		guidance = append(guidance, budgetIncreaseNotice(total, i.sm.ReasoningConfig().Budget))
	}

	rec.Guidance = strings.Join(guidance, "\n\n")
	i.execHistory = pushExecution(i.execHistory, rec)
	i.outputHistory = pushOutput(i.outputHistory, OutputRecord{Signature: normalized, Timestamp: now})
	i.lastToolTime = now

	return rec.Guidance
}

// ExecutionHistory returns a copy of the bounded execution history.
func (i *Interceptor) ExecutionHistory() []ToolExecutionRecord {
	return append([]ToolExecutionRecord(nil), i.execHistory...)
}

// Reset restores the interceptor (and its state machine) to the start of
// task, keeping configuration.
func (i *Interceptor) Reset() {
	i.sm.Reset()
	i.execHistory = nil
	i.outputHistory = nil
	i.lastToolTime = time.Time{}
	i.consecutiveApplyDiff = 0
	i.applyDiffTotal = 0
	i.secondApplyDiffShown = false
	i.submitReviewShown = false
}
