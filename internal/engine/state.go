package engine

import (
	"fmt"
	"log"
	"strings"
)

// ExplorationFlags are advisory signals about how much of the repository the
// agent has looked at. They feed the exploration strategy and the guidance
// templates; they never gate phase transitions.
type ExplorationFlags struct {
	ProjectExplored       bool `json:"project_explored"`
	ReadmeRead            bool `json:"readme_read"`
	TestStructureExplored bool `json:"test_structure_explored"`
	TargetTestsLocated    bool `json:"target_tests_located"`
}

// StateMachine owns the workflow phase and every counter derived from the
// observed tool stream. One instance per task; mutation happens only through
// RecordToolUse, the Mark* latches, and the explicit Force/Reset escape
// hatches.
type StateMachine struct {
	phase          Phase
	instanceID     string
	repositoryType string

	toolCallsTotal         int
	testsRunCount          int
	readCallsCount         int
	testCallsCount         int // execute_command calls after the first modification, plus one for a test run before it
	modificationCount      int
	attemptCompletionCount int

	hasRunTests                    bool
	testsPassedAfterModify         bool
	firstModificationGuidanceShown bool

	modifiedFiles    []string
	modifiedFilesSet map[string]bool

	exploration ExplorationFlags
	reasoning   ReasoningConfig

	logger *log.Logger
}

// NewStateMachine creates a task's state machine in ANALYZE.
func NewStateMachine(instanceID, repositoryType string, logger *log.Logger) *StateMachine {
	sm := &StateMachine{
		phase:            PhaseAnalyze,
		instanceID:       instanceID,
		repositoryType:   repositoryType,
		modifiedFilesSet: make(map[string]bool),
		logger:           logger,
	}
	sm.updateReasoningConfig()
	return sm
}

// Phase returns the current workflow phase.
func (sm *StateMachine) Phase() Phase { return sm.phase }

// InstanceID returns the task's instance identifier.
func (sm *StateMachine) InstanceID() string { return sm.instanceID }

// ToolCallsTotal returns the number of recorded tool calls.
func (sm *StateMachine) ToolCallsTotal() int { return sm.toolCallsTotal }

// ModificationCount returns the number of recorded file modifications.
func (sm *StateMachine) ModificationCount() int { return sm.modificationCount }

// TestCallsCount returns how many commands ran after the first modification,
// plus one when a test run preceded that modification.
func (sm *StateMachine) TestCallsCount() int { return sm.testCallsCount }

// HasRunTests reports whether any command execution has been observed.
func (sm *StateMachine) HasRunTests() bool { return sm.hasRunTests }

// ModifiedFiles returns the insertion-ordered set of modified paths.
func (sm *StateMachine) ModifiedFiles() []string {
	return append([]string(nil), sm.modifiedFiles...)
}

// Exploration returns the advisory exploration flags.
func (sm *StateMachine) Exploration() ExplorationFlags { return sm.exploration }

// ReasoningConfig returns the current effort level and token budget.
func (sm *StateMachine) ReasoningConfig() ReasoningConfig { return sm.reasoning }

// IsToolAllowed applies the per-phase allow-list. apply_diff gets one
// exception in ANALYZE: it stays blocked only until the first-modification
// guidance has fired, or tests have run, or a modification already landed.
func (sm *StateMachine) IsToolAllowed(tool string) bool {
	if tool == ToolApplyDiff && sm.phase == PhaseAnalyze {
		return sm.modificationCount > 0 || sm.hasRunTests || sm.firstModificationGuidanceShown
	}
	return phaseAllowedTools[sm.phase][tool]
}

// GetBlockReason explains why a tool is not allowed right now; empty when
// the tool is permitted.
func (sm *StateMachine) GetBlockReason(tool string) string {
	if sm.IsToolAllowed(tool) {
		return ""
	}

	if tool == ToolAttemptCompletion {
		switch sm.phase {
		case PhaseAnalyze:
			return "attempt_completion is not available during ANALYZE. " +
				"Reproduce the failure with the project's test runner and make your fix first."
		case PhaseModify:
			remaining := VerifyThresholdCommands - sm.testCallsCount
			if remaining < 0 {
				remaining = 0
			}
			return fmt.Sprintf(
				"attempt_completion is not available yet: run %d more test command(s) after your modification to enter VERIFY.\n\n"+
					"Before completing, work through this review:\n"+
					"1. Inspect the diff of every file you modified.\n"+
					"2. Review the change for behaviour, edge cases, and regressions.\n"+
					"3. Run the originally failing tests (FAIL_TO_PASS), then the surrounding suite (PASS_TO_PASS).\n"+
					"4. Read the full test logs, not just the exit codes.",
				remaining)
		}
	}

	if tool == ToolApplyDiff && sm.phase == PhaseAnalyze {
		return "apply_diff is blocked: no test has been executed yet. " +
			"Run the failing tests once so the fix can be verified against a real failure."
	}
	if IsModificationTool(tool) && sm.phase == PhaseAnalyze {
		return fmt.Sprintf("%s is not available during ANALYZE; investigate and reproduce the failure first.", tool)
	}

	return fmt.Sprintf("%s is not available in phase %s.", tool, sm.phase)
}

// CanTransitionTo exposes the transition gate without mutating anything.
func (sm *StateMachine) CanTransitionTo(p Phase) bool {
	switch p {
	case PhaseAnalyze:
		return true
	case PhaseModify:
		return sm.phase == PhaseAnalyze && sm.hasRunTests
	case PhaseVerify:
		return sm.phase == PhaseModify && sm.modificationCount >= 1
	}
	return false
}

// ForcePhase sets the phase without re-checking invariants. It exists for
// recovery workflows; violations are logged, not rejected.
func (sm *StateMachine) ForcePhase(p Phase) {
	if !sm.CanTransitionTo(p) && sm.logger != nil {
		sm.logger.Printf("engine: forced transition %s -> %s bypasses invariants", sm.phase, p)
	}
	sm.phase = p
	sm.updateReasoningConfig()
}

// ShouldShowFirstModificationGuidance reports whether the one-shot guidance
// for a premature apply_diff should fire: first attempt, in ANALYZE, before
// any test run.
func (sm *StateMachine) ShouldShowFirstModificationGuidance(tool string) bool {
	return tool == ToolApplyDiff &&
		sm.phase == PhaseAnalyze &&
		!sm.hasRunTests &&
		!sm.firstModificationGuidanceShown
}

// MarkFirstModificationGuidanceShown flips the one-shot latch.
func (sm *StateMachine) MarkFirstModificationGuidanceShown() {
	sm.firstModificationGuidanceShown = true
}

// MarkTargetTestsLocated records that a command targeting the failing tests
// has been observed.
func (sm *StateMachine) MarkTargetTestsLocated() {
	sm.exploration.TargetTestsLocated = true
}

// RecordToolUse updates counters and flags from one executed tool call,
// drives phase transitions, and recomputes the reasoning budget. success is
// the interceptor's output-pattern verdict for the call.
func (sm *StateMachine) RecordToolUse(tool string, params map[string]string, output string, success bool) {
	sm.toolCallsTotal++

	switch {
	case IsReadTool(tool):
		sm.readCallsCount++
		sm.updateExploration(tool, params)

	case tool == ToolExecuteCommand:
		sm.testsRunCount++
		sm.hasRunTests = true
		if sm.modificationCount >= 1 {
			sm.testCallsCount++
			if success {
				sm.testsPassedAfterModify = true
			}
		}
		sm.maybeTransition()

	case IsModificationTool(tool):
		sm.modificationCount++
		if sm.modificationCount == 1 && sm.hasRunTests {
			// The reproduced baseline run counts toward verification, so a
			// task that tested before patching needs five further runs, not
			// six, to reach VERIFY.
			sm.testCallsCount++
		}
		if p := targetPath(params); p != "" {
			sm.addModifiedFile(p)
		}

	case tool == ToolAttemptCompletion:
		sm.attemptCompletionCount++
	}

	sm.updateReasoningConfig()
}

// maybeTransition advances the phase when the observed activity crosses a
// gate. VERIFY is terminal for automatic transitions.
func (sm *StateMachine) maybeTransition() {
	switch sm.phase {
	case PhaseAnalyze:
		// Any observed execution moves to MODIFY; the runner only passes
		// test-flavoured commands through the interceptor.
		sm.transition(PhaseModify)
	case PhaseModify:
		if sm.modificationCount >= 1 && sm.testCallsCount >= VerifyThresholdCommands {
			sm.transition(PhaseVerify)
		}
	}
}

func (sm *StateMachine) transition(p Phase) {
	if sm.phase == p {
		return
	}
	if sm.logger != nil {
		sm.logger.Printf("engine: phase %s -> %s (tools=%d mods=%d tests=%d)",
			sm.phase, p, sm.toolCallsTotal, sm.modificationCount, sm.testCallsCount)
	}
	sm.phase = p
	sm.updateReasoningConfig()
}

func (sm *StateMachine) addModifiedFile(path string) {
	if sm.modifiedFilesSet[path] {
		return
	}
	sm.modifiedFilesSet[path] = true
	sm.modifiedFiles = append(sm.modifiedFiles, path)
}

// updateExploration derives the advisory flags from read-tool activity.
func (sm *StateMachine) updateExploration(tool string, params map[string]string) {
	switch tool {
	case ToolListFiles:
		sm.exploration.ProjectExplored = true
		if pathMentionsTests(params[ParamPath]) {
			sm.exploration.TestStructureExplored = true
		}
	case ToolReadFile:
		p := strings.ToLower(targetPath(params))
		if strings.Contains(p, "readme") {
			sm.exploration.ReadmeRead = true
		}
		if pathMentionsTests(p) {
			sm.exploration.TargetTestsLocated = true
		}
	case ToolSearchFiles:
		if pathMentionsTests(params[ParamPath]) || strings.Contains(strings.ToLower(params[ParamRegex]), "test") {
			sm.exploration.TestStructureExplored = true
		}
	}
}

func pathMentionsTests(p string) bool {
	p = strings.ToLower(p)
	return strings.Contains(p, "test")
}

// updateReasoningConfig recomputes the effective budget: the phase ceiling
// scaled by tool-call volume. Early turns get half budget; the scale reaches
// 1.0 at BudgetStepCalls calls.
func (sm *StateMachine) updateReasoningConfig() {
	scale := 0.5 + 0.5*float64(sm.toolCallsTotal/BudgetStepCalls)
	if scale > 1.0 {
		scale = 1.0
	}
	sm.reasoning = ReasoningConfig{
		Effort: phaseEffort(sm.phase),
		Budget: int(float64(phaseBudgetMax(sm.phase)) * scale),
	}
}

// Reset restores the start-of-task state. The instance and repository
// identity survive; everything else returns to zero.
func (sm *StateMachine) Reset() {
	id, repo, logger := sm.instanceID, sm.repositoryType, sm.logger
	*sm = StateMachine{
		phase:            PhaseAnalyze,
		instanceID:       id,
		repositoryType:   repo,
		modifiedFilesSet: make(map[string]bool),
		logger:           logger,
	}
	sm.updateReasoningConfig()
}

// ProgressSummary renders the counters for embedding in a condensation
// summary prompt.
func (sm *StateMachine) ProgressSummary() string {
	return fmt.Sprintf(
		"phase=%s tool_calls=%d reads=%d test_runs=%d modifications=%d post_modify_tests=%d modified_files=%s",
		sm.phase, sm.toolCallsTotal, sm.readCallsCount, sm.testsRunCount,
		sm.modificationCount, sm.testCallsCount, strings.Join(sm.modifiedFiles, ","))
}
