// Package engine owns the workflow state machine and the tool interceptor:
// the per-task core that decides whether each proposed tool call is allowed,
// rewrites its parameters across the environment boundary, and injects
// guidance when the agent loops or rushes.
package engine

// Phase is the stage of the repair workflow.
type Phase string

const (
	// PhaseAnalyze is the initial phase: read, search, reproduce.
	PhaseAnalyze Phase = "ANALYZE"
	// PhaseModify is entered after the first command execution.
	PhaseModify Phase = "MODIFY"
	// PhaseVerify is entered after enough post-modification test commands;
	// only forced transitions leave it.
	PhaseVerify Phase = "VERIFY"
)

// VerifyThresholdCommands is how many counted execute_command calls MODIFY
// needs before it advances to VERIFY. Calls after the first modification
// count, and so does one test run made before it (see
// StateMachine.RecordToolUse).
const VerifyThresholdCommands = 6

// phaseAllowedTools is the per-phase tool allow-list. MODIFY extends
// ANALYZE, VERIFY extends MODIFY.
var phaseAllowedTools = map[Phase]map[string]bool{
	PhaseAnalyze: {
		ToolReadFile:          true,
		ToolListFiles:         true,
		ToolSearchFiles:       true,
		ToolExecuteCommand:    true,
		ToolUseMCPTool:        true,
		ToolAccessMCPResource: true,
	},
	PhaseModify: {
		ToolReadFile:          true,
		ToolListFiles:         true,
		ToolSearchFiles:       true,
		ToolExecuteCommand:    true,
		ToolUseMCPTool:        true,
		ToolAccessMCPResource: true,
		ToolApplyDiff:         true,
		ToolWriteToFile:       true,
		ToolSearchAndReplace:  true,
		ToolSearchReplace:     true,
	},
	PhaseVerify: {
		ToolReadFile:          true,
		ToolListFiles:         true,
		ToolSearchFiles:       true,
		ToolExecuteCommand:    true,
		ToolUseMCPTool:        true,
		ToolAccessMCPResource: true,
		ToolApplyDiff:         true,
		ToolWriteToFile:       true,
		ToolSearchAndReplace:  true,
		ToolSearchReplace:     true,
		ToolAttemptCompletion: true,
	},
}

// ReasoningEffort is the hint passed to the LLM for chain-of-thought depth.
type ReasoningEffort string

const (
	EffortMinimal ReasoningEffort = "minimal"
	EffortLow     ReasoningEffort = "low"
	EffortMedium  ReasoningEffort = "medium"
	EffortHigh    ReasoningEffort = "high"
	EffortDisable ReasoningEffort = "disable"
)

// ReasoningConfig is the per-turn reasoning hint: an effort level and a
// token budget.
type ReasoningConfig struct {
	Effort ReasoningEffort `json:"effort"`
	Budget int             `json:"budget"`
}

// Per-phase reasoning ceilings. The effective budget scales with the total
// tool-call count, see StateMachine.updateReasoningConfig.
const (
	budgetMaxAnalyze = 16384
	budgetMaxModify  = 8192
	budgetMaxVerify  = 16384

	// BudgetStepCalls is the tool-call interval at which the scale steps.
	BudgetStepCalls = 50
)

func phaseBudgetMax(p Phase) int {
	switch p {
	case PhaseModify:
		return budgetMaxModify
	case PhaseVerify:
		return budgetMaxVerify
	default:
		return budgetMaxAnalyze
	}
}

func phaseEffort(p Phase) ReasoningEffort {
	switch p {
	case PhaseModify:
		return EffortMedium
	default:
		return EffortHigh
	}
}
