package engine

import "time"

// Loop detection thresholds.
const (
	// StagnationThreshold is how long without a recorded tool call counts
	// as the agent having stalled.
	StagnationThreshold = 5 * time.Minute

	outputLoopWindow       = 10
	outputLoopMaxDistinct  = 2
	outputLoopMinSignature = 80

	severeLoopWindow       = 12
	severeLoopMinSignature = 200

	repeatThreshold = 3
)

// LoopKind names which detector fired.
type LoopKind string

const (
	LoopNone             LoopKind = ""
	LoopOutput           LoopKind = "output_loop"
	LoopSevereOutput     LoopKind = "severe_output_loop"
	LoopStagnation       LoopKind = "stagnation"
	LoopRepeatedFailures LoopKind = "repeated_failures"
	LoopRepeatedCommands LoopKind = "repeated_commands"
)

// detectLoop consults the five detectors in priority order and returns the
// first that fires.
func (i *Interceptor) detectLoop(now time.Time) LoopKind {
	if i.detectOutputLoop() {
		return LoopOutput
	}
	if i.sm.Phase() == PhaseVerify && i.detectSevereOutputLoop() {
		return LoopSevereOutput
	}
	if i.detectStagnation(now) {
		return LoopStagnation
	}
	if i.detectRepeatedFailures() {
		return LoopRepeatedFailures
	}
	if i.detectRepeatedCommands() {
		return LoopRepeatedCommands
	}
	return LoopNone
}

// detectOutputLoop: the last ten output signatures collapse to at most two
// distinct values, each long enough to be a real output rather than an echo.
func (i *Interceptor) detectOutputLoop() bool {
	if len(i.outputHistory) < outputLoopWindow {
		return false
	}
	window := i.outputHistory[len(i.outputHistory)-outputLoopWindow:]
	distinct := make(map[string]bool, outputLoopMaxDistinct+1)
	for _, rec := range window {
		if len(rec.Signature) < outputLoopMinSignature {
			return false
		}
		distinct[rec.Signature] = true
		if len(distinct) > outputLoopMaxDistinct {
			return false
		}
	}
	return true
}

// detectSevereOutputLoop is the VERIFY-only variant: a longer window, longer
// signatures, and full collapse to a single value. VERIFY legitimately
// repeats test runs, so only total repetition counts there.
func (i *Interceptor) detectSevereOutputLoop() bool {
	if len(i.outputHistory) < severeLoopWindow {
		return false
	}
	window := i.outputHistory[len(i.outputHistory)-severeLoopWindow:]
	distinct := make(map[string]bool, 2)
	for _, rec := range window {
		if len(rec.Signature) < severeLoopMinSignature {
			return false
		}
		distinct[rec.Signature] = true
		if len(distinct) > 1 {
			return false
		}
	}
	return true
}

// detectStagnation: wall-clock silence since the last recorded call.
func (i *Interceptor) detectStagnation(now time.Time) bool {
	if i.lastToolTime.IsZero() {
		return false
	}
	return now.Sub(i.lastToolTime) > StagnationThreshold
}

// detectRepeatedFailures: the last three records share tool and normalised
// parameter/output signature and all failed.
func (i *Interceptor) detectRepeatedFailures() bool {
	if len(i.execHistory) < repeatThreshold {
		return false
	}
	window := i.execHistory[len(i.execHistory)-repeatThreshold:]
	first := window[0]
	firstSig := paramsSignature(first.Params) + "|" + first.NormalizedOutput
	for _, rec := range window {
		if rec.Success {
			return false
		}
		if rec.ToolName != first.ToolName {
			return false
		}
		if paramsSignature(rec.Params)+"|"+rec.NormalizedOutput != firstSig {
			return false
		}
	}
	return true
}

// detectRepeatedCommands: three consecutive execute_command records with the
// same normalised command, exit code, and normalised stderr. A different
// exit code means progress and does not count.
func (i *Interceptor) detectRepeatedCommands() bool {
	if len(i.execHistory) < repeatThreshold {
		return false
	}
	window := i.execHistory[len(i.execHistory)-repeatThreshold:]
	first := window[0]
	if first.ToolName != ToolExecuteCommand {
		return false
	}
	for _, rec := range window {
		if rec.ToolName != ToolExecuteCommand {
			return false
		}
		if rec.NormalizedCommand != first.NormalizedCommand {
			return false
		}
		if rec.HasExitCode != first.HasExitCode || rec.ExitCode != first.ExitCode {
			return false
		}
		if rec.NormalizedStderr != first.NormalizedStderr {
			return false
		}
	}
	return true
}
