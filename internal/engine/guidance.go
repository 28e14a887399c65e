package engine

import "fmt"

// Scripted guidance blocks ("jinnang") injected at specific triggers. The
// wording is part of the contract with downstream transcript tooling; keep
// the marker lines stable.

// firstJinnangGuidance fires when the apply_diff streak reaches its limit.
const firstJinnangGuidance = `[Jinnang Triggered] Patch loop detected.

You have produced several patches in a row without verifying anything between
them. Stop patching. Before the next apply_diff:

1. Use the stepwise-reasoning tool to lay out, step by step, why the previous
   patches did not settle the issue.
2. Perform ONE non-patch action that checks reality: re-read the modified
   region, or re-run the failing test, and compare the result with your
   expectation.

Then, and only then, write the next patch.`

// secondApplyDiffGuidance fires once, after exactly the second patch of a task.
const secondApplyDiffGuidance = `Note on your second patch: if the first patch did not behave as expected,
re-read the surrounding code before layering further changes on top of it.
Two patches in the same region without a test run in between usually means
the mental model has drifted from the file contents.`

// firstModificationGuidance fires on the first apply_diff attempted before
// any test has run.
const firstModificationGuidance = `Hold on: you are about to modify code before running any test.

A fix that was never seen failing cannot be seen fixed. First reproduce the
failure with the project's test runner, then patch. This reminder appears
only once; the same apply_diff will be accepted afterwards.`

// gitSwitchBlockReason blocks any branch-switching command.
const gitSwitchBlockReason = `Blocked: Do NOT switch git branches. The task must be solved on the current
checkout; switching branches discards the failing state you are meant to fix.
File restores in the form "git checkout -- <path>" remain available.`

// testFileWriteGuidance warns (without blocking) when write_to_file targets
// a test file.
const testFileWriteGuidance = `Caution: you are writing to a test file. The graded test suite must keep its
meaning; rewriting tests to make them pass does not fix the underlying bug.
Prefer modifying the implementation unless the task is explicitly about the
tests themselves.`

// submitReviewGuidance is the one-shot reminder at the first completion attempt.
const submitReviewGuidance = `Before you finalise: review once more.

1. Inspect the complete diff of every modified file.
2. Re-run the originally failing tests and read the output, not just the exit code.
3. Re-run the surrounding suite to catch regressions.

If all of that is green, submit.`

// budgetIncreaseNotice is emitted at every BudgetStepCalls boundary.
func budgetIncreaseNotice(toolCalls, budget int) string {
	return fmt.Sprintf(
		"Progress note: %d tool calls so far. Reasoning budget for the next turns is %d tokens. "+
			"If you are not measurably closer to a verified fix, simplify the plan.",
		toolCalls, budget)
}

// loopGuidance maps a fired detector to the advice injected with the block.
func loopGuidance(kind LoopKind) string {
	switch kind {
	case LoopOutput, LoopSevereOutput:
		return "Loop detected: the last several tool outputs are practically identical. " +
			"Repeating the same action will keep producing the same output. Change strategy: " +
			"read a different file, run a different test selection, or question the current hypothesis."
	case LoopStagnation:
		return "No tool activity for over five minutes. If you are stuck choosing, take the " +
			"smallest informative action: re-run the failing test and read its output top to bottom."
	case LoopRepeatedFailures:
		return "The same call has now failed three times in a row with the same result. The fourth " +
			"attempt will not differ. Re-read the target file region first; the content has probably " +
			"drifted from what the patch expects."
	case LoopRepeatedCommands:
		return "The same command has produced the same exit code and the same errors three times. " +
			"Re-running it is not a fix. Act on the error text: open the files it names."
	}
	return ""
}
