package engine

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the stable JSON encoding of a task's policy state. The
// apply_diff streak is deliberately absent: restored sessions start with a
// clean streak so a stale counter cannot block the first patch after resume.
type Snapshot struct {
	Phase          Phase  `json:"phase"`
	InstanceID     string `json:"instance_id,omitempty"`
	RepositoryType string `json:"repository_type,omitempty"`

	ToolCallsTotal         int `json:"tool_calls_total"`
	TestsRunCount          int `json:"tests_run_count"`
	ReadCallsCount         int `json:"read_calls_count"`
	TestCallsCount         int `json:"test_calls_count"`
	ModificationCount      int `json:"modification_count"`
	AttemptCompletionCount int `json:"attempt_completion_count"`

	HasRunTests                    bool `json:"has_run_tests"`
	TestsPassedAfterModify         bool `json:"tests_passed_after_modify"`
	FirstModificationGuidanceShown bool `json:"first_modification_guidance_shown"`
	SecondApplyDiffShown           bool `json:"second_apply_diff_shown"`
	SubmitReviewShown              bool `json:"submit_review_shown"`
	ApplyDiffTotal                 int  `json:"apply_diff_total"`

	ModifiedFiles []string         `json:"modified_files"`
	Exploration   ExplorationFlags `json:"exploration"`
	Reasoning     ReasoningConfig  `json:"reasoning_config"`
}

// Snapshot captures the current state for persistence.
func (i *Interceptor) Snapshot() Snapshot {
	sm := i.sm
	return Snapshot{
		Phase:                          sm.phase,
		InstanceID:                     sm.instanceID,
		RepositoryType:                 sm.repositoryType,
		ToolCallsTotal:                 sm.toolCallsTotal,
		TestsRunCount:                  sm.testsRunCount,
		ReadCallsCount:                 sm.readCallsCount,
		TestCallsCount:                 sm.testCallsCount,
		ModificationCount:              sm.modificationCount,
		AttemptCompletionCount:         sm.attemptCompletionCount,
		HasRunTests:                    sm.hasRunTests,
		TestsPassedAfterModify:         sm.testsPassedAfterModify,
		FirstModificationGuidanceShown: sm.firstModificationGuidanceShown,
		SecondApplyDiffShown:           i.secondApplyDiffShown,
		SubmitReviewShown:              i.submitReviewShown,
		ApplyDiffTotal:                 i.applyDiffTotal,
		ModifiedFiles:                  sm.ModifiedFiles(),
		Exploration:                    sm.exploration,
		Reasoning:                      sm.reasoning,
	}
}

// MarshalState encodes the snapshot as JSON.
func (i *Interceptor) MarshalState() ([]byte, error) {
	data, err := json.MarshalIndent(i.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal policy state: %w", err)
	}
	return data, nil
}

// Restore applies a snapshot. Histories are not part of the encoding, and
// the apply_diff streak restarts at zero.
func (i *Interceptor) Restore(snap Snapshot) {
	sm := i.sm
	sm.phase = snap.Phase
	if snap.Phase == "" {
		sm.phase = PhaseAnalyze
	}
	sm.instanceID = snap.InstanceID
	sm.repositoryType = snap.RepositoryType
	sm.toolCallsTotal = snap.ToolCallsTotal
	sm.testsRunCount = snap.TestsRunCount
	sm.readCallsCount = snap.ReadCallsCount
	sm.testCallsCount = snap.TestCallsCount
	sm.modificationCount = snap.ModificationCount
	sm.attemptCompletionCount = snap.AttemptCompletionCount
	sm.hasRunTests = snap.HasRunTests
	sm.testsPassedAfterModify = snap.TestsPassedAfterModify
	sm.firstModificationGuidanceShown = snap.FirstModificationGuidanceShown
	sm.modifiedFiles = nil
	sm.modifiedFilesSet = make(map[string]bool)
	for _, f := range snap.ModifiedFiles {
		sm.addModifiedFile(f)
	}
	sm.exploration = snap.Exploration
	sm.updateReasoningConfig()

	i.secondApplyDiffShown = snap.SecondApplyDiffShown
	i.submitReviewShown = snap.SubmitReviewShown
	i.applyDiffTotal = snap.ApplyDiffTotal
	i.consecutiveApplyDiff = 0
	i.execHistory = nil
	i.outputHistory = nil
}

// UnmarshalState decodes and applies a snapshot produced by MarshalState.
func (i *Interceptor) UnmarshalState(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to unmarshal policy state: %w", err)
	}
	i.Restore(snap)
	return nil
}
