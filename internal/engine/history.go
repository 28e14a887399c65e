package engine

import "time"

const (
	// MaxHistorySize bounds the execution history.
	MaxHistorySize = 50
	// MaxOutputHistorySize bounds the output-signature history.
	MaxOutputHistorySize = 20
)

// ToolExecutionRecord is one executed tool call as the interceptor saw it.
type ToolExecutionRecord struct {
	ToolName         string
	Params           map[string]string
	NormalizedOutput string
	Timestamp        time.Time
	Success          bool
	Guidance         string // guidance emitted with this record, if any

	// Derived fields for the execute_command repeat detector.
	NormalizedCommand string
	ExitCode          int
	HasExitCode       bool
	NormalizedStderr  string
}

// OutputRecord is one output signature for the output-loop detectors.
type OutputRecord struct {
	Signature string
	Timestamp time.Time
}

// pushExecution appends with FIFO eviction at MaxHistorySize.
func pushExecution(history []ToolExecutionRecord, rec ToolExecutionRecord) []ToolExecutionRecord {
	history = append(history, rec)
	if len(history) > MaxHistorySize {
		history = history[len(history)-MaxHistorySize:]
	}
	return history
}

// pushOutput appends with FIFO eviction at MaxOutputHistorySize.
func pushOutput(history []OutputRecord, rec OutputRecord) []OutputRecord {
	history = append(history, rec)
	if len(history) > MaxOutputHistorySize {
		history = history[len(history)-MaxOutputHistorySize:]
	}
	return history
}
