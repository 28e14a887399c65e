package explore

import (
	"fmt"
	"time"
)

const (
	// escalationWindow: a repeated ask inside this window raises verbosity.
	escalationWindow = 5 * time.Minute
	// idleReset: silence longer than this drops back to the base level.
	idleReset = 10 * time.Minute
	// maxVerbosity caps how loud the guidance gets.
	maxVerbosity = 3
)

// Escalator raises the verbosity of exploration guidance when the agent
// keeps asking from the same coarse state without making progress.
type Escalator struct {
	lastFingerprint string
	lastAsk         time.Time
	verbosity       int
	now             func() time.Time
}

// NewEscalator creates an Escalator on the wall clock.
func NewEscalator() *Escalator {
	return &Escalator{now: time.Now}
}

// WithClock overrides the time source, for tests.
func (e *Escalator) WithClock(now func() time.Time) *Escalator {
	e.now = now
	return e
}

// Fingerprint condenses a state into a coarse signature: the five flags plus
// binned counters, so small counter churn does not defeat repeat detection.
func Fingerprint(st State) string {
	return fmt.Sprintf("%t|%t|%t|%t|%t|r%d|t%d",
		st.ProjectExplored, st.ReadmeRead, st.TestStructureExplored,
		st.TargetTestsLocated, st.HasRunTests,
		bin(st.ReadCalls), bin(st.TestCalls))
}

// bin buckets a counter the same way the read-score steps do.
func bin(n int) int {
	switch {
	case n >= 25:
		return 4
	case n >= 12:
		return 3
	case n >= 6:
		return 2
	case n >= 3:
		return 1
	default:
		return 0
	}
}

// Observe records an ask from the given state and returns the verbosity
// level (0 = base) the next guidance should use.
func (e *Escalator) Observe(st State) int {
	now := e.now()
	fp := Fingerprint(st)

	switch {
	case !e.lastAsk.IsZero() && now.Sub(e.lastAsk) > idleReset:
		e.verbosity = 0
	case fp == e.lastFingerprint && now.Sub(e.lastAsk) <= escalationWindow:
		if e.verbosity < maxVerbosity {
			e.verbosity++
		}
	case fp != e.lastFingerprint:
		e.verbosity = 0
	}

	e.lastFingerprint = fp
	e.lastAsk = now
	return e.verbosity
}

// Reset clears the escalation state.
func (e *Escalator) Reset() {
	e.lastFingerprint = ""
	e.lastAsk = time.Time{}
	e.verbosity = 0
}
