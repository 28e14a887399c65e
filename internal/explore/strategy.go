// Package explore scores how well the agent understands the repository it is
// repairing and turns weak spots into prioritised recommendations.
package explore

import (
	"fmt"

	"github.com/ChamsBouzaiene/sweguard/internal/repocfg"
)

// State is the exploration snapshot the strategy scores. The flags mirror
// the workflow state machine's advisory exploration flags.
type State struct {
	ReadCalls             int
	TestCalls             int
	ProjectExplored       bool
	ReadmeRead            bool
	TestStructureExplored bool
	TargetTestsLocated    bool
	HasRunTests           bool
}

// Level buckets the overall understanding score.
type Level string

const (
	LevelInsufficient  Level = "insufficient"  // score < 25
	LevelBasic         Level = "basic"         // score < 50
	LevelAdequate      Level = "adequate"      // score < 75
	LevelComprehensive Level = "comprehensive" // score >= 75
)

// Priority orders recommendations.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Recommendation is one actionable next step.
type Recommendation struct {
	Priority Priority
	Action   string
	Reason   string
}

// Assessment is the full output of a scoring pass.
type Assessment struct {
	Score           int
	Level           Level
	Recommendations []Recommendation
}

// Score combines the exploration signals into a 0-100 understanding score.
// File reads contribute up to 40 points, stepped so early reads count more;
// test executions up to 30; the remaining 30 come from the three
// orientation flags.
func Score(st State) int {
	score := 0

	switch {
	case st.ReadCalls >= 25:
		score += 40
	case st.ReadCalls >= 12:
		score += 30
	case st.ReadCalls >= 6:
		score += 20
	case st.ReadCalls >= 3:
		score += 10
	}

	switch {
	case st.TestCalls >= 4:
		score += 30
	case st.TestCalls >= 2:
		score += 20
	case st.TestCalls >= 1:
		score += 10
	}

	if st.ReadmeRead {
		score += 15
	}
	if st.TestStructureExplored {
		score += 10
	}
	if st.ProjectExplored {
		score += 5
	}

	return score
}

// LevelFor buckets a score.
func LevelFor(score int) Level {
	switch {
	case score < 25:
		return LevelInsufficient
	case score < 50:
		return LevelBasic
	case score < 75:
		return LevelAdequate
	default:
		return LevelComprehensive
	}
}

// Assess scores the state and derives recommendations against the
// repository's exploration thresholds.
func Assess(st State, cfg repocfg.Config) Assessment {
	score := Score(st)
	recs := recommend(st, cfg)
	return Assessment{
		Score:           score,
		Level:           LevelFor(score),
		Recommendations: recs,
	}
}

// recommend emits recommendations ordered critical > high > medium > low.
func recommend(st State, cfg repocfg.Config) []Recommendation {
	var recs []Recommendation

	if !st.HasRunTests {
		recs = append(recs, Recommendation{
			Priority: PriorityCritical,
			Action:   "Run the target tests before changing any code",
			Reason:   "no test execution has been observed yet",
		})
	}
	if !st.TargetTestsLocated {
		recs = append(recs, Recommendation{
			Priority: PriorityHigh,
			Action:   fmt.Sprintf("Locate the failing tests (runner: %s)", cfg.TestRunner),
			Reason:   "the FAIL_TO_PASS tests have not been located",
		})
	}
	if cfg.MinReadCalls > 0 && st.ReadCalls < cfg.MinReadCalls {
		recs = append(recs, Recommendation{
			Priority: PriorityHigh,
			Action:   "Read more of the code paths involved in the failure",
			Reason: fmt.Sprintf("%d files read, repository guidance suggests at least %d",
				st.ReadCalls, cfg.MinReadCalls),
		})
	}
	if !st.TestStructureExplored {
		recs = append(recs, Recommendation{
			Priority: PriorityMedium,
			Action:   "Explore the test directory layout",
			Reason:   "knowing where tests live avoids misplaced fixes",
		})
	}
	if !st.ReadmeRead {
		recs = append(recs, Recommendation{
			Priority: PriorityMedium,
			Action:   "Read the project README or contributing guide",
			Reason:   "project conventions have not been checked",
		})
	}
	if !st.ProjectExplored {
		recs = append(recs, Recommendation{
			Priority: PriorityLow,
			Action:   "List the top-level project layout",
			Reason:   "the overall structure is still unknown",
		})
	}

	// Already ordered by construction; keep the ordering stable.
	for i := 1; i < len(recs); i++ {
		if recs[i].Priority > recs[i-1].Priority {
			sortRecommendations(recs)
			break
		}
	}
	return recs
}

func sortRecommendations(recs []Recommendation) {
	// Insertion sort; the list is tiny and mostly sorted.
	for i := 1; i < len(recs); i++ {
		for j := i; j > 0 && recs[j].Priority > recs[j-1].Priority; j-- {
			recs[j], recs[j-1] = recs[j-1], recs[j]
		}
	}
}
