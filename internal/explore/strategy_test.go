package explore

import (
	"testing"
	"time"

	"github.com/ChamsBouzaiene/sweguard/internal/repocfg"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		st   State
		want int
	}{
		{name: "zero state", st: State{}, want: 0},
		{name: "three reads", st: State{ReadCalls: 3}, want: 10},
		{name: "six reads", st: State{ReadCalls: 6}, want: 20},
		{name: "twelve reads", st: State{ReadCalls: 12}, want: 30},
		{name: "twenty five reads caps at forty", st: State{ReadCalls: 40}, want: 40},
		{name: "tests cap at thirty", st: State{TestCalls: 10}, want: 30},
		{name: "readme", st: State{ReadmeRead: true}, want: 15},
		{name: "test structure", st: State{TestStructureExplored: true}, want: 10},
		{name: "project", st: State{ProjectExplored: true}, want: 5},
		{
			name: "everything",
			st: State{
				ReadCalls: 30, TestCalls: 5,
				ReadmeRead: true, TestStructureExplored: true, ProjectExplored: true,
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.st); got != tt.want {
				t.Errorf("Score(%+v) = %d, want %d", tt.st, got, tt.want)
			}
		})
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score int
		want  Level
	}{
		{0, LevelInsufficient},
		{24, LevelInsufficient},
		{25, LevelBasic},
		{49, LevelBasic},
		{50, LevelAdequate},
		{74, LevelAdequate},
		{75, LevelComprehensive},
		{100, LevelComprehensive},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.score); got != tt.want {
			t.Errorf("LevelFor(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestAssessRecommendationOrder(t *testing.T) {
	cfg := repocfg.Config{TestRunner: "pytest", MinReadCalls: 5}

	got := Assess(State{}, cfg)
	if got.Level != LevelInsufficient {
		t.Errorf("Level = %q, want insufficient", got.Level)
	}
	if len(got.Recommendations) == 0 {
		t.Fatal("expected recommendations for a zero state")
	}
	if got.Recommendations[0].Priority != PriorityCritical {
		t.Errorf("first recommendation priority = %v, want critical", got.Recommendations[0].Priority)
	}
	for i := 1; i < len(got.Recommendations); i++ {
		if got.Recommendations[i].Priority > got.Recommendations[i-1].Priority {
			t.Errorf("recommendations out of order at %d: %v after %v",
				i, got.Recommendations[i].Priority, got.Recommendations[i-1].Priority)
		}
	}
}

func TestAssessSatisfiedState(t *testing.T) {
	cfg := repocfg.Config{TestRunner: "pytest", MinReadCalls: 5}
	st := State{
		ReadCalls: 30, TestCalls: 6,
		ProjectExplored: true, ReadmeRead: true,
		TestStructureExplored: true, TargetTestsLocated: true,
		HasRunTests: true,
	}

	got := Assess(st, cfg)
	if got.Level != LevelComprehensive {
		t.Errorf("Level = %q, want comprehensive", got.Level)
	}
	if len(got.Recommendations) != 0 {
		t.Errorf("expected no recommendations, got %v", got.Recommendations)
	}
}

func TestEscalatorRepeatWithinWindow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	e := NewEscalator().WithClock(func() time.Time { return now })

	st := State{ReadCalls: 2}
	if v := e.Observe(st); v != 0 {
		t.Errorf("first observe verbosity = %d, want 0", v)
	}

	now = now.Add(time.Minute)
	if v := e.Observe(st); v != 1 {
		t.Errorf("repeat within window verbosity = %d, want 1", v)
	}

	now = now.Add(time.Minute)
	if v := e.Observe(st); v != 2 {
		t.Errorf("second repeat verbosity = %d, want 2", v)
	}

	// Verbosity is capped.
	for i := 0; i < 5; i++ {
		now = now.Add(time.Minute)
		e.Observe(st)
	}
	now = now.Add(time.Minute)
	if v := e.Observe(st); v != maxVerbosity {
		t.Errorf("verbosity exceeded cap: %d", v)
	}
}

func TestEscalatorResetOnProgress(t *testing.T) {
	now := time.Unix(1700000000, 0)
	e := NewEscalator().WithClock(func() time.Time { return now })

	st := State{ReadCalls: 2}
	e.Observe(st)
	now = now.Add(time.Minute)
	if v := e.Observe(st); v != 1 {
		t.Fatalf("setup: verbosity = %d, want 1", v)
	}

	// Crossing a counter bin changes the fingerprint and resets.
	st.ReadCalls = 7
	now = now.Add(time.Minute)
	if v := e.Observe(st); v != 0 {
		t.Errorf("verbosity after progress = %d, want 0", v)
	}
}

func TestEscalatorIdleReset(t *testing.T) {
	now := time.Unix(1700000000, 0)
	e := NewEscalator().WithClock(func() time.Time { return now })

	st := State{ReadCalls: 2}
	e.Observe(st)
	now = now.Add(time.Minute)
	e.Observe(st)

	now = now.Add(idleReset + time.Second)
	if v := e.Observe(st); v != 0 {
		t.Errorf("verbosity after idle = %d, want 0", v)
	}
}
