package factory

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChamsBouzaiene/sweguard/internal/config"
	"github.com/ChamsBouzaiene/sweguard/internal/engine"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		SourcePrefix:        "/testbed",
		TargetPrefix:        "/workspace/repo",
		ContextWindow:       200_000,
		MaxCompletionTokens: 16_384,
		EffectivenessDBPath: filepath.Join(dir, "eff.db"),
		StateDir:            dir,
	}
}

func TestNewTaskWiring(t *testing.T) {
	task, err := NewTask(context.Background(), testConfig(t), "django__django-12325", nil, nil)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	defer task.Close()

	if task.RepoConfig.Repo != "django/django" {
		t.Errorf("repo config = %q", task.RepoConfig.Repo)
	}
	if task.Interceptor == nil || task.Analyzer == nil || task.Generator == nil {
		t.Fatal("component missing from task bundle")
	}
	if task.Compressor != nil {
		t.Error("compressor should be absent without an LLM client")
	}

	// Two tasks never share state.
	other, err := NewTask(context.Background(), testConfig(t), "psf__requests-2317", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer other.Close()
	task.Interceptor.RecordToolExecution(engine.ToolExecuteCommand,
		map[string]string{engine.ParamCommand: "pytest"}, "Exit code: 0\n1 passed")
	if other.Interceptor.StateMachine().ToolCallsTotal() != 0 {
		t.Error("tasks share interceptor state")
	}
}

func TestNewTaskRejectsEmptyInstance(t *testing.T) {
	if _, err := NewTask(context.Background(), testConfig(t), "", nil, nil); err == nil {
		t.Error("empty instance id must error")
	}
}

func TestPhaseGuidanceFromLiveState(t *testing.T) {
	task, err := NewTask(context.Background(), testConfig(t), "django__django-12325", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer task.Close()

	res := task.PhaseGuidance()
	if !res.Success {
		t.Fatalf("guidance failed: %v", res.Warnings)
	}
	if !strings.Contains(res.Text, "ANALYZE") {
		t.Errorf("guidance should name the phase:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "runtests.py") {
		t.Errorf("django override should be active:\n%s", res.Text)
	}
}

func TestStateRoundTripThroughStore(t *testing.T) {
	cfg := testConfig(t)
	task, err := NewTask(context.Background(), cfg, "django__django-12325", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	task.Interceptor.RecordToolExecution(engine.ToolExecuteCommand,
		map[string]string{engine.ParamCommand: "pytest x.py"}, "Exit code: 1\n1 failed")
	if err := task.SaveState(); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	task.Close()

	resumed, err := NewTask(context.Background(), cfg, "django__django-12325", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resumed.Close()

	found, err := resumed.RestoreState()
	if err != nil {
		t.Fatalf("RestoreState: %v", err)
	}
	if !found {
		t.Fatal("saved state not found")
	}
	sm := resumed.Interceptor.StateMachine()
	if sm.Phase() != engine.PhaseModify || !sm.HasRunTests() {
		t.Errorf("restored phase = %s, hasRunTests = %v", sm.Phase(), sm.HasRunTests())
	}
}
