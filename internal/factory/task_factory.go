// Package factory wires the per-task component set. Each SWE-bench instance
// gets its own state machine, interceptor, and compressor; nothing here is
// process-global, so concurrent harnesses can hold one Task per instance.
package factory

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/ChamsBouzaiene/sweguard/internal/condense"
	"github.com/ChamsBouzaiene/sweguard/internal/config"
	"github.com/ChamsBouzaiene/sweguard/internal/engine"
	"github.com/ChamsBouzaiene/sweguard/internal/explore"
	"github.com/ChamsBouzaiene/sweguard/internal/pathmap"
	"github.com/ChamsBouzaiene/sweguard/internal/prompts"
	"github.com/ChamsBouzaiene/sweguard/internal/repocfg"
	"github.com/ChamsBouzaiene/sweguard/internal/session"
	"github.com/ChamsBouzaiene/sweguard/internal/testcmd"
)

// Task bundles everything one instance needs. The harness threads this
// handle through its call chain instead of reaching for shared state.
type Task struct {
	InstanceID string
	RepoConfig repocfg.Config

	Interceptor *engine.Interceptor
	Analyzer    *testcmd.Analyzer
	Compressor  *condense.Compressor
	Generator   *prompts.Generator
	Escalator   *explore.Escalator

	store  *session.Store
	effDB  *testcmd.Store
	logger *log.Logger
}

// NewTask builds the component set for one instance. llm may be nil when the
// harness never condenses (short runs, tests).
func NewTask(ctx context.Context, cfg *config.Config, instanceID string, llm condense.LLMClient, logger *log.Logger) (*Task, error) {
	if instanceID == "" {
		return nil, fmt.Errorf("instance id is empty")
	}

	registry := repocfg.NewRegistry(logger)
	if cfg.RepoOverridesPath != "" {
		if err := registry.LoadOverrides(cfg.RepoOverridesPath); err != nil {
			return nil, fmt.Errorf("failed to load repository overrides: %w", err)
		}
	}
	repoConfig := registry.GetRepositoryConfig(instanceID)

	analyzer := testcmd.NewAnalyzer(logger)
	var effDB *testcmd.Store
	if cfg.EffectivenessDBPath != "" {
		db, err := testcmd.NewStore(ctx, cfg.EffectivenessDBPath)
		if err != nil {
			// Statistics are a convenience; the task must start anyway.
			if logger != nil {
				logger.Printf("factory: effectiveness store unavailable, continuing in memory: %v", err)
			}
		} else {
			effDB = db
			analyzer = analyzer.WithStore(db)
		}
	}

	mapper := pathmap.New(cfg.SourcePrefix, cfg.TargetPrefix)
	sm := engine.NewStateMachine(instanceID, string(repoConfig.ProjectType), logger)
	interceptor := engine.NewInterceptor(sm, mapper, analyzer, repoConfig, logger)

	var compressor *condense.Compressor
	if llm != nil {
		compressor = condense.NewCompressor(llm, cfg.ContextWindow, cfg.MaxCompletionTokens, logger).
			WithStats(sm.ProgressSummary)
	}

	t := &Task{
		InstanceID:  instanceID,
		RepoConfig:  repoConfig,
		Interceptor: interceptor,
		Analyzer:    analyzer,
		Compressor:  compressor,
		Generator:   prompts.NewGenerator(nil, logger),
		Escalator:   explore.NewEscalator(),
		effDB:       effDB,
		logger:      logger,
	}
	if cfg.StateDir != "" {
		t.store = session.NewStore(cfg.StateDir)
	}
	return t, nil
}

// PhaseGuidance renders the guidance prompt for the current phase from the
// live state machine counters.
func (t *Task) PhaseGuidance() prompts.Result {
	sm := t.Interceptor.StateMachine()
	snap := t.Interceptor.Snapshot()

	remaining := engine.VerifyThresholdCommands - snap.TestCallsCount
	if remaining < 0 {
		remaining = 0
	}
	vars := map[string]string{
		"repository":                sm.InstanceID(),
		"test_runner":               t.RepoConfig.TestRunner,
		"examples":                  strings.Join(t.RepoConfig.Examples, "\n"),
		"read_calls":                strconv.Itoa(snap.ReadCallsCount),
		"tests_run":                 strconv.Itoa(snap.TestsRunCount),
		"tool_calls":                strconv.Itoa(snap.ToolCallsTotal),
		"modification_count":        strconv.Itoa(snap.ModificationCount),
		"modified_files":            strings.Join(snap.ModifiedFiles, ", "),
		"remaining_commands":        strconv.Itoa(remaining),
		"has_run_tests":             boolVar(snap.HasRunTests),
		"tests_passed_after_modify": boolVar(snap.TestsPassedAfterModify),
	}
	return t.Generator.PhaseGuidance(string(sm.Phase()), t.RepoConfig.Repo, vars)
}

// ExplorationState projects the state machine into the exploration scorer's
// input.
func (t *Task) ExplorationState() explore.State {
	snap := t.Interceptor.Snapshot()
	return explore.State{
		ReadCalls:             snap.ReadCallsCount,
		TestCalls:             snap.TestsRunCount,
		ProjectExplored:       snap.Exploration.ProjectExplored,
		ReadmeRead:            snap.Exploration.ReadmeRead,
		TestStructureExplored: snap.Exploration.TestStructureExplored,
		TargetTestsLocated:    snap.Exploration.TargetTestsLocated,
		HasRunTests:           snap.HasRunTests,
	}
}

// SaveState persists the current snapshot when a state dir is configured.
func (t *Task) SaveState() error {
	if t.store == nil {
		return nil
	}
	return t.store.Save(t.InstanceID, t.Interceptor.Snapshot())
}

// RestoreState loads a previously saved snapshot, if any.
func (t *Task) RestoreState() (bool, error) {
	if t.store == nil {
		return false, nil
	}
	snap, found, err := t.store.Load(t.InstanceID)
	if err != nil || !found {
		return false, err
	}
	t.Interceptor.Restore(snap)
	return true, nil
}

// Close releases the task's resources.
func (t *Task) Close() error {
	if t.effDB != nil {
		return t.effDB.Close()
	}
	return nil
}

func boolVar(b bool) string {
	if b {
		return "true"
	}
	return ""
}
