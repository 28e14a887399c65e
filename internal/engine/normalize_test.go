package engine

import "testing"

func TestExtractExitCode(t *testing.T) {
	tests := []struct {
		name string
		out  string
		code int
		ok   bool
	}{
		{name: "zero", out: "all good\nExit code: 0", code: 0, ok: true},
		{name: "nonzero", out: "Exit code: 2\nboom", code: 2, ok: true},
		{name: "negative", out: "Exit code: -1", code: -1, ok: true},
		{name: "absent", out: "no code here", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := ExtractExitCode(tt.out)
			if ok != tt.ok || code != tt.code {
				t.Errorf("ExtractExitCode(%q) = (%d, %v), want (%d, %v)", tt.out, code, ok, tt.code, tt.ok)
			}
		})
	}
}

func TestNormalizeOutput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ansi stripped", in: "\x1b[31mFAILED\x1b[0m", want: "failed"},
		{name: "pid substituted", in: "killed pid 4242 cleanly", want: "killed pid <n> cleanly"},
		{name: "date substituted", in: "run at 2024-01-01", want: "run at <date>"},
		{name: "duration substituted", in: "finished in 1.23s", want: "finished in <duration>"},
		{name: "address substituted", in: "object at 0xDEADBEEF", want: "object at <addr>"},
		{name: "lowercased and trimmed", in: "  MiXeD Case  ", want: "mixed case"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeOutput(tt.in); got != tt.want {
				t.Errorf("NormalizeOutput(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputSuccess(t *testing.T) {
	tests := []struct {
		name string
		tool string
		out  string
		want bool
	}{
		{name: "exit zero wins", tool: ToolExecuteCommand, out: "Exit code: 0\nsome FAILED text is irrelevant", want: true},
		{name: "exit nonzero loses", tool: ToolExecuteCommand, out: "Exit code: 1\nall passed though", want: false},
		{name: "no code falls back to patterns", tool: ToolExecuteCommand, out: "error: no such option", want: false},
		{name: "read success", tool: ToolReadFile, out: "def main(): ...", want: true},
		{name: "read failure", tool: ToolReadFile, out: "Error: file not found", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputSuccess(tt.tool, tt.out); got != tt.want {
				t.Errorf("outputSuccess(%s, %q) = %v, want %v", tt.tool, tt.out, got, tt.want)
			}
		})
	}
}
