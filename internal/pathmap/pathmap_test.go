package pathmap

import "testing"

func TestMapSourceToTarget(t *testing.T) {
	m := Default()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "file under source prefix",
			in:   "/testbed/django/urls/resolvers.py",
			want: "/workspace/repo/django/urls/resolvers.py",
		},
		{
			name: "exact prefix",
			in:   "/testbed",
			want: "/workspace/repo",
		},
		{
			name: "prefix with trailing slash",
			in:   "/testbed/",
			want: "/workspace/repo",
		},
		{
			name: "duplicate separators collapse",
			in:   "/testbed//src///main.py",
			want: "/workspace/repo/src/main.py",
		},
		{
			name: "dot segments collapse",
			in:   "/testbed/./src/../lib/util.py",
			want: "/workspace/repo/lib/util.py",
		},
		{
			name: "unrelated path passes through",
			in:   "/home/u/f.py",
			want: "/home/u/f.py",
		},
		{
			name: "prefix as substring does not match",
			in:   "/testbed2/file.py",
			want: "/testbed2/file.py",
		},
		{
			name: "empty path",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.MapSourceToTarget(tt.in); got != tt.want {
				t.Errorf("MapSourceToTarget(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapTargetToSourceInverse(t *testing.T) {
	m := Default()

	paths := []string{
		"/testbed",
		"/testbed/setup.py",
		"/testbed/pkg/sub/deep/file.go",
	}
	for _, p := range paths {
		mapped := m.MapSourceToTarget(p)
		back := m.MapTargetToSource(mapped)
		if back != p {
			t.Errorf("round trip of %q: mapped to %q, came back as %q", p, mapped, back)
		}
	}
}

func TestMapIdempotent(t *testing.T) {
	m := Default()

	paths := []string{
		"/testbed/a.py",
		"/workspace/repo/a.py",
		"/unrelated/a.py",
	}
	for _, p := range paths {
		once := m.MapSourceToTarget(p)
		twice := m.MapSourceToTarget(once)
		if once != twice {
			t.Errorf("mapping not idempotent for %q: first %q, second %q", p, once, twice)
		}
	}
}

func TestMapArgs(t *testing.T) {
	m := Default()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single path tag",
			in:   "<read_file><path>/testbed/a.py</path></read_file>",
			want: "<read_file><path>/workspace/repo/a.py</path></read_file>",
		},
		{
			name: "multiple path tags",
			in:   "<args><path>/testbed/a.py</path><path>/testbed/b.py</path></args>",
			want: "<args><path>/workspace/repo/a.py</path><path>/workspace/repo/b.py</path></args>",
		},
		{
			name: "unrelated path untouched",
			in:   "<path>/etc/hosts</path>",
			want: "<path>/etc/hosts</path>",
		},
		{
			name: "no path tag",
			in:   "<command>ls</command>",
			want: "<command>ls</command>",
		},
		{
			name: "malformed xml left alone",
			in:   "<path>/testbed/a.py",
			want: "<path>/testbed/a.py",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.MapArgsSourceToTarget(tt.in); got != tt.want {
				t.Errorf("MapArgsSourceToTarget(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapCommand(t *testing.T) {
	m := Default()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "path argument rewritten",
			in:   "pytest /testbed/tests/test_urls.py -x",
			want: "pytest /workspace/repo/tests/test_urls.py -x",
		},
		{
			name: "plain command untouched",
			in:   "git status",
			want: "git status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.MapCommandSourceToTarget(tt.in); got != tt.want {
				t.Errorf("MapCommandSourceToTarget(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCustomPrefixes(t *testing.T) {
	m := New("/src/", "/dst")
	if got := m.MapSourceToTarget("/src/x"); got != "/dst/x" {
		t.Errorf("trailing slash in configured prefix not normalised: got %q", got)
	}
}
