// Package pathmap rewrites file paths across the boundary between the
// evaluation environment and the agent's workspace view.
package pathmap

import (
	"path"
	"regexp"
	"strings"
)

const (
	// DefaultSourcePrefix is where SWE-bench images mount the repository.
	DefaultSourcePrefix = "/testbed"
	// DefaultTargetPrefix is where the agent's runner exposes the same tree.
	DefaultTargetPrefix = "/workspace/repo"
)

// pathTagRe matches <path>...</path> segments inside opaque tool args.
// The surrounding XML is owned by the runner; only the path payload is ours.
var pathTagRe = regexp.MustCompile(`(?s)<path>(.*?)</path>`)

// Mapper translates paths between a source prefix and a target prefix.
// The zero value is not usable; use New or Default.
type Mapper struct {
	sourcePrefix string
	targetPrefix string
}

// New creates a Mapper for the given prefix pair. Prefixes are normalised
// once so that "/testbed/" and "/testbed" behave identically.
func New(sourcePrefix, targetPrefix string) *Mapper {
	return &Mapper{
		sourcePrefix: normalize(sourcePrefix),
		targetPrefix: normalize(targetPrefix),
	}
}

// Default returns a Mapper with the standard SWE-bench prefixes.
func Default() *Mapper {
	return New(DefaultSourcePrefix, DefaultTargetPrefix)
}

// SourcePrefix returns the configured source prefix.
func (m *Mapper) SourcePrefix() string { return m.sourcePrefix }

// TargetPrefix returns the configured target prefix.
func (m *Mapper) TargetPrefix() string { return m.targetPrefix }

// normalize collapses ".", ".." and duplicate separators, POSIX rules.
func normalize(p string) string {
	if p == "" {
		return p
	}
	cleaned := path.Clean(p)
	// path.Clean("foo/") == "foo", but Clean("") == "."; keep "" as "".
	if cleaned == "." && !strings.HasPrefix(p, ".") {
		return p
	}
	return cleaned
}

// rewrite maps p from one prefix to the other. It only fires when p equals
// the prefix or lives under it; anything else passes through unchanged.
func rewrite(p, from, to string) string {
	if p == "" {
		return p
	}
	cleaned := normalize(p)
	if cleaned == from {
		return to
	}
	if strings.HasPrefix(cleaned, from+"/") {
		return to + strings.TrimPrefix(cleaned, from)
	}
	return p
}

// MapSourceToTarget rewrites a source-rooted path into the target tree.
func (m *Mapper) MapSourceToTarget(p string) string {
	return rewrite(p, m.sourcePrefix, m.targetPrefix)
}

// MapTargetToSource is the exact inverse of MapSourceToTarget.
func (m *Mapper) MapTargetToSource(p string) string {
	return rewrite(p, m.targetPrefix, m.sourcePrefix)
}

// MapArgsSourceToTarget rewrites every <path>...</path> payload inside an
// opaque XML-like args string. No other parsing of the string is attempted.
func (m *Mapper) MapArgsSourceToTarget(args string) string {
	if args == "" || !strings.Contains(args, "<path>") {
		return args
	}
	return pathTagRe.ReplaceAllStringFunc(args, func(seg string) string {
		inner := pathTagRe.FindStringSubmatch(seg)[1]
		return "<path>" + m.MapSourceToTarget(strings.TrimSpace(inner)) + "</path>"
	})
}

// MapArgsTargetToSource is the inverse of MapArgsSourceToTarget.
func (m *Mapper) MapArgsTargetToSource(args string) string {
	if args == "" || !strings.Contains(args, "<path>") {
		return args
	}
	return pathTagRe.ReplaceAllStringFunc(args, func(seg string) string {
		inner := pathTagRe.FindStringSubmatch(seg)[1]
		return "<path>" + m.MapTargetToSource(strings.TrimSpace(inner)) + "</path>"
	})
}

// MapCommandSourceToTarget rewrites source-rooted path tokens inside a shell
// command. Tokens are split on whitespace; only tokens that resolve under the
// source prefix are touched, so flags and program names survive.
func (m *Mapper) MapCommandSourceToTarget(command string) string {
	if command == "" || !strings.Contains(command, m.sourcePrefix) {
		return command
	}
	fields := strings.Fields(command)
	changed := false
	for i, f := range fields {
		mapped := m.MapSourceToTarget(f)
		if mapped != f {
			fields[i] = mapped
			changed = true
		}
	}
	if !changed {
		return command
	}
	return strings.Join(fields, " ")
}
