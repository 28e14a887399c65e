package engine

import "strings"

// Tool names the core understands. The runner may send legacy camel-case
// aliases; NormalizeToolName folds them onto these.
const (
	ToolReadFile          = "read_file"
	ToolListFiles         = "list_files"
	ToolSearchFiles       = "search_files"
	ToolExecuteCommand    = "execute_command"
	ToolApplyDiff         = "apply_diff"
	ToolWriteToFile       = "write_to_file"
	ToolSearchAndReplace  = "search_and_replace"
	ToolSearchReplace     = "search_replace"
	ToolUseMCPTool        = "use_mcp_tool"
	ToolAccessMCPResource = "access_mcp_resource"
	ToolAttemptCompletion = "attempt_completion"
)

// Parameter keys with semantic meaning to the core. Everything else in the
// params map is carried through untouched.
const (
	ParamPath     = "path"
	ParamFilePath = "file_path"
	ParamArgs     = "args"
	ParamCommand  = "command"
	ParamCwd      = "cwd"
	ParamRegex    = "regex"
	ParamQuery    = "query"
	ParamDiff     = "diff"
	ParamContent  = "content"
	ParamFileText = "file_text"
	ParamPatch    = "patch"
	ParamToolName = "tool_name"
	ParamServer   = "server_name"
)

// toolNameAliases maps legacy camel-case tool names onto the canonical set.
var toolNameAliases = map[string]string{
	"readFile":          ToolReadFile,
	"listFiles":         ToolListFiles,
	"searchFiles":       ToolSearchFiles,
	"executeCommand":    ToolExecuteCommand,
	"applyDiff":         ToolApplyDiff,
	"writeToFile":       ToolWriteToFile,
	"searchAndReplace":  ToolSearchAndReplace,
	"searchReplace":     ToolSearchReplace,
	"useMcpTool":        ToolUseMCPTool,
	"accessMcpResource": ToolAccessMCPResource,
	"attemptCompletion": ToolAttemptCompletion,
}

// paramKeyAliases maps legacy camel-case parameter keys onto snake_case.
var paramKeyAliases = map[string]string{
	"filePath":   ParamFilePath,
	"fileText":   ParamFileText,
	"toolName":   ParamToolName,
	"serverName": ParamServer,
}

// NormalizeToolName folds a possibly legacy tool name onto the canonical
// snake_case set. Unknown names pass through as given (whitespace trimmed)
// so the phase gate can reject them by name.
func NormalizeToolName(tool string) string {
	tool = strings.TrimSpace(tool)
	if canonical, ok := toolNameAliases[tool]; ok {
		return canonical
	}
	return tool
}

// NormalizeParams rewrites legacy camel-case keys to snake_case. The input
// map is not modified.
func NormalizeParams(params map[string]string) map[string]string {
	if params == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		if canonical, ok := paramKeyAliases[k]; ok {
			k = canonical
		}
		out[k] = v
	}
	return out
}

// IsModificationTool reports whether a tool mutates repository files.
func IsModificationTool(tool string) bool {
	switch tool {
	case ToolApplyDiff, ToolWriteToFile, ToolSearchAndReplace, ToolSearchReplace:
		return true
	}
	return false
}

// IsReadTool reports whether a tool only inspects the repository.
func IsReadTool(tool string) bool {
	switch tool {
	case ToolReadFile, ToolListFiles, ToolSearchFiles:
		return true
	}
	return false
}

// targetPath extracts the file path a tool operates on, if any.
func targetPath(params map[string]string) string {
	if p := params[ParamPath]; p != "" {
		return p
	}
	return params[ParamFilePath]
}

// stepwiseReasoningTools match MCP tools that walk the agent through an
// explicit chain of thought; a call to one resets the apply_diff streak.
var stepwiseReasoningTools = []string{
	"sequentialthinking",
	"sequential_thinking",
	"stepwise",
	"step_by_step",
	"think",
}

// IsStepwiseReasoningCall reports whether a use_mcp_tool invocation targets
// a stepwise-reasoning tool.
func IsStepwiseReasoningCall(tool string, params map[string]string) bool {
	if tool != ToolUseMCPTool {
		return false
	}
	name := strings.ToLower(params[ParamToolName])
	for _, s := range stepwiseReasoningTools {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}
