package engine

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Per-tool parameter schemas. Only shape is checked here: required keys and
// string-ness. Semantics (paths, commands) are the later pipeline stages'
// business.
var toolParamSchemas = map[string]string{
	ToolReadFile: `{
		"type": "object",
		"properties": {
			"path": {"type": "string", "minLength": 1},
			"file_path": {"type": "string", "minLength": 1}
		},
		"anyOf": [{"required": ["path"]}, {"required": ["file_path"]}]
	}`,
	ToolListFiles: `{
		"type": "object",
		"properties": {"path": {"type": "string"}}
	}`,
	ToolSearchFiles: `{
		"type": "object",
		"properties": {
			"path": {"type": "string"},
			"regex": {"type": "string", "minLength": 1}
		},
		"required": ["regex"]
	}`,
	ToolExecuteCommand: `{
		"type": "object",
		"properties": {
			"command": {"type": "string", "minLength": 1},
			"cwd": {"type": "string"}
		},
		"required": ["command"]
	}`,
	ToolApplyDiff: `{
		"type": "object",
		"properties": {
			"path": {"type": "string", "minLength": 1},
			"diff": {"type": "string", "minLength": 1}
		},
		"required": ["path", "diff"]
	}`,
	ToolWriteToFile: `{
		"type": "object",
		"properties": {
			"path": {"type": "string", "minLength": 1},
			"content": {"type": "string"}
		},
		"required": ["path"]
	}`,
	ToolSearchAndReplace: `{
		"type": "object",
		"properties": {"path": {"type": "string", "minLength": 1}},
		"required": ["path"]
	}`,
	ToolSearchReplace: `{
		"type": "object",
		"properties": {"path": {"type": "string", "minLength": 1}},
		"required": ["path"]
	}`,
	ToolUseMCPTool: `{
		"type": "object",
		"properties": {
			"server_name": {"type": "string"},
			"tool_name": {"type": "string", "minLength": 1}
		},
		"required": ["tool_name"]
	}`,
}

// validateParamShape checks a call's parameters against the tool's schema.
// Returns a block reason on mismatch, empty on pass. Tools without a schema
// (and unknown tools, which the phase gate rejects by name) pass through.
func validateParamShape(tool string, params map[string]string) string {
	schemaJSON, ok := toolParamSchemas[tool]
	if !ok {
		return ""
	}

	doc := make(map[string]any, len(params))
	for k, v := range params {
		doc[k] = v
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		// A broken schema is our bug, not the agent's; let the call pass.
		return ""
	}
	if result.Valid() {
		return ""
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Sprintf("Invalid parameters for %s: %s", tool, strings.Join(msgs, "; "))
}
