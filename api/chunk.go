// Package api implements the inbound RPC operation surface: the
// request/response shapes an external framing layer (HTTP, IPC, or
// similar) would expose, and the AIResponseChunk projection that turns
// internal agent.AgentEvents into UI-friendly, transport-ready values.
package api

import (
	"encoding/json"

	"github.com/AlvinPlayz23/void-core/apperror"
)

// AIResponseChunk is one item of a streaming RPC response. Each non-terminal
// chunk carries exactly one of Content, ToolOperation, or Debug; the
// terminal chunk has Done true and carries either nothing else or Error
// with its ErrorType.
type AIResponseChunk struct {
	Content       *string        `json:"content,omitempty"`
	ToolCall      *string        `json:"tool_call,omitempty"`
	ToolOperation *ToolOperation `json:"tool_operation,omitempty"`
	Debug         *string        `json:"debug,omitempty"`
	Error         *string        `json:"error,omitempty"`
	ErrorType     *string        `json:"error_type,omitempty"`
	Done          bool           `json:"done"`
}

// ToolOperation projects a tool's lifecycle into UI-friendly fields: a
// human verb, the path or command the tool acted on, its lifecycle status,
// and (at completion) any diff the tool produced.
type ToolOperation struct {
	Operation string  `json:"operation"`
	Target    string  `json:"target"`
	Status    string  `json:"status"`
	Details   *string `json:"details,omitempty"`
}

const (
	statusStart      = "start"
	statusCompletion = "completion"
)

// startVerb maps a tool name to the present-progressive verb shown while
// it is running.
func startVerb(toolName string) string {
	switch toolName {
	case "read_file":
		return "Reading"
	case "write_file":
		return "Writing"
	case "edit_file", "streaming_edit_file":
		return "Editing"
	case "list_directory":
		return "Listing"
	case "run_command":
		return "Running"
	default:
		return "Calling"
	}
}

// completionVerb maps a tool name to the past-tense verb shown once it has
// finished.
func completionVerb(toolName string) string {
	switch toolName {
	case "read_file":
		return "Read"
	case "write_file":
		return "Created"
	case "edit_file", "streaming_edit_file":
		return "Edited"
	case "list_directory":
		return "Listed"
	case "run_command":
		return "Executed"
	default:
		return "Completed"
	}
}

// extractStartTarget pulls the path or command a tool call's decoded input
// acted on, for the start-of-operation chunk.
func extractStartTarget(toolName string, input interface{}) string {
	m, ok := input.(map[string]interface{})
	if !ok {
		return ""
	}
	key := "path"
	if toolName == "run_command" {
		key = "command"
	}
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// projectToolStart builds the chunk emitted when a tool call begins.
func projectToolStart(toolName string, input interface{}) AIResponseChunk {
	return AIResponseChunk{ToolOperation: &ToolOperation{
		Operation: startVerb(toolName),
		Target:    extractStartTarget(toolName, input),
		Status:    statusStart,
	}}
}

// projectToolResult builds the chunk emitted when a tool call completes.
// target falls back to startTarget when the result JSON carries no "path"
// field (e.g. run_command, whose result has no path).
func projectToolResult(toolName, startTarget, resultText string) AIResponseChunk {
	target := startTarget
	var details *string

	var decoded map[string]interface{}
	if json.Unmarshal([]byte(resultText), &decoded) == nil {
		if v, ok := decoded["path"]; ok {
			if s, ok := v.(string); ok {
				target = s
			}
		}
		if v, ok := decoded["diff"]; ok {
			if s, ok := v.(string); ok {
				details = &s
			}
		}
	}

	return AIResponseChunk{ToolOperation: &ToolOperation{
		Operation: completionVerb(toolName),
		Target:    target,
		Status:    statusCompletion,
		Details:   details,
	}}
}

// classifiedError builds a terminal error chunk, embedding the apperror
// classification in error_type.
func classifiedError(err error) AIResponseChunk {
	errMsg := err.Error()
	kind := string(apperror.Classify(err))
	return AIResponseChunk{Error: &errMsg, ErrorType: &kind, Done: true}
}
