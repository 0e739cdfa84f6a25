package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/AlvinPlayz23/void-core/llm"
	"github.com/invopop/jsonschema"
)

type ReadFileParams struct {
	Path      string `json:"path" jsonschema:"description=Path to the file\\, relative to the project root."`
	StartLine int    `json:"start_line,omitempty" jsonschema:"description=1-based inclusive starting line. Defaults to 1."`
	EndLine   int    `json:"end_line,omitempty" jsonschema:"description=1-based inclusive ending line. Defaults to the file's last line."`
}

type readFileResult struct {
	Success    bool   `json:"success"`
	Path       string `json:"path"`
	Content    string `json:"content"`
	Truncated  bool   `json:"truncated"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	TotalLines int    `json:"total_lines"`
}

type ReadFileTool struct {
	Root string
}

func (t ReadFileTool) Name() string        { return "read_file" }
func (t ReadFileTool) SchemaFormat() llm.SchemaFormat { return llm.SchemaFormatJSONSchema }

func (t ReadFileTool) Description() string {
	return "Reads a file within the project, optionally limited to a 1-based inclusive line range."
}

func (t ReadFileTool) InputSchema() interface{} {
	return (&jsonschema.Reflector{DoNotReference: true}).Reflect(&ReadFileParams{})
}

func (t ReadFileTool) Run(ctx context.Context, input interface{}) (string, string, error) {
	params, err := decodeParams[ReadFileParams](input)
	if err != nil {
		return "", "", err
	}
	if params.Path == "" {
		return "", "", fmt.Errorf("path is required")
	}

	resolved, err := ResolveAndValidate(t.Root, params.Path)
	if err != nil {
		return "", "", err
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return "", "", fmt.Errorf("tool: failed to read %s: %w", params.Path, err)
	}

	crlf := strings.Contains(string(raw), "\r\n")
	ending := "\n"
	if crlf {
		ending = "\r\n"
	}

	lines := splitLogicalLines(string(raw), crlf)
	total := len(lines)

	startLine := params.StartLine
	if startLine == 0 {
		startLine = 1
	}
	endLine := params.EndLine
	if endLine == 0 {
		endLine = total
	}

	if startLine < 1 {
		return "", "", fmt.Errorf("start_line must be >= 1")
	}
	if endLine < startLine {
		return "", "", fmt.Errorf("end_line must be >= start_line")
	}
	if endLine > total {
		return "", "", fmt.Errorf("end_line %d exceeds total_lines %d", endLine, total)
	}

	selected := lines[startLine-1 : endLine]
	content := strings.Join(selected, ending)

	result := readFileResult{
		Success:    true,
		Path:       params.Path,
		Content:    content,
		Truncated:  false,
		StartLine:  startLine,
		EndLine:    endLine,
		TotalLines: total,
	}
	out, err := json.Marshal(result)
	if err != nil {
		return "", "", fmt.Errorf("internal: failed to marshal read_file result: %w", err)
	}
	return string(out), string(out), nil
}

// splitLogicalLines splits content into logical lines, stripping the
// detected line ending so callers can rejoin with their own separator.
func splitLogicalLines(content string, crlf bool) []string {
	sep := "\n"
	normalized := content
	if crlf {
		normalized = strings.ReplaceAll(content, "\r\n", "\n")
	}
	if normalized == "" {
		return []string{""}
	}
	trimmedTrailingNewline := strings.HasSuffix(normalized, "\n")
	parts := strings.Split(normalized, sep)
	if trimmedTrailingNewline {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		parts = []string{""}
	}
	return parts
}

// decodeParams re-decodes a dispatch-time input (already a map[string]any or
// a raw JSON string fallback) into a typed params struct.
func decodeParams[T any](input interface{}) (T, error) {
	var params T
	switch v := input.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &params); err != nil {
			return params, fmt.Errorf("invalid tool arguments: %w", err)
		}
	default:
		raw, err := json.Marshal(input)
		if err != nil {
			return params, fmt.Errorf("invalid tool arguments: %w", err)
		}
		if err := json.Unmarshal(raw, &params); err != nil {
			return params, fmt.Errorf("invalid tool arguments: %w", err)
		}
	}
	return params, nil
}
