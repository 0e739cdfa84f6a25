package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/AlvinPlayz23/void-core/llm"
	"github.com/invopop/jsonschema"
)

type WriteFileParams struct {
	Path           string `json:"path" jsonschema:"description=Path to the file\\, relative to the project root."`
	Content        string `json:"content" jsonschema:"description=Full content to write."`
	AllowSensitive bool   `json:"allow_sensitive,omitempty" jsonschema:"description=Set true to bypass the sensitive-path deny list."`
}

type writeFileResult struct {
	Success      bool   `json:"success"`
	Path         string `json:"path"`
	BytesWritten int    `json:"bytes_written"`
}

type WriteFileTool struct {
	Root   string
	Policy SensitivePathPolicy
}

func (t WriteFileTool) Name() string                  { return "write_file" }
func (t WriteFileTool) SchemaFormat() llm.SchemaFormat { return llm.SchemaFormatJSONSchema }

func (t WriteFileTool) Description() string {
	return "Writes content to a file within the project, creating parent directories and overwriting any existing file."
}

func (t WriteFileTool) InputSchema() interface{} {
	return (&jsonschema.Reflector{DoNotReference: true}).Reflect(&WriteFileParams{})
}

func (t WriteFileTool) Run(ctx context.Context, input interface{}) (string, string, error) {
	params, err := decodeParams[WriteFileParams](input)
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
	if err := CheckSensitive(resolved, params.AllowSensitive, t.Policy); err != nil {
		return "", "", err
	}

	if err := EnsureParentDir(resolved); err != nil {
		return "", "", fmt.Errorf("tool: failed to create parent directories for %s: %w", params.Path, err)
	}
	if err := os.WriteFile(resolved, []byte(params.Content), 0o644); err != nil {
		return "", "", fmt.Errorf("tool: failed to write %s: %w", params.Path, err)
	}

	result := writeFileResult{Success: true, Path: params.Path, BytesWritten: len(params.Content)}
	out, err := json.Marshal(result)
	if err != nil {
		return "", "", fmt.Errorf("internal: failed to marshal write_file result: %w", err)
	}
	return string(out), string(out), nil
}
