package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/AlvinPlayz23/void-core/llm"
	"github.com/invopop/jsonschema"
)

type EditMode string

const (
	EditModeCreate    EditMode = "create"
	EditModeOverwrite EditMode = "overwrite"
	EditModeEdit      EditMode = "edit"
)

type EditPair struct {
	OldText string `json:"old_text"`
	NewText string `json:"new_text"`
}

type EditFileParams struct {
	Path           string     `json:"path" jsonschema:"description=Path to the file\\, relative to the project root."`
	Mode           EditMode   `json:"mode" jsonschema:"enum=create,enum=overwrite,enum=edit"`
	Content        string     `json:"content,omitempty" jsonschema:"description=Required for create and overwrite modes: the full file content."`
	Edits          []EditPair `json:"edits,omitempty" jsonschema:"description=Required for edit mode: old_text/new_text pairs resolved against the current file content."`
	AllowSensitive bool       `json:"allow_sensitive,omitempty"`
}

type editFileResult struct {
	Success bool     `json:"success"`
	Path    string   `json:"path"`
	Mode    EditMode `json:"mode"`
	Diff    string   `json:"diff"`
}

// EditFileTool implements edit_file and streaming_edit_file, which share
// identical semantics — the two tool names exist only for UI distinction.
type EditFileTool struct {
	Root     string
	ToolName string
	Policy   SensitivePathPolicy
}

func NewEditFileTool(root string) EditFileTool {
	return EditFileTool{Root: root, ToolName: "edit_file"}
}

func NewStreamingEditFileTool(root string) EditFileTool {
	return EditFileTool{Root: root, ToolName: "streaming_edit_file"}
}

// WithPolicy returns a copy of t using policy for its sensitive-path check.
func (t EditFileTool) WithPolicy(policy SensitivePathPolicy) EditFileTool {
	t.Policy = policy
	return t
}

func (t EditFileTool) Name() string                  { return t.ToolName }
func (t EditFileTool) SchemaFormat() llm.SchemaFormat { return llm.SchemaFormatJSONSchema }

func (t EditFileTool) Description() string {
	return "Creates, overwrites, or fuzzily edits a file within the project, returning a unified-style diff of the change."
}

func (t EditFileTool) InputSchema() interface{} {
	return (&jsonschema.Reflector{DoNotReference: true}).Reflect(&EditFileParams{})
}

func (t EditFileTool) Run(ctx context.Context, input interface{}) (string, string, error) {
	params, err := decodeParams[EditFileParams](input)
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

	switch params.Mode {
	case EditModeCreate:
		return t.runCreate(params, resolved)
	case EditModeOverwrite:
		return t.runOverwrite(params, resolved)
	case EditModeEdit:
		return t.runEdit(params, resolved)
	default:
		return "", "", fmt.Errorf("invalid mode: %s", params.Mode)
	}
}

func (t EditFileTool) runCreate(params EditFileParams, resolved string) (string, string, error) {
	if params.Content == "" {
		return "", "", fmt.Errorf("content is required for create mode")
	}
	if _, err := os.Stat(resolved); err == nil {
		return "", "", fmt.Errorf("tool: file already exists: %s", params.Path)
	} else if !os.IsNotExist(err) {
		return "", "", fmt.Errorf("tool: failed to check existing file %s: %w", params.Path, err)
	}

	if err := EnsureParentDir(resolved); err != nil {
		return "", "", fmt.Errorf("tool: failed to create parent directories for %s: %w", params.Path, err)
	}
	if err := os.WriteFile(resolved, []byte(params.Content), 0o644); err != nil {
		return "", "", fmt.Errorf("tool: failed to write %s: %w", params.Path, err)
	}

	diff := WholeFileDiff("", params.Content)
	return t.marshalResult(params.Path, EditModeCreate, diff)
}

func (t EditFileTool) runOverwrite(params EditFileParams, resolved string) (string, string, error) {
	if params.Content == "" {
		return "", "", fmt.Errorf("content is required for overwrite mode")
	}

	var oldContent string
	if raw, err := os.ReadFile(resolved); err == nil {
		oldContent = string(raw)
	} else if !os.IsNotExist(err) {
		return "", "", fmt.Errorf("tool: failed to read %s: %w", params.Path, err)
	}

	if err := EnsureParentDir(resolved); err != nil {
		return "", "", fmt.Errorf("tool: failed to create parent directories for %s: %w", params.Path, err)
	}
	if err := os.WriteFile(resolved, []byte(params.Content), 0o644); err != nil {
		return "", "", fmt.Errorf("tool: failed to write %s: %w", params.Path, err)
	}

	diff := WholeFileDiff(oldContent, params.Content)
	return t.marshalResult(params.Path, EditModeOverwrite, diff)
}

func (t EditFileTool) runEdit(params EditFileParams, resolved string) (string, string, error) {
	if len(params.Edits) == 0 {
		return "", "", fmt.Errorf("edits must be non-empty for edit mode")
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return "", "", fmt.Errorf("tool: failed to read %s: %w", params.Path, err)
	}

	edits := make([]Edit, 0, len(params.Edits))
	for _, e := range params.Edits {
		edits = append(edits, Edit{OldText: e.OldText, NewText: e.NewText})
	}

	updated, diff, err := ApplyEdits(string(raw), edits)
	if err != nil {
		return "", "", err
	}

	if err := os.WriteFile(resolved, []byte(updated), 0o644); err != nil {
		return "", "", fmt.Errorf("tool: failed to write %s: %w", params.Path, err)
	}

	return t.marshalResult(params.Path, EditModeEdit, diff)
}

func (t EditFileTool) marshalResult(path string, mode EditMode, diff string) (string, string, error) {
	result := editFileResult{Success: true, Path: path, Mode: mode, Diff: diff}
	out, err := json.Marshal(result)
	if err != nil {
		return "", "", fmt.Errorf("internal: failed to marshal %s result: %w", mode, err)
	}
	return string(out), string(out), nil
}
