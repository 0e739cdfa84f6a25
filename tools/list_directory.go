package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/AlvinPlayz23/void-core/llm"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/invopop/jsonschema"
)

type ListDirectoryParams struct {
	Path         string `json:"path" jsonschema:"description=Directory path\\, relative to the project root."`
	IncludeGlob  string `json:"include_glob,omitempty" jsonschema:"description=Optional doublestar glob (e.g. **/*.go) to filter entries by name."`
}

type listDirectoryResult struct {
	Success bool     `json:"success"`
	Path    string   `json:"path"`
	Entries []string `json:"entries"`
	Count   int      `json:"count"`
}

type ListDirectoryTool struct {
	Root string
}

func (t ListDirectoryTool) Name() string                  { return "list_directory" }
func (t ListDirectoryTool) SchemaFormat() llm.SchemaFormat { return llm.SchemaFormatJSONSchema }

func (t ListDirectoryTool) Description() string {
	return "Lists the immediate children of a directory within the project, with a trailing slash on subdirectories."
}

func (t ListDirectoryTool) InputSchema() interface{} {
	return (&jsonschema.Reflector{DoNotReference: true}).Reflect(&ListDirectoryParams{})
}

func (t ListDirectoryTool) Run(ctx context.Context, input interface{}) (string, string, error) {
	params, err := decodeParams[ListDirectoryParams](input)
	if err != nil {
		return "", "", err
	}

	resolved, err := ResolveAndValidate(t.Root, params.Path)
	if err != nil {
		return "", "", err
	}

	children, err := os.ReadDir(resolved)
	if err != nil {
		return "", "", fmt.Errorf("tool: failed to list %s: %w", params.Path, err)
	}

	entries := make([]string, 0, len(children))
	for _, child := range children {
		name := child.Name()
		if child.IsDir() {
			name += "/"
		}
		if params.IncludeGlob != "" {
			matched, err := doublestar.Match(params.IncludeGlob, name)
			if err != nil {
				return "", "", fmt.Errorf("invalid include_glob %q: %w", params.IncludeGlob, err)
			}
			if !matched {
				continue
			}
		}
		entries = append(entries, name)
	}

	result := listDirectoryResult{Success: true, Path: params.Path, Entries: entries, Count: len(entries)}
	out, err := json.Marshal(result)
	if err != nil {
		return "", "", fmt.Errorf("internal: failed to marshal list_directory result: %w", err)
	}
	return string(out), string(out), nil
}
