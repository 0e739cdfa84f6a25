// Package tools implements the registry of local, side-effectful actions the
// agent dispatches tool calls to: a path sandbox, a fuzzy multi-edit engine,
// and the concrete file/shell tools built on top of them.
package tools

import (
	"context"
	"fmt"

	"github.com/AlvinPlayz23/void-core/apperror"
	"github.com/AlvinPlayz23/void-core/llm"
)

// Tool is a named, schema-carrying, dispatchable action. Run receives the
// tool call's decoded JSON arguments (or the raw argument string wrapped as
// a JSON string value, if decoding failed) and returns the text fed back to
// the model plus a raw result. The agent passes only llmOutput on (to the
// model, and in ToolResult events that the RPC layer projects into
// tool_operation); no caller in this module reads rawOutput.
type Tool interface {
	Name() string
	Description() string
	InputSchema() interface{}
	SchemaFormat() llm.SchemaFormat
	Run(ctx context.Context, input interface{}) (llmOutput string, rawOutput string, err error)
}

// Registry maps tool names to their implementations and projects them into
// the wire format's tools[] array.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.Add(t)
	}
	return r
}

func (r *Registry) Add(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Definitions emits the OpenAI-shaped tool entries in registration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, llm.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		}.Definition())
	}
	return defs
}

// Dispatch looks up name and runs it, converting a missing tool into a
// tool-kind error rather than panicking.
func (r *Registry) Dispatch(ctx context.Context, name string, input interface{}) (string, string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", apperror.ErrToolNotFound, name)
	}
	return t.Run(ctx, input)
}
