package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlvinPlayz23/void-core/apperror"
	"github.com/AlvinPlayz23/void-core/llm"
	"github.com/AlvinPlayz23/void-core/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoTool is a fake tools.Tool used to exercise dispatch without touching
// the filesystem.
type echoTool struct{ fail bool }

func (echoTool) Name() string                  { return "echo" }
func (echoTool) Description() string           { return "echoes its input" }
func (echoTool) InputSchema() interface{}      { return map[string]any{"type": "object"} }
func (echoTool) SchemaFormat() llm.SchemaFormat { return llm.SchemaFormatJSONSchema }

func (e echoTool) Run(ctx context.Context, input interface{}) (string, string, error) {
	if e.fail {
		return "", "", fmt.Errorf("tool: echo failed")
	}
	out, _ := json.Marshal(input)
	return string(out), string(out), nil
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *llm.Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	provider, err := llm.NewProvider("test-key", server.URL, "test-model")
	require.NoError(t, err)
	return provider
}

func TestAgent_Run_NoToolCalls(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		resp := llm.ChatResponse{
			Id: "1",
			Choices: []llm.ChatResponseChoice{
				{Index: 0, Message: llm.NewAssistantTextMessage("final answer"), FinishReason: "stop"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})

	a := New(provider)
	result, err := a.Run(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "final answer", result.Text)
	assert.Len(t, result.Messages, 2) // user + assistant
}

func TestAgent_Run_WithToolCallThenFinalAnswer(t *testing.T) {
	call := 0
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		call++
		var resp llm.ChatResponse
		if call == 1 {
			resp = llm.ChatResponse{
				Choices: []llm.ChatResponseChoice{
					{Message: llm.NewAssistantToolCallMessage("", []llm.ToolCall{
						{Id: "call_1", Type: "function", Function: llm.ToolCallFunc{Name: "echo", Arguments: `{"x":1}`}},
					})},
				},
			}
		} else {
			resp = llm.ChatResponse{
				Choices: []llm.ChatResponseChoice{{Message: llm.NewAssistantTextMessage("done")}},
			}
		}
		json.NewEncoder(w).Encode(resp)
	})

	registry := tools.NewRegistry(echoTool{})
	a := New(provider, WithRegistry(registry))
	result, err := a.Run(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "done", result.Text)
	assert.Equal(t, 2, call)

	// user, assistant(tool_call), tool, assistant(final)
	require.Len(t, result.Messages, 4)
	assert.Equal(t, llm.RoleTool, result.Messages[2].Role)
	assert.Equal(t, "call_1", result.Messages[2].ToolCallId)
}

func TestAgent_Run_ToolFailureFeedsErrorBackToModel(t *testing.T) {
	call := 0
	var sawToolMessage string
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		call++
		var req llm.ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		for _, m := range req.Messages {
			if m.Role == llm.RoleTool {
				sawToolMessage = m.Text()
			}
		}
		var resp llm.ChatResponse
		if call == 1 {
			resp = llm.ChatResponse{Choices: []llm.ChatResponseChoice{
				{Message: llm.NewAssistantToolCallMessage("", []llm.ToolCall{
					{Id: "call_1", Type: "function", Function: llm.ToolCallFunc{Name: "echo", Arguments: `{}`}},
				})},
			}}
		} else {
			resp = llm.ChatResponse{Choices: []llm.ChatResponseChoice{{Message: llm.NewAssistantTextMessage("recovered")}}}
		}
		json.NewEncoder(w).Encode(resp)
	})

	registry := tools.NewRegistry(echoTool{fail: true})
	a := New(provider, WithRegistry(registry))
	result, err := a.Run(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Text)
	assert.Contains(t, sawToolMessage, "Error:")
}

func TestAgent_Run_MaxIterationsExceeded(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		resp := llm.ChatResponse{Choices: []llm.ChatResponseChoice{
			{Message: llm.NewAssistantToolCallMessage("", []llm.ToolCall{
				{Id: "call_1", Type: "function", Function: llm.ToolCallFunc{Name: "echo", Arguments: `{}`}},
			})},
		}}
		json.NewEncoder(w).Encode(resp)
	})

	registry := tools.NewRegistry(echoTool{})
	a := New(provider, WithRegistry(registry), WithMaxIterations(2))
	_, err := a.Run(context.Background(), "hi", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrMaxIterations)
}
