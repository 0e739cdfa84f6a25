// Package agent implements the tool-using chat loop: it drives a
// llm.Provider and a tools.Registry across iterations, feeding tool
// results back to the model until it produces a final answer, a tool-free
// reply, or exhausts its iteration budget.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AlvinPlayz23/void-core/apperror"
	"github.com/AlvinPlayz23/void-core/llm"
	"github.com/AlvinPlayz23/void-core/logger"
	"github.com/AlvinPlayz23/void-core/tools"
)

const defaultMaxIterations = 10
const defaultTemperature = 0.2

// Option configures an Agent at construction time.
type Option func(*Agent)

// WithSystemPrompt prepends a system message to every request the agent
// builds.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) { a.systemPrompt = prompt }
}

// WithMaxIterations overrides the default iteration budget (10).
func WithMaxIterations(max int) Option {
	return func(a *Agent) { a.maxIterations = max }
}

// WithMaxTokens sets the request's max_tokens field.
func WithMaxTokens(max int) Option {
	return func(a *Agent) { a.maxTokens = &max }
}

// WithTemperature sets the request's temperature field.
func WithTemperature(temperature float64) Option {
	return func(a *Agent) { a.temperature = &temperature }
}

// WithRegistry attaches a tool registry; an agent with no registry never
// offers tools to the model.
func WithRegistry(registry *tools.Registry) Option {
	return func(a *Agent) { a.registry = registry }
}

// Agent orchestrates a Provider, an optional tool Registry, and a system
// prompt across the iterative tool-call loop described by the service's
// component design.
type Agent struct {
	provider     *llm.Provider
	registry     *tools.Registry
	systemPrompt string
	maxIterations int
	maxTokens    *int
	temperature  *float64
}

// New constructs an Agent bound to provider, applying opts over the
// defaults (max_iterations=10, temperature=0.2, no system prompt, no
// tools).
func New(provider *llm.Provider, opts ...Option) *Agent {
	defaultTemp := defaultTemperature
	a := &Agent{
		provider:      provider,
		maxIterations: defaultMaxIterations,
		temperature:   &defaultTemp,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result is the outcome of a non-streaming Run.
type Result struct {
	Text     string
	Messages []llm.Message
}

func (a *Agent) buildRequest(messages []llm.Message, stream bool) llm.ChatRequest {
	full := messages
	if a.systemPrompt != "" {
		full = make([]llm.Message, 0, len(messages)+1)
		full = append(full, llm.NewSystemMessage(a.systemPrompt))
		full = append(full, messages...)
	}

	request := llm.ChatRequest{
		Messages:    full,
		Stream:      stream,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	}
	if a.registry != nil {
		if defs := a.registry.Definitions(); len(defs) > 0 {
			request.Tools = defs
		}
	}
	return request
}

// Run drives the non-streaming loop: it appends userMessage to history,
// calls the provider, and — while the assistant replies with tool calls —
// dispatches them sequentially and loops, up to max_iterations.
func (a *Agent) Run(ctx context.Context, userMessage string, history []llm.Message) (*Result, error) {
	messages := append(append([]llm.Message{}, history...), llm.NewUserMessage(userMessage))

	for i := 0; i < a.maxIterations; i++ {
		request := a.buildRequest(messages, false)
		response, err := a.provider.Complete(ctx, request)
		if err != nil {
			return nil, err
		}
		if len(response.Choices) == 0 {
			return nil, fmt.Errorf("model: no choices returned from provider")
		}

		assistantMessage := response.Choices[0].Message
		text := assistantMessage.Text()
		messages = append(messages, assistantMessage)

		if len(assistantMessage.ToolCalls) == 0 {
			return &Result{Text: text, Messages: messages}, nil
		}

		for _, call := range assistantMessage.ToolCalls {
			resultText := a.dispatchTool(ctx, call)
			messages = append(messages, llm.NewToolResultMessage(call.Id, resultText))
		}
	}

	return nil, apperror.ErrMaxIterations
}

// dispatchTool decodes a tool call's arguments and runs it, turning a
// missing-tool or decode failure into an "Error: ..." result fed back to
// the model rather than aborting the run.
func (a *Agent) dispatchTool(ctx context.Context, call llm.ToolCall) string {
	input := decodeToolArguments(call.Function.Arguments)

	if a.registry == nil {
		return fmt.Sprintf("Error: tool not found: %s", call.Function.Name)
	}

	llmOutput, _, err := a.registry.Dispatch(ctx, call.Function.Name, input)
	if err != nil {
		logger.Get().Warn().Str("tool", call.Function.Name).Err(err).Msg("tool call failed")
		return fmt.Sprintf("Error: %s", err)
	}
	return llmOutput
}

// decodeToolArguments parses a tool call's accumulated argument string as
// JSON; on failure the raw string is passed through as a JSON string value
// so the tool can reject it coherently rather than crash on decode.
func decodeToolArguments(raw string) interface{} {
	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}
