package agent

import (
	"context"
	"fmt"

	"github.com/AlvinPlayz23/void-core/apperror"
	"github.com/AlvinPlayz23/void-core/llm"
	"github.com/AlvinPlayz23/void-core/logger"
)

// RunStreaming drives the same outer loop as Run, but each iteration
// consumes a live provider.Stream instead of a single Complete call,
// forwarding text deltas, tool lifecycle, and (if debugRaw) raw SSE lines
// to the returned channel as they happen. The channel is closed after a
// Done item or a terminal error item; callers that stop draining it cause
// the background goroutine's sends to block until ctx is cancelled.
func (a *Agent) RunStreaming(ctx context.Context, userMessage string, history []llm.Message, debugRaw bool) <-chan AgentItem {
	out := make(chan AgentItem, 64)

	go func() {
		defer close(out)

		send := func(item AgentItem) bool {
			select {
			case out <- item:
				return true
			case <-ctx.Done():
				return false
			}
		}

		messages := append(append([]llm.Message{}, history...), llm.NewUserMessage(userMessage))

		for i := 0; i < a.maxIterations; i++ {
			request := a.buildRequest(messages, true)
			stream, err := a.provider.Stream(ctx, request, debugRaw)
			if err != nil {
				send(AgentItem{Err: err})
				return
			}

			var assistantText string
			var toolCalls []llm.ToolCall
			sawOutput := false

		inner:
			for item := range stream {
				if item.Err != nil {
					send(AgentItem{Err: item.Err})
					return
				}

				switch item.Event.Kind {
				case llm.EventTextDelta:
					if item.Event.Text != "" {
						sawOutput = true
						assistantText += item.Event.Text
						if !send(AgentItem{Event: AgentEvent{Kind: AgentEventTextDelta, Text: item.Event.Text}}) {
							return
						}
					}
				case llm.EventToolCall:
					sawOutput = true
					toolCalls = append(toolCalls, item.Event.ToolCall)
				case llm.EventRaw:
					if debugRaw {
						if !send(AgentItem{Event: AgentEvent{Kind: AgentEventDebug, Text: item.Event.Text}}) {
							return
						}
					}
				case llm.EventDone:
					if sawOutput {
						break inner
					}
					// tolerate a premature [DONE] before any content by
					// continuing to read the rest of the stream
				}
			}

			if len(toolCalls) == 0 {
				if assistantText != "" {
					messages = append(messages, llm.NewAssistantTextMessage(assistantText))
				}
				send(AgentItem{Event: AgentEvent{Kind: AgentEventDone, FinalText: assistantText, Messages: messages}})
				return
			}

			messages = append(messages, llm.NewAssistantToolCallMessage(assistantText, toolCalls))

			for _, call := range toolCalls {
				input := decodeToolArguments(call.Function.Arguments)

				if !send(AgentItem{Event: AgentEvent{Kind: AgentEventToolStart, ToolName: call.Function.Name, ToolInput: input}}) {
					return
				}

				resultText, success := a.runToolForStreaming(ctx, call.Function.Name, input)
				messages = append(messages, llm.NewToolResultMessage(call.Id, resultText))

				if !send(AgentItem{Event: AgentEvent{
					Kind:        AgentEventToolResult,
					ToolName:    call.Function.Name,
					ToolResult:  resultText,
					ToolSuccess: success,
				}}) {
					return
				}
			}
		}

		send(AgentItem{Err: apperror.ErrMaxIterations})
	}()

	return out
}

func (a *Agent) runToolForStreaming(ctx context.Context, name string, input interface{}) (string, bool) {
	if a.registry == nil {
		return fmt.Sprintf("Error: tool not found: %s", name), false
	}

	llmOutput, _, err := a.registry.Dispatch(ctx, name, input)
	if err != nil {
		logger.Get().Warn().Str("tool", name).Err(err).Msg("tool call failed")
		return fmt.Sprintf("Error: %s", err), false
	}
	return llmOutput, true
}
