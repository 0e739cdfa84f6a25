package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// StreamEventKind tags the variant of a StreamEvent.
type StreamEventKind string

const (
	EventTextDelta StreamEventKind = "text_delta"
	EventToolCall  StreamEventKind = "tool_call"
	EventRaw       StreamEventKind = "raw"
	EventDone      StreamEventKind = "done"
)

// StreamEvent is one item of the SSE-decoded event sequence.
type StreamEvent struct {
	Kind     StreamEventKind
	Text     string   // set for EventTextDelta and EventRaw
	ToolCall ToolCall // set for EventToolCall
}

// StreamItem pairs a StreamEvent with a decode/transport error, since
// errors surface as stream items rather than as a separate channel.
type StreamItem struct {
	Event StreamEvent
	Err   error
}

type toolCallAccumulator struct {
	id        string
	name      string
	arguments strings.Builder
	order     int
	indexKey  string
}

// sse wire shapes, decoded tolerantly per provider quirks.
type sseChunk struct {
	Choices []sseChoice `json:"choices"`
	Error   *sseError   `json:"error"`
}

type sseError struct {
	Message string `json:"message"`
}

type sseChoice struct {
	Delta        *sseDelta   `json:"delta"`
	Message      *sseMessage `json:"message"`
	FinishReason *string     `json:"finish_reason"`
}

type sseDelta struct {
	Content          json.RawMessage    `json:"content"`
	Text             string             `json:"text"`
	Reasoning        string             `json:"reasoning"`
	ReasoningContent string             `json:"reasoning_content"`
	ToolCalls        []sseToolCallChunk `json:"tool_calls"`
}

type sseToolCallChunk struct {
	Index    *int                      `json:"index"`
	Id       string                    `json:"id"`
	Function *sseToolCallFunctionChunk `json:"function"`
}

type sseToolCallFunctionChunk struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type sseMessage struct {
	Content   json.RawMessage `json:"content"`
	ToolCalls []ToolCall      `json:"tool_calls"`
}

// ParseSSE decodes an OpenAI-compatible Server-Sent Events byte stream into
// a channel of StreamItems. At most one Done event is sent; reading goes on
// after it, and after an error item for an undecodable or provider-reported
// error payload, until the reader is exhausted. The channel is closed then,
// after a read error, or when ctx is cancelled. When debugRaw is
// true, every "data:" line is additionally surfaced as an EventRaw item
// before its decoded events.
func ParseSSE(ctx context.Context, r io.Reader, debugRaw bool) <-chan StreamItem {
	out := make(chan StreamItem, 64)

	go func() {
		defer close(out)

		send := func(item StreamItem) bool {
			select {
			case out <- item:
				return true
			case <-ctx.Done():
				return false
			}
		}

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		accumulators := make(map[string]*toolCallAccumulator)
		order := 0
		sawFinish := false

		flush := func() {
			if len(accumulators) == 0 {
				return
			}
			calls := make([]*toolCallAccumulator, 0, len(accumulators))
			for _, acc := range accumulators {
				calls = append(calls, acc)
			}
			// preserve arrival order, not map iteration order
			for i := 0; i < len(calls); i++ {
				for j := i + 1; j < len(calls); j++ {
					if calls[j].order < calls[i].order {
						calls[i], calls[j] = calls[j], calls[i]
					}
				}
			}
			for _, acc := range calls {
				if acc.name == "" {
					continue
				}
				if !send(StreamItem{Event: StreamEvent{
					Kind: EventToolCall,
					ToolCall: ToolCall{
						Id:   acc.id,
						Type: "function",
						Function: ToolCallFunc{
							Name:      acc.name,
							Arguments: acc.arguments.String(),
						},
					},
				}}) {
					return
				}
			}
			accumulators = make(map[string]*toolCallAccumulator)
		}

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}

			line := strings.TrimRight(scanner.Text(), "\r")
			data, ok := sseDataPayload(line)
			if !ok || data == "" {
				continue
			}

			if debugRaw {
				if !send(StreamItem{Event: StreamEvent{Kind: EventRaw, Text: data}}) {
					return
				}
			}

			if data == "[DONE]" {
				if !sawFinish {
					flush()
					sawFinish = true
					if !send(StreamItem{Event: StreamEvent{Kind: EventDone}}) {
						return
					}
				}
				continue
			}

			var chunk sseChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				if !send(StreamItem{Err: fmt.Errorf("model: stream error: failed to parse SSE json: %w", err)}) {
					return
				}
				continue
			}

			if chunk.Error != nil {
				msg := chunk.Error.Message
				if msg == "" {
					msg = "unknown stream error"
				}
				if !send(StreamItem{Err: fmt.Errorf("model: stream error: %s", msg)}) {
					return
				}
				continue
			}

			for _, choice := range chunk.Choices {
				if choice.Delta != nil {
					if text := decodeFlexibleText(choice.Delta.Content); text != "" {
						if !send(StreamItem{Event: StreamEvent{Kind: EventTextDelta, Text: text}}) {
							return
						}
					}
					if choice.Delta.Text != "" {
						if !send(StreamItem{Event: StreamEvent{Kind: EventTextDelta, Text: choice.Delta.Text}}) {
							return
						}
					}
					if choice.Delta.Reasoning != "" {
						if !send(StreamItem{Event: StreamEvent{Kind: EventTextDelta, Text: choice.Delta.Reasoning}}) {
							return
						}
					}
					if choice.Delta.ReasoningContent != "" {
						if !send(StreamItem{Event: StreamEvent{Kind: EventTextDelta, Text: choice.Delta.ReasoningContent}}) {
							return
						}
					}
					if len(choice.Delta.ToolCalls) > 0 {
						accumulateChunks(choice.Delta.ToolCalls, accumulators, &order)
					}
				}

				if choice.Message != nil {
					if text := decodeFlexibleText(choice.Message.Content); text != "" {
						if !send(StreamItem{Event: StreamEvent{Kind: EventTextDelta, Text: text}}) {
							return
						}
					}
					if len(choice.Message.ToolCalls) > 0 {
						accumulateMessages(choice.Message.ToolCalls, accumulators, &order)
					}
				}

				if choice.FinishReason != nil && !sawFinish {
					flush()
					sawFinish = true
					if !send(StreamItem{Event: StreamEvent{Kind: EventDone}}) {
						return
					}
				}
			}
		}

		if err := scanner.Err(); err != nil {
			send(StreamItem{Err: fmt.Errorf("provider connection error: %w", err)})
			return
		}

		if !sawFinish {
			flush()
			send(StreamItem{Event: StreamEvent{Kind: EventDone}})
		}
	}()

	return out
}

// sseDataPayload extracts the payload from a "data:" line. Non-data lines
// return ok=false; a blank payload returns "" with ok=true.
func sseDataPayload(line string) (string, bool) {
	if strings.HasPrefix(line, "data: ") {
		return strings.TrimPrefix(line, "data: "), true
	}
	if strings.HasPrefix(line, "data:") {
		return strings.TrimSpace(strings.TrimPrefix(line, "data:")), true
	}
	return "", false
}

func accumulateChunks(chunks []sseToolCallChunk, accumulators map[string]*toolCallAccumulator, order *int) {
	for _, tc := range chunks {
		indexKey := "index:0"
		if tc.Index != nil {
			indexKey = fmt.Sprintf("index:%d", *tc.Index)
		}
		key := tc.Id
		if key == "" {
			key = indexKey
			if _, exists := accumulators[key]; !exists {
				// a fragment carrying only an index continues the latest
				// call whose first chunk was keyed by its id at that index
				matched := -1
				for k, acc := range accumulators {
					if acc.indexKey == indexKey && acc.order > matched {
						key, matched = k, acc.order
					}
				}
			}
		}

		acc, exists := accumulators[key]
		if !exists {
			acc = &toolCallAccumulator{order: *order, indexKey: indexKey}
			*order++
			accumulators[key] = acc
		}
		if tc.Id != "" {
			acc.id = tc.Id
		}
		if tc.Function != nil {
			if tc.Function.Name != "" {
				acc.name = tc.Function.Name
			}
			if tc.Function.Arguments != "" {
				acc.arguments.WriteString(tc.Function.Arguments)
			}
		}
	}
}

func accumulateMessages(calls []ToolCall, accumulators map[string]*toolCallAccumulator, order *int) {
	for _, tc := range calls {
		key := tc.Id
		if key == "" {
			key = "name:" + tc.Function.Name
		}
		acc, exists := accumulators[key]
		if !exists {
			acc = &toolCallAccumulator{order: *order}
			*order++
			accumulators[key] = acc
		}
		if tc.Id != "" {
			acc.id = tc.Id
		}
		if tc.Function.Name != "" {
			acc.name = tc.Function.Name
		}
		if tc.Function.Arguments != "" {
			acc.arguments.WriteString(tc.Function.Arguments)
		}
	}
}

// decodeFlexibleText reduces a raw JSON content value — a string, an array
// of parts shaped like {text}/{content}/{output_text}, or a nested object
// carrying one of those fields — to a single concatenated string.
func decodeFlexibleText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var arr []map[string]any
	if err := json.Unmarshal(raw, &arr); err == nil {
		var out strings.Builder
		for _, part := range arr {
			out.WriteString(textField(part))
		}
		return out.String()
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return textField(obj)
	}

	return ""
}

func textField(m map[string]any) string {
	for _, key := range []string{"text", "content", "output_text"} {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}
