// Package llm implements the OpenAI-compatible chat-completions wire
// format: message and tool types, an HTTP transport, a tolerant SSE
// decoder for streamed chunks, and a Provider that binds the two to a
// specific model id.
package llm

import (
	"encoding/json"
	"fmt"
)

// Role is the speaker of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ContentPart is one element of a multi-part message (text or an image
// reference). Exactly one of Text or ImageURL is set.
type ContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Content is a Message's body: either plain text or an ordered list of
// parts. It round-trips through JSON as either a bare string or an array,
// matching what OpenAI-compatible APIs accept on the way in.
type Content struct {
	Text  string
	Parts []ContentPart
	IsSet bool
}

func TextContent(s string) Content {
	return Content{Text: s, IsSet: true}
}

// String returns the flattened text of the content, concatenating part
// text in order.
func (c Content) String() string {
	if len(c.Parts) == 0 {
		return c.Text
	}
	out := ""
	for _, p := range c.Parts {
		out += p.Text
	}
	return out
}

func (c Content) MarshalJSON() ([]byte, error) {
	if len(c.Parts) > 0 {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		c.IsSet = true
		return nil
	}
	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err == nil {
		c.Parts = parts
		c.IsSet = true
		return nil
	}
	return fmt.Errorf("content must be a string or an array of parts")
}

// ToolCall is a structured request from the model to invoke a named tool.
// Arguments is the JSON-encoded string exactly as the wire format carries
// it; the agent decodes it before dispatch.
type ToolCall struct {
	Id       string       `json:"id"`
	Type     string       `json:"type"`
	Function ToolCallFunc `json:"function"`
}

type ToolCallFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one turn of a conversation.
type Message struct {
	Role       Role       `json:"role"`
	Content    *Content   `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallId string     `json:"tool_call_id,omitempty"`
}

func NewUserMessage(text string) Message {
	c := TextContent(text)
	return Message{Role: RoleUser, Content: &c}
}

func NewSystemMessage(text string) Message {
	c := TextContent(text)
	return Message{Role: RoleSystem, Content: &c}
}

func NewAssistantTextMessage(text string) Message {
	c := TextContent(text)
	return Message{Role: RoleAssistant, Content: &c}
}

func NewAssistantToolCallMessage(text string, toolCalls []ToolCall) Message {
	m := Message{Role: RoleAssistant, ToolCalls: toolCalls}
	if text != "" {
		c := TextContent(text)
		m.Content = &c
	}
	return m
}

func NewToolResultMessage(toolCallID, result string) Message {
	c := TextContent(result)
	return Message{Role: RoleTool, ToolCallId: toolCallID, Content: &c}
}

// Text returns the message's flattened text content, or "" if unset.
func (m Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return m.Content.String()
}

// ToolChoiceType selects how the model should use tools.
type ToolChoiceType string

const (
	ToolChoiceAuto     ToolChoiceType = "auto"
	ToolChoiceRequired ToolChoiceType = "required"
	ToolChoiceNone     ToolChoiceType = "none"
)

// Tool is a named, schema-carrying, registry-dispatchable action definition
// as surfaced to the model in the wire format's tools[] array.
type Tool struct {
	Name         string      `json:"-"`
	Description  string      `json:"-"`
	InputSchema  interface{} `json:"-"`
	SchemaFormat SchemaFormat `json:"-"`
}

// SchemaFormat distinguishes a full JSON Schema from the narrower subset
// some providers accept for tool parameters.
type SchemaFormat string

const (
	SchemaFormatJSONSchema SchemaFormat = "json_schema"
	SchemaFormatSubset     SchemaFormat = "subset"
)

// ToolDefinition is the OpenAI-shaped {type:"function", function:{...}}
// entry produced by a Registry for the wire format.
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function ToolDefinitionFunc `json:"function"`
}

type ToolDefinitionFunc struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  interface{} `json:"parameters"`
}

func (t Tool) Definition() ToolDefinition {
	return ToolDefinition{
		Type: "function",
		Function: ToolDefinitionFunc{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.InputSchema,
		},
	}
}

// ChatRequest is the outbound wire request body.
type ChatRequest struct {
	Model       string           `json:"model"`
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	ToolChoice  ToolChoiceType   `json:"tool_choice,omitempty"`
	Stream      bool             `json:"stream"`
	MaxTokens   *int             `json:"max_tokens,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
}

// ChatResponseChoice is one element of a non-streaming response's choices.
type ChatResponseChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage reports token accounting, when the provider includes it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the non-streaming response body.
type ChatResponse struct {
	Id      string                `json:"id"`
	Choices []ChatResponseChoice  `json:"choices"`
	Usage   *Usage                `json:"usage,omitempty"`
}

// Capabilities are conservatively inferred from a model id's substrings.
type Capabilities struct {
	Streaming bool `json:"streaming"`
	Tools     bool `json:"tools"`
	Vision    bool `json:"vision"`
	Reasoning bool `json:"reasoning"`
}

// ModelInfo describes a model as surfaced to a front-end picker.
type ModelInfo struct {
	Id               string       `json:"id"`
	DisplayName      string       `json:"display_name"`
	ProviderId       string       `json:"provider_id"`
	ContextWindow    *int         `json:"context_window,omitempty"`
	MaxOutputTokens  *int         `json:"max_output_tokens,omitempty"`
	Capabilities     Capabilities `json:"capabilities"`
}

// ProviderError is returned by the transport on a non-2xx HTTP response.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider api error: invalid status code %d: %s", e.Status, e.Body)
}
