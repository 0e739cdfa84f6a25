package agent

import "github.com/AlvinPlayz23/void-core/llm"

// AgentEventKind tags the variant of an AgentEvent.
type AgentEventKind string

const (
	AgentEventTextDelta  AgentEventKind = "text_delta"
	AgentEventToolStart  AgentEventKind = "tool_start"
	AgentEventToolResult AgentEventKind = "tool_result"
	AgentEventDebug      AgentEventKind = "debug"
	AgentEventDone       AgentEventKind = "done"
)

// AgentEvent is one item of a streaming run's event sequence, consumed by
// the RPC layer and projected into AIResponseChunk.
type AgentEvent struct {
	Kind AgentEventKind

	// set for AgentEventTextDelta and AgentEventDebug
	Text string

	// set for AgentEventToolStart and AgentEventToolResult
	ToolName  string
	ToolInput interface{}

	// set for AgentEventToolResult
	ToolResult  string
	ToolSuccess bool

	// set for AgentEventDone
	FinalText string
	Messages  []llm.Message
}

// AgentItem pairs an AgentEvent with a terminal error, mirroring
// llm.StreamItem: a run ends either with a Done event or with an item
// whose Err is non-nil, never both.
type AgentItem struct {
	Event AgentEvent
	Err   error
}
