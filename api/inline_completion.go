package api

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/AlvinPlayz23/void-core/agent"
)

// InlineCompletionRequest is the input to GetInlineCompletion.
type InlineCompletionRequest struct {
	Content     string
	CursorPos   int
	FilePath    string
	Language    string
	Credentials Credentials
}

// InlineCompletionChunk is one item of GetInlineCompletion's response
// stream.
type InlineCompletionChunk struct {
	Content *string `json:"content,omitempty"`
	Error   *string `json:"error,omitempty"`
	Done    bool    `json:"done"`
}

const inlineCompletionSystemPrompt = "You complete code at a cursor position. Respond with only the text to insert at the cursor — no explanation, no markdown fences, no repetition of the surrounding code."

// clampToRuneBoundary snaps pos down to the nearest valid rune boundary at
// or before pos, and to len(s) if pos exceeds it. This resolves the
// service's Open Question on the inline-completion cursor: the source's
// byte-index slice could otherwise split a multi-byte UTF-8 character.
func clampToRuneBoundary(s string, pos int) int {
	if pos >= len(s) {
		return len(s)
	}
	if pos <= 0 {
		return 0
	}
	for pos > 0 && !utf8.RuneStart(s[pos]) {
		pos--
	}
	return pos
}

func inlineCompletionPrompt(req InlineCompletionRequest) string {
	cursor := clampToRuneBoundary(req.Content, req.CursorPos)
	before := req.Content[:cursor]
	after := req.Content[cursor:]
	return fmt.Sprintf(
		"Complete the code at <cursor>. Language: %s. File: %s.\n\n%s[CURSOR]%s",
		req.Language, req.FilePath, before, after,
	)
}

// GetInlineCompletion builds a fixed before/after-cursor prompt and runs a
// tool-less, single-iteration agent against it, per spec §6
// get_inline_completion.
func (s *Server) GetInlineCompletion(ctx context.Context, req InlineCompletionRequest) <-chan InlineCompletionChunk {
	out := make(chan InlineCompletionChunk, 64)

	if err := req.Credentials.validate(); err != nil {
		go func() {
			defer close(out)
			msg := err.Error()
			out <- InlineCompletionChunk{Error: &msg, Done: true}
		}()
		return out
	}

	ag, err := s.buildAgentCustom(req.Credentials, "", inlineCompletionSystemPrompt, false, 1)
	if err != nil {
		go func() {
			defer close(out)
			msg := err.Error()
			out <- InlineCompletionChunk{Error: &msg, Done: true}
		}()
		return out
	}

	prompt := inlineCompletionPrompt(req)
	items := ag.RunStreaming(ctx, prompt, nil, false)

	go func() {
		defer close(out)
		for item := range items {
			if item.Err != nil {
				msg := item.Err.Error()
				out <- InlineCompletionChunk{Error: &msg, Done: true}
				return
			}
			switch item.Event.Kind {
			case agent.AgentEventTextDelta:
				text := item.Event.Text
				out <- InlineCompletionChunk{Content: &text}
			case agent.AgentEventDone:
				out <- InlineCompletionChunk{Done: true}
			}
		}
	}()

	return out
}
