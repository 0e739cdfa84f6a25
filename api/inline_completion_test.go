package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampToRuneBoundary_WithinMultiByteRune(t *testing.T) {
	s := "a€b" // '€' is 3 bytes, at byte offset 1..4
	assert.Equal(t, 1, clampToRuneBoundary(s, 1))
	assert.Equal(t, 1, clampToRuneBoundary(s, 2)) // mid-rune, snaps back
	assert.Equal(t, 1, clampToRuneBoundary(s, 3)) // mid-rune, snaps back
	assert.Equal(t, 4, clampToRuneBoundary(s, 4))
}

func TestClampToRuneBoundary_PastEndClampsToLen(t *testing.T) {
	s := "hello"
	assert.Equal(t, len(s), clampToRuneBoundary(s, 999))
}

func TestClampToRuneBoundary_NegativeClampsToZero(t *testing.T) {
	assert.Equal(t, 0, clampToRuneBoundary("hello", -5))
}

func TestInlineCompletionPrompt_SplitsAtCursor(t *testing.T) {
	req := InlineCompletionRequest{
		Content:   "func foo() {\n\n}",
		CursorPos: 13,
		FilePath:  "main.go",
		Language:  "go",
	}
	prompt := inlineCompletionPrompt(req)
	assert.Contains(t, prompt, "func foo() {\n[CURSOR]\n}")
	assert.Contains(t, prompt, "main.go")
	assert.Contains(t, prompt, "go")
}

func TestGetInlineCompletion_StreamsTextThenDone(t *testing.T) {
	srv := sseTextServer(t,
		`data: {"choices":[{"delta":{"content":"suggested"},"finish_reason":"stop"}]}`,
		`data: [DONE]`,
	)
	s := NewServer()

	var chunks []InlineCompletionChunk
	items := s.GetInlineCompletion(context.Background(), InlineCompletionRequest{
		Content:     "x",
		CursorPos:   1,
		FilePath:    "a.go",
		Language:    "go",
		Credentials: Credentials{APIKey: "k", BaseURL: srv.URL, ModelID: "m"},
	})
	for item := range items {
		chunks = append(chunks, item)
	}

	require.Len(t, chunks, 2)
	require.NotNil(t, chunks[0].Content)
	assert.Equal(t, "suggested", *chunks[0].Content)
	assert.True(t, chunks[1].Done)
}

func TestGetInlineCompletion_MissingCredentialsFailsFast(t *testing.T) {
	s := NewServer()
	var chunks []InlineCompletionChunk
	for item := range s.GetInlineCompletion(context.Background(), InlineCompletionRequest{Content: "x"}) {
		chunks = append(chunks, item)
	}
	require.Len(t, chunks, 1)
	require.NotNil(t, chunks[0].Error)
	assert.True(t, chunks[0].Done)
}
